// Package nso implements the REST dialect for Cisco NSO over RESTCONF.
// There is no handshake: every call carries basic auth and yang-data
// media types, and connect merely probes the RESTCONF root to verify
// reachability and credentials.
package nso

import (
	"net/http"
	"time"

	"github.com/conduit-network/conduit/pkg/connector"
	"github.com/conduit-network/conduit/pkg/testbed"
	"github.com/conduit-network/conduit/pkg/util"
)

const probePath = "/restconf"

// Client is the NSO RESTCONF implementation.
type Client struct {
	*connector.Session
}

func init() {
	connector.Register("nso", New)
}

// New builds an NSO client for the device connection. NSO listens on
// plain HTTP by default.
func New(device *testbed.Device, alias, via string) (connector.Implementation, error) {
	c := &Client{}
	c.Session = connector.NewSession(device, alias, via, connector.Dialect{
		Login:           c.login,
		DefaultProtocol: "http",
		DefaultPort:     8080,
	})
	return c, nil
}

func (c *Client) login(timeout time.Duration) error {
	username, password := c.Credentials()
	c.SetBasicAuth(username, password)
	c.SetHeader("Accept", "application/yang-data+json")

	status, body, err := c.Raw(http.MethodGet, probePath, nil, nil, timeout)
	if err != nil {
		return err
	}
	switch status {
	case http.StatusOK, http.StatusNoContent:
		return nil
	}
	return &util.AuthenticationError{
		Device: c.Device().Name,
		Alias:  c.Alias(),
		Status: status,
		Body:   string(body),
	}
}
