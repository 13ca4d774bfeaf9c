// Package nxos implements the REST dialect for Cisco NX-OS switches
// running the NX-API REST agent. The handshake is the same
// aaaLogin.json cookie exchange as ACI.
package nxos

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/conduit-network/conduit/pkg/connector"
	"github.com/conduit-network/conduit/pkg/testbed"
	"github.com/conduit-network/conduit/pkg/util"
)

const loginPath = "/api/aaaLogin.json"

// Client is the NX-OS REST implementation.
type Client struct {
	*connector.Session
}

func init() {
	connector.Register("nxos", New)
}

// New builds an NX-OS client for the device connection.
func New(device *testbed.Device, alias, via string) (connector.Implementation, error) {
	c := &Client{}
	c.Session = connector.NewSession(device, alias, via, connector.Dialect{
		Login: c.login,
	})
	return c, nil
}

func (c *Client) login(timeout time.Duration) error {
	username, password := c.Credentials()

	payload, err := json.Marshal(map[string]interface{}{
		"aaaUser": map[string]interface{}{
			"attributes": map[string]string{
				"name": username,
				"pwd":  password,
			},
		},
	})
	if err != nil {
		return err
	}

	status, body, err := c.Raw(http.MethodPost, loginPath, payload,
		map[string]string{"Content-Type": "application/json"}, timeout)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return &util.AuthenticationError{
			Device: c.Device().Name,
			Alias:  c.Alias(),
			Status: status,
			Body:   string(body),
		}
	}
	return nil
}
