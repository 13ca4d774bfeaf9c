// Package elasticsearch implements the REST dialect for Elasticsearch
// clusters. No auth handshake: connect probes the cluster root and
// every call carries a JSON content type.
package elasticsearch

import (
	"net/http"
	"time"

	"github.com/conduit-network/conduit/pkg/connector"
	"github.com/conduit-network/conduit/pkg/testbed"
	"github.com/conduit-network/conduit/pkg/util"
)

// DefaultPort is the standard Elasticsearch HTTP port.
const DefaultPort = 9200

// Client is the Elasticsearch REST implementation.
type Client struct {
	*connector.Session
}

func init() {
	connector.Register("elasticsearch", New)
}

// New builds an Elasticsearch client for the device connection.
func New(device *testbed.Device, alias, via string) (connector.Implementation, error) {
	c := &Client{}
	c.Session = connector.NewSession(device, alias, via, connector.Dialect{
		Login:       c.login,
		DefaultPort: DefaultPort,
	})
	return c, nil
}

func (c *Client) login(timeout time.Duration) error {
	c.SetHeader("Content-Type", "application/json")

	status, body, err := c.Raw(http.MethodGet, "/", nil, nil, timeout)
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
