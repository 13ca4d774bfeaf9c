// Package generic implements the default REST dialect: stateless basic
// auth or bearer token, no handshake. Connect performs a cheap probe
// GET to verify reachability and credentials. Used for any device whose
// os/platform tokens have no vendor-specific implementation.
package generic

import (
	"net/http"
	"time"

	"github.com/conduit-network/conduit/pkg/connector"
	"github.com/conduit-network/conduit/pkg/testbed"
	"github.com/conduit-network/conduit/pkg/util"
)

// ProbePath is the resource fetched on connect to verify the session.
var ProbePath = "/"

// Client is the generic REST implementation.
type Client struct {
	*connector.Session
}

func init() {
	connector.Register(connector.GenericToken, New)
}

// New builds a generic client for the device connection.
func New(device *testbed.Device, alias, via string) (connector.Implementation, error) {
	c := &Client{}
	c.Session = connector.NewSession(device, alias, via, connector.Dialect{
		Login: c.login,
	})
	return c, nil
}

func (c *Client) login(timeout time.Duration) error {
	if token := c.BearerToken(); token != "" {
		c.SetToken(token)
		c.SetHeader("Authorization", "Bearer "+token)
	} else {
		username, password := c.Credentials()
		c.SetBasicAuth(username, password)
	}

	status, body, err := c.Raw(http.MethodGet, ProbePath, nil, nil, timeout)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return &util.AuthenticationError{
			Device: c.Device().Name,
			Alias:  c.Alias(),
			Status: status,
			Body:   string(body),
		}
	}
	return nil
}
