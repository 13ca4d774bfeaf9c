// Package apic implements the REST dialect for Cisco ACI controllers.
// Auth is a single POST of credentials to aaaLogin.json; the session
// cookie persists for subsequent calls. APIC sessions have a bounded
// lifetime, so an expired cookie surfaces as 401/403 and triggers the
// executor's reconnect-and-replay.
package apic

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/conduit-network/conduit/pkg/connector"
	"github.com/conduit-network/conduit/pkg/testbed"
	"github.com/conduit-network/conduit/pkg/util"
)

const loginPath = "/api/aaaLogin.json"

// Client is the APIC REST implementation.
type Client struct {
	*connector.Session
}

func init() {
	connector.Register("apic", New)
}

// New builds an APIC client for the device connection.
func New(device *testbed.Device, alias, via string) (connector.Implementation, error) {
	c := &Client{}
	c.Session = connector.NewSession(device, alias, via, connector.Dialect{
		Login:   c.login,
		Expired: expired,
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
		map[string]string{"Content-Type": "text/plain"}, timeout)
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
	// Session cookie is kept by the transport's cookie jar.
	return nil
}

func expired(status int, body []byte) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}
