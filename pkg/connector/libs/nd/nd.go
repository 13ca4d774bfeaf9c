// Package nd implements the REST dialect for Cisco Nexus Dashboard.
// Auth is a POST of credentials and auth domain to /login; the session
// cookie carries the login, and the JWT the controller returns is kept
// for callers needing it directly. ND sessions have a bounded lifetime,
// so an expired cookie triggers the executor's reconnect-and-replay.
package nd

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/conduit-network/conduit/pkg/connector"
	"github.com/conduit-network/conduit/pkg/testbed"
	"github.com/conduit-network/conduit/pkg/util"
)

const loginPath = "/login"

// DefaultDomain is the auth domain used when the credential set
// declares none.
const DefaultDomain = "DefaultAuth"

// Client is the Nexus Dashboard REST implementation.
type Client struct {
	*connector.Session
}

func init() {
	connector.Register("nd", New)
	connector.Register("nexusdashboard", New)
}

// New builds a Nexus Dashboard client for the device connection.
func New(device *testbed.Device, alias, via string) (connector.Implementation, error) {
	c := &Client{}
	c.Session = connector.NewSession(device, alias, via, connector.Dialect{
		Login: c.login,
	})
	return c, nil
}

func (c *Client) login(timeout time.Duration) error {
	username, password := c.Credentials()
	domain := connector.ResolveDomain(c.Device(), c.Via())
	if domain == "" {
		domain = DefaultDomain
	}

	payload, err := json.Marshal(map[string]string{
		"userName":   username,
		"userPasswd": password,
		"domain":     domain,
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

	// Session cookie is kept by the transport's cookie jar; the JWT is
	// stored for callers that address APIs wanting it explicitly.
	var login struct {
		Token string `json:"jwttoken"`
	}
	if err := json.Unmarshal(body, &login); err == nil && login.Token != "" {
		c.SetToken(login.Token)
	}
	return nil
}
