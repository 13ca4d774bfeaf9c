// Package dnac implements the REST dialect for Cisco DNA-Center. A
// basic-auth POST to the auth endpoint issues a token carried in the
// X-Auth-Token header on every subsequent call.
package dnac

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/conduit-network/conduit/pkg/connector"
	"github.com/conduit-network/conduit/pkg/testbed"
	"github.com/conduit-network/conduit/pkg/util"
)

const authPath = "/dna/system/api/v1/auth/token"

// Client is the DNA-Center REST implementation.
type Client struct {
	*connector.Session
}

func init() {
	connector.Register("dnac", New)
}

// New builds a DNA-Center client for the device connection.
func New(device *testbed.Device, alias, via string) (connector.Implementation, error) {
	c := &Client{}
	c.Session = connector.NewSession(device, alias, via, connector.Dialect{
		Login: c.login,
	})
	return c, nil
}

func (c *Client) login(timeout time.Duration) error {
	username, password := c.Credentials()

	status, body, err := c.Raw(http.MethodPost, authPath, nil, map[string]string{
		"Content-Type":  "application/json",
		"Authorization": connector.BasicAuth(username, password),
	}, timeout)
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

	var auth struct {
		Token string `json:"Token"`
	}
	if err := json.Unmarshal(body, &auth); err != nil || auth.Token == "" {
		return &util.AuthenticationError{
			Device: c.Device().Name,
			Alias:  c.Alias(),
			Status: status,
			Body:   "auth response carried no token",
		}
	}

	c.SetToken(auth.Token)
	c.SetHeader("X-Auth-Token", auth.Token)
	return nil
}
