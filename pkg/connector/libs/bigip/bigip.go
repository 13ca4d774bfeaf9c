// Package bigip implements the REST dialect for F5 BIG-IP (iControl
// REST). Auth is a POST of credentials that returns an opaque token,
// followed by a PATCH on the token resource to extend its TTL; the
// token rides in the X-F5-Auth-Token header on every call and is
// revoked with a DELETE on disconnect.
package bigip

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/conduit-network/conduit/pkg/connector"
	"github.com/conduit-network/conduit/pkg/testbed"
	"github.com/conduit-network/conduit/pkg/util"
)

const (
	loginPath = "/mgmt/shared/authn/login"
	tokenPath = "/mgmt/shared/authz/tokens/"

	// DefaultTokenTTL is the token lifetime requested after login, in
	// seconds. BIG-IP defaults to 1200; tests routinely run longer.
	DefaultTokenTTL = 3600

	revokeTimeout = 10 * time.Second
)

// Client is the BIG-IP iControl REST implementation.
type Client struct {
	*connector.Session

	// TokenTTL is the requested token lifetime in seconds.
	TokenTTL int
}

func init() {
	connector.Register("bigip", New)
}

// New builds a BIG-IP client for the device connection.
func New(device *testbed.Device, alias, via string) (connector.Implementation, error) {
	c := &Client{TokenTTL: DefaultTokenTTL}
	c.Session = connector.NewSession(device, alias, via, connector.Dialect{
		Login:  c.login,
		Logout: c.logout,
	})
	return c, nil
}

func (c *Client) login(timeout time.Duration) error {
	username, password := c.Credentials()

	payload, err := json.Marshal(map[string]string{
		"username":          username,
		"password":          password,
		"loginProviderName": "tmos",
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

	var login struct {
		Token struct {
			Token string `json:"token"`
		} `json:"token"`
	}
	if err := json.Unmarshal(body, &login); err != nil || login.Token.Token == "" {
		return &util.AuthenticationError{
			Device: c.Device().Name,
			Alias:  c.Alias(),
			Status: status,
			Body:   "login response carried no token",
		}
	}

	c.SetToken(login.Token.Token)
	c.SetHeader("X-F5-Auth-Token", login.Token.Token)

	return c.extendTokenTTL(timeout)
}

// extendTokenTTL patches the token resource so it outlives the default
// 1200 second lifetime.
func (c *Client) extendTokenTTL(timeout time.Duration) error {
	payload, err := json.Marshal(map[string]int{"timeout": c.TokenTTL})
	if err != nil {
		return err
	}
	status, body, err := c.Raw(http.MethodPatch, tokenPath+c.Token(), payload,
		map[string]string{"Content-Type": "application/json"}, timeout)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return &util.AuthenticationError{
			Device: c.Device().Name,
			Alias:  c.Alias(),
			Status: status,
			Body:   fmt.Sprintf("token TTL extension failed: %s", body),
		}
	}
	util.WithConnection(c.Device().Name, c.Alias()).
		Debugf("Token TTL extended to %d seconds", c.TokenTTL)
	return nil
}

func (c *Client) logout() error {
	token := c.Token()
	if token == "" {
		return nil
	}
	status, body, err := c.Raw(http.MethodDelete, tokenPath+token, nil, nil, revokeTimeout)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("token revoke returned status %d: %s", status, body)
	}
	return nil
}
