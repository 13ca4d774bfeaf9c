// Package viptela implements the REST dialect for SD-WAN vManage. Auth
// is a form POST to j_security_check (session cookie) followed by a GET
// for the XSRF token sent as X-XSRF-TOKEN on every subsequent call.
// vManage answers a failed form login with HTTP 200 and an HTML login
// page, so the body is inspected as well as the status.
package viptela

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/conduit-network/conduit/pkg/connector"
	"github.com/conduit-network/conduit/pkg/testbed"
	"github.com/conduit-network/conduit/pkg/util"
)

const (
	loginPath = "/j_security_check"
	tokenPath = "/dataservice/client/token"
)

// Client is the vManage REST implementation.
type Client struct {
	*connector.Session
}

func init() {
	connector.Register("viptela", New)
}

// New builds a vManage client for the device connection.
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

	form := url.Values{}
	form.Set("j_username", username)
	form.Set("j_password", password)

	status, body, err := c.Raw(http.MethodPost, loginPath, []byte(form.Encode()),
		map[string]string{"Content-Type": "application/x-www-form-urlencoded"}, timeout)
	if err != nil {
		return err
	}
	if status != http.StatusOK || strings.Contains(string(body), "<html>") {
		return &util.AuthenticationError{
			Device: c.Device().Name,
			Alias:  c.Alias(),
			Status: status,
			Body:   "login rejected",
		}
	}

	status, body, err = c.Raw(http.MethodGet, tokenPath, nil, nil, timeout)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return &util.AuthenticationError{
			Device: c.Device().Name,
			Alias:  c.Alias(),
			Status: status,
			Body:   "failed to fetch XSRF token",
		}
	}

	token := strings.TrimSpace(string(body))
	c.SetToken(token)
	c.SetHeader("X-XSRF-TOKEN", token)
	c.SetHeader("Content-Type", "application/json")
	return nil
}

// expired catches both a plain 401 and the HTML login page vManage
// serves once the session cookie lapses.
func expired(status int, body []byte) bool {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return true
	}
	return status == http.StatusOK && strings.Contains(string(body), "<html>")
}
