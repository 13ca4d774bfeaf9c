// Package ise implements the REST dialect for Cisco Identity Services
// Engine. There is no handshake token: every call carries basic auth
// and JSON media types, and connect probes the deployment version
// endpoint to verify reachability and credentials.
package ise

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/conduit-network/conduit/pkg/connector"
	"github.com/conduit-network/conduit/pkg/testbed"
	"github.com/conduit-network/conduit/pkg/util"
)

const versionPath = "/admin/API/mnt/Version"

// Client is the ISE REST implementation.
type Client struct {
	*connector.Session
}

func init() {
	connector.Register("ise", New)
}

// New builds an ISE client for the device connection.
func New(device *testbed.Device, alias, via string) (connector.Implementation, error) {
	c := &Client{}
	c.Session = connector.NewSession(device, alias, via, connector.Dialect{
		Login: c.login,
	})
	return c, nil
}

func (c *Client) login(timeout time.Duration) error {
	username, password := c.Credentials()
	c.SetBasicAuth(username, password)
	c.SetHeader("Accept", "application/json")
	c.SetHeader("Content-Type", "application/json")

	status, body, err := c.Raw(http.MethodGet, versionPath, nil, nil, timeout)
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

	if version := versionSummary(body); version != "" {
		util.WithConnection(c.Device().Name, c.Alias()).Info(version)
	}
	return nil
}

// versionSummary renders the version probe's name/value pairs as one
// line, or "" when the body has another shape.
func versionSummary(body []byte) string {
	var probe struct {
		OperationResult struct {
			ResultValue []struct {
				Name  string `json:"name"`
				Value string `json:"value"`
			} `json:"resultValue"`
		} `json:"OperationResult"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return ""
	}
	parts := make([]string, 0, len(probe.OperationResult.ResultValue))
	for _, nv := range probe.OperationResult.ResultValue {
		if nv.Name != "" && nv.Value != "" {
			parts = append(parts, nv.Name+": "+nv.Value)
		}
	}
	return strings.Join(parts, " ")
}
