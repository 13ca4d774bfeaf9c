// Package testbed defines the device descriptor model consumed by the
// REST connector: devices, their named connections, and credentials.
// The model is read-only to the connector; the surrounding framework
// builds it once (normally from a YAML testbed file) before any
// connection is opened.
package testbed

import (
	"fmt"
	"strings"

	"github.com/conduit-network/conduit/pkg/util"
)

// Testbed is the root of a loaded testbed file.
type Testbed struct {
	Name    string             `yaml:"name"`
	Devices map[string]*Device `yaml:"devices"`
}

// Device describes one target device and its named connections.
type Device struct {
	Name     string `yaml:"-"`
	OS       string `yaml:"os"`
	Platform string `yaml:"platform,omitempty"`

	// Connections maps alias -> connection parameters (e.g. "rest", "vty").
	Connections map[string]*Connection `yaml:"connections"`

	// Credentials holds device-wide credential sets keyed by alias.
	Credentials map[string]*Credential `yaml:"credentials,omitempty"`

	// Legacy device-wide fallback pair, used when no credential set or
	// connection-level fields apply.
	Username string `yaml:"username,omitempty"`
	Password Secret `yaml:"password,omitempty"`
}

// Connection holds the parameters of one named connection on a device.
type Connection struct {
	Host     string            `yaml:"host,omitempty"`
	IP       string            `yaml:"ip,omitempty"`
	Port     int               `yaml:"port,omitempty"`
	Protocol string            `yaml:"protocol,omitempty"` // http or https, default https
	Verify   bool              `yaml:"verify,omitempty"`   // TLS certificate verification
	Proxies  map[string]string `yaml:"proxies,omitempty"`

	// Connection-level plain credential fields (precedence below
	// alias-scoped credential sets).
	Username string `yaml:"username,omitempty"`
	Password Secret `yaml:"password,omitempty"`

	// Credentials holds connection-scoped credential sets keyed by alias.
	Credentials map[string]*Credential `yaml:"credentials,omitempty"`

	// SSHTunnel, when set, substitutes a local forward endpoint for the
	// declared host/port.
	SSHTunnel *TunnelConfig `yaml:"ssh_tunnel,omitempty"`
}

// Credential is one username/password or token credential set.
type Credential struct {
	Username string `yaml:"username,omitempty"`
	Password Secret `yaml:"password,omitempty"`
	Token    Secret `yaml:"token,omitempty"`
	Domain   string `yaml:"domain,omitempty"`
}

// TunnelConfig describes an SSH jump host used to reach the device.
type TunnelConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port,omitempty"` // SSH port, default 22
	Username string `yaml:"username"`
	Password Secret `yaml:"password"`
}

// Connection returns the named connection or a ConfigurationError if the
// alias is not declared on the device.
func (d *Device) Connection(alias string) (*Connection, error) {
	conn, ok := d.Connections[alias]
	if !ok || conn == nil {
		return nil, util.NewConfigurationError(d.Name, "connections."+alias, "connection not declared")
	}
	return conn, nil
}

// Tokens returns the abstraction token list for the device, most
// specific first: [platform, os] when a platform is declared, else [os].
func (d *Device) Tokens() []string {
	if d.Platform != "" {
		return []string{d.Platform, d.OS}
	}
	return []string{d.OS}
}

// Endpoint returns the host (or ip) to dial. A connection with neither
// is malformed.
func (c *Connection) Endpoint(device string) (string, error) {
	if c.Host != "" {
		return c.Host, nil
	}
	if c.IP != "" {
		return c.IP, nil
	}
	return "", util.NewConfigurationError(device, "host", "connection declares neither host nor ip")
}

// BaseURL builds the scheme://host[:port] prefix for the connection.
func (c *Connection) BaseURL(device string) (string, error) {
	host, err := c.Endpoint(device)
	if err != nil {
		return "", err
	}
	scheme := strings.ToLower(c.Protocol)
	if scheme == "" {
		scheme = "https"
	}
	if c.Port != 0 {
		return fmt.Sprintf("%s://%s:%d", scheme, host, c.Port), nil
	}
	return fmt.Sprintf("%s://%s", scheme, host), nil
}
