package testbed

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/conduit-network/conduit/pkg/util"
)

// Load reads and validates a testbed file.
func Load(path string) (*Testbed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading testbed %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates testbed YAML.
func Parse(data []byte) (*Testbed, error) {
	tb := &Testbed{}
	if err := yaml.Unmarshal(data, tb); err != nil {
		return nil, fmt.Errorf("parsing testbed: %w", err)
	}

	// Device names come from the map keys
	for name, dev := range tb.Devices {
		if dev == nil {
			return nil, util.NewConfigurationError(name, "device", "empty device entry")
		}
		dev.Name = name
	}

	if err := tb.validate(); err != nil {
		return nil, err
	}
	return tb, nil
}

// Device returns the named device.
func (tb *Testbed) Device(name string) (*Device, error) {
	dev, ok := tb.Devices[name]
	if !ok {
		return nil, fmt.Errorf("device %s not found in testbed", name)
	}
	return dev, nil
}

func (tb *Testbed) validate() error {
	for name, dev := range tb.Devices {
		if dev.OS == "" {
			return util.NewConfigurationError(name, "os", "device os token is required")
		}
		for alias, conn := range dev.Connections {
			if conn == nil {
				return util.NewConfigurationError(name, "connections."+alias, "empty connection entry")
			}
			if conn.Host == "" && conn.IP == "" {
				return util.NewConfigurationError(name, "connections."+alias, "connection declares neither host nor ip")
			}
			if conn.Port < 0 || conn.Port > 65535 {
				return util.NewConfigurationError(name, "connections."+alias,
					fmt.Sprintf("port %d out of range", conn.Port))
			}
			switch strings.ToLower(conn.Protocol) {
			case "", "http", "https":
			default:
				return util.NewConfigurationError(name, "connections."+alias,
					fmt.Sprintf("unsupported protocol %q", conn.Protocol))
			}
			if tun := conn.SSHTunnel; tun != nil && tun.Host == "" {
				return util.NewConfigurationError(name, "connections."+alias, "ssh_tunnel requires a host")
			}
		}
	}
	return nil
}
