// Package connector provides a uniform REST connection handle for
// network devices. A Connection delegates to a vendor implementation
// selected by registry lookup on the device's platform/os tokens;
// implementations share one session lifecycle and one resilient request
// path, and differ only in their auth dialect and request formatting.
//
// Vendor packages under libs/ register themselves at import time:
//
//	import _ "github.com/conduit-network/conduit/pkg/connector/libs"
//
//	device, _ := tb.Device("apic1")
//	conn, err := connector.New(device, "rest", "rest")
//	if err := conn.Connect(); err != nil { ... }
//	res, err := conn.Get("/api/class/fvTenant.json")
package connector

import (
	"github.com/conduit-network/conduit/pkg/testbed"
	"github.com/conduit-network/conduit/pkg/util"
)

// Implementation is the closed capability set every vendor dialect
// satisfies. Payload arguments may be a raw string, []byte, or a
// structured value with an explicit encoding option.
type Implementation interface {
	Connect(opts ...ConnectOption) error
	Disconnect() error
	Connected() bool
	Get(path string, opts ...RequestOption) (*Result, error)
	Post(path string, payload interface{}, opts ...RequestOption) (*Result, error)
	Put(path string, payload interface{}, opts ...RequestOption) (*Result, error)
	Patch(path string, payload interface{}, opts ...RequestOption) (*Result, error)
	Delete(path string, opts ...RequestOption) (*Result, error)
}

// Connection is the handle callers hold. It resolves the vendor
// implementation once at construction and forwards the fixed method set
// to it, so a single call site works unmodified against any vendor.
type Connection struct {
	device *testbed.Device
	alias  string
	via    string
	impl   Implementation
}

// New constructs a handle for one device connection. via names the
// connection parameters (and credential scope) in the testbed; alias
// labels this handle in logs and errors. Returns
// UnsupportedPlatformError when no implementation, not even the generic
// default, is registered for the device's tokens. No network I/O is
// performed until Connect.
func New(device *testbed.Device, alias, via string) (*Connection, error) {
	if alias == "" {
		alias = via
	}
	tokens := device.Tokens()
	factory, ok := lookupFactory(tokens)
	if !ok {
		return nil, &util.UnsupportedPlatformError{Device: device.Name, Tokens: tokens}
	}
	impl, err := factory(device, alias, via)
	if err != nil {
		return nil, err
	}
	return &Connection{device: device, alias: alias, via: via, impl: impl}, nil
}

// Device returns the device descriptor.
func (c *Connection) Device() *testbed.Device { return c.device }

// Alias returns the handle label.
func (c *Connection) Alias() string { return c.alias }

// Via returns the connection parameter name.
func (c *Connection) Via() string { return c.via }

// Implementation returns the resolved vendor implementation, for
// callers needing vendor-specific extensions.
func (c *Connection) Implementation() Implementation { return c.impl }

// Connect establishes the session. Idempotent while connected.
func (c *Connection) Connect(opts ...ConnectOption) error {
	return c.impl.Connect(opts...)
}

// Disconnect tears the session down. Idempotent while disconnected.
func (c *Connection) Disconnect() error {
	return c.impl.Disconnect()
}

// Connected reports whether the session is established.
func (c *Connection) Connected() bool {
	return c.impl.Connected()
}

// Get retrieves a resource.
func (c *Connection) Get(path string, opts ...RequestOption) (*Result, error) {
	return c.impl.Get(path, opts...)
}

// Post creates or acts on a resource.
func (c *Connection) Post(path string, payload interface{}, opts ...RequestOption) (*Result, error) {
	return c.impl.Post(path, payload, opts...)
}

// Put replaces a resource.
func (c *Connection) Put(path string, payload interface{}, opts ...RequestOption) (*Result, error) {
	return c.impl.Put(path, payload, opts...)
}

// Patch updates a resource.
func (c *Connection) Patch(path string, payload interface{}, opts ...RequestOption) (*Result, error) {
	return c.impl.Patch(path, payload, opts...)
}

// Delete removes a resource.
func (c *Connection) Delete(path string, opts ...RequestOption) (*Result, error) {
	return c.impl.Delete(path, opts...)
}
