// Package util provides the shared logger and common error types.
package util

import (
	"errors"
	"fmt"
)

// Sentinel errors for failure classes shared across the connector
var (
	ErrNotConnected        = errors.New("device not connected")
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrUnsupportedPlatform = errors.New("no implementation registered for platform")
	ErrAuthentication      = errors.New("authentication failed")
	ErrConnectionFailed    = errors.New("connection failed")
	ErrUnexpectedStatus    = errors.New("unexpected response status")
)

// ConfigurationError represents a malformed or incomplete device or
// connection descriptor. Never retried.
type ConfigurationError struct {
	Device  string
	Field   string
	Details string
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("invalid configuration for %s: %s", e.Device, e.Field)
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return ErrInvalidConfig
}

// NewConfigurationError creates a configuration error
func NewConfigurationError(device, field, details string) *ConfigurationError {
	return &ConfigurationError{Device: device, Field: field, Details: details}
}

// UnsupportedPlatformError reports that no implementation, not even the
// generic default, is registered for any of the device's tokens.
type UnsupportedPlatformError struct {
	Device string
	Tokens []string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("no REST implementation registered for %s (tokens %v)", e.Device, e.Tokens)
}

func (e *UnsupportedPlatformError) Unwrap() error {
	return ErrUnsupportedPlatform
}

// AuthenticationError represents a failed auth handshake: bad credentials
// or a non-2xx login response after retries were exhausted.
type AuthenticationError struct {
	Device string
	Alias  string
	Status int
	Body   string
}

func (e *AuthenticationError) Error() string {
	msg := fmt.Sprintf("authentication to %s (alias %s) failed", e.Device, e.Alias)
	if e.Status != 0 {
		msg += fmt.Sprintf(": status %d", e.Status)
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *AuthenticationError) Unwrap() error {
	return ErrAuthentication
}

// ConnectionError represents a failure to reach the device after the
// configured retries.
type ConnectionError struct {
	Device string
	Alias  string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s (alias %s) failed: %v", e.Device, e.Alias, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return ErrConnectionFailed
}

// NotConnectedError reports a request verb invoked while disconnected.
// The caller is expected to Connect() first.
type NotConnectedError struct {
	Device string
	Alias  string
}

func (e *NotConnectedError) Error() string {
	return fmt.Sprintf("%s is not connected for alias %s", e.Device, e.Alias)
}

func (e *NotConnectedError) Unwrap() error {
	return ErrNotConnected
}

// RequestError represents a completed call whose status code fell outside
// the expected set. Carries enough context for the caller to decide on
// remediation; never auto-retried.
type RequestError struct {
	Method   string
	URL      string
	Status   int
	Expected []int
	Body     string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s returned status %d, expected %v, got:\n%s",
		e.Method, e.URL, e.Status, e.Expected, e.Body)
}

func (e *RequestError) Unwrap() error {
	return ErrUnexpectedStatus
}
