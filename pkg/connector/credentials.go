package connector

import "github.com/conduit-network/conduit/pkg/testbed"

// DefaultUsername and DefaultPassword are the last-resort credentials
// when the testbed declares none at any level.
const (
	DefaultUsername = "admin"
	DefaultPassword = "admin"
)

// ResolveCredentials produces the username/password pair for a device
// connection. Precedence, highest first: alias-scoped credential set
// (connection-level, then device-level), connection-level plain fields,
// device-wide fallback fields, the literal default. Username and
// password fall through the chain independently, matching how partially
// populated credential sets behave in testbeds. The result is computed
// fresh on every call and never cached.
func ResolveCredentials(device *testbed.Device, alias string) (string, string) {
	var username, password string

	if cred := credentialSet(device, alias); cred != nil {
		username = cred.Username
		password = cred.Password.Plaintext()
	}

	conn := device.Connections[alias]

	if username == "" {
		switch {
		case conn != nil && conn.Username != "":
			username = conn.Username
		case device.Username != "":
			username = device.Username
		default:
			username = DefaultUsername
		}
	}

	if password == "" {
		switch {
		case conn != nil && conn.Password.IsSet():
			password = conn.Password.Plaintext()
		case device.Password.IsSet():
			password = device.Password.Plaintext()
		default:
			password = DefaultPassword
		}
	}

	return username, password
}

// ResolveToken returns the bearer token declared for the connection, or
// "" when none is declared. Token lookup is independent of the
// username/password path; absence is not an error — the caller decides
// whether a missing token is fatal.
func ResolveToken(device *testbed.Device, alias string) string {
	if cred := credentialSet(device, alias); cred != nil && cred.Token.IsSet() {
		return cred.Token.Plaintext()
	}
	return ""
}

// ResolveDomain returns the auth domain declared for the connection, or
// "" when none is declared. Dialects whose login requires a domain
// supply their own default.
func ResolveDomain(device *testbed.Device, alias string) string {
	if cred := credentialSet(device, alias); cred != nil {
		return cred.Domain
	}
	return ""
}

// credentialSet returns the alias-scoped credential set, preferring the
// connection-level declaration over the device-level one.
func credentialSet(device *testbed.Device, alias string) *testbed.Credential {
	if conn := device.Connections[alias]; conn != nil {
		if cred, ok := conn.Credentials[alias]; ok && cred != nil {
			return cred
		}
	}
	if cred, ok := device.Credentials[alias]; ok && cred != nil {
		return cred
	}
	return nil
}
