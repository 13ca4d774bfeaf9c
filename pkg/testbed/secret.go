package testbed

import (
	"encoding/base64"
	"strings"
)

// Secret is a credential string that may be stored obfuscated in the
// testbed file as %ENC{<base64>}. Plaintext() de-obfuscates on demand;
// String() redacts so secrets never leak through logging.
type Secret string

const encPrefix = "%ENC{"

// Plaintext returns the clear-text value, decoding the %ENC{} wrapper
// when present. A wrapper that fails to decode is returned as-is.
func (s Secret) Plaintext() string {
	v := string(s)
	if !strings.HasPrefix(v, encPrefix) || !strings.HasSuffix(v, "}") {
		return v
	}
	enc := v[len(encPrefix) : len(v)-1]
	decoded, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return v
	}
	return string(decoded)
}

// String implements fmt.Stringer with redaction.
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "****"
}

// IsSet reports whether the secret has a value.
func (s Secret) IsSet() bool {
	return s != ""
}

// Obfuscate wraps a clear-text value in the %ENC{} scheme.
func Obfuscate(plain string) Secret {
	return Secret(encPrefix + base64.StdEncoding.EncodeToString([]byte(plain)) + "}")
}
