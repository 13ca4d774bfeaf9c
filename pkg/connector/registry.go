package connector

import (
	"sort"
	"strings"
	"sync"

	"github.com/conduit-network/conduit/pkg/testbed"
)

// Factory builds a vendor implementation for one device connection.
type Factory func(device *testbed.Device, alias, via string) (Implementation, error)

// GenericToken is the fallback registry entry used when no
// vendor-specific token matches.
const GenericToken = "generic"

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes an implementation available under an OS/platform token.
// Vendor packages call it from init(), like database/sql drivers.
// Registration is idempotent: re-registering a token replaces the entry,
// so import order does not affect the final mapping as long as tokens
// are unique.
func Register(token string, factory Factory) {
	if token == "" {
		panic("connector: Register with empty token")
	}
	if factory == nil {
		panic("connector: Register with nil factory")
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(token)] = factory
}

// lookupFactory matches the most specific token first, then falls back
// to the generic default.
func lookupFactory(tokens []string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	for _, token := range tokens {
		if f, ok := registry[strings.ToLower(token)]; ok {
			return f, true
		}
	}
	f, ok := registry[GenericToken]
	return f, ok
}

// RegisteredTokens returns the sorted set of tokens with a registered
// implementation. Intended for diagnostics.
func RegisteredTokens() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	tokens := make([]string, 0, len(registry))
	for token := range registry {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}
