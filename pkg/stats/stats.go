// Package stats is the optional, best-effort connection statistics
// sink. When CONDUIT_STATS_ADDR names a Redis endpoint, lifecycle
// events are counted there; otherwise every call is a no-op. Reporting
// is fire-and-forget and must never block or fail a connection, so all
// errors are swallowed.
package stats

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// EnvAddr is the environment variable naming the Redis endpoint.
// This is the one process-wide configuration knob in the module; it is
// kept for compatibility with the legacy reporting hook.
const EnvAddr = "CONDUIT_STATS_ADDR"

const reportTimeout = 2 * time.Second

var (
	setupOnce sync.Once
	client    *redis.Client
)

func setup() {
	addr := os.Getenv(EnvAddr)
	if addr == "" {
		return
	}
	client = redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  reportTimeout,
		ReadTimeout:  reportTimeout,
		WriteTimeout: reportTimeout,
	})
}

// Report counts one lifecycle event for a device. Non-blocking; a no-op
// when reporting is not configured.
func Report(event, device string) {
	setupOnce.Do(setup)
	if client == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
		defer cancel()
		_ = client.HIncrBy(ctx, Key(event), device, 1).Err()
	}()
}

// Key returns the Redis hash key for an event counter.
func Key(event string) string {
	return "conduit:events:" + event
}

// Enabled reports whether a sink is configured.
func Enabled() bool {
	setupOnce.Do(setup)
	return client != nil
}
