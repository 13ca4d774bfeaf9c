// Package testutil provides helpers for connector tests: httptest-backed
// mock devices and descriptor builders.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/conduit-network/conduit/pkg/testbed"
)

// Device builds a minimal descriptor with one "rest" connection.
func Device(name, osToken, host string, port int) *testbed.Device {
	return &testbed.Device{
		Name: name,
		OS:   osToken,
		Connections: map[string]*testbed.Connection{
			"rest": {
				Host:     host,
				Port:     port,
				Protocol: "http",
			},
		},
	}
}

// Server starts an httptest server and returns it with a descriptor
// whose "rest" connection points at it. The server is closed when the
// test finishes.
func Server(t *testing.T, osToken string, handler http.Handler) (*httptest.Server, *testbed.Device) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parsing test server URL: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("parsing test server port: %v", err)
	}

	return srv, Device("mockdev", osToken, u.Hostname(), port)
}

// JSONHandler responds with a fixed status and JSON body.
func JSONHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}
