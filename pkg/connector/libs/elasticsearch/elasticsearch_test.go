package elasticsearch

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/conduit-network/conduit/internal/testutil"
	"github.com/conduit-network/conduit/pkg/connector"
	"github.com/conduit-network/conduit/pkg/util"
)

func connectOpts() []connector.ConnectOption {
	return []connector.ConnectOption{
		connector.WithConnectTimeout(2 * time.Second),
		connector.WithConnectRetries(0),
	}
}

func TestLogin_RootProbe(t *testing.T) {
	var gotContentType string
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"cluster_name": "es1", "version": {"number": "8.12.0"}}`))
	})
	mux.HandleFunc("/_cat/indices", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	})
	_, device := testutil.Server(t, "elasticsearch", mux)

	impl, err := New(device, "rest", "rest")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := impl.Connect(connectOpts()...); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer impl.Disconnect()

	if gotContentType != "application/json" {
		t.Errorf("probe Content-Type = %q, want application/json", gotContentType)
	}

	res, err := impl.Get("/_cat/indices", connector.WithTimeout(2*time.Second))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", res.StatusCode)
	}
}

func TestLogin_ProbeRejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", testutil.JSONHandler(http.StatusServiceUnavailable, `{}`))
	_, device := testutil.Server(t, "elasticsearch", mux)

	impl, err := New(device, "rest", "rest")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = impl.Connect(connectOpts()...)
	if err == nil {
		t.Fatal("Connect succeeded against an unavailable cluster")
	}
	if !errors.Is(err, util.ErrAuthentication) {
		t.Errorf("Connect error = %v, want ErrAuthentication", err)
	}
}
