package nso

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

func TestLogin_RestconfProbe(t *testing.T) {
	var gotUser, gotPass, gotAccept string
	mux := http.NewServeMux()
	mux.HandleFunc("/restconf", func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		gotAccept = r.Header.Get("Accept")
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/restconf/data/devices", func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := r.BasicAuth(); !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/yang-data+json")
		w.Write([]byte(`{"tailf-ncs:devices": {}}`))
	})
	_, device := testutil.Server(t, "nso", mux)
	device.Username = "ncsadmin"
	device.Password = "ncspass"

	impl, err := New(device, "rest", "rest")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := impl.Connect(connectOpts()...); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer impl.Disconnect()

	if gotUser != "ncsadmin" || gotPass != "ncspass" {
		t.Errorf("basic auth = %q/%q, want ncsadmin/ncspass", gotUser, gotPass)
	}
	if gotAccept != "application/yang-data+json" {
		t.Errorf("Accept = %q, want yang-data media type", gotAccept)
	}

	// Basic auth persists on every subsequent request
	res, err := impl.Get("/restconf/data/devices", connector.WithTimeout(2*time.Second))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", res.StatusCode)
	}
}

func TestLogin_ProbeRejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/restconf", testutil.JSONHandler(http.StatusUnauthorized, `{}`))
	_, device := testutil.Server(t, "nso", mux)

	impl, err := New(device, "rest", "rest")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = impl.Connect(connectOpts()...)
	if !errors.Is(err, util.ErrAuthentication) {
		t.Errorf("Connect error = %v, want ErrAuthentication", err)
	}
}
