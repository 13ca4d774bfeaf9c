package ise

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

func TestLogin_VersionProbe(t *testing.T) {
	var probeUser, probePass, probeAccept string
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/API/mnt/Version", func(w http.ResponseWriter, r *http.Request) {
		probeUser, probePass, _ = r.BasicAuth()
		probeAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"OperationResult": {"resultValue": [
			{"value": "3.3.0.430", "name": "version"},
			{"value": "0", "name": "patch information"}]}}`))
	})
	mux.HandleFunc("/ers/config/networkdevice", func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := r.BasicAuth(); !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"SearchResult": {"total": 0}}`))
	})
	_, device := testutil.Server(t, "ise", mux)
	device.Username = "iseuser"
	device.Password = "isepass"

	impl, err := New(device, "rest", "rest")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := impl.Connect(connectOpts()...); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer impl.Disconnect()

	if probeUser != "iseuser" || probePass != "isepass" {
		t.Errorf("basic auth = %q/%q, want iseuser/isepass", probeUser, probePass)
	}
	if probeAccept != "application/json" {
		t.Errorf("Accept = %q, want application/json", probeAccept)
	}

	// Basic auth persists on every subsequent request
	res, err := impl.Get("/ers/config/networkdevice", connector.WithTimeout(2*time.Second))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", res.StatusCode)
	}
}

func TestLogin_Rejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/API/mnt/Version",
		testutil.JSONHandler(http.StatusUnauthorized, `{}`))
	_, device := testutil.Server(t, "ise", mux)

	impl, err := New(device, "rest", "rest")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = impl.Connect(connectOpts()...)
	if !errors.Is(err, util.ErrAuthentication) {
		t.Errorf("Connect error = %v, want ErrAuthentication", err)
	}
}

func TestVersionSummary(t *testing.T) {
	body := []byte(`{"OperationResult": {"resultValue": [
		{"value": "3.3.0.430", "name": "version"},
		{"value": "0", "name": "patch information"}]}}`)
	want := "version: 3.3.0.430 patch information: 0"
	if got := versionSummary(body); got != want {
		t.Errorf("versionSummary = %q, want %q", got, want)
	}

	if got := versionSummary([]byte("not json")); got != "" {
		t.Errorf("versionSummary on opaque body = %q, want empty", got)
	}
}
