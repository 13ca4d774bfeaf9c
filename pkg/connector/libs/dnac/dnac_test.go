package dnac

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

func TestLogin_BasicAuthToToken(t *testing.T) {
	const token = "dnac-token-1"
	var authHeader, tokenHeader string

	mux := http.NewServeMux()
	mux.HandleFunc("/dna/system/api/v1/auth/token", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		authHeader = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"Token": "` + token + `"}`))
	})
	mux.HandleFunc("/dna/intent/api/v1/network-device", func(w http.ResponseWriter, r *http.Request) {
		tokenHeader = r.Header.Get("X-Auth-Token")
		if tokenHeader != token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response": []}`))
	})
	_, device := testutil.Server(t, "dnac", mux)
	device.Username = "dnacuser"
	device.Password = "dnacpass"

	impl, err := New(device, "rest", "rest")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := impl.Connect(connectOpts()...); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer impl.Disconnect()

	if want := connector.BasicAuth("dnacuser", "dnacpass"); authHeader != want {
		t.Errorf("Authorization = %q, want %q", authHeader, want)
	}

	if _, err := impl.Get("/dna/intent/api/v1/network-device", connector.WithTimeout(2*time.Second)); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if tokenHeader != token {
		t.Errorf("X-Auth-Token = %q, want %q", tokenHeader, token)
	}
}

func TestLogin_Rejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/dna/system/api/v1/auth/token",
		testutil.JSONHandler(http.StatusUnauthorized, `{"error": "invalid credentials"}`))
	_, device := testutil.Server(t, "dnac", mux)

	impl, err := New(device, "rest", "rest")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = impl.Connect(connectOpts()...)
	if !errors.Is(err, util.ErrAuthentication) {
		t.Errorf("Connect error = %v, want ErrAuthentication", err)
	}
}
