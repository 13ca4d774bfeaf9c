package nd

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/conduit-network/conduit/internal/testutil"
	"github.com/conduit-network/conduit/pkg/connector"
	"github.com/conduit-network/conduit/pkg/testbed"
	"github.com/conduit-network/conduit/pkg/util"
)

func connectOpts() []connector.ConnectOption {
	return []connector.ConnectOption{
		connector.WithConnectTimeout(2 * time.Second),
		connector.WithConnectRetries(0),
	}
}

func TestLogin_CookieAndJWT(t *testing.T) {
	const jwt = "eyJhbGciOi.fake.token"
	var loginBody map[string]string

	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &loginBody)
		http.SetCookie(w, &http.Cookie{Name: "AuthCookie", Value: "nd-sess-1"})
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jwttoken": "` + jwt + `"}`))
	})
	mux.HandleFunc("/api/v1/sites", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("AuthCookie")
		if err != nil || cookie.Value != "nd-sess-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items": []}`))
	})
	_, device := testutil.Server(t, "nd", mux)
	device.Credentials = map[string]*testbed.Credential{
		"rest": {Username: "nduser", Password: "ndpass", Domain: "RadiusAuth"},
	}

	impl, err := New(device, "rest", "rest")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := impl.Connect(connectOpts()...); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer impl.Disconnect()

	if loginBody["userName"] != "nduser" || loginBody["userPasswd"] != "ndpass" {
		t.Errorf("login payload = %v, want resolved credentials", loginBody)
	}
	if loginBody["domain"] != "RadiusAuth" {
		t.Errorf("domain = %q, want the declared auth domain", loginBody["domain"])
	}

	client := impl.(*Client)
	if client.Token() != jwt {
		t.Errorf("Token = %q, want the issued JWT", client.Token())
	}

	res, err := impl.Get("/api/v1/sites", connector.WithTimeout(2*time.Second))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200 (cookie must carry the session)", res.StatusCode)
	}
}

func TestLogin_DefaultDomain(t *testing.T) {
	var loginBody map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &loginBody)
		w.Write([]byte(`{}`))
	})
	_, device := testutil.Server(t, "nd", mux)

	impl, err := New(device, "rest", "rest")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := impl.Connect(connectOpts()...); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer impl.Disconnect()

	if loginBody["domain"] != DefaultDomain {
		t.Errorf("domain = %q, want %q when none is declared", loginBody["domain"], DefaultDomain)
	}
}

func TestLogin_Rejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", testutil.JSONHandler(http.StatusUnauthorized, `{}`))
	_, device := testutil.Server(t, "nd", mux)

	impl, err := New(device, "rest", "rest")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = impl.Connect(connectOpts()...)
	if !errors.Is(err, util.ErrAuthentication) {
		t.Errorf("Connect error = %v, want ErrAuthentication", err)
	}
}
