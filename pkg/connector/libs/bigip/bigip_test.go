package bigip

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/conduit-network/conduit/internal/testutil"
	"github.com/conduit-network/conduit/pkg/connector"
)

const testToken = "5C0F2A6A9E8A"

func connectOpts() []connector.ConnectOption {
	return []connector.ConnectOption{
		connector.WithConnectTimeout(2 * time.Second),
		connector.WithConnectRetries(0),
	}
}

// One server covering the full token lifecycle: issue, TTL extension,
// authorized use, revoke.
func newTokenServer(t *testing.T) (*serverState, *http.ServeMux) {
	t.Helper()
	state := &serverState{}
	mux := http.NewServeMux()

	mux.HandleFunc("/mgmt/shared/authn/login", func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var login struct {
			Username string `json:"username"`
			Password string `json:"password"`
			Provider string `json:"loginProviderName"`
		}
		json.Unmarshal(raw, &login)
		state.loginUser = login.Username
		state.loginProvider = login.Provider
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token": {"token": "` + testToken + `"}}`))
	})

	mux.HandleFunc("/mgmt/shared/authz/tokens/"+testToken, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPatch:
			raw, _ := io.ReadAll(r.Body)
			var patch struct {
				Timeout int `json:"timeout"`
			}
			json.Unmarshal(raw, &patch)
			state.patchedTTL = patch.Timeout
			w.Write([]byte(`{}`))
		case http.MethodDelete:
			state.revoked = true
			w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/mgmt/tm/ltm/pool", func(w http.ResponseWriter, r *http.Request) {
		state.authHeader = r.Header.Get("X-F5-Auth-Token")
		if state.authHeader != testToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items": []}`))
	})

	return state, mux
}

type serverState struct {
	loginUser     string
	loginProvider string
	patchedTTL    int
	authHeader    string
	revoked       bool
}

func TestTokenLifecycle(t *testing.T) {
	state, mux := newTokenServer(t)
	_, device := testutil.Server(t, "bigip", mux)
	device.Username = "f5user"
	device.Password = "f5pass"

	impl, err := New(device, "rest", "rest")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := impl.Connect(connectOpts()...); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if state.loginUser != "f5user" {
		t.Errorf("login username = %q, want f5user", state.loginUser)
	}
	if state.loginProvider != "tmos" {
		t.Errorf("loginProviderName = %q, want tmos", state.loginProvider)
	}
	if state.patchedTTL != DefaultTokenTTL {
		t.Errorf("patched TTL = %d, want %d", state.patchedTTL, DefaultTokenTTL)
	}

	if _, err := impl.Get("/mgmt/tm/ltm/pool", connector.WithTimeout(2*time.Second)); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if state.authHeader != testToken {
		t.Errorf("X-F5-Auth-Token = %q, want %q", state.authHeader, testToken)
	}

	if err := impl.Disconnect(); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if !state.revoked {
		t.Error("token was not revoked on disconnect")
	}
}

func TestLogin_MissingToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/mgmt/shared/authn/login",
		testutil.JSONHandler(http.StatusOK, `{"username": "x"}`))
	_, device := testutil.Server(t, "bigip", mux)

	impl, err := New(device, "rest", "rest")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = impl.Connect(connectOpts()...)
	if err == nil {
		t.Fatal("Connect succeeded without a token in the login response")
	}
	if !strings.Contains(err.Error(), "no token") {
		t.Errorf("error = %v, want mention of missing token", err)
	}
}
