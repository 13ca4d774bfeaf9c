package connector

import (
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/conduit-network/conduit/pkg/stats"
	"github.com/conduit-network/conduit/pkg/testbed"
	"github.com/conduit-network/conduit/pkg/util"
)

// State is the connection lifecycle state of one Session.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	}
	return "unknown"
}

// Dialect is the vendor-specific part of a session: the auth handshake,
// the best-effort revoke, and session-expiry detection. All callbacks
// run with the session lock held and must use the raw helpers (Raw,
// SetToken, SetHeader, SetBasicAuth), never the public verbs.
type Dialect struct {
	// Login performs the auth handshake. nil means no handshake at all.
	Login func(timeout time.Duration) error

	// Logout revokes the session server-side. Failures are logged and
	// never prevent local teardown.
	Logout func() error

	// Expired reports whether a completed response indicates session
	// expiry or invalidity. nil defaults to status 401.
	Expired func(status int, body []byte) bool

	// DefaultProtocol overrides the https default when the connection
	// declares no protocol (e.g. "http" for NSO).
	DefaultProtocol string

	// DefaultPort is used when the connection declares no port and the
	// scheme default does not apply.
	DefaultPort int
}

// Session owns the connection lifecycle and resilient request path
// shared by every vendor implementation: state machine, HTTP transport
// (cookie jar, TLS verify flag, proxy), base URL, auth material, and
// optional SSH-tunnel indirection. Exactly one live session exists per
// instance; all public methods are serialized by one mutex, so calls
// from different goroutines against the same instance observe a total
// order. Distinct instances are fully independent.
type Session struct {
	device  *testbed.Device
	alias   string
	via     string
	dialect Dialect

	mu          sync.Mutex
	state       State
	httpClient  *http.Client
	baseURL     string
	headers     http.Header
	token       string
	basicUser   string
	basicPass   string
	useBasic    bool
	tunnel      *Tunnel
	lastConnect ConnectOptions
}

// NewSession builds the shared session for one device connection.
// Descriptor problems surface at Connect, not here.
func NewSession(device *testbed.Device, alias, via string, dialect Dialect) *Session {
	return &Session{
		device:  device,
		alias:   alias,
		via:     via,
		dialect: dialect,
		headers: http.Header{},
	}
}

// Device returns the device descriptor.
func (s *Session) Device() *testbed.Device { return s.device }

// Alias returns the handle label used in logs and errors.
func (s *Session) Alias() string { return s.alias }

// Via returns the connection parameter name.
func (s *Session) Via() string { return s.via }

// Connected reports whether the session is established.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == Connected
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// BaseURL returns the scheme://host[:port] prefix of the live session.
// For dialect callbacks.
func (s *Session) BaseURL() string { return s.baseURL }

// Token returns the session token stored by the dialect, or "".
func (s *Session) Token() string { return s.token }

// SetToken stores the session token issued by the target. For dialect
// callbacks.
func (s *Session) SetToken(token string) { s.token = token }

// SetHeader sets a default header attached to every request on the live
// session. For dialect callbacks.
func (s *Session) SetHeader(key, value string) {
	if s.headers == nil {
		s.headers = http.Header{}
	}
	s.headers.Set(key, value)
}

// SetBasicAuth enables HTTP basic auth on every request on the live
// session. For dialect callbacks.
func (s *Session) SetBasicAuth(username, password string) {
	s.basicUser = username
	s.basicPass = password
	s.useBasic = true
}

// Credentials resolves the username/password pair for this connection.
// Revalidated on every call, never cached.
func (s *Session) Credentials() (string, string) {
	return ResolveCredentials(s.device, s.via)
}

// BearerToken resolves the declared bearer token for this connection,
// or "".
func (s *Session) BearerToken() string {
	return ResolveToken(s.device, s.via)
}

// BasicAuth renders an Authorization header value for handshakes that
// authenticate a single request with basic auth.
func BasicAuth(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}

// Connect establishes the session: resolves endpoint and credentials,
// sets up the transport (and SSH tunnel when declared), and runs the
// dialect handshake with retries. A no-op while already connected, so
// callers may invoke it defensively before every operation.
func (s *Session) Connect(opts ...ConnectOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connectLocked(newConnectOptions(opts...))
}

func (s *Session) connectLocked(o ConnectOptions) error {
	if s.state == Connected {
		return nil
	}
	s.state = Connecting

	log := util.WithConnection(s.device.Name, s.alias)

	if err := s.setupTransportLocked(); err != nil {
		s.closeTransportLocked()
		s.state = Disconnected
		return err
	}

	log.Infof("Connecting to %s", s.baseURL)

	var lastErr error
	for attempt := 0; attempt <= o.Retries; attempt++ {
		if attempt > 0 {
			log.Warnf("Connect attempt %d/%d failed: %v; retrying in %s",
				attempt, o.Retries+1, lastErr, o.RetryWait)
			time.Sleep(o.RetryWait)
		}
		lastErr = s.login(o.Timeout)
		if lastErr == nil {
			s.state = Connected
			s.lastConnect = o
			stats.Report("connect", s.device.Name)
			log.Info("Connected")
			return nil
		}
		if !retryableConnectError(lastErr) {
			break
		}
	}

	s.closeTransportLocked()
	s.state = Disconnected

	var authErr *util.AuthenticationError
	if errors.As(lastErr, &authErr) {
		return lastErr
	}
	return &util.ConnectionError{Device: s.device.Name, Alias: s.alias, Err: lastErr}
}

// setupTransportLocked resolves connection parameters into a base URL
// and an HTTP client, establishing the SSH tunnel indirection first when
// one is declared.
func (s *Session) setupTransportLocked() error {
	conn, err := s.device.Connection(s.via)
	if err != nil {
		return err
	}

	host, err := conn.Endpoint(s.device.Name)
	if err != nil {
		return err
	}

	scheme := strings.ToLower(conn.Protocol)
	if scheme == "" {
		scheme = s.dialect.DefaultProtocol
	}
	if scheme == "" {
		scheme = "https"
	}
	port := conn.Port
	if port == 0 {
		port = s.dialect.DefaultPort
	}

	if conn.SSHTunnel != nil {
		remotePort := port
		if remotePort == 0 {
			remotePort = schemePort(scheme)
		}
		tun, err := NewTunnel(conn.SSHTunnel, net.JoinHostPort(host, strconv.Itoa(remotePort)))
		if err != nil {
			return &util.ConnectionError{Device: s.device.Name, Alias: s.alias, Err: err}
		}
		s.tunnel = tun
		localHost, localPort, splitErr := net.SplitHostPort(tun.LocalAddr())
		if splitErr != nil {
			return &util.ConnectionError{Device: s.device.Name, Alias: s.alias, Err: splitErr}
		}
		host = localHost
		port, _ = strconv.Atoi(localPort)
	}

	if port != 0 {
		s.baseURL = fmt.Sprintf("%s://%s:%d", scheme, host, port)
	} else {
		s.baseURL = fmt.Sprintf("%s://%s", scheme, host)
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: !conn.Verify},
	}
	if proxy := conn.Proxies[scheme]; proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			return util.NewConfigurationError(s.device.Name, "proxies."+scheme, err.Error())
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	s.httpClient = &http.Client{Transport: transport, Jar: jar}
	s.headers = http.Header{}
	s.token = ""
	s.useBasic = false
	return nil
}

func (s *Session) login(timeout time.Duration) error {
	if s.dialect.Login == nil {
		return nil
	}
	return s.dialect.Login(timeout)
}

// Disconnect revokes the session best-effort and releases the
// transport. A safe no-op while already disconnected.
func (s *Session) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disconnectLocked()
}

func (s *Session) disconnectLocked() error {
	if s.state == Disconnected {
		return nil
	}

	log := util.WithConnection(s.device.Name, s.alias)
	log.Info("Disconnecting")

	if s.dialect.Logout != nil {
		if err := s.dialect.Logout(); err != nil {
			log.Warnf("Session revoke failed: %v", err)
		}
	}

	s.closeTransportLocked()
	s.state = Disconnected
	stats.Report("disconnect", s.device.Name)
	log.Info("Disconnected")
	return nil
}

func (s *Session) closeTransportLocked() {
	if s.httpClient != nil {
		if transport, ok := s.httpClient.Transport.(*http.Transport); ok {
			transport.CloseIdleConnections()
		}
		s.httpClient = nil
	}
	if s.tunnel != nil {
		s.tunnel.Close()
		s.tunnel = nil
	}
	s.token = ""
	s.useBasic = false
	s.headers = http.Header{}
}

// Raw issues a single request outside the resilient path: no state
// check, no retry, no expiry handling. For dialect callbacks (login,
// token refresh, revoke) that run with the session lock held. Default
// session headers and basic auth apply; extra headers override them.
func (s *Session) Raw(method, path string, body []byte, headers map[string]string, timeout time.Duration) (int, []byte, error) {
	if s.httpClient == nil {
		return 0, nil, util.ErrNotConnected
	}
	req, err := newHTTPRequest(method, joinURL(s.baseURL, path), body)
	if err != nil {
		return 0, nil, err
	}
	s.applyAuth(req)
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	client := *s.httpClient
	client.Timeout = timeout
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	respBody, err := readBody(resp)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, respBody, nil
}

// applyAuth attaches the session's default headers and basic auth.
func (s *Session) applyAuth(req *http.Request) {
	for key, values := range s.headers {
		for _, value := range values {
			req.Header.Set(key, value)
		}
	}
	if s.useBasic {
		req.SetBasicAuth(s.basicUser, s.basicPass)
	}
}

// retryableConnectError distinguishes transient handshake failures
// (transport errors, service-unavailable responses) from auth failures
// that will not improve with retrying.
func retryableConnectError(err error) bool {
	var authErr *util.AuthenticationError
	if errors.As(err, &authErr) {
		switch authErr.Status {
		case http.StatusTooManyRequests,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	var cfgErr *util.ConfigurationError
	return !errors.As(err, &cfgErr)
}

func schemePort(scheme string) int {
	if scheme == "http" {
		return 80
	}
	return 443
}
