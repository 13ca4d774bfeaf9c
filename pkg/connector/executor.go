package connector

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/conduit-network/conduit/pkg/util"
)

// The resilient request path. Two distinct, composable policies apply to
// every verb: transport-failure retry (roundTrip) and a single
// reconnect-and-replay on detected session expiry (do). Status-code
// mismatches are semantic failures and are never retried.

// Get retrieves a resource.
func (s *Session) Get(path string, opts ...RequestOption) (*Result, error) {
	return s.do(http.MethodGet, path, nil, opts...)
}

// Post sends a payload to create or act on a resource.
func (s *Session) Post(path string, payload interface{}, opts ...RequestOption) (*Result, error) {
	return s.do(http.MethodPost, path, payload, opts...)
}

// Put sends a payload to replace a resource.
func (s *Session) Put(path string, payload interface{}, opts ...RequestOption) (*Result, error) {
	return s.do(http.MethodPut, path, payload, opts...)
}

// Patch sends a payload to update a resource.
func (s *Session) Patch(path string, payload interface{}, opts ...RequestOption) (*Result, error) {
	return s.do(http.MethodPatch, path, payload, opts...)
}

// Delete removes a resource.
func (s *Session) Delete(path string, opts ...RequestOption) (*Result, error) {
	return s.do(http.MethodDelete, path, nil, opts...)
}

// do executes one verb: precondition check, URL join, payload encoding,
// transport with retry, at most one transparent reconnect-and-replay on
// session expiry, status validation, and body parsing.
//
// The executor never auto-connects from Disconnected — only re-connects
// a live-but-expired session. Worst-case latency is
// timeout*(retries+1) + retryWait*retries per transport pass.
func (s *Session) do(method, path string, payload interface{}, opts ...RequestOption) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Connected {
		return nil, &util.NotConnectedError{Device: s.device.Name, Alias: s.alias}
	}

	o := newRequestOptions(opts...)

	body, contentType, err := s.encodePayload(payload, o.Encoding)
	if err != nil {
		return nil, err
	}

	// Rebuilt after a reconnect: the base URL can change when the
	// transport is re-established (a tunnel reopens on a fresh local
	// port).
	buildURL := func() string {
		fullURL := joinURL(s.baseURL, path)
		if len(o.Query) > 0 {
			sep := "?"
			if strings.Contains(fullURL, "?") {
				sep = "&"
			}
			fullURL += sep + o.Query.Encode()
		}
		return fullURL
	}
	fullURL := buildURL()

	log := util.WithConnection(s.device.Name, s.alias).
		WithField("request", shortID())
	log.Infof("%s %s", method, fullURL)

	status, respBody, err := s.roundTrip(method, fullURL, body, contentType, o)
	if err != nil {
		return nil, &util.ConnectionError{Device: s.device.Name, Alias: s.alias, Err: err}
	}

	// One transparent reconnect-and-replay on expiry; a second failure
	// falls through to status validation and surfaces to the caller.
	// A status the caller listed as expected is never treated as expiry.
	if !statusIn(status, o.Expected) && s.expired(status, respBody) {
		log.WithField("recoverable", true).
			Infof("Session expired (status %d); reconnecting and replaying", status)
		s.disconnectLocked()
		reconnect := s.lastConnect
		reconnect.Retries = 0
		if err := s.connectLocked(reconnect); err != nil {
			return nil, err
		}
		fullURL = buildURL()
		status, respBody, err = s.roundTrip(method, fullURL, body, contentType, o)
		if err != nil {
			return nil, &util.ConnectionError{Device: s.device.Name, Alias: s.alias, Err: err}
		}
	}

	if !statusIn(status, o.Expected) {
		return nil, &util.RequestError{
			Method:   method,
			URL:      fullURL,
			Status:   status,
			Expected: o.Expected,
			Body:     string(respBody),
		}
	}

	log.Debugf("%s %s returned %d (%d bytes)", method, fullURL, status, len(respBody))
	return newResult(status, respBody), nil
}

// roundTrip issues the call, retrying transport-level failures. This is
// pure resilience, not a correctness guarantee: retried calls are not
// deduplicated server-side.
func (s *Session) roundTrip(method, fullURL string, body []byte, contentType string, o RequestOptions) (int, []byte, error) {
	var lastErr error
	for attempt := 0; attempt <= o.Retries; attempt++ {
		if attempt > 0 {
			util.WithConnection(s.device.Name, s.alias).
				Warnf("Request to %s failed: %v; waiting %s before retrying",
					fullURL, lastErr, o.RetryWait)
			time.Sleep(o.RetryWait)
		}

		req, err := newHTTPRequest(method, fullURL, body)
		if err != nil {
			return 0, nil, err
		}
		s.applyAuth(req)
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		for key, values := range o.Headers {
			for _, value := range values {
				req.Header.Set(key, value)
			}
		}

		client := *s.httpClient
		client.Timeout = o.Timeout
		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		respBody, err := readBody(resp)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return resp.StatusCode, respBody, nil
	}
	return 0, nil, lastErr
}

func (s *Session) expired(status int, body []byte) bool {
	if s.dialect.Expired != nil {
		return s.dialect.Expired(status, body)
	}
	return status == http.StatusUnauthorized
}

// encodePayload serializes the request body. Raw strings and []byte
// pass through unchanged; structured values require an explicit JSON
// encoding, and XML payloads must arrive pre-rendered.
func (s *Session) encodePayload(payload interface{}, encoding Encoding) ([]byte, string, error) {
	switch p := payload.(type) {
	case nil:
		return nil, "", nil
	case string:
		return []byte(p), contentTypeFor(encoding), nil
	case []byte:
		return p, contentTypeFor(encoding), nil
	default:
		switch encoding {
		case EncodingJSON:
			data, err := json.Marshal(payload)
			if err != nil {
				return nil, "", util.NewConfigurationError(s.device.Name, "payload", err.Error())
			}
			return data, "application/json", nil
		case EncodingXML:
			return nil, "", util.NewConfigurationError(s.device.Name, "payload",
				"XML payloads must be pre-rendered strings")
		default:
			return nil, "", util.NewConfigurationError(s.device.Name, "payload",
				"structured payload requires an explicit encoding (WithJSON)")
		}
	}
}

func contentTypeFor(encoding Encoding) string {
	switch encoding {
	case EncodingJSON:
		return "application/json"
	case EncodingXML:
		return "application/xml"
	}
	return ""
}

func statusIn(status int, expected []int) bool {
	for _, code := range expected {
		if status == code {
			return true
		}
	}
	return false
}

// joinURL joins the base URL and a relative path with exactly one slash.
func joinURL(base, path string) string {
	if path == "" {
		return base
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}

func newHTTPRequest(method, fullURL string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}
	return http.NewRequest(method, fullURL, reader)
}

func readBody(resp *http.Response) ([]byte, error) {
	return io.ReadAll(resp.Body)
}

// shortID returns a compact request ID for log correlation.
func shortID() string {
	return uuid.New().String()[:8]
}
