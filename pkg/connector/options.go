package connector

import (
	"net/http"
	"net/url"
	"time"
)

// Defaults shared by all implementations.
const (
	DefaultTimeout   = 30 * time.Second
	DefaultRetries   = 3
	DefaultRetryWait = 10 * time.Second
)

// Encoding selects how a structured request payload is serialized.
// Raw string and []byte payloads are passed through unchanged regardless
// of encoding; a structured payload with EncodingNone is a configuration
// error, not a silent default.
type Encoding int

const (
	EncodingNone Encoding = iota
	EncodingJSON
	EncodingXML
)

// ConnectOptions control the auth handshake. Retries counts additional
// attempts after the first: Retries=N means N+1 attempts with N waits.
type ConnectOptions struct {
	Timeout   time.Duration
	Retries   int
	RetryWait time.Duration
}

// ConnectOption mutates ConnectOptions.
type ConnectOption func(*ConnectOptions)

// WithConnectTimeout sets the per-attempt handshake timeout.
func WithConnectTimeout(d time.Duration) ConnectOption {
	return func(o *ConnectOptions) { o.Timeout = d }
}

// WithConnectRetries sets the number of handshake retries.
func WithConnectRetries(n int) ConnectOption {
	return func(o *ConnectOptions) { o.Retries = n }
}

// WithConnectRetryWait sets the delay between handshake attempts.
func WithConnectRetryWait(d time.Duration) ConnectOption {
	return func(o *ConnectOptions) { o.RetryWait = d }
}

func newConnectOptions(opts ...ConnectOption) ConnectOptions {
	o := ConnectOptions{
		Timeout:   DefaultTimeout,
		Retries:   DefaultRetries,
		RetryWait: DefaultRetryWait,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// RequestOptions control one request. Transport failures are retried
// Retries times with RetryWait between attempts; retried calls are not
// deduplicated server-side, so non-idempotent verbs under retry get
// at-least-once semantics.
type RequestOptions struct {
	Timeout   time.Duration
	Retries   int
	RetryWait time.Duration
	Expected  []int
	Encoding  Encoding
	Headers   http.Header
	Query     url.Values
}

// RequestOption mutates RequestOptions.
type RequestOption func(*RequestOptions)

// WithTimeout sets the per-attempt request timeout.
func WithTimeout(d time.Duration) RequestOption {
	return func(o *RequestOptions) { o.Timeout = d }
}

// WithRetries sets the number of transport-failure retries.
func WithRetries(n int) RequestOption {
	return func(o *RequestOptions) { o.Retries = n }
}

// WithRetryWait sets the delay between transport retries.
func WithRetryWait(d time.Duration) RequestOption {
	return func(o *RequestOptions) { o.RetryWait = d }
}

// WithExpected replaces the expected status code set (default: 200).
func WithExpected(codes ...int) RequestOption {
	return func(o *RequestOptions) { o.Expected = codes }
}

// WithJSON marks a structured payload for JSON serialization.
func WithJSON() RequestOption {
	return func(o *RequestOptions) { o.Encoding = EncodingJSON }
}

// WithXML marks the payload as XML. XML payloads must be pre-rendered
// strings; structured XML payloads are rejected.
func WithXML() RequestOption {
	return func(o *RequestOptions) { o.Encoding = EncodingXML }
}

// WithHeader adds a request header.
func WithHeader(key, value string) RequestOption {
	return func(o *RequestOptions) {
		if o.Headers == nil {
			o.Headers = http.Header{}
		}
		o.Headers.Set(key, value)
	}
}

// WithQuery adds a query string parameter.
func WithQuery(key, value string) RequestOption {
	return func(o *RequestOptions) {
		if o.Query == nil {
			o.Query = url.Values{}
		}
		o.Query.Set(key, value)
	}
}

func newRequestOptions(opts ...RequestOption) RequestOptions {
	o := RequestOptions{
		Timeout:   DefaultTimeout,
		Retries:   0,
		RetryWait: DefaultRetryWait,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if len(o.Expected) == 0 {
		o.Expected = []int{http.StatusOK}
	}
	return o
}
