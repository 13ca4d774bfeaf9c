package connector

import "encoding/json"

// Result is a completed, status-validated response. The body is parsed
// as JSON when possible; callers distinguish a decoded payload from
// opaque text via JSON()'s second return value.
type Result struct {
	StatusCode int
	Body       []byte

	data   interface{}
	isJSON bool
}

func newResult(status int, body []byte) *Result {
	r := &Result{StatusCode: status, Body: body}
	if len(body) > 0 {
		var data interface{}
		if err := json.Unmarshal(body, &data); err == nil {
			r.data = data
			r.isJSON = true
		}
	}
	return r
}

// JSON returns the decoded payload and true when the body parsed as
// JSON, or nil and false for opaque text.
func (r *Result) JSON() (interface{}, bool) {
	return r.data, r.isJSON
}

// Text returns the raw body text.
func (r *Result) Text() string {
	return string(r.Body)
}

// Decode unmarshals the body into v.
func (r *Result) Decode(v interface{}) error {
	return json.Unmarshal(r.Body, v)
}
