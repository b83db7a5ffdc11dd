package model

import (
	"net/http"
	"net/url"
)

// Method is an HTTP request method. Any token is accepted.
type Method string

// Common methods.
const (
	MethodGet     Method = http.MethodGet
	MethodPost    Method = http.MethodPost
	MethodPut     Method = http.MethodPut
	MethodPatch   Method = http.MethodPatch
	MethodDelete  Method = http.MethodDelete
	MethodHead    Method = http.MethodHead
	MethodOptions Method = http.MethodOptions
)

// Request is the canonical outbound request. Treat it as immutable once built:
// the With* helpers return modified copies and never touch the receiver.
type Request struct {
	Method Method
	URL    string
	Header Header
	Body   []byte
}

// NewRequest builds a request without headers or body.
func NewRequest(method Method, rawURL string) Request {
	return Request{Method: method, URL: rawURL}
}

// Clone returns a deep copy of the request.
func (r Request) Clone() Request {
	clone := r
	clone.Header = r.Header.Clone()

	if r.Body != nil {
		clone.Body = append([]byte(nil), r.Body...)
	}

	return clone
}

// WithHeader returns a copy with an additional header line.
func (r Request) WithHeader(name, value string) Request {
	clone := r
	clone.Header = r.Header.Clone()
	clone.Header.Add(name, value)

	return clone
}

// WithBody returns a copy carrying the given body.
func (r Request) WithBody(body []byte) Request {
	clone := r
	clone.Header = r.Header.Clone()
	clone.Body = body

	return clone
}

// ParseURL validates the request URL: it must be present, parseable and absolute.
func (r Request) ParseURL() (*url.URL, error) {
	return ParseAbsoluteURL(r.URL)
}

// EffectiveMethod returns the method, defaulting to GET.
func (r Request) EffectiveMethod() string {
	if r.Method == "" {
		return http.MethodGet
	}

	return string(r.Method)
}
