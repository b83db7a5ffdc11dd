package http

import (
	"net/http"

	"github.com/oshokin/aigc-client/internal/utils"
)

// DefaultHeadersInjector is a custom http.RoundTripper that fills in User-Agent and
// Content-Type when the caller left them out. Caller-supplied values are never replaced,
// not even empty ones, so applying it twice is the same as applying it once.
type DefaultHeadersInjector struct {
	// next is the underlying HTTP round tripper.
	next http.RoundTripper
	// userAgentProvider provides the User-Agent string to inject.
	userAgentProvider utils.UserAgentProvider
	// contentType is the Content-Type to inject; empty disables it.
	contentType string
}

const (
	// userAgentHeader is the HTTP header name for User-Agent.
	userAgentHeader = "User-Agent"
	// contentTypeHeader is the HTTP header name for Content-Type.
	contentTypeHeader = "Content-Type"
)

// NewDefaultHeadersInjector creates and returns a new instance of DefaultHeadersInjector.
func NewDefaultHeadersInjector(
	next http.RoundTripper,
	userAgentProvider utils.UserAgentProvider,
	contentType string,
) http.RoundTripper {
	return &DefaultHeadersInjector{
		next:              next,
		userAgentProvider: userAgentProvider,
		contentType:       contentType,
	}
}

// WithDefaultHeaders returns the injector as a chain middleware.
func WithDefaultHeaders(userAgentProvider utils.UserAgentProvider, contentType string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return NewDefaultHeadersInjector(next, userAgentProvider, contentType)
	}
}

// RoundTrip executes a single HTTP transaction and injects the missing headers.
// It implements the http.RoundTripper interface.
func (t *DefaultHeadersInjector) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	_, hasUserAgent := req.Header[userAgentHeader]
	_, hasContentType := req.Header[contentTypeHeader]

	missingUserAgent := !hasUserAgent
	missingContentType := t.contentType != "" && !hasContentType

	if !missingUserAgent && !missingContentType {
		return t.next.RoundTrip(req)
	}

	// A RoundTripper must not modify the caller's request.
	req = req.Clone(req.Context())

	if missingUserAgent {
		req.Header.Set(userAgentHeader, t.userAgentProvider.GetUserAgent())
	}

	if missingContentType {
		req.Header.Set(contentTypeHeader, t.contentType)
	}

	return t.next.RoundTrip(req)
}
