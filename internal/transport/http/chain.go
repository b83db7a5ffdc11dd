package http

import "net/http"

// Middleware wraps a RoundTripper with extra behavior.
type Middleware func(next http.RoundTripper) http.RoundTripper

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

// RoundTrip implements http.RoundTripper.
func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Chain applies middlewares to base and returns the wrapped RoundTripper.
// Chain(base, a, b, c) returns a(b(c(base))), so a sees the request first.
// Nil middlewares are skipped.
func Chain(base http.RoundTripper, middlewares ...Middleware) http.RoundTripper {
	for i := len(middlewares) - 1; i >= 0; i-- {
		if middlewares[i] == nil {
			continue
		}

		base = middlewares[i](base)
	}

	return base
}
