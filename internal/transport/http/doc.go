// Package http provides the http.RoundTripper middlewares shared by every transport backend:
// default header injection, debug request/response logging, Prometheus instrumentation
// and client-side rate limiting, plus a helper to chain them over a base transport.
package http
