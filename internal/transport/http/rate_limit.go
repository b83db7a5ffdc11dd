package http

import (
	"fmt"
	"net/http"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// DefaultRateLimitHosts is the number of per-host limiters kept when no size is given.
const DefaultRateLimitHosts = 256

// HostLimiters hands out one token bucket per request host.
// The least recently used buckets are evicted once size hosts are tracked,
// so a long-running client talking to many hosts stays bounded.
type HostLimiters struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters *lru.Cache[string, *rate.Limiter]
}

// NewHostLimiters creates per-host limiters allowing requestsPerSecond with the given burst.
func NewHostLimiters(requestsPerSecond float64, burst, size int) (*HostLimiters, error) {
	if burst <= 0 {
		burst = 1
	}

	if size <= 0 {
		size = DefaultRateLimitHosts
	}

	limiters, err := lru.New[string, *rate.Limiter](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create limiters cache: %w", err)
	}

	return &HostLimiters{
		limit:    rate.Limit(requestsPerSecond),
		burst:    burst,
		limiters: limiters,
	}, nil
}

// Get returns the limiter of host, creating it on first use.
func (h *HostLimiters) Get(host string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()

	if limiter, ok := h.limiters.Get(host); ok {
		return limiter
	}

	limiter := rate.NewLimiter(h.limit, h.burst)
	h.limiters.Add(host, limiter)

	return limiter
}

// Len returns the number of tracked hosts.
func (h *HostLimiters) Len() int {
	return h.limiters.Len()
}

// RateLimitTransport is a custom http.RoundTripper that waits for a token of the request host.
// Waiting honours the request context, so a canceled call never reaches the network.
type RateLimitTransport struct {
	// next is the underlying HTTP round tripper.
	next http.RoundTripper
	// limiters holds the token bucket of each host.
	limiters *HostLimiters
}

// NewRateLimitTransport creates and returns a new instance of RateLimitTransport.
func NewRateLimitTransport(next http.RoundTripper, limiters *HostLimiters) http.RoundTripper {
	return &RateLimitTransport{
		next:     next,
		limiters: limiters,
	}
}

// WithRateLimit returns a chain middleware backed by limiters.
// Nil limiters disable limiting and the middleware is nil, which Chain skips.
func WithRateLimit(limiters *HostLimiters) Middleware {
	if limiters == nil {
		return nil
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return NewRateLimitTransport(next, limiters)
	}
}

// RoundTrip waits for the limiter of the request host and forwards the request.
// It implements the http.RoundTripper interface.
func (t *RateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	host := req.Host
	if host == "" && req.URL != nil {
		host = req.URL.Host
	}

	if err := t.limiters.Get(host).Wait(req.Context()); err != nil {
		return nil, err
	}

	return t.next.RoundTrip(req)
}
