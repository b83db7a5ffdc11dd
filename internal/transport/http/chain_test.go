package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestChain tests that middlewares run in declaration order and nil entries are skipped.
func TestChain(t *testing.T) {
	t.Parallel()

	var order []string

	mark := func(name string) Middleware {
		return func(next http.RoundTripper) http.RoundTripper {
			return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
				order = append(order, name)

				return next.RoundTrip(req)
			})
		}
	}

	base := RoundTripperFunc(func(*http.Request) (*http.Response, error) {
		order = append(order, "base")

		return &http.Response{StatusCode: http.StatusNoContent, Body: http.NoBody}, nil
	})

	rt := Chain(base, mark("a"), nil, mark("b"))

	req, err := http.NewRequest(http.MethodGet, "http://example.com", nil) //nolint:noctx // Test code.
	require.NoError(t, err)

	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)

	defer resp.Body.Close() //nolint:errcheck // Test cleanup, error is not critical.

	assert.Equal(t, []string{"a", "b", "base"}, order)
}

// TestChain_NoMiddlewares tests that Chain without middlewares returns the base transport.
func TestChain_NoMiddlewares(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.DefaultTransport, Chain(http.DefaultTransport))
}
