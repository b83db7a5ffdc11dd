package http

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/oshokin/aigc-client/internal/logger"
	"github.com/oshokin/aigc-client/internal/utils"
)

// LogTransport is a custom http.RoundTripper that logs HTTP requests and responses.
// It wraps another http.RoundTripper and logs debug information for each request/response cycle.
// Bodies are only captured when that cannot disturb the call: request bodies must be
// replayable through GetBody and response bodies must have a known length and a textual type.
type LogTransport struct {
	// next is the underlying HTTP round tripper.
	next http.RoundTripper
	// maxLogLength is the maximum number of characters of each logged payload.
	maxLogLength int
}

// Static error definitions for better error handling.
var (
	// ErrNilRequest indicates that the HTTP request is nil.
	ErrNilRequest = errors.New("request is nil")
)

// maxDumpedBodySize limits how much of a response body is buffered for logging.
const maxDumpedBodySize = 64 << 10

// NewLogTransport creates and returns a new instance of LogTransport.
// If maxLogLength is less than or equal to 0, it defaults to DefaultMaxLogLength.
func NewLogTransport(next http.RoundTripper, maxLogLength int) http.RoundTripper {
	if maxLogLength <= 0 {
		maxLogLength = DefaultMaxLogLength
	}

	return &LogTransport{
		next:         next,
		maxLogLength: maxLogLength,
	}
}

// WithLogging returns the log transport as a chain middleware.
func WithLogging(maxLogLength int) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return NewLogTransport(next, maxLogLength)
	}
}

// RoundTrip executes a single HTTP transaction and logs the request and response.
// It implements the http.RoundTripper interface.
func (t *LogTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	// Skip logging if the logger is not at debug level.
	if !logger.IsDebugLevel() {
		return t.next.RoundTrip(req)
	}

	ctx := req.Context()

	requestBody := t.requestBody(req)

	// Record the start time to measure the duration of the request.
	startTime := time.Now()

	// Forward the request to the underlying RoundTripper.
	resp, err := t.next.RoundTrip(req)

	// Calculate the duration of the request.
	duration := time.Since(startTime)

	if err != nil {
		logger.DebugKV(ctx, "HTTP round trip failed",
			"method", req.Method,
			"url", req.URL.String(),
			"duration", duration,
			"request", requestBody,
			"error", utils.Truncate(utils.SingleLine(err.Error()), t.maxLogLength))

		return nil, err
	}

	logger.DebugKV(ctx, "HTTP round trip",
		"method", req.Method,
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"duration", duration,
		"request", requestBody,
		"response", t.responseBody(resp))

	return resp, nil
}

func (t *LogTransport) requestBody(req *http.Request) string {
	if req.Body == nil || req.Body == http.NoBody {
		return ""
	}

	// Streaming bodies (pipes, progress readers) can be read only once.
	if req.GetBody == nil || !utils.IsTextContentType(req.Header.Get(contentTypeHeader)) {
		return "<body omitted>"
	}

	body, err := req.GetBody()
	if err != nil {
		return err.Error()
	}

	defer body.Close() //nolint:errcheck // Copy of an in-memory body.

	data, err := io.ReadAll(io.LimitReader(body, maxDumpedBodySize))
	if err != nil {
		return err.Error()
	}

	return utils.LogPayload(data, t.maxLogLength)
}

func (t *LogTransport) responseBody(resp *http.Response) string {
	// Check the Content-Type header to determine if the response body should be dumped.
	contentType := resp.Header.Get(contentTypeHeader)

	// Event streams and bodies of unknown length must reach the caller untouched.
	if resp.ContentLength < 0 || resp.ContentLength > maxDumpedBodySize ||
		utils.IsEventStreamContentType(contentType) || !utils.IsTextContentType(contentType) {
		return "<body omitted>"
	}

	data, err := io.ReadAll(resp.Body)

	closeErr := resp.Body.Close()
	if closeErr != nil && err == nil {
		err = closeErr
	}

	if err != nil {
		// The caller must still observe the failure after the buffered part.
		resp.Body = io.NopCloser(io.MultiReader(bytes.NewReader(data), errorReader{err: err}))

		return err.Error()
	}

	// The caller still gets the full body.
	resp.Body = io.NopCloser(bytes.NewReader(data))

	return utils.LogPayload(data, t.maxLogLength)
}

type errorReader struct {
	err error
}

func (r errorReader) Read([]byte) (int, error) {
	return 0, r.err
}
