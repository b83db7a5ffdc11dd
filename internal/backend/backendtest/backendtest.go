// Package backendtest is a conformance suite every transport backend must pass.
// It drives a backend against an httptest server and checks the shared contract:
// header handling, uploads, multipart ordering, streaming, error kinds and shutdown.
package backendtest

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/aigc-client/internal/backend"
	"github.com/oshokin/aigc-client/internal/constants"
	"github.com/oshokin/aigc-client/internal/model"
	"github.com/oshokin/aigc-client/internal/stream"
)

// UserAgent is configured on every backend under test.
const UserAgent = "backendtest/1.0"

// Factory builds the backend under test.
type Factory func(opts backend.Options) (backend.Backend, error)

// Echo is what the test server's /echo endpoint returns.
type Echo struct {
	Method string              `json:"method"`
	Header map[string][]string `json:"header"`
	Body   string              `json:"body"`
}

// Part is one multipart part as the test server's /multipart endpoint saw it.
type Part struct {
	Name        string `json:"name"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Content     string `json:"content"`
}

// Run executes the suite.
func Run(t *testing.T, factory Factory) {
	t.Helper()

	server := httptest.NewServer(NewHandler())
	t.Cleanup(server.Close)

	newBackend := func(t *testing.T, opts backend.Options) backend.Backend {
		t.Helper()

		if opts.UserAgent == "" {
			opts.UserAgent = UserAgent
		}

		b, err := factory(opts)
		require.NoError(t, err)

		t.Cleanup(func() {
			_ = b.Shutdown()
		})

		return b
	}

	t.Run("plain request", func(t *testing.T) {
		t.Parallel()

		testPlainRequest(t, newBackend(t, backend.Options{}), server.URL)
	})

	t.Run("non-2xx is returned as a response", func(t *testing.T) {
		t.Parallel()

		b := newBackend(t, backend.Options{})

		resp, err := b.PlainRequest(t.Context(), model.NewRequest(model.MethodGet, server.URL+"/status/429"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		assert.Equal(t, "status 429", resp.Text())
		assert.False(t, resp.IsSuccess())
	})

	t.Run("upload bytes", func(t *testing.T) {
		t.Parallel()

		testUploadBytes(t, newBackend(t, backend.Options{}), server.URL)
	})

	t.Run("upload multipart", func(t *testing.T) {
		t.Parallel()

		testUploadMultipart(t, newBackend(t, backend.Options{}), server.URL)
	})

	t.Run("stream events", func(t *testing.T) {
		t.Parallel()

		testStreamEvents(t, newBackend(t, backend.Options{}), server.URL)
	})

	t.Run("rejected stream", func(t *testing.T) {
		t.Parallel()

		b := newBackend(t, backend.Options{})

		src, err := b.StreamEvents(t.Context(), model.NewRequest(model.MethodPost, server.URL+"/status/503"), nil)
		require.NoError(t, err)

		defer src.Body.Close() //nolint:errcheck // Test cleanup.

		assert.Equal(t, http.StatusServiceUnavailable, src.StatusCode)

		body, err := io.ReadAll(src.Body)
		require.NoError(t, err)
		assert.Equal(t, "status 503", string(body))
	})

	t.Run("invalid URL", func(t *testing.T) {
		t.Parallel()

		b := newBackend(t, backend.Options{})

		for _, rawURL := range []string{"", "/relative", "http://[::1"} {
			_, err := b.PlainRequest(t.Context(), model.NewRequest(model.MethodGet, rawURL))
			require.ErrorIs(t, err, model.ErrInvalidRequest, rawURL)
			assert.False(t, model.IsRetryable(err))
		}
	})

	t.Run("connection refused", func(t *testing.T) {
		t.Parallel()

		closed := httptest.NewServer(http.NotFoundHandler())
		closed.Close()

		b := newBackend(t, backend.Options{})

		_, err := b.PlainRequest(t.Context(), model.NewRequest(model.MethodGet, closed.URL))
		require.ErrorIs(t, err, model.ErrTransport)
		assert.True(t, model.IsRetryable(err))
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()

		b := newBackend(t, backend.Options{Timeout: 50 * time.Millisecond})

		_, err := b.PlainRequest(t.Context(), model.NewRequest(model.MethodGet, server.URL+"/slow"))
		require.ErrorIs(t, err, model.ErrTransport)
		assert.Equal(t, "timeout", backend.FailureReason(err))
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()

		b := newBackend(t, backend.Options{})

		ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
		defer cancel()

		_, err := b.PlainRequest(ctx, model.NewRequest(model.MethodGet, server.URL+"/slow"))
		require.ErrorIs(t, err, model.ErrTransport)
	})

	t.Run("shutdown", func(t *testing.T) {
		t.Parallel()

		b := newBackend(t, backend.Options{})

		require.NoError(t, b.Shutdown())
		require.NoError(t, b.Shutdown())

		req := model.NewRequest(model.MethodGet, server.URL+"/echo")

		_, err := b.PlainRequest(t.Context(), req)
		require.ErrorIs(t, err, model.ErrTransport)
		require.ErrorIs(t, err, model.ErrShutdown)

		_, err = b.UploadBytes(t.Context(), req, []byte("x"), nil)
		require.ErrorIs(t, err, model.ErrShutdown)

		_, err = b.UploadMultipart(t.Context(), req, []model.MultipartField{model.StringField("k", "v")}, nil)
		require.ErrorIs(t, err, model.ErrShutdown)

		_, err = b.StreamEvents(t.Context(), req, nil)
		require.ErrorIs(t, err, model.ErrShutdown)
	})
}

func testPlainRequest(t *testing.T, b backend.Backend, baseURL string) {
	t.Helper()

	req := model.Request{
		Method: model.MethodPost,
		URL:    baseURL + "/echo",
		Header: model.NewHeader(
			"Cookie", "a=1",
			"X-Multi", "1",
			"cookie", "b=2",
			"X-Multi", "2",
			"X-Title", "Привет",
		),
		Body: []byte(`{"prompt":"hi"}`),
	}

	resp, err := b.PlainRequest(t.Context(), req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var echo Echo
	require.NoError(t, sonic.Unmarshal(resp.Body, &echo))

	assert.Equal(t, http.MethodPost, echo.Method)
	assert.JSONEq(t, `{"prompt":"hi"}`, echo.Body)
	assert.Equal(t, []string{"a=1; b=2"}, echo.Header["Cookie"])
	assert.Equal(t, []string{"1, 2"}, echo.Header["X-Multi"])
	assert.Equal(t, []string{"application/json"}, echo.Header["Content-Type"])
	assert.Equal(t, []string{UserAgent}, echo.Header["User-Agent"])

	// Non-ASCII bytes survive both directions.
	assert.Equal(t, "Привет", resp.Header.Get("X-Echo-Title"))

	// Only the caller's headers, the two defaults and transport framing reach the server.
	assertOnlyExpectedHeaders(t, echo.Header, "Cookie", "X-Multi", "X-Title")

	src, err := b.StreamEvents(t.Context(), req, req.Body)
	require.NoError(t, err)

	streamed, err := io.ReadAll(src.Body)
	require.NoError(t, err)
	require.NoError(t, src.Body.Close())

	var streamedEcho Echo
	require.NoError(t, sonic.Unmarshal(streamed, &streamedEcho))
	assertOnlyExpectedHeaders(t, streamedEcho.Header, "Cookie", "X-Multi", "X-Title")

	// Caller values are never replaced.
	custom := req.WithHeader("Content-Type", "text/plain").WithHeader("User-Agent", "caller/2")

	resp, err = b.PlainRequest(t.Context(), custom)
	require.NoError(t, err)
	require.NoError(t, sonic.Unmarshal(resp.Body, &echo))
	assert.Equal(t, []string{"text/plain"}, echo.Header["Content-Type"])
	assert.Equal(t, []string{"caller/2"}, echo.Header["User-Agent"])

	// A caller Accept is sent as is, and values set to empty stay empty.
	explicit := req.
		WithHeader("Accept", "text/event-stream").
		WithHeader("Content-Type", "").
		WithHeader("User-Agent", "")

	resp, err = b.PlainRequest(t.Context(), explicit)
	require.NoError(t, err)

	var explicitEcho Echo
	require.NoError(t, sonic.Unmarshal(resp.Body, &explicitEcho))
	assert.Equal(t, []string{"text/event-stream"}, explicitEcho.Header["Accept"])
	assert.Equal(t, []string{""}, explicitEcho.Header["Content-Type"])
	// net/http omits a User-Agent that was set to empty.
	assert.NotContains(t, explicitEcho.Header, "User-Agent")
}

// assertOnlyExpectedHeaders checks that the server saw no header beyond the caller's
// names, Content-Type and User-Agent, and what net/http adds for framing.
func assertOnlyExpectedHeaders(t *testing.T, got map[string][]string, callerNames ...string) {
	t.Helper()

	allowed := append([]string{
		"Content-Type",
		"User-Agent",
		"Accept-Encoding",
		"Content-Length",
	}, callerNames...)

	for name := range got {
		assert.Contains(t, allowed, name, "unexpected header %s", name)
	}

	assert.NotContains(t, got, "Accept")
}

func testUploadBytes(t *testing.T, b backend.Backend, baseURL string) {
	t.Helper()

	payload := strings.Repeat("0123456789", 10_000)

	var (
		mu    sync.Mutex
		calls [][2]int64
	)

	progress := func(total, completed int64) {
		mu.Lock()
		defer mu.Unlock()

		calls = append(calls, [2]int64{total, completed})
	}

	resp, err := b.UploadBytes(t.Context(), model.NewRequest(model.MethodPut, baseURL+"/echo"), []byte(payload), progress)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var echo Echo
	require.NoError(t, sonic.Unmarshal(resp.Body, &echo))
	assert.Equal(t, http.MethodPut, echo.Method)
	assert.Equal(t, payload, echo.Body)

	mu.Lock()
	defer mu.Unlock()

	require.NotEmpty(t, calls)

	var previous int64

	for _, call := range calls {
		assert.Equal(t, int64(len(payload)), call[0])
		assert.GreaterOrEqual(t, call[1], previous)

		previous = call[1]
	}

	assert.Equal(t, int64(len(payload)), previous)
}

func testUploadMultipart(t *testing.T, b backend.Backend, baseURL string) {
	t.Helper()

	path := t.TempDir() + "/upload.bin"
	require.NoError(t, os.WriteFile(path, []byte("file body"), constants.DefaultFilePermissions))

	var completed atomic.Int64

	resp, err := b.UploadMultipart(t.Context(),
		model.NewRequest(model.MethodPost, baseURL+"/multipart"),
		[]model.MultipartField{
			model.StringField("k", "v"),
			model.FileField("f", path).WithFileName("name.txt").WithMIMEType("text/plain"),
			model.StringField("last", "z"),
		},
		func(_, done int64) { completed.Store(done) },
	)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, resp.Text())

	var parts []Part
	require.NoError(t, sonic.Unmarshal(resp.Body, &parts))

	assert.Equal(t, []Part{
		{Name: "k", Content: "v"},
		{Name: "f", FileName: "name.txt", ContentType: "text/plain", Content: "file body"},
		{Name: "last", Content: "z"},
	}, parts)
	assert.Positive(t, completed.Load())

	_, err = b.UploadMultipart(t.Context(),
		model.NewRequest(model.MethodPost, baseURL+"/multipart"),
		[]model.MultipartField{model.FileField("f", path+".missing")},
		nil,
	)
	require.ErrorIs(t, err, model.ErrInvalidRequest)
}

func testStreamEvents(t *testing.T, b backend.Backend, baseURL string) {
	t.Helper()

	src, err := b.StreamEvents(t.Context(), model.NewRequest(model.MethodPost, baseURL+"/events"), []byte(`{}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, src.StatusCode)
	assert.Equal(t, "text/event-stream", src.Header.Get("Content-Type"))

	s := stream.Open(t.Context(), *src, func(*model.Response) {
		assert.Fail(t, "failure handler called for a successful stream")
	})

	data, err := s.Collect(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
	assert.Equal(t, stream.StateCompleted, s.State())
}

// NewHandler returns the handler of the suite's test server.
func NewHandler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Echo-Title", r.Header.Get("X-Title"))

		writeJSON(w, Echo{Method: r.Method, Header: r.Header, Body: string(body)})
	})

	mux.HandleFunc("/status/{code}", func(w http.ResponseWriter, r *http.Request) {
		code, err := strconv.Atoi(r.PathValue("code"))
		if err != nil {
			code = http.StatusBadRequest
		}

		_, _ = io.Copy(io.Discard, r.Body)

		w.WriteHeader(code)
		_, _ = io.WriteString(w, "status "+strconv.Itoa(code))
	})

	mux.HandleFunc("/multipart", func(w http.ResponseWriter, r *http.Request) {
		reader, err := r.MultipartReader()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)

			return
		}

		parts := make([]Part, 0)

		for {
			part, err := reader.NextPart()
			if err == io.EOF {
				break
			}

			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)

				return
			}

			content, _ := io.ReadAll(part)

			parts = append(parts, Part{
				Name:        part.FormName(),
				FileName:    part.FileName(),
				ContentType: part.Header.Get("Content-Type"),
				Content:     string(content),
			})
		}

		writeJSON(w, parts)
	})

	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)

		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)

		controller := http.NewResponseController(w)

		for _, chunk := range []string{"a", "b", "c"} {
			_, _ = io.WriteString(w, chunk)
			_ = controller.Flush()

			time.Sleep(5 * time.Millisecond)
		}
	})

	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
			w.WriteHeader(http.StatusOK)
		}
	})

	return mux
}

func writeJSON(w http.ResponseWriter, value any) {
	data, err := sonic.Marshal(value)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}
