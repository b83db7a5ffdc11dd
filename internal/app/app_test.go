package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/oshokin/aigc-client/internal/backend"
	mock_client "github.com/oshokin/aigc-client/internal/client/mocks"
	"github.com/oshokin/aigc-client/internal/config"
	"github.com/oshokin/aigc-client/internal/constants"
	"github.com/oshokin/aigc-client/internal/model"
	"github.com/oshokin/aigc-client/internal/stream"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.BaseURL = "https://api.example.com/v1"
	require.NoError(t, config.ValidateConfig(cfg))

	return cfg
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), constants.DefaultFilePermissions))

	return path
}

func openedStream(ctx context.Context, status int, body string) *stream.Stream {
	return stream.Open(ctx, stream.Source{StatusCode: status, Body: io.NopCloser(strings.NewReader(body))}, nil)
}

// TestParseHeaders tests header flag parsing.
func TestParseHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		lines     []string
		expected  []model.Field
		expectErr bool
	}{
		{
			name:     "order and repeats are kept",
			lines:    []string{"Cookie: a=1", "Authorization:  Bearer x ", "cookie: b=2"},
			expected: []model.Field{
				{Name: "Cookie", Value: "a=1"},
				{Name: "Authorization", Value: "Bearer x"},
				{Name: "cookie", Value: "b=2"},
			},
		},
		{
			name:     "value may contain colons",
			lines:    []string{"X-Time: 12:30"},
			expected: []model.Field{{Name: "X-Time", Value: "12:30"}},
		},
		{
			name:     "empty value",
			lines:    []string{"X-Empty:"},
			expected: []model.Field{{Name: "X-Empty", Value: ""}},
		},
		{name: "missing colon", lines: []string{"Authorization Bearer"}, expectErr: true},
		{name: "missing name", lines: []string{": value"}, expectErr: true},
		{name: "space in name", lines: []string{"X Bad: value"}, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			headers, err := ParseHeaders(tt.lines)
			if tt.expectErr {
				require.ErrorIs(t, err, ErrInvalidHeader)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, headers.Fields())
		})
	}
}

// TestParseFormField tests curl-style form field parsing.
func TestParseFormField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		raw       string
		expected  model.MultipartField
		expectErr bool
	}{
		{
			name:     "string field",
			raw:      "purpose=fine-tune",
			expected: model.StringField("purpose", "fine-tune"),
		},
		{
			name:     "string value with equals sign",
			raw:      "query=a=b",
			expected: model.StringField("query", "a=b"),
		},
		{
			name:     "file with inferred metadata",
			raw:      "file=@/tmp/data.jsonl",
			expected: model.FileField("file", "/tmp/data.jsonl"),
		},
		{
			name: "file with explicit metadata",
			raw:  "file=@/tmp/data.bin;type=application/jsonl;filename=train.jsonl",
			expected: model.FileField("file", "/tmp/data.bin").
				WithMIMEType("application/jsonl").
				WithFileName("train.jsonl"),
		},
		{name: "missing equals", raw: "purpose", expectErr: true},
		{name: "missing name", raw: "=value", expectErr: true},
		{name: "missing path", raw: "file=@", expectErr: true},
		{name: "unknown attribute", raw: "file=@a.txt;size=1", expectErr: true},
		{name: "empty attribute", raw: "file=@a.txt;type=", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			field, err := ParseFormField(tt.raw)
			if tt.expectErr {
				require.ErrorIs(t, err, ErrInvalidField)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, field)
		})
	}
}

// TestRunSend tests request assembly and response printing.
func TestRunSend(t *testing.T) {
	t.Parallel()

	t.Run("data from file defaults to POST", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		mockClient := mock_client.NewMockClient(ctrl)
		dataFile := writeFile(t, "body.json", `{"model":"gpt"}`)

		mockClient.EXPECT().
			Send(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req model.Request) (*model.Response, error) {
				assert.Equal(t, model.MethodPost, req.Method)
				assert.Equal(t, "https://api.example.com/v1/chat/completions", req.URL)
				assert.Equal(t, "Bearer x", req.Header.Get("Authorization"))
				assert.JSONEq(t, `{"model":"gpt"}`, string(req.Body))

				return &model.Response{
					StatusCode: http.StatusOK,
					Header:     model.NewHeader("Content-Type", "application/json"),
					Body:       []byte(`{"ok":true}`),
				}, nil
			})

		var out bytes.Buffer

		err := RunSend(t.Context(), mockClient, testConfig(t), SendOptions{
			URL:     "chat/completions",
			Data:    "@" + dataFile,
			Headers: []string{"Authorization: Bearer x"},
			Include: true,
			Output:  &out,
		})
		require.NoError(t, err)
		assert.Equal(t, "HTTP 200 OK\nContent-Type: application/json\n\n{\"ok\":true}", out.String())
	})

	t.Run("status error body is printed", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		mockClient := mock_client.NewMockClient(ctrl)

		mockClient.EXPECT().
			Send(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req model.Request) (*model.Response, error) {
				assert.Equal(t, model.MethodGet, req.Method)

				return nil, model.NewHTTPStatusError(&model.Response{StatusCode: 401, Body: []byte("unauthorized")})
			})

		var out bytes.Buffer

		err := RunSend(t.Context(), mockClient, testConfig(t), SendOptions{URL: "models", Output: &out})
		require.ErrorIs(t, err, model.ErrHTTPStatus)
		assert.Equal(t, "unauthorized", out.String())
	})

	t.Run("invalid header never reaches the client", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		mockClient := mock_client.NewMockClient(ctrl)

		err := RunSend(t.Context(), mockClient, testConfig(t),
			SendOptions{URL: "models", Headers: []string{"bad"}, Output: io.Discard})
		require.ErrorIs(t, err, ErrInvalidHeader)
	})
}

// TestRunUpload tests size limits and content type detection.
func TestRunUpload(t *testing.T) {
	t.Parallel()

	t.Run("detected content type", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		mockClient := mock_client.NewMockClient(ctrl)
		path := writeFile(t, "notes.txt", "plain text")

		mockClient.EXPECT().
			Upload(gomock.Any(), gomock.Any(), []byte("plain text"), gomock.Any()).
			DoAndReturn(func(
				_ context.Context,
				req model.Request,
				_ []byte,
				_ backend.ProgressFunc,
			) (*model.Response, error) {
				assert.Equal(t, model.MethodPut, req.Method)
				assert.Equal(t, "text/plain; charset=utf-8", req.Header.Get("Content-Type"))

				return &model.Response{StatusCode: http.StatusCreated, Body: []byte("stored")}, nil
			})

		var out bytes.Buffer

		err := RunUpload(t.Context(), mockClient, testConfig(t), UploadOptions{URL: "files/1", File: path, Output: &out})
		require.NoError(t, err)
		assert.Equal(t, "stored", out.String())
	})

	t.Run("file above the limit", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		mockClient := mock_client.NewMockClient(ctrl)
		path := writeFile(t, "big.bin", strings.Repeat("x", 2048))

		cfg := testConfig(t)
		cfg.MaxUploadSize = "1KB"
		require.NoError(t, config.ValidateConfig(cfg))

		err := RunUpload(t.Context(), mockClient, cfg, UploadOptions{URL: "files/1", File: path, Output: io.Discard})
		require.ErrorIs(t, err, ErrFileTooLarge)
	})
}

// TestRunMultipart tests that parsed fields reach the client in order.
func TestRunMultipart(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	mockClient := mock_client.NewMockClient(ctrl)
	path := writeFile(t, "train.jsonl", `{"prompt":"a"}`)

	expected := []model.MultipartField{
		model.StringField("purpose", "fine-tune"),
		model.FileField("file", path).WithMIMEType("application/jsonl"),
	}

	mockClient.EXPECT().
		UploadMultipart(gomock.Any(), gomock.Any(), expected, gomock.Any()).
		Return(&model.Response{StatusCode: http.StatusOK, Body: []byte(`{"id":"file-1"}`)}, nil)

	var out bytes.Buffer

	err := RunMultipart(t.Context(), mockClient, testConfig(t), MultipartOptions{
		URL:    "files",
		Fields: []string{"purpose=fine-tune", "file=@" + path + ";type=application/jsonl"},
		Output: &out,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"file-1"}`, out.String())
}

// TestRunStream tests that chunks are copied and failures surface.
func TestRunStream(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		status      int
		body        string
		expectedOut string
		expectedErr error
	}{
		{
			name:        "completed",
			status:      http.StatusOK,
			body:        "data: a\n\ndata: [DONE]\n\n",
			expectedOut: "data: a\n\ndata: [DONE]\n\n",
		},
		{
			name:        "rejected",
			status:      http.StatusTooManyRequests,
			body:        "slow down",
			expectedErr: model.ErrStreamFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			mockClient := mock_client.NewMockClient(ctrl)

			mockClient.EXPECT().
				StreamEvents(gomock.Any(), gomock.Any(), []byte(`{"stream":true}`), gomock.Any()).
				DoAndReturn(func(
					ctx context.Context,
					req model.Request,
					_ []byte,
					_ stream.FailureFunc,
				) (*stream.Stream, error) {
					assert.Equal(t, model.MethodPost, req.Method)

					return openedStream(ctx, tt.status, tt.body), nil
				})

			var out bytes.Buffer

			err := RunStream(t.Context(), mockClient, testConfig(t),
				StreamOptions{URL: "chat", Data: `{"stream":true}`, Output: &out})

			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, tt.expectedOut, out.String())
		})
	}
}

// TestRelayHandler tests the relay routes on top of a mocked client.
func TestRelayHandler(t *testing.T) {
	t.Parallel()

	newRelay := func(t *testing.T) (*httptest.Server, *mock_client.MockClient) {
		t.Helper()

		ctrl := gomock.NewController(t)
		mockClient := mock_client.NewMockClient(ctrl)

		cfg := testConfig(t)
		cfg.RelayUpstream = "https://upstream.example.com/v1/"

		handler, err := NewRelayHandler(t.Context(), cfg, mockClient, prometheus.NewRegistry())
		require.NoError(t, err)

		server := httptest.NewServer(handler)
		t.Cleanup(server.Close)

		return server, mockClient
	}

	t.Run("stream is relayed", func(t *testing.T) {
		t.Parallel()

		server, mockClient := newRelay(t)

		mockClient.EXPECT().
			StreamEvents(gomock.Any(), gomock.Any(), []byte(`{"q":1}`), gomock.Any()).
			DoAndReturn(func(
				ctx context.Context,
				req model.Request,
				_ []byte,
				_ stream.FailureFunc,
			) (*stream.Stream, error) {
				assert.Equal(t, "https://upstream.example.com/v1/chat/completions?v=2", req.URL)
				assert.Equal(t, "Bearer x", req.Header.Get("Authorization"))
				assert.False(t, req.Header.Has("Host"))
				assert.False(t, req.Header.Has("Accept-Encoding"))

				return openedStream(ctx, http.StatusOK, "data: hi\n\n"), nil
			})

		req, err := http.NewRequestWithContext(t.Context(), http.MethodPost,
			server.URL+"/stream/chat/completions?v=2", strings.NewReader(`{"q":1}`))
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer x")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)

		defer resp.Body.Close() //nolint:errcheck // Test cleanup, error is not critical.

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, stream.EventStreamContentType, resp.Header.Get("Content-Type"))
		assert.Equal(t, "data: hi\n\n", string(body))
	})

	t.Run("rejected stream keeps the upstream status", func(t *testing.T) {
		t.Parallel()

		server, mockClient := newRelay(t)

		mockClient.EXPECT().
			StreamEvents(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ model.Request, _ []byte, _ stream.FailureFunc) (*stream.Stream, error) {
				return openedStream(ctx, http.StatusUnauthorized, "bad key"), nil
			})

		resp, err := http.Post(server.URL+"/stream/chat", "application/json", strings.NewReader("{}")) //nolint:noctx // Test code.
		require.NoError(t, err)

		defer resp.Body.Close() //nolint:errcheck // Test cleanup, error is not critical.

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "bad key", string(body))
	})

	t.Run("unreachable upstream", func(t *testing.T) {
		t.Parallel()

		server, mockClient := newRelay(t)

		mockClient.EXPECT().
			StreamEvents(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, model.NewTransportError(backend.OpStreamEvents, model.Request{}, errors.New("connection refused")))

		resp, err := http.Post(server.URL+"/stream/chat", "application/json", strings.NewReader("{}")) //nolint:noctx // Test code.
		require.NoError(t, err)
		resp.Body.Close() //nolint:errcheck,gosec // Test cleanup, error is not critical.

		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	})

	t.Run("health and metrics", func(t *testing.T) {
		t.Parallel()

		server, _ := newRelay(t)

		for _, path := range []string{"/healthz", "/metrics"} {
			resp, err := http.Get(server.URL + path) //nolint:noctx // Test code.
			require.NoError(t, err)
			resp.Body.Close() //nolint:errcheck,gosec // Test cleanup, error is not critical.

			assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		}
	})
}

// TestRelayErrorStatus tests the status answered for unreachable upstreams.
func TestRelayErrorStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"invalid", model.NewInvalidRequestError("stream events", model.Request{}, nil), http.StatusBadRequest},
		{"timeout", model.NewTransportError("stream events", model.Request{}, context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"shutdown", model.NewTransportError("stream events", model.Request{}, model.ErrShutdown), http.StatusServiceUnavailable},
		{"other", model.NewTransportError("stream events", model.Request{}, errors.New("reset")), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, relayErrorStatus(tt.err))
		})
	}
}

// TestRunConfigShow tests the rendered configuration.
func TestRunConfigShow(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	require.NoError(t, RunConfigShow(testConfig(t), &out))
	assert.Contains(t, out.String(), "backend: pooled\n")
	assert.Contains(t, out.String(), "base_url: https://api.example.com/v1\n")
}

// TestRunRelay_NoUpstream tests that the relay needs an upstream.
func TestRunRelay_NoUpstream(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, RunRelay(t.Context(), testConfig(t)), ErrNoUpstream)
}
