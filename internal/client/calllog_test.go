package client

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/oshokin/aigc-client/internal/logger"
	"github.com/oshokin/aigc-client/internal/model"
	"github.com/oshokin/aigc-client/internal/stream"
	"github.com/oshokin/aigc-client/internal/utils"
)

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	previous := logger.Logger()

	logger.SetLogger(zap.New(core).Sugar())
	t.Cleanup(func() { logger.SetLogger(previous) })

	return logs
}

// TestCallLog tests the per-call record.
// It changes the global logger, so it does not run in parallel.
//
//nolint:paralleltest // Mutates the global logger.
func TestCallLog(t *testing.T) {
	logs := observeLogs(t)

	t.Run("success with user info", func(t *testing.T) {
		c, mockBackend := newMockedClient(t, WithCallLog(true, zapcore.InfoLevel, 10))
		mockBackend.EXPECT().PlainRequest(gomock.Any(), gomock.Any()).
			Return(okResponse("{\n  \"answer\":   \"0123456789abcdef\"\n}"), nil)

		ctx := WithUserInfo(t.Context(), "user-1", "chat")
		req := model.NewRequest(model.MethodPost, "https://api.example.com/v1/search?q=%D0%BF%D1%80%D0%B8").
			WithBody([]byte("  {\"q\":\n\"hi\"}  "))

		_, err := c.Send(ctx, req)
		require.NoError(t, err)

		entries := logs.TakeAll()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
		assert.Equal(t, "client call", entries[0].Message)

		fields := entries[0].ContextMap()
		assert.Equal(t, map[string]any{"id": "user-1,chat", "name": "client", "status": "success"}, fields["track"])
		assert.Equal(t, "mock", fields["backend"])
		assert.Equal(t, "POST", fields["method"])
		assert.Equal(t, "https://api.example.com/v1/search?q=при", fields["url"])
		assert.Equal(t, `{"q":"hi"}`, fields["body"])
		assert.Equal(t, `{ "answer"...`, fields["response"])
		assert.NotContains(t, fields, "error")
	})

	t.Run("headers are folded, transcoded and masked", func(t *testing.T) {
		c, mockBackend := newMockedClient(t, WithCallLog(true, zapcore.InfoLevel, 12))
		mockBackend.EXPECT().PlainRequest(gomock.Any(), gomock.Any()).Return(okResponse("ok"), nil)

		req := model.NewRequest(model.MethodPost, testURL).
			WithHeader("Cookie", "a=1").
			WithHeader("cookie", "b=2").
			WithHeader("X-Title", "Привет").
			WithHeader("Authorization", "Bearer sk-0123456789").
			WithHeader("X-Prompt", "a very long\nheader value")

		_, err := c.Send(t.Context(), req)
		require.NoError(t, err)

		entries := logs.TakeAll()
		require.Len(t, entries, 1)

		headers, ok := entries[0].ContextMap()["headers"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "a=1; b=2", headers["Cookie"])
		assert.Equal(t, utils.Truncate(model.EncodeLatin1("Привет"), 12), headers["X-Title"])
		assert.Equal(t, "[redacted]", headers["Authorization"])
		assert.Equal(t, "a very longh...", headers["X-Prompt"])
		assert.Equal(t, "application/...", headers["Content-Type"])
		assert.Equal(t, "client-test/...", headers["User-Agent"])
	})

	t.Run("failure gets a generated id", func(t *testing.T) {
		c, mockBackend := newMockedClient(t, WithCallLog(true, zapcore.WarnLevel, 200))
		mockBackend.EXPECT().PlainRequest(gomock.Any(), gomock.Any()).
			Return(&model.Response{StatusCode: 500, Body: []byte("boom")}, nil)

		_, err := c.Send(t.Context(), model.NewRequest(model.MethodGet, testURL))
		require.ErrorIs(t, err, model.ErrHTTPStatus)

		entries := logs.TakeAll()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)

		fields := entries[0].ContextMap()
		track, ok := fields["track"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "failure", track["status"])
		assert.Len(t, track["id"], 36)
		assert.Equal(t, "boom", fields["response"])
		assert.Contains(t, fields["error"], "500")
	})

	t.Run("disabled", func(t *testing.T) {
		c, mockBackend := newMockedClient(t, WithCallLog(false, zapcore.ErrorLevel, 0))
		mockBackend.EXPECT().PlainRequest(gomock.Any(), gomock.Any()).
			Return(nil, model.NewTransportError("plain request", model.Request{}, errors.New("refused")))

		_, err := c.Send(t.Context(), model.NewRequest(model.MethodGet, testURL))
		require.Error(t, err)
		assert.Empty(t, logs.TakeAll())
	})

	t.Run("stream logs loading then outcome", func(t *testing.T) {
		c, mockBackend := newMockedClient(t, WithCallLog(true, zapcore.InfoLevel, 200))
		mockBackend.EXPECT().StreamEvents(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&stream.Source{StatusCode: 200, Body: io.NopCloser(strings.NewReader("data: x\n\n"))}, nil)

		s, err := c.StreamEvents(t.Context(), model.NewRequest(model.MethodPost, testURL), nil, nil)
		require.NoError(t, err)

		_, err = s.Collect(t.Context())
		require.NoError(t, err)

		require.Eventually(t, func() bool { return logs.Len() == 2 }, time.Second, 5*time.Millisecond)

		entries := logs.TakeAll()
		statuses := make([]string, 0, len(entries))

		for _, entry := range entries {
			track, ok := entry.ContextMap()["track"].(map[string]any)
			require.True(t, ok)

			statuses = append(statuses, track["status"].(string)) //nolint:forcetypeassert // Test code.
		}

		assert.Equal(t, []string{"loading", "success"}, statuses)
	})
}
