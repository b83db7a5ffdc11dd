package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/oshokin/aigc-client/internal/model"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Index int `json:"index"`
	} `json:"choices"`
}

// TestSendJSON tests the encoded body and headers.
func TestSendJSON(t *testing.T) {
	t.Parallel()

	c, mockBackend := newMockedClient(t)

	mockBackend.EXPECT().
		PlainRequest(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req model.Request) (*model.Response, error) {
			assert.Equal(t, model.MethodPost, req.Method)
			assert.Equal(t, testURL, req.URL)
			assert.Equal(t, []string{"application/json"}, req.Header.Values("Content-Type"))
			assert.JSONEq(t, `{"model":"gpt","messages":null}`, string(req.Body))

			return okResponse(`{"id":"chatcmpl-1","choices":[{"index":0}]}`), nil
		})

	resp, err := c.SendJSON(t.Context(), model.MethodPost, testURL, chatRequest{Model: "gpt"})
	require.NoError(t, err)

	decoded, err := DecodeJSON[chatResponse](resp)
	require.NoError(t, err)
	assert.Equal(t, "chatcmpl-1", decoded.ID)
	assert.Len(t, decoded.Choices, 1)
}

// TestSendJSON_Unencodable tests that an invalid payload never reaches the backend.
func TestSendJSON_Unencodable(t *testing.T) {
	t.Parallel()

	c, _ := newMockedClient(t)

	resp, err := c.SendJSON(t.Context(), model.MethodPost, testURL, map[string]any{"ch": make(chan int)})
	require.ErrorIs(t, err, model.ErrInvalidRequest)
	assert.Nil(t, resp)
}

// TestDecodeJSON tests decode failures.
func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		resp *model.Response
	}{
		{"nil response", nil},
		{"not json", okResponse("<html>")},
		{"wrong shape", okResponse(`{"id":42}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := DecodeJSON[chatResponse](tt.resp)
			require.ErrorIs(t, err, model.ErrDecode)
			assert.False(t, model.IsRetryable(err))
		})
	}
}
