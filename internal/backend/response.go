package backend

import (
	"fmt"
	"io"
	"net/http"

	"github.com/oshokin/aigc-client/internal/model"
	"github.com/oshokin/aigc-client/internal/stream"
)

// ReadResponse buffers and closes the body of resp.
func ReadResponse(resp *http.Response) (*model.Response, error) {
	defer resp.Body.Close() //nolint:errcheck // The body has been read in full.

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return model.FromHTTPResponse(resp, body), nil
}

// SourceFromResponse hands an unread response over to the streaming decoder.
func SourceFromResponse(resp *http.Response) *stream.Source {
	return &stream.Source{
		StatusCode: resp.StatusCode,
		Header:     model.FromHTTPHeader(resp.Header),
		Body:       resp.Body,
	}
}
