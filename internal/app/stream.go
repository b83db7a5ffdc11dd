package app

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/oshokin/aigc-client/internal/client"
	"github.com/oshokin/aigc-client/internal/config"
	"github.com/oshokin/aigc-client/internal/logger"
	"github.com/oshokin/aigc-client/internal/model"
	"github.com/oshokin/aigc-client/internal/utils"
)

// StreamOptions describe an event-stream request.
type StreamOptions struct {
	// Method defaults to POST.
	Method string
	// URL is absolute or relative to base_url.
	URL string
	// Data is the request body, or "@path" to send a file.
	Data string
	// Headers are "Name: Value" lines.
	Headers []string
	// Output receives the raw stream. Nil means stdout.
	Output io.Writer
}

// ExecuteStreamCommand prints an event stream as it arrives.
func ExecuteStreamCommand(ctx context.Context, cfg *config.Config, opts StreamOptions) {
	err := withClient(ctx, cfg, func(c client.Client) error {
		return RunStream(ctx, c, cfg, opts)
	})
	if err != nil {
		logger.Fatalf(ctx, "Stream failed: %v", err)
	}
}

// RunStream copies the chunks of an event stream to opts.Output until it ends.
func RunStream(ctx context.Context, c client.Client, cfg *config.Config, opts StreamOptions) error {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	if opts.Method == "" {
		opts.Method = http.MethodPost
	}

	req, err := buildRequest(cfg, opts.Method, opts.URL, opts.Headers)
	if err != nil {
		return err
	}

	var body []byte

	if opts.Data != "" {
		if body, err = loadData(opts.Data); err != nil {
			return err
		}
	}

	onFailure := func(resp *model.Response) {
		logger.Errorf(ctx, "Stream rejected with status %d: %s",
			resp.StatusCode, utils.LogPayload(resp.Body, cfg.MaxLogLength))
	}

	s, err := c.StreamEvents(ctx, req, body, onFailure)
	if err != nil {
		return err
	}

	defer s.Close() //nolint:errcheck // Close never fails.

	for chunk, streamErr := range s.All() {
		if streamErr != nil {
			return streamErr
		}

		if _, err = opts.Output.Write(chunk); err != nil {
			return err
		}
	}

	return nil
}
