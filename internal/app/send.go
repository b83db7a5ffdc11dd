package app

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/oshokin/aigc-client/internal/client"
	"github.com/oshokin/aigc-client/internal/config"
	"github.com/oshokin/aigc-client/internal/logger"
)

// SendOptions describe a plain request.
type SendOptions struct {
	// Method defaults to POST when Data is set and GET otherwise.
	Method string
	// URL is absolute or relative to base_url.
	URL string
	// Data is the request body, or "@path" to send a file.
	Data string
	// Headers are "Name: Value" lines.
	Headers []string
	// Include prints the status line and headers before the body.
	Include bool
	// Output receives the response. Nil means stdout.
	Output io.Writer
}

// ExecuteSendCommand performs a plain request and prints the response.
func ExecuteSendCommand(ctx context.Context, cfg *config.Config, opts SendOptions) {
	err := withClient(ctx, cfg, func(c client.Client) error {
		return RunSend(ctx, c, cfg, opts)
	})
	if err != nil {
		logger.Fatalf(ctx, "Request failed: %v", err)
	}
}

// RunSend performs a plain request through c.
// A non-2xx response is printed before its error is returned.
func RunSend(ctx context.Context, c client.Client, cfg *config.Config, opts SendOptions) error {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	if opts.Method == "" {
		opts.Method = http.MethodGet
		if opts.Data != "" {
			opts.Method = http.MethodPost
		}
	}

	req, err := buildRequest(cfg, opts.Method, opts.URL, opts.Headers)
	if err != nil {
		return err
	}

	if opts.Data != "" {
		body, loadErr := loadData(opts.Data)
		if loadErr != nil {
			return loadErr
		}

		req = req.WithBody(body)
	}

	resp, err := c.Send(ctx, req)
	if printable := responseOf(resp, err); printable != nil {
		if writeErr := writeResponse(opts.Output, printable, opts.Include); writeErr != nil && err == nil {
			err = writeErr
		}
	}

	return err
}
