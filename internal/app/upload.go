package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/oshokin/aigc-client/internal/backend"
	"github.com/oshokin/aigc-client/internal/client"
	"github.com/oshokin/aigc-client/internal/config"
	"github.com/oshokin/aigc-client/internal/logger"
	"github.com/oshokin/aigc-client/internal/model"
)

// UploadOptions describe a raw file upload.
type UploadOptions struct {
	// Method defaults to PUT.
	Method string
	// URL is absolute or relative to base_url.
	URL string
	// File is the path of the uploaded file.
	File string
	// ContentType overrides the type detected from the file contents.
	ContentType string
	// Headers are "Name: Value" lines.
	Headers []string
	// Output receives the response. Nil means stdout.
	Output io.Writer
}

// ExecuteUploadCommand uploads a file with a progress bar.
func ExecuteUploadCommand(ctx context.Context, cfg *config.Config, opts UploadOptions) {
	err := withClient(ctx, cfg, func(c client.Client) error {
		return RunUpload(ctx, c, cfg, opts)
	})
	if err != nil {
		logger.Fatalf(ctx, "Upload failed: %v", err)
	}
}

// RunUpload uploads opts.File through c.
func RunUpload(ctx context.Context, c client.Client, cfg *config.Config, opts UploadOptions) error {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	if opts.Method == "" {
		opts.Method = http.MethodPut
	}

	if err := checkUploadSize(cfg, opts.File); err != nil {
		return err
	}

	body, err := os.ReadFile(opts.File)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	req, err := buildRequest(cfg, opts.Method, opts.URL, opts.Headers)
	if err != nil {
		return err
	}

	contentType := opts.ContentType
	if contentType == "" && !req.Header.Has(model.HeaderContentType) {
		contentType = mimetype.Detect(body).String()
	}

	if contentType != "" {
		req.Header.Set(model.HeaderContentType, contentType)
	}

	startedAt := time.Now()

	resp, err := c.Upload(ctx, req, body, newProgress(ctx, "Uploading"))
	if printable := responseOf(resp, err); printable != nil {
		if writeErr := writeResponse(opts.Output, printable, false); writeErr != nil && err == nil {
			err = writeErr
		}
	}

	if err != nil {
		return err
	}

	printTransferSummary(ctx, int64(len(body)), time.Since(startedAt))

	return nil
}

// checkUploadSize rejects files above max_upload_size.
func checkUploadSize(cfg *config.Config, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	if cfg.ParsedMaxUploadSize > 0 && info.Size() > cfg.ParsedMaxUploadSize {
		//nolint:gosec // Both sizes are positive.
		return fmt.Errorf("%w: %s is %s, limit is %s", ErrFileTooLarge, path,
			humanize.Bytes(uint64(info.Size())), humanize.Bytes(uint64(cfg.ParsedMaxUploadSize)))
	}

	return nil
}

// newProgress returns a progress callback drawing a byte progress bar.
// The bar is created lazily because the total is only known once the body is encoded.
// Progress bars are disabled when the log level hides informational output.
func newProgress(ctx context.Context, description string) backend.ProgressFunc {
	if logger.Level() > zap.InfoLevel {
		return nil
	}

	var bar *progressbar.ProgressBar

	return func(total, completed int64) {
		if bar == nil {
			bar = progressbar.DefaultBytes(total, description)
		}

		if err := bar.Set64(completed); err != nil {
			logger.Debugf(ctx, "Failed to update progress bar: %v", err)
		}
	}
}

// printTransferSummary logs the amount of data sent and the average speed.
func printTransferSummary(ctx context.Context, size int64, duration time.Duration) {
	//nolint:gosec // Size is never negative.
	logger.Infof(ctx, "Data Uploaded:    %s", humanize.Bytes(uint64(size)))

	if duration <= 0 {
		return
	}

	logger.Infof(ctx, "Duration:         %s", duration.Round(time.Millisecond))

	bytesPerSecond := float64(size) / duration.Seconds()
	logger.Infof(ctx, "Average Speed:    %s/s", humanize.Bytes(uint64(bytesPerSecond)))
}
