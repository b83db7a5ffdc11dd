package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/oshokin/aigc-client/internal/client"
	"github.com/oshokin/aigc-client/internal/config"
	"github.com/oshokin/aigc-client/internal/logger"
	"github.com/oshokin/aigc-client/internal/model"
)

// MultipartOptions describe a multipart/form-data upload.
type MultipartOptions struct {
	// Method defaults to POST.
	Method string
	// URL is absolute or relative to base_url.
	URL string
	// Fields are sent in order, see ParseFormField for the syntax.
	Fields []string
	// Headers are "Name: Value" lines.
	Headers []string
	// Output receives the response. Nil means stdout.
	Output io.Writer
}

// ExecuteMultipartCommand uploads form fields with a progress bar.
func ExecuteMultipartCommand(ctx context.Context, cfg *config.Config, opts MultipartOptions) {
	err := withClient(ctx, cfg, func(c client.Client) error {
		return RunMultipart(ctx, c, cfg, opts)
	})
	if err != nil {
		logger.Fatalf(ctx, "Multipart upload failed: %v", err)
	}
}

// RunMultipart uploads opts.Fields through c.
func RunMultipart(ctx context.Context, c client.Client, cfg *config.Config, opts MultipartOptions) error {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	if opts.Method == "" {
		opts.Method = http.MethodPost
	}

	fields := make([]model.MultipartField, 0, len(opts.Fields))

	var totalSize int64

	for _, raw := range opts.Fields {
		field, err := ParseFormField(raw)
		if err != nil {
			return err
		}

		if field.IsFile() {
			if err = checkUploadSize(cfg, field.Path); err != nil {
				return err
			}

			if info, statErr := os.Stat(field.Path); statErr == nil {
				totalSize += info.Size()
			}
		}

		fields = append(fields, field)
	}

	req, err := buildRequest(cfg, opts.Method, opts.URL, opts.Headers)
	if err != nil {
		return err
	}

	startedAt := time.Now()

	resp, err := c.UploadMultipart(ctx, req, fields, newProgress(ctx, "Uploading"))
	if printable := responseOf(resp, err); printable != nil {
		if writeErr := writeResponse(opts.Output, printable, false); writeErr != nil && err == nil {
			err = writeErr
		}
	}

	if err != nil {
		return err
	}

	printTransferSummary(ctx, totalSize, time.Since(startedAt))

	return nil
}

// ParseFormField parses a curl-style form field:
//
//	name=value
//	name=@path[;type=mime][;filename=name]
//
// A file field with both type and filename carries explicit metadata; otherwise the missing
// parts are inferred when the body is encoded.
func ParseFormField(raw string) (model.MultipartField, error) {
	name, value, found := strings.Cut(raw, "=")
	if !found || name == "" {
		return model.MultipartField{}, fmt.Errorf("%w: '%s'", ErrInvalidField, raw)
	}

	path, isFile := strings.CutPrefix(value, dataFilePrefix)
	if !isFile {
		return model.StringField(name, value), nil
	}

	segments := strings.Split(path, ";")

	field := model.FileField(name, segments[0])
	if segments[0] == "" {
		return model.MultipartField{}, fmt.Errorf("%w: '%s'", ErrInvalidField, raw)
	}

	for _, segment := range segments[1:] {
		key, attribute, ok := strings.Cut(segment, "=")
		if !ok || attribute == "" {
			return model.MultipartField{}, fmt.Errorf("%w: '%s'", ErrInvalidField, raw)
		}

		switch strings.ToLower(strings.TrimSpace(key)) {
		case "type":
			field = field.WithMIMEType(attribute)
		case "filename":
			field = field.WithFileName(attribute)
		default:
			return model.MultipartField{}, fmt.Errorf("%w: '%s'", ErrInvalidField, raw)
		}
	}

	return field, nil
}
