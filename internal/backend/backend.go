package backend

import (
	"context"
	"time"

	"github.com/oshokin/aigc-client/internal/model"
	"github.com/oshokin/aigc-client/internal/stream"
	transporthttp "github.com/oshokin/aigc-client/internal/transport/http"
)

//go:generate mockgen -source=backend.go -destination=mocks/backend_mock.go -package=mock_backend

// Backend performs calls over one concrete network stack.
type Backend interface {
	// Name identifies the backend in logs and metrics.
	Name() string
	// PlainRequest sends req with its own body and buffers the whole response.
	PlainRequest(ctx context.Context, req model.Request) (*model.Response, error)
	// UploadBytes sends body in place of req.Body, reporting upload progress to progress.
	UploadBytes(ctx context.Context, req model.Request, body []byte, progress ProgressFunc) (*model.Response, error)
	// UploadMultipart sends fields as a multipart/form-data body in the given order.
	UploadMultipart(
		ctx context.Context,
		req model.Request,
		fields []model.MultipartField,
		progress ProgressFunc,
	) (*model.Response, error)
	// StreamEvents sends body and returns the response as soon as headers arrive.
	// The status is not checked and the caller owns the returned body.
	StreamEvents(ctx context.Context, req model.Request, body []byte) (*stream.Source, error)
	// Shutdown releases pooled resources. It is idempotent.
	Shutdown() error
}

// Options configure a backend. They are fixed at construction.
type Options struct {
	// Timeout bounds a whole call including body transfer. Zero selects the backend default.
	Timeout time.Duration
	// MaxConnsPerHost is the soft per-host connection limit. Zero selects the default.
	MaxConnsPerHost int
	// UserAgent is sent when the caller did not set one. Empty selects the default.
	UserAgent string
	// Middlewares wrap the backend's base RoundTripper, outermost first.
	Middlewares []transporthttp.Middleware
}

// WithDefaults fills zero fields, using defaultTimeout for Timeout.
func (o Options) WithDefaults(defaultTimeout time.Duration, defaultUserAgent string) Options {
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}

	if o.MaxConnsPerHost <= 0 {
		o.MaxConnsPerHost = transporthttp.DefaultMaxConnsPerHost
	}

	if o.UserAgent == "" {
		o.UserAgent = defaultUserAgent
	}

	return o
}
