package client

//go:generate mockgen -source=client.go -destination=mocks/client_mock.go -package=mock_client

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/oshokin/aigc-client/internal/backend"
	"github.com/oshokin/aigc-client/internal/backend/framework"
	"github.com/oshokin/aigc-client/internal/backend/pooled"
	"github.com/oshokin/aigc-client/internal/backend/session"
	"github.com/oshokin/aigc-client/internal/config"
	"github.com/oshokin/aigc-client/internal/model"
	"github.com/oshokin/aigc-client/internal/stream"
	transporthttp "github.com/oshokin/aigc-client/internal/transport/http"
	"github.com/oshokin/aigc-client/internal/utils"
)

// Client is the uniform facade over every transport backend.
type Client interface {
	// Send performs req and returns the buffered response.
	// A status outside 200..299 is returned as *model.HTTPStatusError carrying the body.
	Send(ctx context.Context, req model.Request) (*model.Response, error)
	// Upload sends body in place of req.Body and reports progress.
	Upload(ctx context.Context, req model.Request, body []byte, progress backend.ProgressFunc) (*model.Response, error)
	// UploadMultipart sends fields as multipart/form-data in the given order and reports progress.
	UploadMultipart(
		ctx context.Context,
		req model.Request,
		fields []model.MultipartField,
		progress backend.ProgressFunc,
	) (*model.Response, error)
	// StreamEvents sends body and returns a stream of raw response chunks.
	// The status is checked inside the stream: onFailure receives a rejected response.
	StreamEvents(
		ctx context.Context,
		req model.Request,
		body []byte,
		onFailure stream.FailureFunc,
	) (*stream.Stream, error)
	// SendJSON encodes payload as the JSON body of a request to rawURL.
	SendJSON(ctx context.Context, method model.Method, rawURL string, payload any) (*model.Response, error)
	// BackendName returns the name of the underlying backend.
	BackendName() string
	// Shutdown releases the backend. It is idempotent.
	Shutdown() error
}

// ClientImpl implements the Client interface on top of a backend.
type ClientImpl struct {
	// backend performs the network calls.
	backend backend.Backend
	// opts holds the facade settings.
	opts *options
}

// Static error definitions for better error handling.
var (
	// ErrNilBackend indicates that no backend was given.
	ErrNilBackend = errors.New("backend is nil")
	// ErrNoResponse indicates a backend that returned neither a response nor an error.
	ErrNoResponse = errors.New("backend returned no response")
)

// NewClient builds the backend named in cfg and wraps it.
// The backend transport is chained as metrics, rate limit, debug log, then any WithMiddlewares.
func NewClient(cfg *config.Config, opts ...Option) (Client, error) {
	settings := defaultOptions()

	for _, opt := range append(configOptions(cfg), opts...) {
		opt(settings)
	}

	var limiters *transporthttp.HostLimiters

	if cfg.RateLimit > 0 {
		var err error

		limiters, err = transporthttp.NewHostLimiters(cfg.RateLimit, cfg.RateBurst, cfg.RateLimitHosts)
		if err != nil {
			return nil, err
		}
	}

	var instrument transporthttp.Middleware
	if settings.metrics != nil {
		instrument = settings.metrics.Middleware(cfg.Backend)
	}

	backendOptions := backend.Options{
		Timeout:         cfg.BackendTimeout(),
		MaxConnsPerHost: cfg.MaxConnsPerHost,
		UserAgent:       settings.userAgent,
		Middlewares: slices.Concat(
			[]transporthttp.Middleware{
				instrument,
				transporthttp.WithRateLimit(limiters),
				transporthttp.WithLogging(settings.maxLogLength),
			},
			settings.middlewares,
		),
	}

	selected, err := newBackend(cfg.Backend, backendOptions)
	if err != nil {
		return nil, err
	}

	return newClient(selected, settings), nil
}

// NewClientWithBackend wraps an existing backend.
// Options that shape the transport are ignored since the backend is already built.
func NewClientWithBackend(b backend.Backend, opts ...Option) (Client, error) {
	if b == nil {
		return nil, ErrNilBackend
	}

	settings := defaultOptions()
	for _, opt := range opts {
		opt(settings)
	}

	return newClient(b, settings), nil
}

func newClient(b backend.Backend, settings *options) *ClientImpl {
	return &ClientImpl{
		backend: b,
		opts:    settings,
	}
}

func configOptions(cfg *config.Config) []Option {
	var headers model.Header
	for _, name := range slices.Sorted(maps.Keys(cfg.Headers)) {
		headers.Add(name, cfg.Headers[name])
	}

	return []Option{
		WithUserAgent(cfg.UserAgent),
		WithHeaders(headers),
		WithCallLog(cfg.LogPayloads, cfg.ParsedLogLevel, cfg.MaxLogLength),
	}
}

func newBackend(name string, opts backend.Options) (backend.Backend, error) {
	switch name {
	case config.BackendPooled:
		b, err := pooled.New(opts)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s backend: %w", name, err)
		}

		return b, nil
	case config.BackendSession:
		return session.New(opts), nil
	case config.BackendFramework:
		return framework.New(opts), nil
	default:
		return nil, fmt.Errorf("%w: '%s'", config.ErrUnknownBackend, name)
	}
}

// Send performs req and returns the buffered response.
func (c *ClientImpl) Send(ctx context.Context, req model.Request) (*model.Response, error) {
	req = c.prepare(req, true)
	record := c.newCallLog(ctx, backend.OpPlainRequest, req, req.Body)

	resp, err := c.backend.PlainRequest(ctx, req)

	return c.complete(ctx, record, req, resp, err)
}

// Upload sends body in place of req.Body and reports progress.
func (c *ClientImpl) Upload(
	ctx context.Context,
	req model.Request,
	body []byte,
	progress backend.ProgressFunc,
) (*model.Response, error) {
	req = c.prepare(req, true)
	record := c.newCallLog(ctx, backend.OpUploadBytes, req, body)

	resp, err := c.backend.UploadBytes(ctx, req, body, progress)

	return c.complete(ctx, record, req, resp, err)
}

// UploadMultipart sends fields as multipart/form-data and reports progress.
func (c *ClientImpl) UploadMultipart(
	ctx context.Context,
	req model.Request,
	fields []model.MultipartField,
	progress backend.ProgressFunc,
) (*model.Response, error) {
	req = c.prepare(req, false)
	record := c.newCallLog(ctx, backend.OpUploadMultipart, req, []byte(describeFields(fields)))

	resp, err := c.backend.UploadMultipart(ctx, req, fields, progress)

	return c.complete(ctx, record, req, resp, err)
}

// StreamEvents sends body and returns a stream of raw response chunks.
// Only failures to reach the server are returned here; the status is checked by the stream.
func (c *ClientImpl) StreamEvents(
	ctx context.Context,
	req model.Request,
	body []byte,
	onFailure stream.FailureFunc,
) (*stream.Stream, error) {
	req = c.prepare(req, true)
	record := c.newCallLog(ctx, backend.OpStreamEvents, req, body)

	src, err := c.backend.StreamEvents(ctx, req, body)
	if err == nil && src == nil {
		err = model.NewTransportError(backend.OpStreamEvents, req, ErrNoResponse)
	}

	if err != nil {
		record.finished(ctx, nil, err)

		return nil, err
	}

	record.started(ctx)

	s := stream.Open(ctx, *src, onFailure)

	if record.enabled {
		go func() {
			<-s.Done()

			var response []byte

			var statusErr *model.HTTPStatusError
			if errors.As(s.Err(), &statusErr) {
				response = statusErr.Body
			}

			record.finished(context.WithoutCancel(ctx), response, s.Err())
		}()
	}

	return s, nil
}

// BackendName returns the name of the underlying backend.
func (c *ClientImpl) BackendName() string {
	return c.backend.Name()
}

// Shutdown releases the backend.
func (c *ClientImpl) Shutdown() error {
	return c.backend.Shutdown()
}

// prepare copies req and fills default headers.
// Multipart requests keep the Content-Type chosen by the backend.
func (c *ClientImpl) prepare(req model.Request, withContentType bool) model.Request {
	req = req.Clone()

	for _, field := range c.opts.headers.Fields() {
		if !withContentType && strings.EqualFold(field.Name, model.HeaderContentType) {
			continue
		}

		if !req.Header.Has(field.Name) {
			req.Header.Add(field.Name, field.Value)
		}
	}

	if withContentType {
		req.Header = backend.ApplyDefaultHeaders(req.Header, c.opts.userAgent)
	} else {
		req.Header = backend.ApplyUserAgent(req.Header, c.opts.userAgent)
	}

	return req
}

// complete validates the status and writes the call record.
func (c *ClientImpl) complete(
	ctx context.Context,
	record *callLog,
	req model.Request,
	resp *model.Response,
	err error,
) (*model.Response, error) {
	switch {
	case err != nil:
	case resp == nil:
		err = model.NewTransportError(record.op, req, ErrNoResponse)
	case !resp.IsSuccess():
		err = model.NewHTTPStatusError(resp)
	}

	var body []byte
	if resp != nil {
		body = resp.Body
	}

	record.finished(ctx, body, err)

	if err != nil {
		return nil, err
	}

	return resp, nil
}

func describeFields(fields []model.MultipartField) string {
	return strings.Join(utils.Map(fields, model.MultipartField.String), ", ")
}
