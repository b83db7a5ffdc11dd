// Package framework implements the framework-integrated backend on top of
// hashicorp/go-retryablehttp, the client stack the rest of the service tooling already uses.
// Its retry machinery is switched off: every call is exactly one attempt.
// Multipart uploads are delegated to a session backend sharing the same options.
package framework

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"slices"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/oshokin/aigc-client/internal/backend"
	"github.com/oshokin/aigc-client/internal/backend/session"
	"github.com/oshokin/aigc-client/internal/model"
	"github.com/oshokin/aigc-client/internal/stream"
	transporthttp "github.com/oshokin/aigc-client/internal/transport/http"
	"github.com/oshokin/aigc-client/internal/utils"
)

// Name identifies the backend in configuration, logs and metrics.
const Name = "framework"

// Backend sends calls through a retryablehttp client limited to a single attempt.
type Backend struct {
	client    *retryablehttp.Client
	transport *http.Transport
	multipart backend.Backend
	options   backend.Options
	lifecycle backend.Lifecycle
}

// New creates a framework backend. Zero options select a 300s timeout and a 1024 soft limit per host.
func New(opts backend.Options) *Backend {
	opts = opts.WithDefaults(transporthttp.DefaultTimeout, utils.DefaultUserAgent())

	transport := cleanhttp.DefaultPooledTransport()
	transport.MaxConnsPerHost = opts.MaxConnsPerHost
	transport.MaxIdleConnsPerHost = opts.MaxConnsPerHost

	middlewares := slices.Concat(opts.Middlewares, []transporthttp.Middleware{
		transporthttp.WithDefaultHeaders(
			utils.NewSimpleUserAgentProvider(opts.UserAgent),
			transporthttp.DefaultContentType,
		),
	})

	client := retryablehttp.NewClient()
	client.HTTPClient = &http.Client{
		Transport: transporthttp.Chain(transport, middlewares...),
		Timeout:   opts.Timeout,
	}
	client.RetryMax = 0
	client.CheckRetry = neverRetry
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.Logger = newLeveledLogger()

	return &Backend{
		client:    client,
		transport: transport,
		multipart: session.New(opts),
		options:   opts,
	}
}

// Name implements backend.Backend.
func (b *Backend) Name() string {
	return Name
}

// Options returns the effective options.
func (b *Backend) Options() backend.Options {
	return b.options
}

// PlainRequest implements backend.Backend.
func (b *Backend) PlainRequest(ctx context.Context, req model.Request) (*model.Response, error) {
	var body any
	if len(req.Body) > 0 {
		body = req.Body
	}

	return b.do(ctx, backend.OpPlainRequest, req, body)
}

// UploadBytes implements backend.Backend.
func (b *Backend) UploadBytes(
	ctx context.Context,
	req model.Request,
	body []byte,
	progress backend.ProgressFunc,
) (*model.Response, error) {
	size := int64(len(body))
	if size == 0 {
		return b.do(ctx, backend.OpUploadBytes, req, nil)
	}

	// retryablehttp calls the function once to learn the length and once per attempt;
	// only the reader of the attempt is ever read.
	readerFunc := retryablehttp.ReaderFunc(func() (io.Reader, error) {
		return backend.NewProgressReader(ctx, bytes.NewReader(body), size, progress), nil
	})

	return b.do(ctx, backend.OpUploadBytes, req, readerFunc)
}

// UploadMultipart implements backend.Backend by delegating to the session backend.
func (b *Backend) UploadMultipart(
	ctx context.Context,
	req model.Request,
	fields []model.MultipartField,
	progress backend.ProgressFunc,
) (*model.Response, error) {
	if err := b.lifecycle.Check(backend.OpUploadMultipart, req); err != nil {
		return nil, err
	}

	return b.multipart.UploadMultipart(ctx, req, fields, progress)
}

// StreamEvents implements backend.Backend.
func (b *Backend) StreamEvents(ctx context.Context, req model.Request, body []byte) (*stream.Source, error) {
	var payload any
	if len(body) > 0 {
		payload = body
	}

	resp, err := b.send(ctx, backend.OpStreamEvents, req, payload)
	if err != nil {
		return nil, err
	}

	return backend.SourceFromResponse(resp), nil
}

// Shutdown closes idle connections of both clients and rejects further calls.
func (b *Backend) Shutdown() error {
	return b.lifecycle.Shutdown(func() error {
		b.transport.CloseIdleConnections()

		return b.multipart.Shutdown()
	})
}

func (b *Backend) do(ctx context.Context, op string, req model.Request, body any) (*model.Response, error) {
	resp, err := b.send(ctx, op, req, body)
	if err != nil {
		return nil, err
	}

	result, err := backend.ReadResponse(resp)
	if err != nil {
		return nil, backend.ClassifyError(op, req, err)
	}

	return result, nil
}

func (b *Backend) send(ctx context.Context, op string, req model.Request, body any) (*http.Response, error) {
	if err := b.lifecycle.Check(op, req); err != nil {
		return nil, err
	}

	// The canonical conversion validates the URL and folds the headers.
	converted, err := model.ToHTTPRequest(ctx, req, nil)
	if err != nil {
		return nil, backend.ClassifyError(op, req, err)
	}

	retryableRequest, err := retryablehttp.NewRequestWithContext(ctx, converted.Method, converted.URL.String(), body)
	if err != nil {
		return nil, backend.ClassifyError(op, req, err)
	}

	retryableRequest.Header = converted.Header
	retryableRequest.Host = converted.Host

	resp, err := b.client.Do(retryableRequest)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}

		return nil, backend.ClassifyError(op, req, err)
	}

	return resp, nil
}

// neverRetry hands every outcome straight back to the caller.
func neverRetry(context.Context, *http.Response, error) (bool, error) {
	return false, nil
}
