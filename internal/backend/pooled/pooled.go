// Package pooled implements the connection-pooled, streaming-oriented backend on top of a
// go-cleanhttp transport with HTTP/2 enabled.
package pooled

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"golang.org/x/net/http2"

	"github.com/oshokin/aigc-client/internal/backend"
	"github.com/oshokin/aigc-client/internal/model"
	"github.com/oshokin/aigc-client/internal/stream"
	transporthttp "github.com/oshokin/aigc-client/internal/transport/http"
	"github.com/oshokin/aigc-client/internal/utils"
)

// Name identifies the backend in configuration, logs and metrics.
const Name = "pooled"

const (
	// http2ReadIdleTimeout triggers a health-check ping on a silent HTTP/2 connection,
	// which keeps long generations from hanging on a dead peer.
	http2ReadIdleTimeout = 30 * time.Second
	// http2PingTimeout closes the connection when the ping is not answered.
	http2PingTimeout = 15 * time.Second
)

// Backend sends calls through a shared connection pool.
type Backend struct {
	client    *http.Client
	transport *http.Transport
	options   backend.Options
	lifecycle backend.Lifecycle
}

// New creates a pooled backend. Zero options select a 600s timeout and a 1024 soft limit per host.
func New(opts backend.Options) (*Backend, error) {
	opts = opts.WithDefaults(transporthttp.DefaultStreamTimeout, utils.DefaultUserAgent())

	transport := cleanhttp.DefaultPooledTransport()
	transport.MaxConnsPerHost = opts.MaxConnsPerHost
	transport.MaxIdleConnsPerHost = opts.MaxConnsPerHost

	h2Transport, err := http2.ConfigureTransports(transport)
	if err != nil {
		return nil, fmt.Errorf("configure HTTP/2: %w", err)
	}

	h2Transport.ReadIdleTimeout = http2ReadIdleTimeout
	h2Transport.PingTimeout = http2PingTimeout

	// Defaults are injected last so the outer middlewares see the caller's headers.
	middlewares := slices.Concat(opts.Middlewares, []transporthttp.Middleware{
		transporthttp.WithDefaultHeaders(
			utils.NewSimpleUserAgentProvider(opts.UserAgent),
			transporthttp.DefaultContentType,
		),
	})

	return &Backend{
		client: &http.Client{
			Transport: transporthttp.Chain(transport, middlewares...),
			Timeout:   opts.Timeout,
		},
		transport: transport,
		options:   opts,
	}, nil
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
	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	return b.do(ctx, backend.OpPlainRequest, req, body, int64(len(req.Body)))
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
		return b.do(ctx, backend.OpUploadBytes, req, nil, 0)
	}

	reader := backend.NewProgressReader(ctx, bytes.NewReader(body), size, progress)

	return b.do(ctx, backend.OpUploadBytes, req, reader, size)
}

// UploadMultipart implements backend.Backend.
func (b *Backend) UploadMultipart(
	ctx context.Context,
	req model.Request,
	fields []model.MultipartField,
	progress backend.ProgressFunc,
) (*model.Response, error) {
	const op = backend.OpUploadMultipart

	if err := b.lifecycle.Check(op, req); err != nil {
		return nil, err
	}

	encoded, err := backend.EncodeMultipart(fields)
	if err != nil {
		return nil, backend.ClassifyError(op, req, err)
	}

	req.Header = req.Header.Clone()
	req.Header.Set(model.HeaderContentType, encoded.ContentType)

	reader := backend.NewProgressReader(ctx, encoded.Open(ctx), encoded.Size, progress)

	return b.do(ctx, op, req, reader, encoded.Size)
}

// StreamEvents implements backend.Backend.
func (b *Backend) StreamEvents(ctx context.Context, req model.Request, body []byte) (*stream.Source, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	resp, err := b.send(ctx, backend.OpStreamEvents, req, reader, int64(len(body)))
	if err != nil {
		return nil, err
	}

	return backend.SourceFromResponse(resp), nil
}

// Shutdown closes idle pooled connections and rejects further calls.
// Streams that are already open keep their connections until they end.
func (b *Backend) Shutdown() error {
	return b.lifecycle.Shutdown(func() error {
		b.transport.CloseIdleConnections()

		return nil
	})
}

func (b *Backend) do(
	ctx context.Context,
	op string,
	req model.Request,
	body io.Reader,
	size int64,
) (*model.Response, error) {
	resp, err := b.send(ctx, op, req, body, size)
	if err != nil {
		return nil, err
	}

	result, err := backend.ReadResponse(resp)
	if err != nil {
		return nil, backend.ClassifyError(op, req, err)
	}

	return result, nil
}

func (b *Backend) send(
	ctx context.Context,
	op string,
	req model.Request,
	body io.Reader,
	size int64,
) (*http.Response, error) {
	if err := b.lifecycle.Check(op, req); err != nil {
		closeBody(body)

		return nil, err
	}

	httpRequest, err := model.ToHTTPRequest(ctx, req, body)
	if err != nil {
		closeBody(body)

		return nil, backend.ClassifyError(op, req, err)
	}

	if body != nil && size > 0 {
		httpRequest.ContentLength = size
	}

	resp, err := b.client.Do(httpRequest)
	if err != nil {
		return nil, backend.ClassifyError(op, req, err)
	}

	return resp, nil
}

// closeBody stops a multipart encoder whose request was never sent.
func closeBody(body io.Reader) {
	if closer, ok := body.(io.Closer); ok {
		_ = closer.Close()
	}
}
