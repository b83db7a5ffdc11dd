// Package session implements the session-based backend on top of go-resty.
// The resty client is the session: it carries the default headers, timeout, transport and
// cookie jar shared by every call, and upload progress is reported while the body is sent.
package session

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"slices"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-cleanhttp"

	"github.com/oshokin/aigc-client/internal/backend"
	"github.com/oshokin/aigc-client/internal/model"
	"github.com/oshokin/aigc-client/internal/stream"
	transporthttp "github.com/oshokin/aigc-client/internal/transport/http"
	"github.com/oshokin/aigc-client/internal/utils"
)

// Name identifies the backend in configuration, logs and metrics.
const Name = "session"

// contentLengthKey carries the announced size of a streamed body to the pre-request hook.
type contentLengthKey struct{}

// callerHeaderKey carries the canonical request headers to the pre-request hook.
type callerHeaderKey struct{}

// Backend sends calls through a resty session.
type Backend struct {
	client    *resty.Client
	transport *http.Transport
	options   backend.Options
	lifecycle backend.Lifecycle
}

// New creates a session backend. Zero options select a 300s timeout and a 1024 soft limit per host.
func New(opts backend.Options) *Backend {
	opts = opts.WithDefaults(transporthttp.DefaultTimeout, utils.DefaultUserAgent())

	transport := cleanhttp.DefaultPooledTransport()
	transport.MaxConnsPerHost = opts.MaxConnsPerHost
	transport.MaxIdleConnsPerHost = opts.MaxConnsPerHost

	client := resty.New().
		SetTransport(transporthttp.Chain(transport, slices.Clone(opts.Middlewares)...)).
		SetTimeout(opts.Timeout).
		SetRetryCount(0).
		SetAllowGetMethodPayload(true).
		SetLogger(newLogger()).
		// Session headers only apply to requests that do not set them.
		SetHeader(model.HeaderUserAgent, opts.UserAgent).
		SetHeader(model.HeaderContentType, transporthttp.DefaultContentType).
		SetPreRequestHook(func(_ *resty.Client, r *http.Request) error {
			if size, ok := r.Context().Value(contentLengthKey{}).(int64); ok && r.ContentLength <= 0 {
				r.ContentLength = size
			}

			if caller, ok := r.Context().Value(callerHeaderKey{}).(model.Header); ok {
				restoreCallerHeaders(r.Header, caller)
			}

			return nil
		})

	return &Backend{
		client:    client,
		transport: transport,
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

	ctx = context.WithValue(ctx, contentLengthKey{}, size)
	reader := backend.NewProgressReader(ctx, bytes.NewReader(body), size, progress)

	return b.do(ctx, backend.OpUploadBytes, req, reader)
}

// UploadMultipart implements backend.Backend. Fields are encoded in order by the shared
// encoder and streamed from disk while the request is sent.
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

	ctx = context.WithValue(ctx, contentLengthKey{}, encoded.Size)
	reader := backend.NewProgressReader(ctx, encoded.Open(ctx), encoded.Size, progress)

	return b.do(ctx, op, req, reader)
}

// StreamEvents implements backend.Backend.
func (b *Backend) StreamEvents(ctx context.Context, req model.Request, body []byte) (*stream.Source, error) {
	const op = backend.OpStreamEvents

	var payload any
	if len(body) > 0 {
		payload = body
	}

	r, err := b.newRequest(ctx, op, req, payload)
	if err != nil {
		return nil, err
	}

	resp, err := r.SetDoNotParseResponse(true).Execute(req.EffectiveMethod(), r.URL)
	if err != nil {
		return nil, backend.ClassifyError(op, req, err)
	}

	return &stream.Source{
		StatusCode: resp.StatusCode(),
		Header:     model.FromHTTPHeader(resp.Header()),
		Body:       resp.RawBody(),
	}, nil
}

// Shutdown closes idle connections and rejects further calls.
func (b *Backend) Shutdown() error {
	return b.lifecycle.Shutdown(func() error {
		b.transport.CloseIdleConnections()

		return nil
	})
}

func (b *Backend) do(ctx context.Context, op string, req model.Request, body any) (*model.Response, error) {
	r, err := b.newRequest(ctx, op, req, body)
	if err != nil {
		return nil, err
	}

	resp, err := r.Execute(req.EffectiveMethod(), r.URL)
	if err != nil {
		return nil, backend.ClassifyError(op, req, err)
	}

	return &model.Response{
		StatusCode: resp.StatusCode(),
		Header:     model.FromHTTPHeader(resp.Header()),
		Body:       resp.Body(),
	}, nil
}

func (b *Backend) newRequest(ctx context.Context, op string, req model.Request, body any) (*resty.Request, error) {
	if err := b.lifecycle.Check(op, req); err != nil {
		closeBody(body)

		return nil, err
	}

	parsed, err := req.ParseURL()
	if err != nil {
		closeBody(body)

		return nil, backend.ClassifyError(op, req, err)
	}

	r := b.client.R().SetContext(context.WithValue(ctx, callerHeaderKey{}, req.Header))
	r.URL = parsed.String()
	r.Header = model.ToHTTPHeader(req.Header)

	if body != nil {
		r.SetBody(body)
	}

	return r, nil
}

// restoreCallerHeaders undoes what resty adds on its own. It sets Accept for JSON bodies and
// replaces an empty User-Agent or Content-Type, while a backend may only fill those two in
// when the caller left them out.
func restoreCallerHeaders(sent http.Header, caller model.Header) {
	if !caller.Has(model.HeaderAccept) {
		sent.Del(model.HeaderAccept)
	}

	for _, name := range []string{model.HeaderUserAgent, model.HeaderContentType} {
		if caller.Has(name) && caller.Get(name) == "" {
			sent.Set(name, "")
		}
	}
}

func closeBody(body any) {
	if closer, ok := body.(io.Closer); ok {
		_ = closer.Close()
	}
}
