package client

import (
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/aigc-client/internal/model"
	transporthttp "github.com/oshokin/aigc-client/internal/transport/http"
	"github.com/oshokin/aigc-client/internal/utils"
)

// Option customizes a client.
type Option func(*options)

type options struct {
	userAgent    string
	headers      model.Header
	logPayloads  bool
	logLevel     zapcore.Level
	maxLogLength int
	metrics      *transporthttp.Metrics
	middlewares  []transporthttp.Middleware
}

func defaultOptions() *options {
	return &options{
		userAgent:    utils.DefaultUserAgent(),
		logPayloads:  true,
		logLevel:     zapcore.DebugLevel,
		maxLogLength: transporthttp.DefaultMaxLogLength,
	}
}

// WithUserAgent sets the User-Agent sent when a request has none.
func WithUserAgent(userAgent string) Option {
	return func(o *options) {
		if userAgent != "" {
			o.userAgent = userAgent
		}
	}
}

// WithHeaders adds headers to every request that does not set them.
func WithHeaders(headers model.Header) Option {
	return func(o *options) {
		o.headers = headers.Clone()
	}
}

// WithCallLog configures the per-call log record.
// Payloads are cut to maxLength characters; a non-positive length keeps the current one.
func WithCallLog(enabled bool, level zapcore.Level, maxLength int) Option {
	return func(o *options) {
		o.logPayloads = enabled
		o.logLevel = level

		if maxLength > 0 {
			o.maxLogLength = maxLength
		}
	}
}

// WithMetrics instruments the backend built by NewClient.
func WithMetrics(metrics *transporthttp.Metrics) Option {
	return func(o *options) {
		o.metrics = metrics
	}
}

// WithMiddlewares appends round-tripper middlewares to the backend built by NewClient.
// They run after the built-in ones.
func WithMiddlewares(middlewares ...transporthttp.Middleware) Option {
	return func(o *options) {
		o.middlewares = append(o.middlewares, middlewares...)
	}
}
