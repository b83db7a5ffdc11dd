package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oshokin/aigc-client/internal/client"
	"github.com/oshokin/aigc-client/internal/config"
	"github.com/oshokin/aigc-client/internal/logger"
	"github.com/oshokin/aigc-client/internal/model"
	transporthttp "github.com/oshokin/aigc-client/internal/transport/http"
)

const (
	// dataFilePrefix marks a --data value that names a file to read.
	dataFilePrefix = "@"
	// shutdownTimeout bounds the graceful stop of the HTTP servers.
	shutdownTimeout = 5 * time.Second
	// readHeaderTimeout protects the HTTP servers from slow clients.
	readHeaderTimeout = 10 * time.Second
)

// Static error definitions for better error handling.
var (
	// ErrInvalidHeader indicates a header flag that is not in "Name: Value" form.
	ErrInvalidHeader = errors.New("header must be in 'Name: Value' form")
	// ErrFileTooLarge indicates an upload above max_upload_size.
	ErrFileTooLarge = errors.New("file exceeds max_upload_size")
	// ErrInvalidField indicates a multipart field flag that cannot be parsed.
	ErrInvalidField = errors.New("field must be in 'name=value' or 'name=@path[;type=mime][;filename=name]' form")
	// ErrNoUpstream indicates a relay started without relay_upstream.
	ErrNoUpstream = errors.New("relay_upstream is not configured")
)

// newClient builds the facade with call metrics registered on registerer.
func newClient(cfg *config.Config, registerer prometheus.Registerer) (client.Client, error) {
	c, err := client.NewClient(cfg, client.WithMetrics(transporthttp.NewMetrics(registerer)))
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return c, nil
}

// withClient runs fn with a client built from cfg and shuts the client down afterwards.
// The metrics endpoint is served for the duration of fn when metrics_listen is set.
func withClient(ctx context.Context, cfg *config.Config, fn func(c client.Client) error) error {
	registry := prometheus.NewRegistry()

	c, err := newClient(cfg, registry)
	if err != nil {
		return err
	}

	defer func() {
		if shutdownErr := c.Shutdown(); shutdownErr != nil {
			logger.Warnf(ctx, "Failed to shut down client: %v", shutdownErr)
		}
	}()

	if cfg.MetricsListen != "" {
		stop := serveMetrics(ctx, cfg.MetricsListen, registry)
		defer stop()
	}

	return fn(c)
}

// serveMetrics exposes gatherer on addr until the returned function is called.
func serveMetrics(ctx context.Context, addr string, gatherer prometheus.Gatherer) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		logger.Infof(ctx, "Serving metrics on %s", addr)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf(ctx, "Metrics server failed: %v", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		_ = server.Shutdown(shutdownCtx) //nolint:contextcheck // Shutdown must outlive the canceled parent.
	}
}

// ParseHeaders converts "Name: Value" lines into a header set, keeping their order.
func ParseHeaders(lines []string) (model.Header, error) {
	var headers model.Header

	for _, line := range lines {
		name, value, found := strings.Cut(line, ":")

		name = strings.TrimSpace(name)
		if !found || name == "" || strings.ContainsAny(name, " \t") {
			return model.Header{}, fmt.Errorf("%w: '%s'", ErrInvalidHeader, line)
		}

		headers.Add(name, strings.TrimSpace(value))
	}

	return headers, nil
}

// loadData returns the request body described by a --data value.
// A value starting with "@" names a file whose contents are sent.
func loadData(data string) ([]byte, error) {
	path, isFile := strings.CutPrefix(data, dataFilePrefix)
	if !isFile {
		return []byte(data), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}

	return content, nil
}

// buildRequest assembles a request from command line values.
func buildRequest(cfg *config.Config, method, target string, headerLines []string) (model.Request, error) {
	headers, err := ParseHeaders(headerLines)
	if err != nil {
		return model.Request{}, err
	}

	req := model.NewRequest(model.Method(strings.ToUpper(method)), cfg.ResolveURL(target))
	req.Header = headers

	return req, nil
}

// writeResponse prints the response, optionally preceded by the status line and headers.
func writeResponse(out io.Writer, resp *model.Response, include bool) error {
	if include {
		if _, err := fmt.Fprintf(out, "HTTP %d %s\n", resp.StatusCode, http.StatusText(resp.StatusCode)); err != nil {
			return err
		}

		for _, field := range resp.Header.Fields() {
			if _, err := fmt.Fprintf(out, "%s: %s\n", field.Name, field.Value); err != nil {
				return err
			}
		}

		if _, err := io.WriteString(out, "\n"); err != nil {
			return err
		}
	}

	_, err := out.Write(resp.Body)

	return err
}

// responseOf recovers the response carried by a status error, so it can still be printed.
func responseOf(resp *model.Response, err error) *model.Response {
	var statusErr *model.HTTPStatusError
	if resp == nil && errors.As(err, &statusErr) {
		return &model.Response{StatusCode: statusErr.Code, Header: statusErr.Header, Body: statusErr.Body}
	}

	return resp
}
