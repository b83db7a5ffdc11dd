package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oshokin/aigc-client/internal/backend"
	"github.com/oshokin/aigc-client/internal/client"
	"github.com/oshokin/aigc-client/internal/config"
	"github.com/oshokin/aigc-client/internal/logger"
	"github.com/oshokin/aigc-client/internal/model"
	"github.com/oshokin/aigc-client/internal/stream"
	"github.com/oshokin/aigc-client/internal/utils"
)

const (
	// relayStreamPath is the route prefix forwarded upstream.
	relayStreamPath = "/stream"
	// maxRelayBodySize caps request bodies accepted by the relay.
	maxRelayBodySize = 8 << 20
	// corsMaxAge is how long browsers may cache preflight answers.
	corsMaxAge = 12 * time.Hour
)

// droppedRelayHeaders are not forwarded upstream.
//
//nolint:gochecknoglobals // Immutable lookup table.
var droppedRelayHeaders = []string{
	"Connection", "Keep-Alive", "Proxy-Authenticate", "Proxy-Authorization", "Te", "Trailer",
	"Transfer-Encoding", "Upgrade", "Host", "Content-Length", "Accept-Encoding", "Origin", "Cookie",
}

// ExecuteRelayCommand serves the event-stream relay until ctx is canceled.
func ExecuteRelayCommand(ctx context.Context, cfg *config.Config) {
	if err := RunRelay(ctx, cfg); err != nil {
		logger.Fatalf(ctx, "Relay failed: %v", err)
	}
}

// RunRelay serves the event-stream relay until ctx is canceled.
func RunRelay(ctx context.Context, cfg *config.Config) error {
	if cfg.RelayUpstream == "" {
		return ErrNoUpstream
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	c, err := newClient(cfg, registry)
	if err != nil {
		return err
	}

	defer func() {
		if shutdownErr := c.Shutdown(); shutdownErr != nil {
			logger.Warnf(ctx, "Failed to shut down client: %v", shutdownErr)
		}
	}()

	handler, err := NewRelayHandler(ctx, cfg, c, registry)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.RelayListen,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	serveErr := make(chan error, 1)

	go func() {
		logger.Infof(ctx, "Relaying %s%s/* to %s via the %s backend",
			cfg.RelayListen, relayStreamPath, cfg.RelayUpstream, c.BackendName())

		serveErr <- server.ListenAndServe()
	}()

	select {
	case err = <-serveErr:
		return fmt.Errorf("relay server stopped: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err = server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to stop relay server: %w", err)
	}

	return nil
}

// NewRelayHandler builds the relay routes:
// POST/GET /stream/*path forwards to relay_upstream and relays the event stream,
// GET /metrics exposes gatherer and GET /healthz answers "ok".
func NewRelayHandler(
	ctx context.Context,
	cfg *config.Config,
	c client.Client,
	gatherer prometheus.Gatherer,
) (http.Handler, error) {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery(), accessLog(ctx))

	corsConfig := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Authorization", "Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           corsMaxAge,
	}

	if len(cfg.RelayAllowedOrigins) == 0 || slices.Contains(cfg.RelayAllowedOrigins, "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.RelayAllowedOrigins
	}

	if err := corsConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid relay_allowed_origins: %w", err)
	}

	engine.Use(cors.New(corsConfig))

	relay := &relayHandler{cfg: cfg, client: c}

	engine.GET("/healthz", func(ginCtx *gin.Context) { ginCtx.String(http.StatusOK, "ok") })
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	engine.POST(relayStreamPath+"/*path", relay.forward)
	engine.GET(relayStreamPath+"/*path", relay.forward)

	return engine, nil
}

type relayHandler struct {
	cfg    *config.Config
	client client.Client
}

func (h *relayHandler) forward(ginCtx *gin.Context) {
	ctx := client.WithUserInfo(ginCtx.Request.Context(), "relay", ginCtx.ClientIP())

	body, err := io.ReadAll(http.MaxBytesReader(ginCtx.Writer, ginCtx.Request.Body, maxRelayBodySize))
	if err != nil {
		ginCtx.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})

		return
	}

	target := strings.TrimSuffix(h.cfg.RelayUpstream, "/") + ginCtx.Param("path")
	if rawQuery := ginCtx.Request.URL.RawQuery; rawQuery != "" {
		target += "?" + rawQuery
	}

	req := model.NewRequest(model.Method(ginCtx.Request.Method), target)
	req.Header = model.FromHTTPHeader(ginCtx.Request.Header)

	for _, name := range droppedRelayHeaders {
		req.Header.Del(name)
	}

	onFailure := func(resp *model.Response) {
		logger.Warnf(ctx, "Upstream rejected the stream with status %d: %s",
			resp.StatusCode, utils.LogPayload(resp.Body, h.cfg.MaxLogLength))
	}

	s, err := h.client.StreamEvents(ctx, req, body, onFailure)
	if err != nil {
		ginCtx.JSON(relayErrorStatus(err), gin.H{"error": err.Error()})

		return
	}

	if err = stream.WriteEventStream(ctx, ginCtx.Writer, s); err != nil {
		logger.Debugf(ctx, "Relayed stream ended with error: %v", err)
	}
}

// relayErrorStatus picks the status answered when the upstream could not be reached.
func relayErrorStatus(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidRequest):
		return http.StatusBadRequest
	case backend.FailureReason(err) == "timeout":
		return http.StatusGatewayTimeout
	case errors.Is(err, model.ErrShutdown):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// accessLog writes one log line per relayed request.
func accessLog(ctx context.Context) gin.HandlerFunc {
	return func(ginCtx *gin.Context) {
		startedAt := time.Now()

		ginCtx.Next()

		logger.InfoKV(ctx, "relay request",
			"method", ginCtx.Request.Method,
			"path", ginCtx.Request.URL.Path,
			"status", ginCtx.Writer.Status(),
			"duration", time.Since(startedAt),
			"client", ginCtx.ClientIP(),
		)
	}
}
