// Package app 提供应用程序的初始化和配置功能.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yeisme/wikiviews/pkg/api"
	"github.com/yeisme/wikiviews/pkg/configs"
	"github.com/yeisme/wikiviews/pkg/internal/handle"
	"github.com/yeisme/wikiviews/pkg/internal/service"
	"github.com/yeisme/wikiviews/pkg/internal/wikimedia"
	"github.com/yeisme/wikiviews/pkg/log"
	"github.com/yeisme/wikiviews/pkg/metrics"
	"github.com/yeisme/wikiviews/pkg/middleware"
	"github.com/yeisme/wikiviews/pkg/tracing"
)

const (
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 60 * time.Second
)

type App struct {
	Engine   *gin.Engine
	Service  *service.PageviewsService
	config   *configs.AppConfig
	upstream *wikimedia.Client
}

// NewApp 基于已加载的配置组装 gin 引擎、上游客户端与聚合服务.
func NewApp(config *configs.AppConfig, opts ...wikimedia.Option) (*App, error) {
	// 初始化追踪
	if err := tracing.InitTracer(config.Tracing); err != nil {
		return nil, fmt.Errorf("error initializing tracing: %w", err)
	}

	// 初始化监控
	if err := metrics.InitMetrics(config.Metrics); err != nil {
		return nil, fmt.Errorf("error initializing metrics: %w", err)
	}

	l := log.Logger()
	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	upstream := wikimedia.New(config.Upstream, opts...)
	svc := service.NewPageviewsService(upstream, config.Upstream)

	metricsPath := config.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}

	engine := gin.New()
	handle.LoadTemplates(engine)

	engine.Use(
		middleware.RequestIDMiddleware(),
		gin.CustomRecovery(handle.Recovery),
		middleware.GinLoggerMiddleware(),
		middleware.CORSMiddleware(config.Server),
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{metricsPath})),
		middleware.TracingMiddleware(),
		middleware.PrometheusMiddleware(),
	)

	api.RegisterGroup(engine, handle.NewPageviewHandlers(svc), upstream)

	if config.Metrics.Enabled {
		if err := metrics.StartMetricsServer(config.Metrics, engine); err != nil {
			return nil, fmt.Errorf("error starting metrics endpoint: %w", err)
		}
	}

	return &App{
		Engine:   engine,
		Service:  svc,
		config:   config,
		upstream: upstream,
	}, nil
}

// Run 启动 HTTP 服务，ctx 取消后在 server.timeout 内优雅关闭.
func (a *App) Run(ctx context.Context) error {
	l := log.Logger()

	srv := &http.Server{
		Addr:              a.config.Server.GetAddr(),
		Handler:           a.Engine,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		l.Info().Str("addr", srv.Addr).Str("upstream", a.config.Upstream.GetBaseURL()).Msg("server starting")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
	}

	l.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.GetTimeoutDuration())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	if err := tracing.ShutdownTracer(shutdownCtx); err != nil {
		l.Warn().Err(err).Msg("failed to shutdown tracer")
	}

	l.Info().Msg("server shutdown complete")

	return nil
}
