// Package server 是匹配服务的 HTTP 层：chi 路由、CORS、按 IP 限流、访问日志与 Prometheus 指标。
//
// 所有 /api 响应都使用统一信封：{"status": "success"|"error", "data": ..., "error": {"code", "message"}}。
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/rushteam/scoutmatch/config"
	"github.com/rushteam/scoutmatch/core"
	"github.com/rushteam/scoutmatch/pkg/metrics"
	"github.com/rushteam/scoutmatch/registry"
	"github.com/rushteam/scoutmatch/service"
)

// Matcher 是匹配 / 推荐用例，由 service.MatchService 实现
type Matcher interface {
	GetMatches(ctx context.Context, req service.MatchRequest) (*service.MatchList, error)
	Calculate(ctx context.Context, req service.MatchRequest) (*service.MatchList, error)
	Recommend(ctx context.Context, userID, matchType string, limit int) (*service.RecommendationResponse, error)
	RecommendAll(ctx context.Context, userID string, limit int) (*service.RecommendationResponse, error)
}

// Scorer 是打分引擎及其后端状态，由 registry.Registry 实现
type Scorer interface {
	core.MatchScorer
	Info() []registry.BackendInfo
}

// Server 是 HTTP 服务
type Server struct {
	cfg     config.ServerConfig
	matches Matcher
	scorer  Scorer

	defaultBackend string
	defaultTopN    int

	logger   zerolog.Logger
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer

	router chi.Router
}

// Option 是 Server 的配置选项
type Option func(*Server)

// WithLogger 设置 logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger.With().Str("component", "http").Logger()
	}
}

// WithMetrics 设置 HTTP 指标与 /metrics 暴露的 Gatherer
func WithMetrics(m *metrics.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

// WithDefaults 设置 /api/scoring/find 未指定参数时的后端与条数
func WithDefaults(backend string, topN int) Option {
	return func(s *Server) {
		if backend != "" {
			s.defaultBackend = backend
		}
		if topN > 0 {
			s.defaultTopN = topN
		}
	}
}

// New 创建 Server 并注册路由
func New(cfg config.ServerConfig, matches Matcher, scorer Scorer, opts ...Option) *Server {
	s := &Server{
		cfg:            cfg,
		matches:        matches,
		scorer:         scorer,
		defaultBackend: core.BackendKNN,
		defaultTopN:    5,
		logger:         zerolog.Nop(),
		gatherer:       prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggerMiddleware(s.logger, s.metrics))
	r.Use(chimiddleware.Recoverer)
	r.Use(corsMiddleware(s.cfg.CORSOrigins))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Use(rateLimitMiddleware(s.cfg.RateLimit, s.cfg.RateWindow))
		r.Use(chimiddleware.AllowContentType("application/json"))

		r.Get("/matches", s.handleMatches)
		r.Post("/matches/calculate", s.handleCalculate)
		r.Get("/recommendations", s.handleRecommendations)
		r.Post("/scoring/find", s.handleFind)
		r.Get("/scoring/backends", s.handleBackends)
	})
	return r
}

// Handler 返回根 http.Handler
func (s *Server) Handler() http.Handler { return s.router }

// Run 监听 cfg.Addr 直到 ctx 结束，然后在 ShutdownTimeout 内优雅退出
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.cfg.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	s.logger.Info().Msg("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
