// Package server wraps a gin engine with the middleware stack and lifecycle shared by
// the record service and the grid frontend.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/celerix-dev/celerix-grid/internal/config"
	"github.com/celerix-dev/celerix-grid/internal/observability"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Server struct {
	name   string
	cfg    *config.Config
	engine *gin.Engine
	logger *zap.Logger

	mu       sync.Mutex
	listener net.Listener
	httpSrv  *http.Server
}

// New builds a server named name (used as the metrics "service" label) with the common
// middleware and the /metrics endpoint already mounted.
func New(name string, cfg *config.Config, logger *zap.Logger) *Server {
	observability.RegisterMetrics()

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(observability.RequestID())
	engine.Use(observability.RequestLogger(logger))
	engine.Use(observability.RequestMetrics(name))
	engine.Use(cors.New(corsConfig(cfg.CORS)))
	if cfg.RateLimiter.Enabled {
		engine.Use(observability.RateLimit(cfg.RateLimiter.RequestsPerSecond, cfg.RateLimiter.BurstSize, logger))
	}

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return &Server{
		name:   name,
		cfg:    cfg,
		engine: engine,
		logger: logger,
	}
}

func corsConfig(c config.CORSConfig) cors.Config {
	cc := cors.DefaultConfig()
	cc.AllowHeaders = append(cc.AllowHeaders, observability.RequestIDHeader,
		"HX-Request", "HX-Target", "HX-Trigger", "HX-Current-URL")
	cc.ExposeHeaders = []string{observability.RequestIDHeader, "HX-Retarget", "HX-Reswap"}
	if len(c.AllowedOrigins) == 0 || (len(c.AllowedOrigins) == 1 && c.AllowedOrigins[0] == "*") {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = c.AllowedOrigins
	}
	return cc
}

// Engine returns the gin engine for route registration.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Listen binds addr and serves until Shutdown. It returns nil after a clean shutdown.
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	s.mu.Lock()
	s.listener = ln
	s.httpSrv = srv
	s.mu.Unlock()

	s.logger.Info("server listening", zap.String("server", s.name), zap.String("addr", ln.Addr().String()))
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the bound address, or "" before Listen has bound.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops accepting connections and waits for in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpSrv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	s.logger.Info("server shutting down", zap.String("server", s.name))
	return srv.Shutdown(ctx)
}

// Stop shuts down within the configured shutdown timeout.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	return s.Shutdown(ctx)
}
