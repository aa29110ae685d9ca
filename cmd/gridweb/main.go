// Command gridweb serves the grid frontend. It proxies every interaction to the record
// service at upstream.url, or runs an embedded store when no url is configured.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/celerix-dev/celerix-grid/internal/config"
	"github.com/celerix-dev/celerix-grid/internal/engine"
	"github.com/celerix-dev/celerix-grid/internal/gateway"
	"github.com/celerix-dev/celerix-grid/internal/observability"
	"github.com/celerix-dev/celerix-grid/internal/render"
	"github.com/celerix-dev/celerix-grid/internal/server"
	"github.com/celerix-dev/celerix-grid/pkg/schema"
	"github.com/celerix-dev/celerix-grid/pkg/sdk"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	gin.SetMode(gin.ReleaseMode)
	logger.Info("starting grid frontend",
		zap.String("addr", cfg.Web.Addr),
		zap.String("upstream", cfg.Upstream.URL),
	)

	var seed []schema.Record
	if cfg.Upstream.URL == "" {
		seed = engine.DefaultSeed()
		if cfg.Store.SeedFile != "" {
			if seed, err = engine.LoadSeed(cfg.Store.SeedFile); err != nil {
				logger.Fatal("failed to load seed file", zap.String("path", cfg.Store.SeedFile), zap.Error(err))
			}
		}
	}

	store, err := sdk.New(sdk.Config{
		BaseURL:      cfg.Upstream.URL,
		Timeout:      cfg.Upstream.Timeout,
		MaxRetries:   cfg.Upstream.MaxRetries,
		RetryBackoff: cfg.Upstream.RetryBackoff,
	}, seed, logger)
	if err != nil {
		logger.Fatal("failed to initialize record store", zap.Error(err))
	}

	renderer, err := render.New()
	if err != nil {
		logger.Fatal("failed to parse templates", zap.Error(err))
	}

	srv := server.New("gridweb", cfg, logger)
	h := &gateway.Handler{Store: store, Renderer: renderer, Logger: logger}
	h.Register(srv.Engine())

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Listen(cfg.Web.Addr)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		if err != nil {
			logger.Error("server error", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("failed to shutdown HTTP server", zap.Error(err))
	}
	logger.Info("grid frontend shutdown complete")
}
