// Command gridstored runs the record service: the authoritative in-memory store behind a JSON API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/celerix-dev/celerix-grid/internal/api"
	"github.com/celerix-dev/celerix-grid/internal/config"
	"github.com/celerix-dev/celerix-grid/internal/engine"
	"github.com/celerix-dev/celerix-grid/internal/observability"
	"github.com/celerix-dev/celerix-grid/internal/server"
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
	logger.Info("starting record service", zap.String("addr", cfg.Service.Addr))

	seed := engine.DefaultSeed()
	if cfg.Store.SeedFile != "" {
		seed, err = engine.LoadSeed(cfg.Store.SeedFile)
		if err != nil {
			logger.Fatal("failed to load seed file", zap.String("path", cfg.Store.SeedFile), zap.Error(err))
		}
	}

	store := engine.NewMemStore(seed, engine.WithLogger(logger))
	logger.Info("engine started", zap.Int("records", store.Len()))

	srv := server.New("gridstored", cfg, logger)
	h := &api.Handler{Store: store, Logger: logger}
	h.Register(srv.Engine().Group("/api"))

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Listen(cfg.Service.Addr)
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
	logger.Info("record service shutdown complete")
}
