package sdk

import (
	"github.com/celerix-dev/celerix-grid/internal/engine"
	"github.com/celerix-dev/celerix-grid/pkg/schema"
	"go.uber.org/zap"
)

// New returns the store the frontend should talk to.
// With a BaseURL it is the remote Client; without one it falls back to an embedded
// MemStore seeded with seed, so the caller does not care which it got.
func New(cfg Config, seed []schema.Record, logger *zap.Logger) (RecordStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.BaseURL != "" {
		client, err := NewClient(cfg, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("using remote record service", zap.String("url", cfg.BaseURL))
		return client, nil
	}

	logger.Info("no record service configured, using embedded store", zap.Int("seed_records", len(seed)))
	return engine.NewMemStore(seed, engine.WithLogger(logger)), nil
}
