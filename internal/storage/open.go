package storage

import (
	"context"
	"fmt"

	"github.com/durianostics/durianostics-client/pkg/config"
)

// Open builds the store selected by configuration.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.NormalizedDriver() {
	case config.StorageDriverSQLite:
		return NewSQLiteStore(cfg.SQLitePath)
	case config.StorageDriverRedis:
		return NewRedisStore(ctx, cfg)
	case config.StorageDriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
