package main

import (
	"context"
	"fmt"

	"github.com/basui01/brigade/checkpoint"
	"github.com/basui01/brigade/config"
)

// openStore selects and opens the checkpoint.Store backend cfg names.
// jobID is only consulted by the redis and sql backends, which key their
// state by job id up front rather than discovering it from an existing
// checkpoint the way FileStore does from its path.
func openStore(ctx context.Context, cfg config.StoreConfig, checkpointPath, jobID string) (checkpoint.Store, error) {
	switch cfg.Backend {
	case "", "file":
		store, err := checkpoint.OpenFileStore(checkpointPath)
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}
		return store, nil

	case "redis":
		store, err := checkpoint.OpenRedisStore(ctx, jobID, checkpoint.RedisStoreConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
			LockTTL:  cfg.Redis.LockTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		return store, nil

	case "sql":
		dialect, err := sqlDialect(cfg.SQL.Dialect)
		if err != nil {
			return nil, err
		}
		store, err := checkpoint.OpenSQLStore(ctx, jobID, checkpoint.SQLStoreConfig{
			Dialect:         dialect,
			DSN:             cfg.SQL.DSN,
			MigrationsTable: cfg.SQL.MigrationsTable,
		})
		if err != nil {
			return nil, fmt.Errorf("open sql store: %w", err)
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

func sqlDialect(name string) (checkpoint.Dialect, error) {
	switch name {
	case "postgres":
		return checkpoint.DialectPostgres, nil
	case "mysql":
		return checkpoint.DialectMySQL, nil
	case "sqlite":
		return checkpoint.DialectSQLite, nil
	default:
		return "", fmt.Errorf("unknown sql dialect %q", name)
	}
}
