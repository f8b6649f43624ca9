package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"specforge/internal/domain/repositories"
)

// Options configures Open
type Options struct {
	DatabaseURL string
	TablePrefix string
	Pool        PoolOptions
	// EnsureSchema creates missing tables on open
	EnsureSchema bool
}

type poolCloser struct {
	close func()
}

func (c poolCloser) Close() error {
	c.close()
	return nil
}

// Open connects to Postgres and wires every repository into a Store
func Open(ctx context.Context, opts Options, logger *slog.Logger) (*repositories.Store, error) {
	pool, err := CreateConnectionPool(ctx, opts.DatabaseURL, opts.Pool)
	if err != nil {
		return nil, err
	}

	tables := NewTableNames(opts.TablePrefix)
	if opts.EnsureSchema {
		if err := EnsureSchema(ctx, pool, tables); err != nil {
			pool.Close()
			return nil, fmt.Errorf("postgres: %w", err)
		}
	}

	cfg := &RepositoryConfig{Pool: pool, Tables: tables, Logger: logger}
	return &repositories.Store{
		SpecFiles:    NewSpecFileRepository(cfg),
		SpecVersions: NewSpecVersionRepository(cfg),
		Workspaces:   NewWorkspaceRepository(cfg),
		TxManager:    NewTransactionManager(pool, logger),
		Closer:       poolCloser{close: pool.Close},
	}, nil
}
