// Package repository selects a persistence backend from configuration.
package repository

import (
	"context"
	"fmt"
	"log/slog"

	"specforge/internal/config"
	"specforge/internal/domain/repositories"
	"specforge/internal/repository/postgres"
	"specforge/internal/repository/sqlite"
)

// Open opens the store for cfg.DatabaseDriver. SQLite always ensures its
// schema; Postgres only when ensureSchema is set.
func Open(ctx context.Context, cfg *config.Config, ensureSchema bool, logger *slog.Logger) (*repositories.Store, error) {
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		if cfg.SupabaseDBURL == "" {
			return nil, fmt.Errorf("SUPABASE_DB_URL is required for the %s driver", config.DriverPostgres)
		}
		store, err := postgres.Open(ctx, postgres.Options{
			DatabaseURL:  cfg.SupabaseDBURL,
			TablePrefix:  cfg.TablePrefix,
			Pool:         postgres.DefaultPoolOptions,
			EnsureSchema: ensureSchema,
		}, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("database connected",
			"driver", config.DriverPostgres,
			"max_conns", postgres.DefaultPoolOptions.MaxConns,
			"min_conns", postgres.DefaultPoolOptions.MinConns,
		)
		return store, nil

	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath, cfg.TablePrefix, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("database connected", "driver", config.DriverSQLite, "path", cfg.SQLitePath)
		return store, nil

	default:
		return nil, fmt.Errorf("unknown DATABASE_DRIVER %q (want %s or %s)", cfg.DatabaseDriver, config.DriverPostgres, config.DriverSQLite)
	}
}
