package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"specforge/internal/config"
	"specforge/internal/repository/postgres"
)

var dropTables bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Create any missing tables for the configured driver",
	RunE:  runSchema,
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().BoolVar(&dropTables, "drop-tables", false, "Drop all tables first (postgres only, never in prod)")
}

func runSchema(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.Load()
	logger := newLogger(cmd)

	if dropTables {
		if cfg.Environment == "prod" {
			return fmt.Errorf("refusing to drop tables in the prod environment")
		}
		if cfg.DatabaseDriver != config.DriverPostgres {
			return fmt.Errorf("--drop-tables is only supported for the %s driver", config.DriverPostgres)
		}

		pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL, postgres.DefaultPoolOptions)
		if err != nil {
			return err
		}
		err = postgres.DropSchema(ctx, pool, postgres.NewTableNames(cfg.TablePrefix))
		pool.Close()
		if err != nil {
			return err
		}
		logger.Info("tables dropped", "table_prefix", cfg.TablePrefix)
	}

	a, err := openApp(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	logger.Info("schema ready",
		"environment", cfg.Environment,
		"driver", cfg.DatabaseDriver,
		"table_prefix", cfg.TablePrefix,
	)
	fmt.Fprintln(cmd.OutOrStdout(), "schema ready")
	return nil
}
