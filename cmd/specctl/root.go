package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"specforge/internal/config"
	"specforge/internal/domain/repositories"
	"specforge/internal/domain/services"
	"specforge/internal/projection"
	"specforge/internal/repository"
	"specforge/internal/service/coordinator"
	specsvc "specforge/internal/service/spec"
	wssvc "specforge/internal/service/workspace"
)

var debugMode bool

var rootCmd = &cobra.Command{
	Use:   "specctl",
	Short: "Operations tool for the spec and workspace store",
	Long:  "specctl bootstraps the schema, provisions spec documents and exports workspaces to disk.",
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debugMode, "debug", "v", false, "Debug logging")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		// Load .env file (silently ignore if it doesn't exist)
		_ = godotenv.Load()
	}
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// app holds the wired services for one command run
type app struct {
	cfg         *config.Config
	store       *repositories.Store
	specs       services.SpecService
	coordinator services.Coordinator
	logger      *slog.Logger
}

func openApp(ctx context.Context, cmd *cobra.Command, ensureSchema bool) (*app, error) {
	cfg := config.Load()
	logger := newLogger(cmd)

	store, err := repository.Open(ctx, cfg, ensureSchema, logger)
	if err != nil {
		return nil, err
	}

	table, err := projection.LoadFile(cfg.ProjectionsFile)
	if err != nil {
		store.Close()
		return nil, err
	}

	specs := specsvc.NewService(store.SpecFiles, store.SpecVersions, store.TxManager, logger)
	ws := wssvc.NewService(store.Workspaces, logger)
	return &app{
		cfg:         cfg,
		store:       store,
		specs:       specs,
		coordinator: coordinator.New(specs, ws, projection.NewEngine(table, specs, ws, logger), nil, logger),
		logger:      logger,
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
