package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"specforge/internal/agenttools"
	"specforge/internal/auth"
	"specforge/internal/config"
	"specforge/internal/handler"
	"specforge/internal/metrics"
	"specforge/internal/middleware"
	"specforge/internal/projection"
	"specforge/internal/repository"
	"specforge/internal/service/coordinator"
	specsvc "specforge/internal/service/spec"
	wssvc "specforge/internal/service/workspace"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	var logOutput io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, "specforge-server", cfg.LogMaxFiles)
		if err != nil {
			log.Fatalf("Failed to setup log file: %v", err)
		}
		defer logFile.Close()
		logOutput = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger) // Set as default logger

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"driver", cfg.DatabaseDriver,
		"table_prefix", cfg.TablePrefix,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create JWT verifier for Supabase authentication; without one every
	// request runs as the dev user
	var jwtVerifier auth.JWTVerifier
	if cfg.SupabaseJWKSURL != "" {
		v, err := auth.NewJWTVerifier(ctx, cfg.SupabaseJWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer v.Close()
		jwtVerifier = v
	} else if cfg.Environment != "dev" {
		log.Fatalf("SUPABASE_URL is required outside dev")
	} else {
		logger.Warn("DEV MODE: authentication disabled", "dev_user_id", cfg.DevUserID)
	}

	// Open persistence
	store, err := repository.Open(ctx, cfg, cfg.Environment == "dev", logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	// Projection table
	table, err := projection.LoadFile(cfg.ProjectionsFile)
	if err != nil {
		log.Fatalf("Failed to load projection table: %v", err)
	}
	logger.Info("projection table loaded", "file_types", table.FileTypes())

	m := metrics.New()

	// Create services
	specService := specsvc.NewService(store.SpecFiles, store.SpecVersions, store.TxManager, logger)
	workspaceService := wssvc.NewService(store.Workspaces, logger)
	projector := projection.NewEngine(table, specService, workspaceService, logger)
	coord := coordinator.New(specService, workspaceService, projector, m, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	handler.Routes(mux,
		handler.NewSpecHandler(coord, logger),
		handler.NewWorkspaceHandler(coord, logger),
		m,
	)
	mux.Handle("GET /metrics", m.Handler())

	if cfg.MCPEnabled {
		mcpServer := agenttools.NewServer(coord, logger)
		mux.Handle("/mcp", m.InstrumentHandler("/mcp", server.NewStreamableHTTPServer(mcpServer)))
		logger.Info("MCP endpoint enabled", "path", "/mcp")
	}

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	h = middleware.AuthMiddleware(jwtVerifier, cfg.DevUserID, logger)(h)
	h = middleware.Recovery(logger, m)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "Mcp-Session-Id"},
		ExposedHeaders:   []string{"Mcp-Session-Id"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled to allow long-lived MCP streams
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	// Start server
	logger.Info("listening", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
}
