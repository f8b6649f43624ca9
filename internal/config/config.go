package config

import (
	"os"
	"strconv"
)

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Port            string
	Environment     string
	DatabaseDriver  string
	SupabaseURL     string
	SupabaseDBURL   string
	SupabaseJWKSURL string // Constructed from SupabaseURL + /auth/v1/.well-known/jwks.json
	SQLitePath      string
	DevUserID       string
	CORSOrigins     string
	TablePrefix     string
	// Logging
	LogDir      string
	LogMaxFiles int
	// ProjectionsFile overrides the embedded projection table when set
	ProjectionsFile string
	MCPEnabled      bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)
	supabaseURL := getEnv("SUPABASE_URL", "")

	// Construct JWKS URL from Supabase URL
	jwksURL := ""
	if supabaseURL != "" {
		jwksURL = supabaseURL + "/auth/v1/.well-known/jwks.json"
	}

	return &Config{
		Port:            getEnv("PORT", "8080"),
		Environment:     env,
		DatabaseDriver:  getEnv("DATABASE_DRIVER", getDefaultDriver(env)),
		SupabaseURL:     supabaseURL,
		SupabaseDBURL:   getEnv("SUPABASE_DB_URL", ""),
		SupabaseJWKSURL: jwksURL,
		SQLitePath:      getEnv("SQLITE_PATH", "specforge.db"),
		DevUserID:       getEnv("DEV_USER_ID", "00000000-0000-0000-0000-000000000001"),
		CORSOrigins:     getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:     tablePrefix,
		LogDir:          getEnv("LOG_DIR", ""),
		LogMaxFiles:     getEnvInt("LOG_MAX_FILES", 10),
		ProjectionsFile: getEnv("PROJECTIONS_FILE", ""),
		MCPEnabled:      getEnv("MCP_ENABLED", "true") == "true",
	}
}

// getDefaultDriver picks sqlite for local development and postgres elsewhere
func getDefaultDriver(env string) string {
	if env == "dev" {
		return DriverSQLite
	}
	return DriverPostgres
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	// Auto-generate based on environment
	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	case "dev":
		return "dev_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}
