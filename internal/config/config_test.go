package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("TABLE_PREFIX", "")
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("SUPABASE_URL", "")

	cfg := Load()
	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, "dev_", cfg.TablePrefix)
	assert.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	assert.Empty(t, cfg.SupabaseJWKSURL)
	assert.True(t, cfg.MCPEnabled)
	assert.Equal(t, 10, cfg.LogMaxFiles)
}

func TestLoadProd(t *testing.T) {
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("TABLE_PREFIX", "")
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("SUPABASE_URL", "https://abc.supabase.co")
	t.Setenv("LOG_MAX_FILES", "not-a-number")

	cfg := Load()
	assert.Equal(t, "prod_", cfg.TablePrefix)
	assert.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	assert.Equal(t, "https://abc.supabase.co/auth/v1/.well-known/jwks.json", cfg.SupabaseJWKSURL)
	assert.Equal(t, 10, cfg.LogMaxFiles)
}

func TestTablePrefixOverride(t *testing.T) {
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("TABLE_PREFIX", "custom_")
	assert.Equal(t, "custom_", Load().TablePrefix)
}

func TestSetupLogFileKeepsNewest(t *testing.T) {
	dir := t.TempDir()
	seed := []string{
		"api-2024-01-01T00-00-00.log",
		"api-2024-01-02T00-00-00.log",
		"api-2024-01-03T00-00-00.log",
		"worker-2024-01-01T00-00-00.log",
	}
	for _, name := range seed {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	f, err := SetupLogFile(dir, "api", 2)
	require.NoError(t, err)
	defer f.Close()
	assert.True(t, strings.HasPrefix(filepath.Base(f.Name()), "api-"))

	files, err := filepath.Glob(filepath.Join(dir, "api-*.log"))
	require.NoError(t, err)
	assert.Len(t, files, 2)
	assert.Contains(t, files, f.Name())
	assert.NotContains(t, files, filepath.Join(dir, "api-2024-01-01T00-00-00.log"))
	assert.NotContains(t, files, filepath.Join(dir, "api-2024-01-02T00-00-00.log"))

	_, err = os.Stat(filepath.Join(dir, "worker-2024-01-01T00-00-00.log"))
	assert.NoError(t, err, "other services' logs are untouched")
}

func TestSetupLogFileRequiresService(t *testing.T) {
	_, err := SetupLogFile(t.TempDir(), "", 2)
	assert.Error(t, err)
}

func TestSetupLogFileZeroKeepsAll(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"api-2024-01-01T00-00-00.log", "api-2024-01-02T00-00-00.log"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	f, err := SetupLogFile(dir, "api", 0)
	require.NoError(t, err)
	defer f.Close()

	files, err := filepath.Glob(filepath.Join(dir, "api-*.log"))
	require.NoError(t, err)
	assert.Len(t, files, 3)
}
