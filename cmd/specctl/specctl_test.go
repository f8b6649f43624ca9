package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	return out.String()
}

func TestSchemaProvisionExport(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "specctl.db"))
	t.Setenv("PROJECTIONS_FILE", "")

	assert.Contains(t, run(t, "schema"), "schema ready")

	contentFile := filepath.Join(dir, "seed.md")
	require.NoError(t, os.WriteFile(contentFile, []byte("# Seed"), 0o644))

	out := run(t, "provision", "--project", "P", "--type", "design,tasks", "--file", contentFile)
	assert.Contains(t, out, "design: version 1")
	assert.Contains(t, out, "tasks: version 1")

	target := filepath.Join(dir, "export")
	require.NoError(t, os.MkdirAll(filepath.Join(target, "stale"), 0o755))

	out = run(t, "export", "--project", "P", "--out", target, "--clean")
	assert.Contains(t, out, "exported 2 files, 1 directories")

	data, err := os.ReadFile(filepath.Join(target, "specs", "design.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Seed", string(data))

	_, err = os.Stat(filepath.Join(target, "stale"))
	assert.True(t, os.IsNotExist(err))
}
