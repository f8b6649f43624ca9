// Package sandbox materialises a workspace tree onto a filesystem so it can
// be handed to an execution sandbox.
package sandbox

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"specforge/internal/domain/models/workspace"
)

const (
	dirPerm  os.FileMode = 0o755
	filePerm os.FileMode = 0o644
)

// Stats summarises one export
type Stats struct {
	Files       int
	Directories int
	Bytes       int64
}

// Exporter writes workspaces into a billy filesystem
type Exporter struct {
	fs     billy.Filesystem
	logger *slog.Logger
}

// NewExporter creates an exporter targeting fs
func NewExporter(fs billy.Filesystem, logger *slog.Logger) *Exporter {
	return &Exporter{fs: fs, logger: logger}
}

// Export writes every node of ws below the filesystem root. With clean set,
// existing top-level entries are removed first so the result mirrors the
// tree exactly.
func (e *Exporter) Export(ctx context.Context, ws *workspace.Workspace, clean bool) (Stats, error) {
	var stats Stats

	if clean {
		if err := e.clear(); err != nil {
			return stats, err
		}
	}

	for path, node := range ws.Root.Walk() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		switch n := node.(type) {
		case *workspace.Directory:
			if err := e.fs.MkdirAll(path, dirPerm); err != nil {
				return stats, fmt.Errorf("create directory %s: %w", path, err)
			}
			stats.Directories++
		case *workspace.File:
			if err := util.WriteFile(e.fs, path, []byte(n.Content), filePerm); err != nil {
				return stats, fmt.Errorf("write file %s: %w", path, err)
			}
			stats.Files++
			stats.Bytes += int64(len(n.Content))
		}
	}

	e.logger.Info("workspace exported",
		"project_id", ws.ProjectID,
		"revision", ws.Revision,
		"root", e.fs.Root(),
		"files", stats.Files,
		"directories", stats.Directories,
	)
	return stats, nil
}

func (e *Exporter) clear() error {
	entries, err := e.fs.ReadDir("/")
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("list export root: %w", err)
	}
	for _, entry := range entries {
		if err := util.RemoveAll(e.fs, entry.Name()); err != nil {
			return fmt.Errorf("remove %s: %w", entry.Name(), err)
		}
	}
	return nil
}
