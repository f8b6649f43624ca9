package projection

import (
	"bytes"
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"specforge/internal/domain/models/workspace"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Table is the read-only file_type → paths mapping
type Table struct {
	rules map[string][]string
	order []string
}

// DefaultTable loads the embedded table
func DefaultTable() (*Table, error) {
	data, err := configFiles.ReadFile("config/default.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read default projections: %w", err)
	}
	return Parse(data)
}

// LoadFile loads a table from disk, falling back to the embedded default
// when path is empty
func LoadFile(path string) (*Table, error) {
	if path == "" {
		return DefaultTable()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Parse decodes and validates a YAML table. Every path must be a valid
// non-root workspace path and no file type may appear twice.
func Parse(data []byte) (*Table, error) {
	var f tableFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal projections: %w", err)
	}

	t := &Table{rules: make(map[string][]string, len(f.Projections))}
	for _, rule := range f.Projections {
		if rule.FileType == "" {
			return nil, fmt.Errorf("projection rule without file_type")
		}
		if _, dup := t.rules[rule.FileType]; dup {
			return nil, fmt.Errorf("duplicate projection rule for %q", rule.FileType)
		}
		paths := make([]string, 0, len(rule.Paths))
		for _, raw := range rule.Paths {
			p, err := workspace.ParsePath(raw)
			if err != nil {
				return nil, fmt.Errorf("projection %q: %w", rule.FileType, err)
			}
			if p.IsRoot() {
				return nil, fmt.Errorf("projection %q: root is not a file path", rule.FileType)
			}
			paths = append(paths, p.String())
		}
		t.rules[rule.FileType] = paths
		t.order = append(t.order, rule.FileType)
	}
	return t, nil
}

// Paths returns the ordered target paths for a file type, or nil if the
// type is not projected
func (t *Table) Paths(fileType string) []string {
	return t.rules[fileType]
}

// FileTypes lists projected types in table order
func (t *Table) FileTypes() []string {
	return append([]string(nil), t.order...)
}
