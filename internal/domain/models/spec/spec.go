package spec

import (
	"fmt"
	"time"
)

// Well-known document types. Others are accepted; only the projection table
// decides whether a type shows up in the workspace.
const (
	FileTypeDesign       = "design"
	FileTypeRequirements = "requirements"
	FileTypeTasks        = "tasks"
)

// Changes summaries recorded on snapshots.
const (
	SummaryEdited = "edited"
)

// RollbackSummary is the snapshot summary written before restoring version v.
func RollbackSummary(v int) string {
	return fmt.Sprintf("pre-rollback to version %d", v)
}

// SpecFile is the current head of one document type within one project.
type SpecFile struct {
	ID        string    `json:"id" db:"id"`
	ProjectID string    `json:"project_id" db:"project_id"`
	FileType  string    `json:"file_type" db:"file_type"`
	Content   string    `json:"content" db:"content"`
	Version   int       `json:"version" db:"version"` // starts at 1, +1 per update/rollback
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// SpecVersion is an immutable snapshot of a SpecFile before a mutation.
type SpecVersion struct {
	ID             string    `json:"id" db:"id"`
	SpecFileID     string    `json:"spec_file_id" db:"spec_file_id"`
	Version        int       `json:"version" db:"version"`
	Content        string    `json:"content" db:"content"`
	ChangesSummary string    `json:"changes_summary" db:"changes_summary"`
	CreatedBy      string    `json:"created_by" db:"created_by"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
