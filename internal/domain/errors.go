package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - match with errors.Is()
var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrNotADirectory    = errors.New("not a directory")
	ErrIsADirectory     = errors.New("is a directory")
	ErrInvalidPath      = errors.New("invalid path")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrConflict         = errors.New("version conflict")
	ErrProjectionFailed = errors.New("projection failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
)

// ErrValidation is kept for request validation failures; it is the same
// sentinel as ErrInvalidArgument.
var ErrValidation = ErrInvalidArgument

// PathError records a failed tree operation on a workspace path.
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Path, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

// StatusCode implements HTTPError
func (e *PathError) StatusCode() int {
	switch {
	case errors.Is(e.Err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(e.Err, ErrAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// ConflictError represents a lost optimistic-concurrency race.
type ConflictError struct {
	ResourceType string // spec_file or workspace
	ResourceID   string
	Expected     int64 // version/revision the writer read
	Current      int64 // version/revision found at commit time (0 if unknown)
}

func (e *ConflictError) Error() string {
	if e.Current > 0 {
		return fmt.Sprintf("%s %s: expected version %d, found %d: %v",
			e.ResourceType, e.ResourceID, e.Expected, e.Current, ErrConflict)
	}
	return fmt.Sprintf("%s %s: expected version %d: %v", e.ResourceType, e.ResourceID, e.Expected, ErrConflict)
}

// StatusCode implements HTTPError
func (e *ConflictError) StatusCode() int { return http.StatusConflict }

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// ProjectionError reports that a committed spec change could not be written
// into the project's workspace. The spec change itself stays committed.
type ProjectionError struct {
	ProjectID string
	FileType  string
	Path      string
	Err       error
}

func (e *ProjectionError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("project %s spec %s: %v: %v", e.ProjectID, e.FileType, ErrProjectionFailed, e.Err)
	}
	return fmt.Sprintf("project %s spec %s -> %s: %v: %v", e.ProjectID, e.FileType, e.Path, ErrProjectionFailed, e.Err)
}

func (e *ProjectionError) Unwrap() error { return e.Err }

// Is allows errors.Is() to match against ErrProjectionFailed
func (e *ProjectionError) Is(target error) bool { return target == ErrProjectionFailed }

// StatusCode implements HTTPError
func (e *ProjectionError) StatusCode() int { return http.StatusInternalServerError }
