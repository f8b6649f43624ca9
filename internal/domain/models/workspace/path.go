package workspace

import (
	"fmt"
	"strings"

	"specforge/internal/domain"
)

const (
	// MaxPathLength bounds a full workspace path.
	MaxPathLength = 1024

	// MaxSegmentLength bounds one file or directory name.
	MaxSegmentLength = 255
)

// Path is a parsed workspace path. The empty Path is the root.
type Path []string

// ParsePath splits a "/"-delimited path into validated segments.
//
//   - "" and "/" are the root
//   - a single leading "/" is ignored ("/src/app.js" == "src/app.js")
//   - empty segments ("a//b", "a/") are rejected
//   - "." and ".." are rejected instead of resolved, so tree keys always
//     equal the literal requested segments
func ParsePath(raw string) (Path, error) {
	if len(raw) > MaxPathLength {
		return nil, invalidPath(raw, fmt.Errorf("path exceeds maximum length of %d", MaxPathLength))
	}

	trimmed := strings.TrimPrefix(raw, "/")
	if trimmed == "" {
		return Path{}, nil
	}

	segments := strings.Split(trimmed, "/")
	for i, seg := range segments {
		if err := ValidateSegment(seg); err != nil {
			return nil, invalidPath(raw, fmt.Errorf("segment %d: %w", i, err))
		}
	}
	return Path(segments), nil
}

// MustParsePath is ParsePath for trusted constants; it panics on error.
func MustParsePath(raw string) Path {
	p, err := ParsePath(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// ValidateSegment checks a single file or directory name.
func ValidateSegment(seg string) error {
	switch {
	case seg == "":
		return fmt.Errorf("empty segment")
	case seg == "." || seg == "..":
		return fmt.Errorf("traversal segment %q not allowed", seg)
	case len(seg) > MaxSegmentLength:
		return fmt.Errorf("segment exceeds maximum length of %d", MaxSegmentLength)
	case strings.ContainsAny(seg, "\\\x00"):
		return fmt.Errorf("segment %q contains an invalid character", seg)
	}
	return nil
}

func invalidPath(raw string, cause error) error {
	return &domain.PathError{
		Op:   "parse",
		Path: raw,
		Err:  fmt.Errorf("%w: %v", domain.ErrInvalidPath, cause),
	}
}

// String joins the segments with "/". The root renders as "".
func (p Path) String() string {
	return strings.Join(p, "/")
}

// IsRoot reports whether p addresses the root directory.
func (p Path) IsRoot() bool {
	return len(p) == 0
}

// Parent returns all segments but the last. The root's parent is the root.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return p
	}
	return p[:len(p)-1]
}

// Base returns the last segment, or "" for the root.
func (p Path) Base() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Join appends a child segment, returning a new Path.
func (p Path) Join(name string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, name)
}
