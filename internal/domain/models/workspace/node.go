package workspace

import (
	"iter"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind tags the two node variants.
type Kind string

const (
	KindFile      Kind = "file"
	KindDirectory Kind = "directory"
)

// Valid reports whether k names a node variant.
func (k Kind) Valid() bool {
	return k == KindFile || k == KindDirectory
}

// Node is a workspace tree node. It is implemented only by *File and
// *Directory, so a type switch over those two cases is exhaustive.
type Node interface {
	Kind() Kind
	isNode()
}

// File is a leaf holding text content.
type File struct {
	Content string
}

func (*File) Kind() Kind { return KindFile }
func (*File) isNode()    {}

// Directory maps child names to nodes, remembering insertion order.
// The zero value is an empty directory.
type Directory struct {
	children *orderedmap.OrderedMap[string, Node]
}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	return &Directory{children: orderedmap.New[string, Node]()}
}

func (*Directory) Kind() Kind { return KindDirectory }
func (*Directory) isNode()    {}

func (d *Directory) entries() *orderedmap.OrderedMap[string, Node] {
	if d.children == nil {
		d.children = orderedmap.New[string, Node]()
	}
	return d.children
}

// Child returns the named child.
func (d *Directory) Child(name string) (Node, bool) {
	if d.children == nil {
		return nil, false
	}
	return d.children.Get(name)
}

// Len returns the number of direct children.
func (d *Directory) Len() int {
	if d.children == nil {
		return 0
	}
	return d.children.Len()
}

// Names returns child names in insertion order.
func (d *Directory) Names() []string {
	names := make([]string, 0, d.Len())
	for name := range d.Children() {
		names = append(names, name)
	}
	return names
}

// Children iterates direct children in insertion order.
func (d *Directory) Children() iter.Seq2[string, Node] {
	return func(yield func(string, Node) bool) {
		if d.children == nil {
			return
		}
		for pair := d.children.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}

// setChild adds or replaces a child. A replaced child keeps its position.
func (d *Directory) setChild(name string, n Node) {
	d.entries().Set(name, n)
}

func (d *Directory) removeChild(name string) bool {
	if d.children == nil {
		return false
	}
	_, ok := d.children.Delete(name)
	return ok
}

// Workspace is the per-project root directory.
type Workspace struct {
	ProjectID string     `json:"project_id"`
	Root      *Directory `json:"root"`
	Revision  int64      `json:"revision"` // bumped on every persisted mutation
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// New returns an empty workspace for a project.
func New(projectID string) *Workspace {
	now := time.Now()
	return &Workspace{
		ProjectID: projectID,
		Root:      NewDirectory(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
