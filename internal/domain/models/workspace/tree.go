package workspace

import (
	"fmt"

	"specforge/internal/domain"
)

// Resolve walks p from d. The empty path resolves to d itself.
func (d *Directory) Resolve(p Path) (Node, error) {
	var cur Node = d
	for i, seg := range p {
		dir, ok := cur.(*Directory)
		if !ok {
			return nil, pathErr("resolve", p[:i], domain.ErrNotADirectory)
		}
		child, ok := dir.Child(seg)
		if !ok {
			return nil, pathErr("resolve", p, domain.ErrNotFound)
		}
		cur = child
	}
	return cur, nil
}

// Stat parses and resolves a path.
func (d *Directory) Stat(path string) (Node, error) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	return d.Resolve(p)
}

// Read returns the content of the file at path.
func (d *Directory) Read(path string) (string, error) {
	p, err := ParsePath(path)
	if err != nil {
		return "", err
	}
	n, err := d.Resolve(p)
	if err != nil {
		return "", retag(err, "read")
	}
	switch n := n.(type) {
	case *File:
		return n.Content, nil
	case *Directory:
		return "", pathErr("read", p, domain.ErrIsADirectory)
	default:
		panic(fmt.Sprintf("workspace: unexpected node %T", n))
	}
}

// Write creates or overwrites the file at path, creating any missing
// intermediate directories.
func (d *Directory) Write(path, content string) error {
	p, err := parseLeaf("write", path)
	if err != nil {
		return err
	}
	parent, err := d.mkdirAll("write", p.Parent())
	if err != nil {
		return err
	}

	switch existing := mustChild(parent, p.Base()).(type) {
	case nil:
		parent.setChild(p.Base(), &File{Content: content})
	case *File:
		existing.Content = content
	case *Directory:
		return pathErr("write", p, domain.ErrIsADirectory)
	}
	return nil
}

// Create adds a new file or directory at path, creating any missing
// intermediate directories. Unlike Write it never overwrites.
func (d *Directory) Create(path string, kind Kind, content string) error {
	if !kind.Valid() {
		return &domain.PathError{Op: "create", Path: path, Err: fmt.Errorf("%w: unknown node type %q", domain.ErrInvalidArgument, kind)}
	}
	p, err := parseLeaf("create", path)
	if err != nil {
		return err
	}
	parent, err := d.mkdirAll("create", p.Parent())
	if err != nil {
		return err
	}
	if _, exists := parent.Child(p.Base()); exists {
		return pathErr("create", p, domain.ErrAlreadyExists)
	}

	if kind == KindDirectory {
		parent.setChild(p.Base(), NewDirectory())
	} else {
		parent.setChild(p.Base(), &File{Content: content})
	}
	return nil
}

// Delete removes the file or whole subtree at path.
func (d *Directory) Delete(path string) error {
	p, err := parseLeaf("delete", path)
	if err != nil {
		return err
	}
	n, err := d.Resolve(p.Parent())
	if err != nil {
		// A missing ancestor means the target is missing too.
		return retag(err, "delete")
	}
	parent, ok := n.(*Directory)
	if !ok {
		return pathErr("delete", p.Parent(), domain.ErrNotADirectory)
	}
	if !parent.removeChild(p.Base()) {
		return pathErr("delete", p, domain.ErrNotFound)
	}
	return nil
}

// mkdirAll returns the directory at p, creating missing directories on the
// way. An existing file anywhere along p fails with NotADirectory.
func (d *Directory) mkdirAll(op string, p Path) (*Directory, error) {
	cur := d
	for i, seg := range p {
		switch child := mustChild(cur, seg).(type) {
		case nil:
			next := NewDirectory()
			cur.setChild(seg, next)
			cur = next
		case *Directory:
			cur = child
		case *File:
			return nil, pathErr(op, p[:i+1], domain.ErrNotADirectory)
		}
	}
	return cur, nil
}

// mustChild returns the named child or an untyped nil, which lets callers
// switch over nil, *File and *Directory in one statement.
func mustChild(d *Directory, name string) Node {
	n, ok := d.Child(name)
	if !ok {
		return nil
	}
	return n
}

func parseLeaf(op, path string) (Path, error) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	if p.IsRoot() {
		return nil, &domain.PathError{Op: op, Path: path, Err: fmt.Errorf("%w: root cannot be %sd", domain.ErrInvalidPath, op)}
	}
	return p, nil
}

func pathErr(op string, p Path, err error) error {
	return &domain.PathError{Op: op, Path: p.String(), Err: err}
}

// retag rewrites the Op of a resolve error so callers see the operation
// they asked for.
func retag(err error, op string) error {
	if pe, ok := err.(*domain.PathError); ok {
		return &domain.PathError{Op: op, Path: pe.Path, Err: pe.Err}
	}
	return err
}
