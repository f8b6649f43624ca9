package workspace

import "iter"

// Walk returns a depth-first traversal of every node below d, keyed by its
// path relative to d. Directories are yielded before their children and
// siblings in insertion order. Each call to the returned sequence starts a
// fresh traversal.
func (d *Directory) Walk() iter.Seq2[string, Node] {
	return func(yield func(string, Node) bool) {
		walk(d, nil, yield)
	}
}

func walk(d *Directory, prefix Path, yield func(string, Node) bool) bool {
	for name, child := range d.Children() {
		p := prefix.Join(name)
		if !yield(p.String(), child) {
			return false
		}
		if sub, ok := child.(*Directory); ok {
			if !walk(sub, p, yield) {
				return false
			}
		}
	}
	return true
}

// Files iterates only the file leaves below d, in Walk order.
func (d *Directory) Files() iter.Seq2[string, *File] {
	return func(yield func(string, *File) bool) {
		for path, n := range d.Walk() {
			if f, ok := n.(*File); ok {
				if !yield(path, f) {
					return
				}
			}
		}
	}
}

// Counts returns the number of files and directories below d.
func (d *Directory) Counts() (files, dirs int) {
	for _, n := range d.Walk() {
		switch n.(type) {
		case *File:
			files++
		case *Directory:
			dirs++
		}
	}
	return files, dirs
}
