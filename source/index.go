package source

import (
	"log"
	"path"

	"cadenza/storage"
)

// maxWalkDepth bounds the traversal recursion. Directory trees are expected
// to be trees, but a backend that exposes link cycles must not walk us off
// the stack.
const maxWalkDepth = 32

// Index is a lazy directory index: it answers positional queries over the
// qualifying files under a root by re-walking the tree on every query,
// never materializing the file list. Traversal is depth-first pre-order
// with siblings in the order the filesystem yields them, so the same
// unmodified tree always produces the same ordering.
type Index struct {
	fs      storage.FileSystem
	root    string
	matcher Matcher
}

// NewIndex creates an index over the qualifying files under root.
func NewIndex(fs storage.FileSystem, root string, matcher Matcher) *Index {
	if root == "" {
		root = "/"
	}
	return &Index{fs: fs, root: root, matcher: matcher}
}

// PathAt returns the path of the ordinal-th (0-based) qualifying file in
// traversal order. Ordinals past the end, and negative ordinals, report
// not found. Each call re-walks the tree from the root.
func (idx *Index) PathAt(ordinal int) (string, bool) {
	if ordinal < 0 {
		return "", false
	}

	found := ""
	n := 0
	idx.Walk(func(p string) bool {
		if n == ordinal {
			found = p
			return false
		}
		n++
		return true
	})

	return found, found != ""
}

// Size returns the number of qualifying files under the root. This walks
// the entire tree; avoid it on hot paths.
func (idx *Index) Size() int {
	n := 0
	idx.Walk(func(string) bool {
		n++
		return true
	})
	return n
}

// Walk visits every qualifying file in traversal order, stopping early when
// fn returns false. A missing or empty root visits nothing.
func (idx *Index) Walk(fn func(path string) bool) {
	idx.walk(idx.root, 0, fn)
}

func (idx *Index) walk(dir string, depth int, fn func(string) bool) bool {
	if depth > maxWalkDepth {
		log.Printf("Skipping %s: directory nesting exceeds %d levels", dir, maxWalkDepth)
		return true
	}

	entries, err := idx.fs.List(dir)
	if err != nil {
		log.Printf("Skipping %s: %v", dir, err)
		return true
	}

	for _, e := range entries {
		child := path.Join(dir, e.Name)
		if e.Dir {
			if !idx.walk(child, depth+1, fn) {
				return false
			}
			continue
		}
		if idx.matcher.Match(e.Name) {
			if !fn(child) {
				return false
			}
		}
	}

	return true
}
