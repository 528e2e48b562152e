package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DirFS exposes a directory on the local disk as a FileSystem. The
// configured base directory becomes "/".
type DirFS struct {
	base    string
	mounted bool
}

// NewDirFS creates a local filesystem rooted at base.
func NewDirFS(base string) *DirFS {
	return &DirFS{base: base}
}

// Mount verifies that the base directory exists and is a directory.
func (fs *DirFS) Mount() error {
	if fs.mounted {
		return nil
	}

	info, err := os.Stat(fs.base)
	if err != nil {
		return fmt.Errorf("failed to mount %s: %w", fs.base, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("failed to mount %s: not a directory", fs.base)
	}

	fs.mounted = true
	return nil
}

// Unmount releases the filesystem. Local directories hold no resources, so
// this only clears the mounted flag.
func (fs *DirFS) Unmount() error {
	fs.mounted = false
	return nil
}

// Open opens the file at path for reading.
func (fs *DirFS) Open(path string) (File, error) {
	file, err := os.Open(fs.resolve(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	return file, nil
}

// List returns the children of path in lexical order. Missing directories
// list as empty.
func (fs *DirFS) List(path string) ([]Entry, error) {
	dirents, err := os.ReadDir(fs.resolve(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", path, err)
	}

	entries := make([]Entry, 0, len(dirents))
	for _, d := range dirents {
		entries = append(entries, Entry{Name: d.Name(), Dir: d.IsDir()})
	}
	return entries, nil
}

// Stat returns file information for path.
func (fs *DirFS) Stat(path string) (os.FileInfo, error) {
	info, err := os.Stat(fs.resolve(path))
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	return info, nil
}

// resolve maps a slash-rooted library path onto the host filesystem.
func (fs *DirFS) resolve(path string) string {
	return filepath.Join(fs.base, filepath.FromSlash(strings.TrimPrefix(path, "/")))
}
