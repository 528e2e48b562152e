// Package storage abstracts the filesystem a music library lives on, so the
// index and player can run against a local directory or a remote SFTP share
// through the same interface.
package storage

import (
	"io"
	"os"
)

// Entry is a single directory entry as reported by a FileSystem.
type Entry struct {
	Name string `json:"name"`
	Dir  bool   `json:"dir"`
}

// File is an open, readable audio file.
type File interface {
	io.Reader
	io.Seeker
	io.Closer
	Stat() (os.FileInfo, error)
}

// FileSystem is the storage backend the audio source traverses and opens
// files from. Paths are slash-separated and rooted at the backend's base
// ("/" is the library root, "/a/b.mp3" a file inside it).
type FileSystem interface {
	// Mount initializes access to the backend. Implementations must be
	// idempotent: mounting an already-mounted filesystem is a no-op.
	Mount() error

	// Unmount releases the backend. A filesystem constructed around an
	// already-open connection is borrowed and must not be torn down here.
	Unmount() error

	// Open opens the file at path for reading.
	Open(path string) (File, error)

	// List returns the children of the directory at path in a stable,
	// sorted order. Listing a missing or empty directory returns an
	// empty slice, not an error.
	List(path string) ([]Entry, error)

	// Stat returns file information for path.
	Stat(path string) (os.FileInfo, error)
}
