package source_test

import (
	"bytes"
	"errors"
	"os"
	"path"
	"strings"
	"time"

	"cadenza/storage"
)

// memFS is an in-memory storage.FileSystem for tests. Directory entries are
// kept in insertion order, standing in for whatever order a real backend
// yields.
type memFS struct {
	dirs  map[string][]storage.Entry
	files map[string]string

	mounted  bool
	mountErr error
	mounts   int
	unmounts int
	closed   []string
}

func newMemFS(paths ...string) *memFS {
	fs := &memFS{
		dirs:  map[string][]storage.Entry{"/": nil},
		files: make(map[string]string),
	}
	for _, p := range paths {
		fs.addFile(p, "data:"+p)
	}
	return fs
}

// addFile registers the file and every missing ancestor directory with its
// parent, first seen first.
func (fs *memFS) addFile(p, content string) {
	fs.files[p] = content

	child := p
	isDir := false
	for {
		parent := path.Dir(child)
		if !fs.hasEntry(parent, path.Base(child)) {
			fs.dirs[parent] = append(fs.dirs[parent], storage.Entry{Name: path.Base(child), Dir: isDir})
		}
		if parent == "/" {
			break
		}
		child = parent
		isDir = true
	}
}

func (fs *memFS) hasEntry(dir, name string) bool {
	for _, e := range fs.dirs[dir] {
		if e.Name == name {
			return true
		}
	}
	return false
}

func (fs *memFS) Mount() error {
	if fs.mountErr != nil {
		return fs.mountErr
	}
	if fs.mounted {
		return nil
	}
	fs.mounted = true
	fs.mounts++
	return nil
}

func (fs *memFS) Unmount() error {
	fs.mounted = false
	fs.unmounts++
	return nil
}

func (fs *memFS) Open(p string) (storage.File, error) {
	content, ok := fs.files[p]
	if !ok {
		return nil, errors.New("open " + p + ": no such file")
	}
	return &memFile{fs: fs, path: p, Reader: bytes.NewReader([]byte(content))}, nil
}

func (fs *memFS) List(p string) ([]storage.Entry, error) {
	entries, ok := fs.dirs[p]
	if !ok {
		return nil, nil
	}
	return entries, nil
}

func (fs *memFS) Stat(p string) (os.FileInfo, error) {
	content, ok := fs.files[p]
	if !ok {
		return nil, errors.New("stat " + p + ": no such file")
	}
	return memFileInfo{name: path.Base(p), size: int64(len(content))}, nil
}

type memFile struct {
	fs   *memFS
	path string
	*bytes.Reader
}

func (f *memFile) Close() error {
	f.fs.closed = append(f.fs.closed, f.path)
	return nil
}

func (f *memFile) Stat() (os.FileInfo, error) {
	return memFileInfo{name: path.Base(f.path), size: f.Reader.Size()}, nil
}

type memFileInfo struct {
	name string
	size int64
}

func (fi memFileInfo) Name() string       { return fi.name }
func (fi memFileInfo) Size() int64        { return fi.size }
func (fi memFileInfo) Mode() os.FileMode  { return 0644 }
func (fi memFileInfo) ModTime() time.Time { return time.Time{} }
func (fi memFileInfo) IsDir() bool        { return false }
func (fi memFileInfo) Sys() interface{}   { return nil }

// cyclicFS reports the same directory as its own child, modeling a backend
// with link cycles.
type cyclicFS struct{ memFS }

func newCyclicFS() *cyclicFS {
	return &cyclicFS{memFS{dirs: map[string][]storage.Entry{}, files: map[string]string{}}}
}

func (fs *cyclicFS) List(p string) ([]storage.Entry, error) {
	if strings.Count(p, "/loop") > 100 {
		panic("traversal did not bound recursion")
	}
	return []storage.Entry{
		{Name: "loop", Dir: true},
		{Name: "song.mp3", Dir: false},
	}, nil
}
