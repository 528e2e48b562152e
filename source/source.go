// Package source implements a directory-backed audio source: a lazy index
// over the playable files on a storage backend, and a facade that a
// playback engine drives with next/select operations to obtain open file
// streams one at a time.
package source

import (
	"errors"
	"fmt"
	"log"

	"cadenza/storage"
)

// State is the lifecycle state of a Source.
type State int

const (
	// StateUnopened is the state before a successful Begin.
	StateUnopened State = iota
	// StateReady means the filesystem is mounted and the index armed.
	StateReady
	// StateStreaming means a file is currently open.
	StateStreaming
	// StateClosed is terminal, entered by End.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnopened:
		return "unopened"
	case StateReady:
		return "ready"
	case StateStreaming:
		return "streaming"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

var (
	// ErrNotFound is returned when an ordinal has no qualifying file.
	ErrNotFound = errors.New("no file at the requested position")
	// ErrEmptyPath is returned by SelectPath for an empty path.
	ErrEmptyPath = errors.New("empty path")
	// ErrNotReady is returned when the source has not been started.
	ErrNotReady = errors.New("source not started")
	// ErrClosed is returned after End.
	ErrClosed = errors.New("source closed")
)

// Source selects audio files from a storage backend for sequential or
// random-access playback. It keeps a cursor (the ordinal of the current
// track in traversal order) and exactly one open file at a time.
//
// A Source is single-owner: operations are not safe for concurrent use and
// callers driving it from multiple goroutines must serialize access.
type Source struct {
	fs         storage.FileSystem
	startPath  string
	ext        string
	pattern    string
	setupIndex bool
	ownsMount  bool

	state    State
	idx      *Index
	cursor   int
	file     storage.File
	fileName string
}

// NewSource creates a source reading from fs, rooted at startPath,
// accepting files whose names end in ext (empty ext accepts everything).
// The source owns the mount: Begin mounts the filesystem and End unmounts
// it.
func NewSource(fs storage.FileSystem, startPath, ext string) *Source {
	return &Source{
		fs:         fs,
		startPath:  startPath,
		ext:        ext,
		pattern:    "*",
		setupIndex: true,
		ownsMount:  true,
	}
}

// NewSourceFromMounted creates a source around a filesystem the caller has
// already mounted. Begin skips mounting and End leaves the filesystem
// mounted.
func NewSourceFromMounted(fs storage.FileSystem, startPath, ext string) *Source {
	s := NewSource(fs, startPath, ext)
	s.ownsMount = false
	return s
}

// SetFilter sets the glob pattern file names must match, e.g. "*Bob*".
// Takes effect at the next Begin.
func (s *Source) SetFilter(pattern string) { s.pattern = pattern }

// SetPath changes the start path. Takes effect at the next Begin.
func (s *Source) SetPath(path string) { s.startPath = path }

// SetSetupIndex controls whether Begin arms the index eagerly. When
// disabled the index is armed on first use instead.
func (s *Source) SetSetupIndex(eager bool) { s.setupIndex = eager }

// State returns the current lifecycle state.
func (s *Source) State() State { return s.state }

// Begin mounts the filesystem if this source owns the mount, arms the
// index with the configured start path and filter, and resets the cursor
// to 0. Safe to call again to re-arm after SetFilter or SetPath; any open
// file is closed first. On mount failure the source stays unopened.
func (s *Source) Begin() error {
	if s.state == StateClosed {
		return ErrClosed
	}

	if s.ownsMount {
		if err := s.fs.Mount(); err != nil {
			log.Printf("Mount failed: %v", err)
			return fmt.Errorf("mount failed: %w", err)
		}
	}

	s.closeFile()
	s.idx = nil
	if s.setupIndex {
		s.armIndex()
	}
	s.cursor = 0
	s.state = StateReady

	return nil
}

// Next advances the cursor by offset (1 for sequential playback, negative
// to go back) and opens the file there. Equivalent to
// SelectIndex(Index()+offset), including the failure behavior: a failed
// Next leaves the cursor at the new, out-of-range position.
func (s *Source) Next(offset int) (storage.File, error) {
	return s.SelectIndex(s.cursor + offset)
}

// SelectIndex moves the cursor to ordinal and opens the qualifying file at
// that position. A negative ordinal keeps the current cursor and
// re-resolves it. The cursor is updated before the lookup, so on a
// not-found result it remains at the requested position. Not-found closes
// the previously open file and returns ErrNotFound.
func (s *Source) SelectIndex(ordinal int) (storage.File, error) {
	if err := s.checkStarted(); err != nil {
		return nil, err
	}

	if ordinal >= 0 {
		s.cursor = ordinal
	}

	path, ok := s.index().PathAt(s.cursor)
	if !ok {
		s.closeFile()
		s.state = StateReady
		log.Printf("No file at position %d", s.cursor)
		return nil, ErrNotFound
	}

	return s.SelectPath(path)
}

// SelectPath closes any open file and opens the file at the literal path.
// The cursor is not updated: Index() reports the last ordinal selection
// and goes stale after a path selection. Callers mixing path and ordinal
// selection need to re-sync with SelectIndex.
func (s *Source) SelectPath(path string) (storage.File, error) {
	if err := s.checkStarted(); err != nil {
		return nil, err
	}

	s.closeFile()
	s.state = StateReady

	if path == "" {
		log.Printf("Select with empty path")
		return nil, ErrEmptyPath
	}

	file, err := s.fs.Open(path)
	if err != nil {
		log.Printf("Open error for %s: %v", path, err)
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	log.Printf("Selected %s", path)
	s.file = file
	s.fileName = path
	s.state = StateStreaming

	return file, nil
}

// Index returns the current cursor position.
func (s *Source) Index() int { return s.cursor }

// FileName returns the path of the currently selected file, or "" if none
// has been selected yet.
func (s *Source) FileName() string { return s.fileName }

// Size returns the number of qualifying files. This re-walks the whole
// tree and is expensive on large libraries.
func (s *Source) Size() int {
	if s.checkStarted() != nil {
		return 0
	}
	return s.index().Size()
}

// Walk visits every qualifying file in traversal order, stopping early
// when fn returns false.
func (s *Source) Walk(fn func(path string) bool) error {
	if err := s.checkStarted(); err != nil {
		return err
	}
	s.index().Walk(fn)
	return nil
}

// End closes any open file, unmounts the filesystem if this source owns
// the mount, and closes the source for good.
func (s *Source) End() error {
	if s.state == StateClosed {
		return nil
	}

	s.closeFile()

	var err error
	if s.ownsMount && s.state != StateUnopened {
		err = s.fs.Unmount()
	}
	s.state = StateClosed

	return err
}

func (s *Source) checkStarted() error {
	switch s.state {
	case StateUnopened:
		return ErrNotReady
	case StateClosed:
		return ErrClosed
	}
	return nil
}

func (s *Source) index() *Index {
	if s.idx == nil {
		s.armIndex()
	}
	return s.idx
}

func (s *Source) armIndex() {
	s.idx = NewIndex(s.fs, s.startPath, NewMatcher(s.ext, s.pattern))
}

func (s *Source) closeFile() {
	if s.file == nil {
		return
	}
	if err := s.file.Close(); err != nil {
		log.Printf("Close error for %s: %v", s.fileName, err)
	}
	s.file = nil
}
