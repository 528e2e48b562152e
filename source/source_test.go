package source_test

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cadenza/source"
)

func newTestSource(fs *memFS) *source.Source {
	src := source.NewSource(fs, "/", ".mp3")
	return src
}

// TestSourceBegin tests mounting and index arming
func TestSourceBegin(t *testing.T) {
	fs := newMemFS("/a/1.mp3")
	src := newTestSource(fs)

	assert.Equal(t, source.StateUnopened, src.State())

	require.NoError(t, src.Begin())
	assert.Equal(t, source.StateReady, src.State())
	assert.Equal(t, 0, src.Index())
	assert.Equal(t, 1, fs.mounts)

	// Begin is idempotent on the mount
	require.NoError(t, src.Begin())
	assert.Equal(t, 1, fs.mounts, "already-mounted filesystem is not remounted")
}

// TestSourceBeginMountFailure tests that a mount failure leaves the source unopened
func TestSourceBeginMountFailure(t *testing.T) {
	fs := newMemFS("/a/1.mp3")
	fs.mountErr = errors.New("no medium")
	src := newTestSource(fs)

	err := src.Begin()
	require.Error(t, err)
	assert.Equal(t, source.StateUnopened, src.State())

	// Operations on an unopened source report not ready
	_, err = src.Next(1)
	assert.ErrorIs(t, err, source.ErrNotReady)
}

// TestSourceSequentialPlayback tests the begin/next flow a playback engine uses
func TestSourceSequentialPlayback(t *testing.T) {
	fs := newMemFS("/a/1.mp3", "/a/2.mp3", "/b/3.mp3")
	src := newTestSource(fs)
	require.NoError(t, src.Begin())

	assert.Equal(t, 3, src.Size())

	stream, err := src.Next(2)
	require.NoError(t, err)
	require.NotNil(t, stream)
	assert.Equal(t, 2, src.Index())
	assert.Equal(t, "/b/3.mp3", src.FileName())
	assert.Equal(t, source.StateStreaming, src.State())

	// The stream is readable end to end
	data, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, "data:/b/3.mp3", string(data))
}

// TestSourceNextEquivalence tests that Next(1) from cursor c matches SelectIndex(c+1)
func TestSourceNextEquivalence(t *testing.T) {
	fs := newMemFS("/a/1.mp3", "/a/2.mp3", "/b/3.mp3")
	src := newTestSource(fs)
	require.NoError(t, src.Begin())

	_, err := src.Next(1)
	require.NoError(t, err)
	viaNext := src.FileName()

	require.NoError(t, src.Begin())
	_, err = src.SelectIndex(1)
	require.NoError(t, err)

	assert.Equal(t, viaNext, src.FileName())
	assert.Equal(t, 1, src.Index())
}

// TestSourceFailedNextAdvancesCursor pins down the cursor behavior on a
// failed advance: the cursor is set before the lookup, so it ends up at
// the new, out-of-range position.
func TestSourceFailedNextAdvancesCursor(t *testing.T) {
	fs := newMemFS("/a/1.mp3", "/a/2.mp3", "/b/3.mp3")
	src := newTestSource(fs)
	require.NoError(t, src.Begin())

	_, err := src.SelectIndex(2)
	require.NoError(t, err)

	_, err = src.Next(1)
	assert.ErrorIs(t, err, source.ErrNotFound)
	assert.Equal(t, 3, src.Index(), "failed next leaves the cursor at the invalid position")
	assert.Equal(t, source.StateReady, src.State(), "the open file is closed on not-found")
}

// TestSourceSelectIndexNegative tests that a negative ordinal re-resolves
// the current cursor without moving it
func TestSourceSelectIndexNegative(t *testing.T) {
	fs := newMemFS("/a/1.mp3", "/a/2.mp3")
	src := newTestSource(fs)
	require.NoError(t, src.Begin())

	_, err := src.SelectIndex(1)
	require.NoError(t, err)

	stream, err := src.SelectIndex(-1)
	require.NoError(t, err)
	require.NotNil(t, stream)
	assert.Equal(t, 1, src.Index())
	assert.Equal(t, "/a/2.mp3", src.FileName())
}

// TestSourceSelectPath tests literal path selection
func TestSourceSelectPath(t *testing.T) {
	fs := newMemFS("/a/1.mp3", "/a/2.mp3", "/b/3.mp3")
	src := newTestSource(fs)
	require.NoError(t, src.Begin())

	_, err := src.SelectIndex(1)
	require.NoError(t, err)

	// Selecting by path never changes the cursor
	stream, err := src.SelectPath("/b/3.mp3")
	require.NoError(t, err)
	require.NotNil(t, stream)
	assert.Equal(t, 1, src.Index(), "path selection leaves the ordinal cursor stale")
	assert.Equal(t, "/b/3.mp3", src.FileName())

	// Empty paths are a reported no-op
	_, err = src.SelectPath("")
	assert.ErrorIs(t, err, source.ErrEmptyPath)

	// Open failures are not found, and the cursor still does not move
	_, err = src.SelectPath("/missing.mp3")
	assert.ErrorIs(t, err, source.ErrNotFound)
	assert.Equal(t, 1, src.Index())
}

// TestSourceClosesPreviousFile tests the single-open-file discipline
func TestSourceClosesPreviousFile(t *testing.T) {
	fs := newMemFS("/a/1.mp3", "/a/2.mp3")
	src := newTestSource(fs)
	require.NoError(t, src.Begin())

	_, err := src.SelectIndex(0)
	require.NoError(t, err)
	assert.Empty(t, fs.closed)

	_, err = src.SelectIndex(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"/a/1.mp3"}, fs.closed, "previous file is closed on reselection")
}

// TestSourceReselectSameOrdinal tests that reselecting an ordinal after a
// full read yields the identical path
func TestSourceReselectSameOrdinal(t *testing.T) {
	fs := newMemFS("/a/1.mp3", "/a/2.mp3", "/b/3.mp3")
	src := newTestSource(fs)
	require.NoError(t, src.Begin())

	stream, err := src.SelectIndex(1)
	require.NoError(t, err)
	first := src.FileName()

	_, err = io.ReadAll(stream)
	require.NoError(t, err)

	_, err = src.SelectIndex(1)
	require.NoError(t, err)
	assert.Equal(t, first, src.FileName())
}

// TestSourceFilter tests SetFilter taking effect at Begin
func TestSourceFilter(t *testing.T) {
	fs := newMemFS(
		"/dylan/Bob Dylan - Hurricane.mp3",
		"/mitchell/Joni Mitchell - River.mp3",
	)
	src := newTestSource(fs)
	src.SetFilter("*Bob*")
	require.NoError(t, src.Begin())

	assert.Equal(t, 1, src.Size())
	_, err := src.SelectIndex(0)
	require.NoError(t, err)
	assert.Equal(t, "/dylan/Bob Dylan - Hurricane.mp3", src.FileName())
}

// TestSourceEmptyLibrary tests the empty-directory behavior
func TestSourceEmptyLibrary(t *testing.T) {
	src := newTestSource(newMemFS())
	require.NoError(t, src.Begin())

	assert.Equal(t, 0, src.Size())
	_, err := src.Next(0)
	assert.ErrorIs(t, err, source.ErrNotFound)
}

// TestSourceEnd tests teardown and mount ownership
func TestSourceEnd(t *testing.T) {
	fs := newMemFS("/a/1.mp3")
	src := newTestSource(fs)
	require.NoError(t, src.Begin())

	_, err := src.SelectIndex(0)
	require.NoError(t, err)

	require.NoError(t, src.End())
	assert.Equal(t, source.StateClosed, src.State())
	assert.Equal(t, []string{"/a/1.mp3"}, fs.closed, "open file is closed on teardown")
	assert.Equal(t, 1, fs.unmounts, "owned mount is unmounted")

	// Closed is terminal
	assert.ErrorIs(t, src.Begin(), source.ErrClosed)
	_, err = src.Next(1)
	assert.ErrorIs(t, err, source.ErrClosed)
}

// TestSourceBorrowedMount tests that a caller-supplied mount is never torn down
func TestSourceBorrowedMount(t *testing.T) {
	fs := newMemFS("/a/1.mp3")
	require.NoError(t, fs.Mount())

	src := source.NewSourceFromMounted(fs, "/", ".mp3")
	require.NoError(t, src.Begin())
	assert.Equal(t, 1, fs.mounts, "begin does not remount a borrowed filesystem")

	require.NoError(t, src.End())
	assert.Equal(t, 0, fs.unmounts, "borrowed mount stays mounted after End")
}

// TestSourceLazyIndex tests deferred index arming
func TestSourceLazyIndex(t *testing.T) {
	fs := newMemFS("/a/1.mp3")
	src := newTestSource(fs)
	src.SetSetupIndex(false)
	require.NoError(t, src.Begin())

	// The index is armed on first use
	assert.Equal(t, 1, src.Size())
}
