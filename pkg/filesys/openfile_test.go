package filesys

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFile allocates a file of the given size and returns it opened.
func newFile(t *testing.T, size int64) *OpenFile {
	t.Helper()

	dev, bm := newTestEnv(t, 2048)

	sector := bm.FindAndSet()
	hdr := NewFileHeader()
	require.NoError(t, hdr.Allocate(bm, dev, size))
	require.NoError(t, hdr.WriteBack(dev, sector))

	f, err := OpenAt(dev, sector)
	require.NoError(t, err)

	return f
}

func pattern(n int) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = byte(i % 251)
	}

	return p
}

func TestOpenFileWriteReadAcrossSectors(t *testing.T) {
	t.Parallel()

	f := newFile(t, 1000)
	data := pattern(1000)

	n, err := f.WriteAt(data, 0)
	require.NoError(t, err)
	require.Equal(t, 1000, n)

	got := make([]byte, 1000)
	n, err = f.ReadAt(got, 0)
	require.NoError(t, err)
	require.Equal(t, 1000, n)
	assert.Equal(t, data, got)
}

// TestOpenFileMultiLevel exercises the read path through interior headers.
func TestOpenFileMultiLevel(t *testing.T) {
	t.Parallel()

	size := int64(LevelOneMax + 700)
	f := newFile(t, size)
	data := pattern(int(size))

	_, err := f.WriteAt(data, 0)
	require.NoError(t, err)

	// Straddle the boundary between the two child subtrees.
	got := make([]byte, 400)
	_, err = f.ReadAt(got, LevelOneMax-200)
	require.NoError(t, err)
	assert.Equal(t, data[LevelOneMax-200:LevelOneMax+200], got)
}

func TestOpenFilePartialSectorWritePreservesNeighbors(t *testing.T) {
	t.Parallel()

	f := newFile(t, 3*SectorSize)
	base := bytes.Repeat([]byte{0xAA}, 3*SectorSize)
	_, err := f.WriteAt(base, 0)
	require.NoError(t, err)

	patch := []byte("patch")
	_, err = f.WriteAt(patch, SectorSize-2)
	require.NoError(t, err)

	got := make([]byte, 3*SectorSize)
	_, err = f.ReadAt(got, 0)
	require.NoError(t, err)

	want := append([]byte{}, base...)
	copy(want[SectorSize-2:], patch)
	assert.Equal(t, want, got)
}

func TestOpenFileReadPastEnd(t *testing.T) {
	t.Parallel()

	f := newFile(t, 100)

	buf := make([]byte, 200)
	n, err := f.ReadAt(buf, 0)
	require.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 100, n)

	_, err = f.ReadAt(buf, 100)
	require.ErrorIs(t, err, io.EOF)
}

func TestOpenFileWritePastEnd(t *testing.T) {
	t.Parallel()

	f := newFile(t, 100)

	n, err := f.WriteAt(pattern(200), 0)
	require.ErrorIs(t, err, io.ErrShortWrite)
	assert.Equal(t, 100, n)

	_, err = f.WriteAt([]byte{1}, 100)
	require.ErrorIs(t, err, io.ErrShortWrite)
}

func TestOpenFileSeekRead(t *testing.T) {
	t.Parallel()

	f := newFile(t, 300)
	data := pattern(300)
	_, err := f.WriteAt(data, 0)
	require.NoError(t, err)

	pos, err := f.Seek(250, io.SeekStart)
	require.NoError(t, err)
	require.EqualValues(t, 250, pos)

	got := make([]byte, 50)
	n, err := f.Read(got)
	require.NoError(t, err)
	require.Equal(t, 50, n)
	assert.Equal(t, data[250:], got)

	_, err = f.Seek(-10, io.SeekEnd)
	require.NoError(t, err)
	n, err = f.Read(got[:10])
	require.NoError(t, err)
	assert.Equal(t, data[290:], got[:10])
	assert.Equal(t, 10, n)

	_, err = f.Seek(-1000, io.SeekCurrent)
	require.ErrorIs(t, err, ErrOffsetOutOfRange)
}
