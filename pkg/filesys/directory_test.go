package filesys

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newDirFile allocates a backing file for a directory table and writes the
// empty table to it.
func newDirFile(t *testing.T, capacity int) (*Directory, *OpenFile) {
	t.Helper()

	dev, bm := newTestEnv(t, 1024)
	dir := NewDirectory(capacity)

	sector := bm.FindAndSet()
	hdr := NewFileHeader()
	require.NoError(t, hdr.Allocate(bm, dev, dir.TableBytes()))
	require.NoError(t, hdr.WriteBack(dev, sector))

	f := &OpenFile{dev: dev, hdr: hdr, headerSector: sector}
	require.NoError(t, dir.WriteBack(f))

	return dir, f
}

func TestDirectoryAddFindRemove(t *testing.T) {
	t.Parallel()

	dir := NewDirectory(8)
	require.NoError(t, dir.Add("alpha", 10, false))
	require.NoError(t, dir.Add("beta", 20, true))

	sector, err := dir.Find("alpha")
	require.NoError(t, err)
	assert.Equal(t, 10, sector)

	isDir, err := dir.IsDirectory("beta")
	require.NoError(t, err)
	assert.True(t, isDir)

	require.NoError(t, dir.Remove("alpha"))
	_, err = dir.Find("alpha")
	require.ErrorIs(t, err, ErrNotFound)

	// beta is untouched by alpha's removal.
	sector, err = dir.Find("beta")
	require.NoError(t, err)
	assert.Equal(t, 20, sector)
}

func TestDirectoryDuplicateName(t *testing.T) {
	t.Parallel()

	dir := NewDirectory(8)
	require.NoError(t, dir.Add("a", 1, false))
	require.ErrorIs(t, dir.Add("a", 2, false), ErrDuplicateName)
}

func TestDirectoryFull(t *testing.T) {
	t.Parallel()

	dir := NewDirectory(3)
	require.NoError(t, dir.Add("a", 1, false))
	require.NoError(t, dir.Add("b", 2, false))
	require.NoError(t, dir.Add("c", 3, false))
	require.ErrorIs(t, dir.Add("d", 4, false), ErrDirectoryFull)
}

func TestDirectoryRemoveMissing(t *testing.T) {
	t.Parallel()

	dir := NewDirectory(4)
	require.ErrorIs(t, dir.Remove("missing"), ErrNotFound)
}

// TestDirectoryNameAliasing checks the truncation contract: names agreeing
// on their first MaxNameLen bytes are the same entry.
func TestDirectoryNameAliasing(t *testing.T) {
	t.Parallel()

	long1 := strings.Repeat("x", MaxNameLen) + "AAA"
	long2 := strings.Repeat("x", MaxNameLen) + "BBB"

	dir := NewDirectory(8)
	require.NoError(t, dir.Add(long1, 5, false))
	require.ErrorIs(t, dir.Add(long2, 6, false), ErrDuplicateName)

	assert.Equal(t, dir.FindIndex(long1), dir.FindIndex(long2))

	require.NoError(t, dir.Remove(long2))
	_, err := dir.Find(long1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDirectorySlotReuse(t *testing.T) {
	t.Parallel()

	dir := NewDirectory(4)
	require.NoError(t, dir.Add("a", 1, false))
	require.NoError(t, dir.Add("b", 2, false))
	require.NoError(t, dir.Remove("a"))
	require.NoError(t, dir.Add("c", 3, false))

	// c reoccupies the slot a vacated.
	assert.Equal(t, 0, dir.FindIndex("c"))
	assert.Equal(t, 1, dir.FindIndex("b"))
}

func TestDirectoryInvalidNames(t *testing.T) {
	t.Parallel()

	dir := NewDirectory(4)
	require.ErrorIs(t, dir.Add("", 1, false), ErrInvalidName)
	require.ErrorIs(t, dir.Add("a/b", 1, false), ErrInvalidName)
}

func TestDirectoryTableRoundTrip(t *testing.T) {
	t.Parallel()

	dir, f := newDirFile(t, 16)
	require.NoError(t, dir.Add("one", 11, false))
	require.NoError(t, dir.Add("two", 22, true))
	require.NoError(t, dir.WriteBack(f))

	got := NewDirectory(16)
	require.NoError(t, got.FetchFrom(f))

	sector, err := got.Find("one")
	require.NoError(t, err)
	assert.Equal(t, 11, sector)
	isDir, err := got.IsDirectory("two")
	require.NoError(t, err)
	assert.True(t, isDir)
	assert.Equal(t, -1, got.FindIndex("three"))
}

func TestDirectoryListFormat(t *testing.T) {
	t.Parallel()

	dir := NewDirectory(8)
	require.NoError(t, dir.Add("file1", 1, false))
	require.NoError(t, dir.Add("sub", 2, true))

	var out bytes.Buffer
	dir.List(&out)
	assert.Equal(t, "{F}: file1\n{D}: sub\n", out.String())
}

// TestRecursiveListSkipsStaleSlots ensures recursion is gated on the
// in-use flag: a vacated slot that still carries a directory flag and a
// dangling sector must not be descended into.
func TestRecursiveListSkipsStaleSlots(t *testing.T) {
	t.Parallel()

	dev, _ := newTestEnv(t, 64)

	dir := NewDirectory(4)
	require.NoError(t, dir.Add("ghost", 63, true))
	require.NoError(t, dir.Add("real", 1, false))
	require.NoError(t, dir.Remove("ghost"))

	var out bytes.Buffer
	require.NoError(t, dir.RecursiveList(&out, dev))
	assert.Equal(t, "{F}: real\n", out.String())
}
