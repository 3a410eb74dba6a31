package disk

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWriteSector(t *testing.T) {
	t.Parallel()

	d, err := New(16, 128)
	require.NoError(t, err)

	data := bytes.Repeat([]byte{0x5A}, 128)
	require.NoError(t, d.WriteSector(7, data))

	got := make([]byte, 128)
	require.NoError(t, d.ReadSector(7, got))
	assert.Equal(t, data, got)

	// Neighbors stay zeroed.
	require.NoError(t, d.ReadSector(6, got))
	assert.Equal(t, make([]byte, 128), got)
}

func TestBounds(t *testing.T) {
	t.Parallel()

	d, err := New(4, 128)
	require.NoError(t, err)

	buf := make([]byte, 128)
	require.ErrorIs(t, d.ReadSector(-1, buf), ErrSectorOutOfRange)
	require.ErrorIs(t, d.ReadSector(4, buf), ErrSectorOutOfRange)
	require.ErrorIs(t, d.WriteSector(4, buf), ErrSectorOutOfRange)
	require.ErrorIs(t, d.ReadSector(0, buf[:64]), ErrShortTransfer)
	require.ErrorIs(t, d.WriteSector(0, append(buf, 0)), ErrShortTransfer)
}

func TestBadGeometry(t *testing.T) {
	t.Parallel()

	_, err := New(0, 128)
	require.ErrorIs(t, err, ErrBadGeometry)
	_, err = New(16, 0)
	require.ErrorIs(t, err, ErrBadGeometry)
}

func TestImageRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "test.img")

	d, err := New(8, 128)
	require.NoError(t, err)
	data := bytes.Repeat([]byte{0x33}, 128)
	require.NoError(t, d.WriteSector(3, data))
	require.NoError(t, d.SaveImage(path))

	got, err := LoadImage(path, 128)
	require.NoError(t, err)
	assert.Equal(t, 8, got.NumSectors())
	assert.Equal(t, 128, got.SectorSize())

	buf := make([]byte, 128)
	require.NoError(t, got.ReadSector(3, buf))
	assert.Equal(t, data, buf)
}

func TestLoadImageBadLength(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "odd.img")
	require.NoError(t, os.WriteFile(path, make([]byte, 100), 0o644))

	_, err := LoadImage(path, 128)
	require.ErrorIs(t, err, ErrBadGeometry)
}
