package bitmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindAndSet(t *testing.T) {
	t.Parallel()

	b := New(3)
	require.Equal(t, 3, b.NumClear())

	assert.Equal(t, 0, b.FindAndSet())
	assert.Equal(t, 1, b.FindAndSet())
	assert.Equal(t, 2, b.FindAndSet())
	assert.Equal(t, -1, b.FindAndSet())
	assert.Equal(t, 0, b.NumClear())
}

func TestClearAndReuse(t *testing.T) {
	t.Parallel()

	b := New(4)
	for i := 0; i < 4; i++ {
		b.FindAndSet()
	}

	b.Clear(2)
	require.Equal(t, 1, b.NumClear())
	assert.False(t, b.Test(2))

	// The freed sector is handed out again.
	assert.Equal(t, 2, b.FindAndSet())
	assert.True(t, b.Test(2))
}

func TestClearIdempotent(t *testing.T) {
	t.Parallel()

	b := New(4)
	b.FindAndSet()

	b.Clear(0)
	b.Clear(0)
	b.Clear(-5)
	b.Clear(99)
	assert.Equal(t, 4, b.NumClear())
}

func TestMark(t *testing.T) {
	t.Parallel()

	b := New(4)
	b.Mark(2)
	assert.True(t, b.Test(2))
	assert.Equal(t, 3, b.NumClear())

	b.Mark(2)
	assert.Equal(t, 3, b.NumClear())

	// Marked sectors are skipped by FindAndSet.
	assert.Equal(t, 0, b.FindAndSet())
	assert.Equal(t, 1, b.FindAndSet())
	assert.Equal(t, 3, b.FindAndSet())
}

func TestTestOutOfRange(t *testing.T) {
	t.Parallel()

	b := New(2)
	assert.False(t, b.Test(-1))
	assert.False(t, b.Test(2))
}

func TestReset(t *testing.T) {
	t.Parallel()

	b := New(4)
	b.FindAndSet()
	b.FindAndSet()

	b.Reset()
	assert.Equal(t, 4, b.NumClear())
	assert.False(t, b.Test(0))
}
