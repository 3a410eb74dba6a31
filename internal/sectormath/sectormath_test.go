package sectormath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDivRoundUp(t *testing.T) {
	t.Parallel()

	assert.EqualValues(t, 0, DivRoundUp(0, 128))
	assert.EqualValues(t, 1, DivRoundUp(1, 128))
	assert.EqualValues(t, 1, DivRoundUp(128, 128))
	assert.EqualValues(t, 2, DivRoundUp(129, 128))
}

func TestSectorsForBytes(t *testing.T) {
	t.Parallel()

	assert.EqualValues(t, 2, SectorsForBytes(160, 128))
	assert.EqualValues(t, 30, SectorsForBytes(3840, 128))
}

func TestDivRoundDown(t *testing.T) {
	t.Parallel()

	assert.EqualValues(t, 0, DivRoundDown(127, 128))
	assert.EqualValues(t, 1, DivRoundDown(255, 128))
}
