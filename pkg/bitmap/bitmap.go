// Package bitmap provides the in-memory free-sector map consumed by the
// filesystem core. The map tracks which sectors of the device are in use;
// its persistence is left to the mount-time sweep of the owning filesystem.
package bitmap

import "fmt"

// Bitmap tracks the allocation status of every sector on a device.
// The zero sector index is valid; -1 is the universal "no sector" sentinel.
type Bitmap struct {
	inUse []bool
	clear int
}

// New creates a bitmap for a device with totalSectors sectors, all free.
func New(totalSectors int) *Bitmap {
	return &Bitmap{
		inUse: make([]bool, totalSectors),
		clear: totalSectors,
	}
}

// FindAndSet reserves the first free sector and returns its index,
// or -1 if every sector is in use.
func (b *Bitmap) FindAndSet() int {
	for i, used := range b.inUse {
		if !used {
			b.inUse[i] = true
			b.clear--

			return i
		}
	}

	return -1
}

// Mark reserves a specific sector. Marking an already-used sector is a no-op.
func (b *Bitmap) Mark(sector int) {
	if sector < 0 || sector >= len(b.inUse) || b.inUse[sector] {
		return
	}
	b.inUse[sector] = true
	b.clear--
}

// Clear releases a sector back to the free pool.
// Clearing an already-free sector is a no-op.
func (b *Bitmap) Clear(sector int) {
	if sector < 0 || sector >= len(b.inUse) || !b.inUse[sector] {
		return
	}
	b.inUse[sector] = false
	b.clear++
}

// Test reports whether a sector is currently marked in use.
func (b *Bitmap) Test(sector int) bool {
	if sector < 0 || sector >= len(b.inUse) {
		return false
	}

	return b.inUse[sector]
}

// NumClear returns the number of free sectors.
func (b *Bitmap) NumClear() int {
	return b.clear
}

// NumSectors returns the total number of sectors tracked.
func (b *Bitmap) NumSectors() int {
	return len(b.inUse)
}

// Reset marks every sector free again.
func (b *Bitmap) Reset() {
	for i := range b.inUse {
		b.inUse[i] = false
	}
	b.clear = len(b.inUse)
}

// String summarizes usage, for debug output.
func (b *Bitmap) String() string {
	return fmt.Sprintf("bitmap: %d/%d sectors in use", len(b.inUse)-b.clear, len(b.inUse))
}
