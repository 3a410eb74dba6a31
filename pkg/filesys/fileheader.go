package filesys

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/tierfs/tierfs/internal/sectormath"
)

// indexMode tags a header as a leaf (pointers reference data sectors) or an
// interior node (pointers reference child headers). The mode is never stored
// on disk: it is derived from ByteLength against the level capacities, once,
// when the header is allocated or fetched, and carried from then on so every
// operation agrees on the shape of the tree.
type indexMode int

const (
	leafMode indexMode = iota
	interiorMode
)

// classify returns the mode for a subtree covering n bytes and, for interior
// nodes, the number of bytes each child pointer spans.
func classify(n int64) (indexMode, int64) {
	switch {
	case n <= LevelOneMax:
		return leafMode, 0
	case n <= LevelTwoMax:
		return interiorMode, LevelOneMax
	default:
		return interiorMode, LevelTwoMax
	}
}

// FileHeader is the on-disk index node of a file. It maps the byte range
// [0, ByteLength) to disk sectors, directly in leaf mode or through child
// headers in interior mode. The record occupies exactly one sector.
//
// A fresh header carries sentinel values until populated by Allocate (new
// file) or FetchFrom (existing file). The header's own sector is owned by
// the caller and is never touched by Allocate or Deallocate.
type FileHeader struct {
	ByteLength  int32
	DirectCount int32
	Pointers    [NumPointers]int32

	mode      indexMode
	childSpan int64
}

// NewFileHeader returns an uninitialized header with all fields sentineled.
func NewFileHeader() *FileHeader {
	h := &FileHeader{
		ByteLength:  NoSector,
		DirectCount: NoSector,
	}
	for i := range h.Pointers {
		h.Pointers[i] = NoSector
	}

	return h
}

// Length returns the number of bytes covered by this header's subtree.
func (h *FileHeader) Length() int64 {
	return int64(h.ByteLength)
}

// Allocate populates a fresh header for a file of size bytes, reserving
// every needed data sector (and child header sector) from alloc. Child
// headers are written to dev as they are completed.
//
// Allocate is atomic: on any failure every sector reserved during the call,
// including those of nested allocations, is returned to alloc and the
// header is left back in its sentinel state.
func (h *FileHeader) Allocate(alloc SpaceAllocator, dev SectorDevice, size int64) error {
	if size < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if size > LevelThreeMax {
		return fmt.Errorf("%w: %d > %d", ErrFileTooLarge, size, int64(LevelThreeMax))
	}

	// Conservative global check over the data sectors before reserving
	// anything. Interior header sectors are claimed below and covered by
	// the rollback.
	needed := sectormath.SectorsForBytes(size, SectorSize)
	if int64(alloc.NumClear()) < needed {
		return fmt.Errorf("%w: need %d data sectors, %d free", ErrInsufficientSpace, needed, alloc.NumClear())
	}

	h.ByteLength = int32(size)
	h.mode, h.childSpan = classify(size)

	if h.mode == leafMode {
		return h.allocateLeaf(alloc, needed)
	}

	return h.allocateInterior(alloc, dev, size)
}

func (h *FileHeader) allocateLeaf(alloc SpaceAllocator, needed int64) error {
	for i := int64(0); i < needed; i++ {
		s := alloc.FindAndSet()
		if s < 0 {
			h.releaseClaimed(alloc, int(i))

			return fmt.Errorf("%w: allocator exhausted at sector %d of %d", ErrInsufficientSpace, i, needed)
		}
		h.Pointers[i] = int32(s)
	}
	h.DirectCount = int32(needed)

	return nil
}

func (h *FileHeader) allocateInterior(alloc SpaceAllocator, dev SectorDevice, size int64) error {
	// Completed children are kept in memory for the duration of the call
	// so a failure can unwind them without re-reading the device.
	var children []*FileHeader

	rollback := func() {
		for i, child := range children {
			_ = child.Deallocate(alloc, dev)
			alloc.Clear(int(h.Pointers[i]))
		}
		h.releaseClaimed(alloc, 0)
	}

	remaining := size
	slot := 0
	for remaining > 0 {
		s := alloc.FindAndSet()
		if s < 0 {
			rollback()

			return fmt.Errorf("%w: no sector for child header", ErrInsufficientSpace)
		}

		child := NewFileHeader()
		n := min(remaining, h.childSpan)
		if err := child.Allocate(alloc, dev, n); err != nil {
			alloc.Clear(s)
			rollback()

			return err
		}
		if err := child.WriteBack(dev, s); err != nil {
			_ = child.Deallocate(alloc, dev)
			alloc.Clear(s)
			rollback()

			return err
		}

		h.Pointers[slot] = int32(s)
		children = append(children, child)
		remaining -= n
		slot++
	}
	h.DirectCount = int32(slot)

	return nil
}

// releaseClaimed clears the first n pointer slots back into alloc and
// resets the header to its sentinel state.
func (h *FileHeader) releaseClaimed(alloc SpaceAllocator, n int) {
	for i := 0; i < n; i++ {
		alloc.Clear(int(h.Pointers[i]))
	}
	for i := range h.Pointers {
		h.Pointers[i] = NoSector
	}
	h.ByteLength = NoSector
	h.DirectCount = NoSector
	h.mode = leafMode
	h.childSpan = 0
}

// Deallocate returns every sector reachable from this header to alloc:
// data sectors at the leaves and child header sectors at interior nodes.
// The header's own sector is not cleared; the caller owns it. A header
// must be deallocated at most once.
func (h *FileHeader) Deallocate(alloc SpaceAllocator, dev SectorDevice) error {
	for i := int32(0); i < h.DirectCount; i++ {
		s := int(h.Pointers[i])
		if !alloc.Test(s) {
			return fmt.Errorf("%w: sector %d already free", ErrInconsistent, s)
		}

		if h.mode == interiorMode {
			child := NewFileHeader()
			if err := child.FetchFrom(dev, s); err != nil {
				return err
			}
			if err := child.Deallocate(alloc, dev); err != nil {
				return err
			}
		}
		alloc.Clear(s)
	}

	return nil
}

// ByteToSector translates a byte offset within the file to the disk sector
// holding it, descending through child headers in interior mode. The
// offset must lie within [0, ByteLength).
func (h *FileHeader) ByteToSector(dev SectorDevice, offset int64) (int, error) {
	if offset < 0 || offset >= h.Length() {
		return NoSector, fmt.Errorf("%w: offset %d, length %d", ErrOffsetOutOfRange, offset, h.Length())
	}

	if h.mode == leafMode {
		return int(h.Pointers[offset/SectorSize]), nil
	}

	idx := sectormath.DivRoundDown(offset, h.childSpan)
	child := NewFileHeader()
	if err := child.FetchFrom(dev, int(h.Pointers[idx])); err != nil {
		return NoSector, err
	}

	return child.ByteToSector(dev, offset-idx*h.childSpan)
}

// FetchFrom reads the header record from its sector and derives the mode.
func (h *FileHeader) FetchFrom(dev SectorDevice, sector int) error {
	buf := make([]byte, SectorSize)
	if err := dev.ReadSector(sector, buf); err != nil {
		return fmt.Errorf("%w: fetch header from sector %d: %w", ErrDeviceFailure, sector, err)
	}

	h.ByteLength = int32(binary.LittleEndian.Uint32(buf[0:4]))
	h.DirectCount = int32(binary.LittleEndian.Uint32(buf[4:8]))
	for i := range h.Pointers {
		h.Pointers[i] = int32(binary.LittleEndian.Uint32(buf[8+4*i : 12+4*i]))
	}
	h.mode, h.childSpan = classify(h.Length())

	return nil
}

// WriteBack writes the header record to the given sector.
func (h *FileHeader) WriteBack(dev SectorDevice, sector int) error {
	buf := make([]byte, SectorSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(h.ByteLength))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(h.DirectCount))
	for i, p := range h.Pointers {
		binary.LittleEndian.PutUint32(buf[8+4*i:12+4*i], uint32(p))
	}

	if err := dev.WriteSector(sector, buf); err != nil {
		return fmt.Errorf("%w: write header to sector %d: %w", ErrDeviceFailure, sector, err)
	}

	return nil
}

// Print dumps the header and, at the leaves, the printable file contents.
// Interior nodes recurse into their children.
func (h *FileHeader) Print(w io.Writer, dev SectorDevice) error {
	fmt.Fprintf(w, "File header contents. File size: %d. File sectors:\n", h.ByteLength)

	if h.mode == interiorMode {
		for i := int32(0); i < h.DirectCount; i++ {
			child := NewFileHeader()
			if err := child.FetchFrom(dev, int(h.Pointers[i])); err != nil {
				return err
			}
			if err := child.Print(w, dev); err != nil {
				return err
			}
		}

		return nil
	}

	for i := int32(0); i < h.DirectCount; i++ {
		fmt.Fprintf(w, "%d ", h.Pointers[i])
	}
	fmt.Fprintf(w, "\nFile contents:\n")

	buf := make([]byte, SectorSize)
	printed := int64(0)
	for i := int32(0); i < h.DirectCount; i++ {
		if err := dev.ReadSector(int(h.Pointers[i]), buf); err != nil {
			return fmt.Errorf("%w: %w", ErrDeviceFailure, err)
		}
		for j := 0; j < SectorSize && printed < h.Length(); j++ {
			if buf[j] >= 0x20 && buf[j] <= 0x7e {
				fmt.Fprintf(w, "%c", buf[j])
			} else {
				fmt.Fprintf(w, "\\%x", buf[j])
			}
			printed++
		}
		fmt.Fprintln(w)
	}

	return nil
}

// PrintUse lists every sector held by this header's subtree: child header
// sectors at interior nodes, data sectors at the leaves.
func (h *FileHeader) PrintUse(w io.Writer, dev SectorDevice) error {
	for i := int32(0); i < h.DirectCount; i++ {
		fmt.Fprintf(w, "%d ", h.Pointers[i])

		if h.mode == interiorMode {
			child := NewFileHeader()
			if err := child.FetchFrom(dev, int(h.Pointers[i])); err != nil {
				return err
			}
			if err := child.PrintUse(w, dev); err != nil {
				return err
			}
		}
	}

	return nil
}
