// Package filesys implements a hierarchical sector-indexed filesystem core:
// a recursive multi-level file header (the on-disk index node mapping a byte
// range to sectors, directly or through child headers), a fixed-capacity
// directory of name bindings persisted through that file abstraction, and
// the operation layer tying both to a block device and a free-sector map.
package filesys

const (
	// SectorSize is the transfer unit of the block device, in bytes.
	SectorSize = 128

	// NumPointers is the fan-out of a file header: the number of sector
	// pointers it can hold, whether they reference data sectors or child
	// headers. Chosen so the header record fills one sector exactly.
	NumPointers = 30

	// HeaderSize is the on-disk size of a file header record.
	HeaderSize = 8 + 4*NumPointers

	// Capacity of an index subtree by the number of levels in it:
	// a leaf covers LevelOneMax bytes, a tree of interior nodes over
	// leaves LevelTwoMax, and the deepest allowed tree LevelThreeMax,
	// which is also the maximum representable file size.
	LevelOneMax   = NumPointers * SectorSize
	LevelTwoMax   = NumPointers * LevelOneMax
	LevelThreeMax = NumPointers * LevelTwoMax

	// MaxNameLen is the number of name bytes that participate in
	// directory lookups. Names agreeing on their first MaxNameLen bytes
	// alias to the same entry.
	MaxNameLen = 9

	// DirEntrySize is the on-disk size of a directory entry record.
	DirEntrySize = 2 + (MaxNameLen + 1) + 4

	// DefaultDirEntries is the directory table capacity used by Format
	// unless overridden.
	DefaultDirEntries = 64

	// NoSector is the sentinel for an unset sector pointer.
	NoSector = -1
)

// SectorDevice is the synchronous block device the core reads and writes
// through. Both calls transfer exactly SectorSize bytes and return only
// once the transfer is complete; a returned error is a fatal device fault.
type SectorDevice interface {
	ReadSector(sector int, buf []byte) error
	WriteSector(sector int, data []byte) error
	NumSectors() int
}

// SpaceAllocator is the free-sector map collaborator. FindAndSet reserves
// one free sector and returns its index, or -1 when none remain. The core
// never assumes anything about the order of returned sectors.
type SpaceAllocator interface {
	FindAndSet() int
	Clear(sector int)
	Test(sector int) bool
	NumClear() int
}

// MarkingAllocator extends SpaceAllocator with the ability to reserve a
// specific sector, needed when reconstructing the map from a device sweep.
type MarkingAllocator interface {
	SpaceAllocator
	Mark(sector int)
}
