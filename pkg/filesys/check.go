package filesys

import "fmt"

// CheckStats summarizes a consistency sweep of the reachable tree.
type CheckStats struct {
	Files         int
	Directories   int
	IndexNodes    int
	DataSectors   int
	SectorsMarked int
}

// Sweep walks every structure reachable from the root directory header at
// rootSector and marks each visited sector in alloc: headers, index nodes,
// directory tables and data sectors. A sector referenced twice fails the
// sweep, which makes it both the consistency check and the way Mount
// rebuilds the free-sector map from a bare device.
//
// alloc must start with the swept region clear, or reachable sectors will
// be misreported as duplicates.
func Sweep(dev SectorDevice, alloc MarkingAllocator, rootSector int) (*CheckStats, error) {
	stats := &CheckStats{}
	if err := sweepDirectory(dev, alloc, rootSector, stats); err != nil {
		return nil, err
	}

	return stats, nil
}

// mark claims one sector in alloc, failing if something already claimed it
// during this sweep.
func mark(alloc MarkingAllocator, sector int, stats *CheckStats) error {
	if sector < 0 {
		return fmt.Errorf("%w: unset sector reference", ErrInconsistent)
	}
	if alloc.Test(sector) {
		return fmt.Errorf("%w: sector %d referenced twice", ErrInconsistent, sector)
	}
	alloc.Mark(sector)
	stats.SectorsMarked++

	return nil
}

// sweepHeaderTree marks every sector reachable from hdr: child header
// sectors and, below them, data sectors.
func sweepHeaderTree(dev SectorDevice, alloc MarkingAllocator, hdr *FileHeader, stats *CheckStats) error {
	for i := int32(0); i < hdr.DirectCount; i++ {
		s := int(hdr.Pointers[i])
		if err := mark(alloc, s, stats); err != nil {
			return err
		}

		if hdr.mode == leafMode {
			stats.DataSectors++

			continue
		}

		stats.IndexNodes++
		child := NewFileHeader()
		if err := child.FetchFrom(dev, s); err != nil {
			return err
		}
		if err := sweepHeaderTree(dev, alloc, child, stats); err != nil {
			return err
		}
	}

	return nil
}

// sweepDirectory marks a directory's header sector, its table's sectors,
// and recurses through every in-use entry.
func sweepDirectory(dev SectorDevice, alloc MarkingAllocator, headerSector int, stats *CheckStats) error {
	if err := mark(alloc, headerSector, stats); err != nil {
		return err
	}
	stats.Directories++

	f, err := OpenAt(dev, headerSector)
	if err != nil {
		return err
	}
	if err := sweepHeaderTree(dev, alloc, f.Header(), stats); err != nil {
		return err
	}

	capacity := int(f.Length() / DirEntrySize)
	if capacity <= 0 || f.Length()%DirEntrySize != 0 {
		return fmt.Errorf("%w: directory table length %d at sector %d",
			ErrInconsistent, f.Length(), headerSector)
	}

	dir := NewDirectory(capacity)
	if err := dir.FetchFrom(f); err != nil {
		return err
	}

	for i := range dir.table {
		e := &dir.table[i]
		if !e.InUse {
			continue
		}

		if e.IsDir {
			if err := sweepDirectory(dev, alloc, int(e.Sector), stats); err != nil {
				return err
			}

			continue
		}

		stats.Files++
		if err := mark(alloc, int(e.Sector), stats); err != nil {
			return err
		}
		hdr := NewFileHeader()
		if err := hdr.FetchFrom(dev, int(e.Sector)); err != nil {
			return err
		}
		if err := sweepHeaderTree(dev, alloc, hdr, stats); err != nil {
			return err
		}
	}

	return nil
}
