package filesys

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

// DirectoryEntry binds a name to the sector holding a file's header. The
// record is fixed-width so a directory table serializes to a flat byte
// array. Only the first MaxNameLen name bytes take part in comparisons:
// names agreeing on that prefix alias to the same entry.
type DirectoryEntry struct {
	InUse  bool
	IsDir  bool
	Name   [MaxNameLen + 1]byte
	Sector int32
}

// SetName stores name, truncated to MaxNameLen bytes and zero padded.
func (e *DirectoryEntry) SetName(name string) {
	e.Name = nameKey(name)
}

// NameString returns the stored name.
func (e *DirectoryEntry) NameString() string {
	s := string(e.Name[:])
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}

	return s
}

// nameKey is the canonical comparison form of a name: the first MaxNameLen
// bytes, zero padded into the fixed-width field.
func nameKey(name string) [MaxNameLen + 1]byte {
	var key [MaxNameLen + 1]byte
	copy(key[:MaxNameLen], name)

	return key
}

// Directory is a fixed-capacity table of directory entries. The capacity is
// set at construction and never changes; the table persists as the byte
// contents of a file whose header is itself a FileHeader. A subdirectory
// entry points at a header whose data is another table of the same
// capacity.
//
// Directory performs no locking: callers must serialize mutations that
// could touch overlapping entries or sectors.
type Directory struct {
	table []DirectoryEntry
}

// NewDirectory creates an empty in-memory directory with room for capacity
// entries. Use FetchFrom to load an existing table from disk.
func NewDirectory(capacity int) *Directory {
	return &Directory{table: make([]DirectoryEntry, capacity)}
}

// Capacity returns the number of entry slots in the table.
func (d *Directory) Capacity() int {
	return len(d.table)
}

// TableBytes returns the serialized size of the table, which is the size
// of the table's backing file.
func (d *Directory) TableBytes() int64 {
	return int64(len(d.table)) * DirEntrySize
}

// FetchFrom reads the directory table from its backing file.
func (d *Directory) FetchFrom(f *OpenFile) error {
	buf := make([]byte, d.TableBytes())
	if _, err := f.ReadAt(buf, 0); err != nil && err != io.EOF {
		return fmt.Errorf("read directory table: %w", err)
	}
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, d.table); err != nil {
		return fmt.Errorf("decode directory table: %w", err)
	}

	return nil
}

// WriteBack writes the directory table to its backing file.
func (d *Directory) WriteBack(f *OpenFile) error {
	buf := new(bytes.Buffer)
	buf.Grow(int(d.TableBytes()))
	if err := binary.Write(buf, binary.LittleEndian, d.table); err != nil {
		return fmt.Errorf("encode directory table: %w", err)
	}
	if _, err := f.WriteAt(buf.Bytes(), 0); err != nil {
		return fmt.Errorf("write directory table: %w", err)
	}

	return nil
}

// FindIndex returns the table index of the in-use entry matching name, or
// -1 if the name is not present. The scan is in table order, first match
// wins.
func (d *Directory) FindIndex(name string) int {
	key := nameKey(name)
	for i := range d.table {
		if d.table[i].InUse && bytes.Equal(d.table[i].Name[:MaxNameLen], key[:MaxNameLen]) {
			return i
		}
	}

	return -1
}

// Find returns the header sector bound to name.
func (d *Directory) Find(name string) (int, error) {
	i := d.FindIndex(name)
	if i < 0 {
		return NoSector, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	return int(d.table[i].Sector), nil
}

// IsDirectory reports whether the entry bound to name is a subdirectory.
func (d *Directory) IsDirectory(name string) (bool, error) {
	i := d.FindIndex(name)
	if i < 0 {
		return false, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	return d.table[i].IsDir, nil
}

// Add binds name to the given header sector in the first free slot. The
// mutation is in-memory only until the caller writes the table back.
func (d *Directory) Add(name string, headerSector int, isDir bool) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if d.FindIndex(name) >= 0 {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}

	for i := range d.table {
		if d.table[i].InUse {
			continue
		}
		d.table[i].InUse = true
		d.table[i].IsDir = isDir
		d.table[i].SetName(name)
		d.table[i].Sector = int32(headerSector)

		return nil
	}

	return fmt.Errorf("%w: %d entries", ErrDirectoryFull, len(d.table))
}

// Remove clears the in-use flag of the entry bound to name. The entry's
// header and sectors are untouched; reclaiming those is the caller's
// responsibility.
func (d *Directory) Remove(name string) error {
	i := d.FindIndex(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	d.table[i].InUse = false

	return nil
}

// RecursiveRemove removes every entry in the table, returning all sectors
// transitively reachable from it to alloc: file index trees and data,
// nested directory tables, and the headers of both. Each freed structure's
// header sector is cleared exactly once.
func (d *Directory) RecursiveRemove(alloc SpaceAllocator, dev SectorDevice) error {
	for i := range d.table {
		e := &d.table[i]
		if !e.InUse {
			continue
		}
		sector := int(e.Sector)

		if e.IsDir {
			sub, f, err := fetchSubdirectory(dev, sector, len(d.table))
			if err != nil {
				return err
			}
			if err := sub.RecursiveRemove(alloc, dev); err != nil {
				return err
			}
			if err := sub.WriteBack(f); err != nil {
				return err
			}
			if err := f.Header().Deallocate(alloc, dev); err != nil {
				return err
			}
		} else {
			hdr := NewFileHeader()
			if err := hdr.FetchFrom(dev, sector); err != nil {
				return err
			}
			if err := hdr.Deallocate(alloc, dev); err != nil {
				return err
			}
		}

		alloc.Clear(sector)
		e.InUse = false
	}

	return nil
}

// fetchSubdirectory opens the directory table stored behind a header
// sector, using the same table capacity as the parent.
func fetchSubdirectory(dev SectorDevice, headerSector, capacity int) (*Directory, *OpenFile, error) {
	f, err := OpenAt(dev, headerSector)
	if err != nil {
		return nil, nil, err
	}
	sub := NewDirectory(capacity)
	if err := sub.FetchFrom(f); err != nil {
		return nil, nil, err
	}

	return sub, f, nil
}

// List writes the names in the table, one per line, marking subdirectories
// {D} and files {F}.
func (d *Directory) List(w io.Writer) {
	for i := range d.table {
		if !d.table[i].InUse {
			continue
		}
		writeListing(w, &d.table[i], 0)
	}
}

// RecursiveList writes the names in the table and, for each in-use
// subdirectory entry, the nested table indented two spaces per level.
func (d *Directory) RecursiveList(w io.Writer, dev SectorDevice) error {
	return d.recursiveList(w, dev, 0)
}

func (d *Directory) recursiveList(w io.Writer, dev SectorDevice, depth int) error {
	for i := range d.table {
		e := &d.table[i]
		if !e.InUse {
			continue
		}
		writeListing(w, e, depth)

		if e.IsDir {
			sub, _, err := fetchSubdirectory(dev, int(e.Sector), len(d.table))
			if err != nil {
				return err
			}
			if err := sub.recursiveList(w, dev, depth+1); err != nil {
				return err
			}
		}
	}

	return nil
}

func writeListing(w io.Writer, e *DirectoryEntry, depth int) {
	tag := "{F}"
	if e.IsDir {
		tag = "{D}"
	}
	fmt.Fprintf(w, "%s%s: %s\n", strings.Repeat("  ", depth), tag, e.NameString())
}

// Print dumps every in-use entry with its header and file contents.
func (d *Directory) Print(w io.Writer, dev SectorDevice) error {
	fmt.Fprintln(w, "Directory contents:")
	for i := range d.table {
		e := &d.table[i]
		if !e.InUse {
			continue
		}
		fmt.Fprintf(w, "Name: %s, Sector: %d\n", e.NameString(), e.Sector)

		hdr := NewFileHeader()
		if err := hdr.FetchFrom(dev, int(e.Sector)); err != nil {
			return err
		}
		if err := hdr.Print(w, dev); err != nil {
			return err
		}
	}
	fmt.Fprintln(w)

	return nil
}

// PrintUse dumps the sector usage of every file in the tree, descending
// into subdirectories.
func (d *Directory) PrintUse(w io.Writer, dev SectorDevice) error {
	for i := range d.table {
		e := &d.table[i]
		if !e.InUse {
			continue
		}

		if e.IsDir {
			sub, _, err := fetchSubdirectory(dev, int(e.Sector), len(d.table))
			if err != nil {
				return err
			}
			if err := sub.PrintUse(w, dev); err != nil {
				return err
			}

			continue
		}

		fmt.Fprintf(w, "Name: %s, Sector: %d ", e.NameString(), e.Sector)
		hdr := NewFileHeader()
		if err := hdr.FetchFrom(dev, int(e.Sector)); err != nil {
			return err
		}
		if err := hdr.PrintUse(w, dev); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	return nil
}
