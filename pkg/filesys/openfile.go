package filesys

import (
	"fmt"
	"io"
)

// OpenFile is a positional view over the sectors of one file, addressed
// through its header. All transfers go through ByteToSector, so reads and
// writes work identically for flat and multi-level files. The file cannot
// grow: its size is fixed by the allocation of its header.
type OpenFile struct {
	dev          SectorDevice
	hdr          *FileHeader
	headerSector int
	pos          int64
}

// OpenAt fetches the file header stored at sector and returns an open file
// positioned at the start.
func OpenAt(dev SectorDevice, sector int) (*OpenFile, error) {
	hdr := NewFileHeader()
	if err := hdr.FetchFrom(dev, sector); err != nil {
		return nil, err
	}

	return &OpenFile{dev: dev, hdr: hdr, headerSector: sector}, nil
}

// Length returns the file size in bytes.
func (f *OpenFile) Length() int64 {
	return f.hdr.Length()
}

// Header returns the file's in-memory header.
func (f *OpenFile) Header() *FileHeader {
	return f.hdr
}

// HeaderSector returns the sector holding the file's header record.
func (f *OpenFile) HeaderSector() int {
	return f.headerSector
}

// ReadAt reads up to len(p) bytes starting at byte offset off, stopping at
// the end of the file. It returns io.EOF when fewer than len(p) bytes were
// available.
func (f *OpenFile) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("%w: negative offset %d", ErrOffsetOutOfRange, off)
	}
	if off >= f.Length() {
		return 0, io.EOF
	}

	toRead := min(int64(len(p)), f.Length()-off)
	buf := make([]byte, SectorSize)

	read := int64(0)
	for read < toRead {
		pos := off + read
		sector, err := f.hdr.ByteToSector(f.dev, pos)
		if err != nil {
			return int(read), err
		}
		if err := f.dev.ReadSector(sector, buf); err != nil {
			return int(read), fmt.Errorf("%w: %w", ErrDeviceFailure, err)
		}

		within := pos % SectorSize
		n := min(SectorSize-within, toRead-read)
		copy(p[read:read+n], buf[within:within+n])
		read += n
	}

	if read < int64(len(p)) {
		return int(read), io.EOF
	}

	return int(read), nil
}

// WriteAt writes up to len(p) bytes starting at byte offset off, stopping
// at the end of the file. Partial sectors are read, patched and written
// back. It returns io.ErrShortWrite when the file could not hold all of p.
func (f *OpenFile) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("%w: negative offset %d", ErrOffsetOutOfRange, off)
	}
	if off >= f.Length() {
		if len(p) == 0 {
			return 0, nil
		}

		return 0, io.ErrShortWrite
	}

	toWrite := min(int64(len(p)), f.Length()-off)
	buf := make([]byte, SectorSize)

	written := int64(0)
	for written < toWrite {
		pos := off + written
		sector, err := f.hdr.ByteToSector(f.dev, pos)
		if err != nil {
			return int(written), err
		}

		within := pos % SectorSize
		n := min(SectorSize-within, toWrite-written)

		if within != 0 || n < SectorSize {
			if err := f.dev.ReadSector(sector, buf); err != nil {
				return int(written), fmt.Errorf("%w: %w", ErrDeviceFailure, err)
			}
		}
		copy(buf[within:within+n], p[written:written+n])
		if err := f.dev.WriteSector(sector, buf); err != nil {
			return int(written), fmt.Errorf("%w: %w", ErrDeviceFailure, err)
		}

		written += n
	}

	if written < int64(len(p)) {
		return int(written), io.ErrShortWrite
	}

	return int(written), nil
}

// Read implements io.Reader at the current position.
func (f *OpenFile) Read(p []byte) (int, error) {
	n, err := f.ReadAt(p, f.pos)
	f.pos += int64(n)

	return n, err
}

// Write implements io.Writer at the current position.
func (f *OpenFile) Write(p []byte) (int, error) {
	n, err := f.WriteAt(p, f.pos)
	f.pos += int64(n)

	return n, err
}

// Seek implements io.Seeker.
func (f *OpenFile) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = f.pos + offset
	case io.SeekEnd:
		abs = f.Length() + offset
	default:
		return 0, fmt.Errorf("%w: invalid whence %d", ErrOffsetOutOfRange, whence)
	}
	if abs < 0 {
		return 0, fmt.Errorf("%w: negative position %d", ErrOffsetOutOfRange, abs)
	}
	f.pos = abs

	return abs, nil
}
