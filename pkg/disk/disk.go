// Package disk provides a synchronous sector-addressed block device backed
// by memory, with raw image import/export for persistence between runs.
package disk

import (
	"errors"
	"fmt"
)

var (
	// ErrBadGeometry is returned for non-positive sector counts or sizes.
	ErrBadGeometry = errors.New("invalid disk geometry")

	// ErrSectorOutOfRange is returned when a sector index does not exist
	// on the device.
	ErrSectorOutOfRange = errors.New("sector index out of range")

	// ErrShortTransfer is returned when a buffer does not match the
	// device's sector size exactly.
	ErrShortTransfer = errors.New("buffer size does not match sector size")
)

// Disk is an in-memory block device. Every transfer moves exactly one
// sector and completes before returning.
type Disk struct {
	sectorSize int
	data       []byte
}

// New creates a device with numSectors sectors of sectorSize bytes, zeroed.
func New(numSectors, sectorSize int) (*Disk, error) {
	if numSectors <= 0 || sectorSize <= 0 {
		return nil, fmt.Errorf("%w: %d sectors of %d bytes", ErrBadGeometry, numSectors, sectorSize)
	}

	return &Disk{
		sectorSize: sectorSize,
		data:       make([]byte, numSectors*sectorSize),
	}, nil
}

// ReadSector copies the contents of a sector into buf.
// buf must be exactly one sector long.
func (d *Disk) ReadSector(sector int, buf []byte) error {
	if sector < 0 || sector >= d.NumSectors() {
		return fmt.Errorf("%w: %d", ErrSectorOutOfRange, sector)
	}
	if len(buf) != d.sectorSize {
		return fmt.Errorf("%w: got %d, want %d", ErrShortTransfer, len(buf), d.sectorSize)
	}

	copy(buf, d.data[sector*d.sectorSize:(sector+1)*d.sectorSize])

	return nil
}

// WriteSector replaces the contents of a sector with data.
// data must be exactly one sector long.
func (d *Disk) WriteSector(sector int, data []byte) error {
	if sector < 0 || sector >= d.NumSectors() {
		return fmt.Errorf("%w: %d", ErrSectorOutOfRange, sector)
	}
	if len(data) != d.sectorSize {
		return fmt.Errorf("%w: got %d, want %d", ErrShortTransfer, len(data), d.sectorSize)
	}

	copy(d.data[sector*d.sectorSize:(sector+1)*d.sectorSize], data)

	return nil
}

// NumSectors returns the number of sectors on the device.
func (d *Disk) NumSectors() int {
	return len(d.data) / d.sectorSize
}

// SectorSize returns the device's sector size in bytes.
func (d *Disk) SectorSize() int {
	return d.sectorSize
}
