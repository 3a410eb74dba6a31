package disk

import (
	"fmt"
	"os"
)

// SaveImage writes the raw device contents to a flat image file.
func (d *Disk) SaveImage(path string) error {
	if err := os.WriteFile(path, d.data, 0o644); err != nil {
		return fmt.Errorf("save image: %w", err)
	}

	return nil
}

// LoadImage creates a device from a flat image file. The file length must
// be an exact multiple of sectorSize.
func LoadImage(path string, sectorSize int) (*Disk, error) {
	if sectorSize <= 0 {
		return nil, fmt.Errorf("%w: sector size %d", ErrBadGeometry, sectorSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load image: %w", err)
	}
	if len(data) == 0 || len(data)%sectorSize != 0 {
		return nil, fmt.Errorf("%w: image length %d is not a multiple of %d",
			ErrBadGeometry, len(data), sectorSize)
	}

	return &Disk{
		sectorSize: sectorSize,
		data:       data,
	}, nil
}
