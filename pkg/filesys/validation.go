package filesys

import (
	"fmt"
	"strings"
)

// ValidateName checks a single path component. Names must be non-empty and
// free of path separators and NUL bytes. Length is not checked: names
// longer than MaxNameLen are legal and simply truncate on storage.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	if strings.ContainsAny(name, "/\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	return nil
}

// ValidateSize checks a requested file size against the representable range.
func ValidateSize(size int64) error {
	if size < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if size > LevelThreeMax {
		return fmt.Errorf("%w: %d > %d", ErrFileTooLarge, size, int64(LevelThreeMax))
	}

	return nil
}

// SplitPath breaks an absolute or relative path into its components,
// dropping empty ones. The root path yields no components.
func SplitPath(path string) []string {
	parts := strings.Split(path, "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" && p != "." {
			out = append(out, p)
		}
	}

	return out
}
