package filesys

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// FileSystem is the operation layer over one device and its free-sector
// map: path resolution, file and directory creation, removal, listing.
// It serializes its operations with an internal mutex; the data-structure
// types below it (FileHeader, Directory, OpenFile) stay lock-free and rely
// on this layer for exclusion.
type FileSystem struct {
	mu         sync.Mutex
	dev        SectorDevice
	alloc      SpaceAllocator
	rootSector int
	dirEntries int
}

// FormatOptions configures Format.
type FormatOptions struct {
	// DirEntries is the fixed capacity of every directory table.
	// Zero selects DefaultDirEntries.
	DirEntries int
	// RootSector pins the root directory header to a known sector so a
	// later Mount can find it. Negative lets the allocator choose.
	RootSector int
}

// Format initializes an empty filesystem on dev: it reserves a sector for
// the root directory header, allocates the root table's backing file and
// writes an empty table.
func Format(dev SectorDevice, alloc SpaceAllocator, opts FormatOptions) (*FileSystem, error) {
	capacity := opts.DirEntries
	if capacity <= 0 {
		capacity = DefaultDirEntries
	}

	var rootSector int
	if opts.RootSector >= 0 {
		rootSector = opts.RootSector
		if alloc.Test(rootSector) {
			return nil, fmt.Errorf("%w: root sector %d already in use", ErrInsufficientSpace, rootSector)
		}
		m, ok := alloc.(MarkingAllocator)
		if !ok {
			return nil, fmt.Errorf("%w: allocator cannot pin sector %d", ErrInsufficientSpace, rootSector)
		}
		m.Mark(rootSector)
	} else {
		rootSector = alloc.FindAndSet()
		if rootSector < 0 {
			return nil, fmt.Errorf("%w: no sector for root directory header", ErrInsufficientSpace)
		}
	}

	root := NewDirectory(capacity)
	hdr := NewFileHeader()
	if err := hdr.Allocate(alloc, dev, root.TableBytes()); err != nil {
		alloc.Clear(rootSector)

		return nil, fmt.Errorf("allocate root directory: %w", err)
	}
	if err := hdr.WriteBack(dev, rootSector); err != nil {
		return nil, err
	}

	f := &OpenFile{dev: dev, hdr: hdr, headerSector: rootSector}
	if err := root.WriteBack(f); err != nil {
		return nil, err
	}

	slog.Debug("filesystem formatted",
		"rootSector", rootSector, "dirEntries", capacity, "freeSectors", alloc.NumClear())

	return &FileSystem{
		dev:        dev,
		alloc:      alloc,
		rootSector: rootSector,
		dirEntries: capacity,
	}, nil
}

// Mount opens an existing filesystem whose root directory header lives at
// rootSector. The free-sector map has no on-disk form, so Mount rebuilds
// it by sweeping every sector reachable from the root; the directory table
// capacity is recovered from the root header's byte length.
func Mount(dev SectorDevice, alloc MarkingAllocator, rootSector int) (*FileSystem, error) {
	stats, err := Sweep(dev, alloc, rootSector)
	if err != nil {
		return nil, fmt.Errorf("mount sweep: %w", err)
	}

	hdr := NewFileHeader()
	if err := hdr.FetchFrom(dev, rootSector); err != nil {
		return nil, err
	}
	capacity := int(hdr.Length() / DirEntrySize)
	if capacity <= 0 || hdr.Length()%DirEntrySize != 0 {
		return nil, fmt.Errorf("%w: root table length %d", ErrInconsistent, hdr.Length())
	}

	slog.Info("filesystem mounted",
		"rootSector", rootSector, "dirEntries", capacity,
		"files", stats.Files, "directories", stats.Directories,
		"usedSectors", stats.SectorsMarked, "freeSectors", alloc.NumClear())

	return &FileSystem{
		dev:        dev,
		alloc:      alloc,
		rootSector: rootSector,
		dirEntries: capacity,
	}, nil
}

// RootSector returns the sector of the root directory header.
func (fs *FileSystem) RootSector() int {
	return fs.rootSector
}

// DirEntries returns the fixed capacity of every directory table.
func (fs *FileSystem) DirEntries() int {
	return fs.dirEntries
}

// FreeSectors returns the number of free sectors on the device.
func (fs *FileSystem) FreeSectors() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	return fs.alloc.NumClear()
}

// loadDir opens the directory table stored behind a header sector.
func (fs *FileSystem) loadDir(headerSector int) (*Directory, *OpenFile, error) {
	return fetchSubdirectory(fs.dev, headerSector, fs.dirEntries)
}

// resolveDir walks a component path from the root and returns the named
// directory with its backing file. An empty path yields the root.
func (fs *FileSystem) resolveDir(components []string) (*Directory, *OpenFile, error) {
	dir, f, err := fs.loadDir(fs.rootSector)
	if err != nil {
		return nil, nil, err
	}

	for _, name := range components {
		sector, err := dir.Find(name)
		if err != nil {
			return nil, nil, err
		}
		isDir, err := dir.IsDirectory(name)
		if err != nil {
			return nil, nil, err
		}
		if !isDir {
			return nil, nil, fmt.Errorf("%w: %q", ErrNotDirectory, name)
		}

		dir, f, err = fs.loadDir(sector)
		if err != nil {
			return nil, nil, err
		}
	}

	return dir, f, nil
}

// resolveParent resolves the directory containing the last path component
// and returns that component.
func (fs *FileSystem) resolveParent(path string) (*Directory, *OpenFile, string, error) {
	components := SplitPath(path)
	if len(components) == 0 {
		return nil, nil, "", fmt.Errorf("%w: path %q has no final component", ErrInvalidName, path)
	}

	dir, f, err := fs.resolveDir(components[:len(components)-1])
	if err != nil {
		return nil, nil, "", err
	}

	return dir, f, components[len(components)-1], nil
}

// CreateFile creates a file of the given size at path, allocating its
// header and every data sector. A failure leaves no sector allocated and
// the parent directory unchanged.
func (fs *FileSystem) CreateFile(path string, size int64) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := ValidateSize(size); err != nil {
		return err
	}

	if err := fs.createEntry(path, size, false); err != nil {
		return err
	}
	slog.Debug("file created", "path", path, "size", size)

	return nil
}

// CreateDirectory creates an empty subdirectory at path. Its table has the
// same fixed capacity as every other directory on the filesystem.
func (fs *FileSystem) CreateDirectory(path string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	size := NewDirectory(fs.dirEntries).TableBytes()
	if err := fs.createEntry(path, size, true); err != nil {
		return err
	}
	slog.Debug("directory created", "path", path)

	return nil
}

func (fs *FileSystem) createEntry(path string, size int64, isDir bool) error {
	parent, parentFile, name, err := fs.resolveParent(path)
	if err != nil {
		return err
	}

	headerSector := fs.alloc.FindAndSet()
	if headerSector < 0 {
		return fmt.Errorf("%w: no sector for file header", ErrInsufficientSpace)
	}

	hdr := NewFileHeader()
	if err := hdr.Allocate(fs.alloc, fs.dev, size); err != nil {
		fs.alloc.Clear(headerSector)

		return err
	}

	if err := parent.Add(name, headerSector, isDir); err != nil {
		_ = hdr.Deallocate(fs.alloc, fs.dev)
		fs.alloc.Clear(headerSector)

		return err
	}

	if err := hdr.WriteBack(fs.dev, headerSector); err != nil {
		return err
	}
	if isDir {
		f := &OpenFile{dev: fs.dev, hdr: hdr, headerSector: headerSector}
		if err := NewDirectory(fs.dirEntries).WriteBack(f); err != nil {
			return err
		}
	}

	return parent.WriteBack(parentFile)
}

// Open resolves path to a file and returns it positioned at the start.
func (fs *FileSystem) Open(path string) (*OpenFile, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	parent, _, name, err := fs.resolveParent(path)
	if err != nil {
		return nil, err
	}
	sector, err := parent.Find(name)
	if err != nil {
		return nil, err
	}
	isDir, err := parent.IsDirectory(name)
	if err != nil {
		return nil, err
	}
	if isDir {
		return nil, fmt.Errorf("%w: %q", ErrIsDirectory, path)
	}

	return OpenAt(fs.dev, sector)
}

// Remove deletes the file at path, freeing its index tree, data sectors
// and header sector. Directories are refused; use RemoveRecursive.
func (fs *FileSystem) Remove(path string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	parent, parentFile, name, err := fs.resolveParent(path)
	if err != nil {
		return err
	}
	sector, err := parent.Find(name)
	if err != nil {
		return err
	}
	isDir, err := parent.IsDirectory(name)
	if err != nil {
		return err
	}
	if isDir {
		return fmt.Errorf("%w: %q", ErrIsDirectory, path)
	}

	hdr := NewFileHeader()
	if err := hdr.FetchFrom(fs.dev, sector); err != nil {
		return err
	}
	if err := hdr.Deallocate(fs.alloc, fs.dev); err != nil {
		return err
	}
	fs.alloc.Clear(sector)

	if err := parent.Remove(name); err != nil {
		return err
	}
	if err := parent.WriteBack(parentFile); err != nil {
		return err
	}
	slog.Debug("file removed", "path", path)

	return nil
}

// RemoveRecursive deletes the directory at path and everything under it.
// The root path empties the whole filesystem but keeps the root table.
func (fs *FileSystem) RemoveRecursive(path string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	components := SplitPath(path)
	if len(components) == 0 {
		root, rootFile, err := fs.loadDir(fs.rootSector)
		if err != nil {
			return err
		}
		if err := root.RecursiveRemove(fs.alloc, fs.dev); err != nil {
			return err
		}

		return root.WriteBack(rootFile)
	}

	parent, parentFile, err := fs.resolveDir(components[:len(components)-1])
	if err != nil {
		return err
	}
	name := components[len(components)-1]

	sector, err := parent.Find(name)
	if err != nil {
		return err
	}
	isDir, err := parent.IsDirectory(name)
	if err != nil {
		return err
	}
	if !isDir {
		return fmt.Errorf("%w: %q", ErrNotDirectory, path)
	}

	sub, subFile, err := fs.loadDir(sector)
	if err != nil {
		return err
	}
	if err := sub.RecursiveRemove(fs.alloc, fs.dev); err != nil {
		return err
	}
	if err := sub.WriteBack(subFile); err != nil {
		return err
	}
	if err := subFile.Header().Deallocate(fs.alloc, fs.dev); err != nil {
		return err
	}
	fs.alloc.Clear(sector)

	if err := parent.Remove(name); err != nil {
		return err
	}
	if err := parent.WriteBack(parentFile); err != nil {
		return err
	}
	slog.Debug("directory removed", "path", path)

	return nil
}

// List writes the contents of the directory at path to w, recursively
// descending into subdirectories when recursive is set.
func (fs *FileSystem) List(w io.Writer, path string, recursive bool) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	dir, _, err := fs.resolveDir(SplitPath(path))
	if err != nil {
		return err
	}

	if recursive {
		return dir.RecursiveList(w, fs.dev)
	}
	dir.List(w)

	return nil
}

// Print dumps the whole directory tree with headers and file contents.
func (fs *FileSystem) Print(w io.Writer) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	root, _, err := fs.loadDir(fs.rootSector)
	if err != nil {
		return err
	}

	return root.Print(w, fs.dev)
}

// PrintUse dumps the sector usage of every file on the filesystem.
func (fs *FileSystem) PrintUse(w io.Writer) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	root, _, err := fs.loadDir(fs.rootSector)
	if err != nil {
		return err
	}

	return root.PrintUse(w, fs.dev)
}
