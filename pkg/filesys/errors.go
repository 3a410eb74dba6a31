package filesys

import "errors"

var (
	ErrInsufficientSpace = errors.New("not enough free sectors")
	ErrFileTooLarge      = errors.New("file size exceeds maximum")
	ErrInvalidSize       = errors.New("invalid file size")
	ErrDuplicateName     = errors.New("name already in directory")
	ErrDirectoryFull     = errors.New("directory is full")
	ErrNotFound          = errors.New("name not found")
	ErrInvalidName       = errors.New("invalid name")
	ErrIsDirectory       = errors.New("entry is a directory")
	ErrNotDirectory      = errors.New("entry is not a directory")
	ErrOffsetOutOfRange  = errors.New("offset outside file")
	ErrDeviceFailure     = errors.New("device failure")
	ErrInconsistent      = errors.New("on-disk structure is inconsistent")
)
