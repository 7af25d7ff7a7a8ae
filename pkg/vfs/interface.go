package vfs

import (
	"errors"
	"io/fs"
	"os"
	"time"
)

// FileSystem is the set of whole-file operations the dispatcher needs.
//
// Errors for a missing path must satisfy errors.Is(err, fs.ErrNotExist).
type FileSystem interface {
	// Stat returns a FileInfo describing the file at path.
	Stat(path string) (FileInfo, error)

	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to the file at path, creating it if necessary.
	// The file is truncated if it already exists.
	WriteFile(path string, data []byte, perm os.FileMode) error

	// AppendFile appends data to the file at path, creating it if necessary.
	AppendFile(path string, data []byte, perm os.FileMode) error

	// Remove removes the file at path.
	Remove(path string) error
}

// FileInfo describes a file and is returned by Stat.
type FileInfo struct {
	Name    string      // Base name of the file
	Size    int64       // Length in bytes for regular files
	Mode    os.FileMode // File mode bits
	ModTime time.Time   // Modification time
	IsDir   bool        // True if path is a directory
}

// IsRegular reports whether the info describes a regular file.
func (fi FileInfo) IsRegular() bool {
	return fi.Mode.IsRegular() && !fi.IsDir
}

// DefaultPerm is the permission used for files the server creates.
const DefaultPerm os.FileMode = 0644

// ErrNotExist is returned (possibly wrapped) for missing files.
var ErrNotExist = fs.ErrNotExist

// Exists reports whether path names an existing regular file. A missing path
// or a non-regular file yields false with a nil error; any other Stat failure
// is returned.
func Exists(fsys FileSystem, path string) (bool, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.IsRegular(), nil
}
