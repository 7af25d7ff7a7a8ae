// Package diskfs provides a disk-based filesystem implementation.
// It wraps the standard library's os functions to provide a VFS-compatible interface.
package diskfs

import (
	"os"
	"path/filepath"
	"strings"

	"httpfs/pkg/vfs"
)

// FS represents a disk-based filesystem.
type FS struct {
	root string
}

// New creates a new disk-based filesystem rooted at the given directory.
func New(root string) *FS {
	return &FS{root: strings.TrimSuffix(root, "/")}
}

// Root returns the base directory.
func (fs *FS) Root() string {
	return fs.root
}

// Stat implements vfs.FileSystem.Stat.
func (fs *FS) Stat(path string) (vfs.FileInfo, error) {
	info, err := os.Stat(fs.fullPath(path))
	if err != nil {
		return vfs.FileInfo{}, err
	}
	return fileInfoFromOS(info), nil
}

// ReadFile implements vfs.FileSystem.ReadFile.
func (fs *FS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(fs.fullPath(path))
}

// WriteFile implements vfs.FileSystem.WriteFile.
func (fs *FS) WriteFile(path string, data []byte, perm os.FileMode) error {
	return os.WriteFile(fs.fullPath(path), data, perm)
}

// AppendFile implements vfs.FileSystem.AppendFile.
func (fs *FS) AppendFile(path string, data []byte, perm os.FileMode) error {
	f, err := os.OpenFile(fs.fullPath(path), os.O_WRONLY|os.O_APPEND|os.O_CREATE, perm)
	if err != nil {
		return err
	}
	_, err = f.Write(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// Remove implements vfs.FileSystem.Remove.
func (fs *FS) Remove(path string) error {
	return os.Remove(fs.fullPath(path))
}

// fullPath appends the target to the root. The target is not cleaned, so
// ".." segments reach outside the root.
func (fs *FS) fullPath(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return fs.root + filepath.FromSlash(path)
}

// fileInfoFromOS converts an os.FileInfo to a vfs.FileInfo.
func fileInfoFromOS(info os.FileInfo) vfs.FileInfo {
	return vfs.FileInfo{
		Name:    info.Name(),
		Size:    info.Size(),
		Mode:    info.Mode(),
		ModTime: info.ModTime(),
		IsDir:   info.IsDir(),
	}
}
