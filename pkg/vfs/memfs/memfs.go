// Package memfs provides an in-memory filesystem implementation.
// It is useful for ephemeral storage, testing, or as a temporary cache.
package memfs

import (
	"errors"
	iofs "io/fs"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"httpfs/pkg/vfs"
)

// ErrNotDirectory is returned when a path is not a directory.
var ErrNotDirectory = errors.New("memfs: not a directory")

// ErrIsDirectory is returned when an operation requires a non-directory.
var ErrIsDirectory = errors.New("memfs: is a directory")

// ErrDirectoryNotEmpty is returned when removing a directory with children.
var ErrDirectoryNotEmpty = errors.New("memfs: directory not empty")

// memNode represents a node in the filesystem (file or directory).
type memNode struct {
	data     []byte
	isDir    bool
	children map[string]*memNode
	mode     os.FileMode
	mtime    time.Time
}

// newMemNode creates a new memory node.
func newMemNode(isDir bool, perm os.FileMode) *memNode {
	n := &memNode{
		isDir: isDir,
		mode:  perm & os.ModePerm,
		mtime: time.Now(),
	}
	if isDir {
		n.children = make(map[string]*memNode)
		n.mode |= os.ModeDir
	}
	return n
}

// FS represents an in-memory filesystem. A single lock serializes all
// operations, so each call is atomic with respect to the others.
type FS struct {
	mu   sync.RWMutex
	root *memNode
}

// New creates a new in-memory filesystem.
func New() *FS {
	return &FS{root: newMemNode(true, 0755)}
}

// Stat implements vfs.FileSystem.Stat.
func (fs *FS) Stat(name string) (vfs.FileInfo, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	node, err := fs.nodeFromPath(name)
	if err != nil {
		return vfs.FileInfo{}, pathError("stat", name, err)
	}
	return vfs.FileInfo{
		Name:    path.Base(clean(name)),
		Size:    int64(len(node.data)),
		Mode:    node.mode,
		ModTime: node.mtime,
		IsDir:   node.isDir,
	}, nil
}

// ReadFile implements vfs.FileSystem.ReadFile.
func (fs *FS) ReadFile(name string) ([]byte, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	node, err := fs.nodeFromPath(name)
	if err != nil {
		return nil, pathError("open", name, err)
	}
	if node.isDir {
		return nil, pathError("read", name, ErrIsDirectory)
	}
	result := make([]byte, len(node.data))
	copy(result, node.data)
	return result, nil
}

// WriteFile implements vfs.FileSystem.WriteFile.
func (fs *FS) WriteFile(name string, data []byte, perm os.FileMode) error {
	return fs.write("write", name, data, perm, false)
}

// AppendFile implements vfs.FileSystem.AppendFile.
func (fs *FS) AppendFile(name string, data []byte, perm os.FileMode) error {
	return fs.write("append", name, data, perm, true)
}

func (fs *FS) write(op, name string, data []byte, perm os.FileMode, appendData bool) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	node, err := fs.nodeFromPath(name)
	if err == nil {
		if node.isDir {
			return pathError(op, name, ErrIsDirectory)
		}
		if appendData {
			node.data = append(node.data, data...)
		} else {
			node.data = append([]byte(nil), data...)
		}
		node.mtime = time.Now()
		return nil
	}

	dir, err := fs.nodeFromPath(path.Dir(clean(name)))
	if err != nil {
		return pathError(op, name, err)
	}
	if !dir.isDir {
		return pathError(op, name, ErrNotDirectory)
	}
	base := path.Base(clean(name))
	if base == "/" {
		return pathError(op, name, ErrIsDirectory)
	}
	newNode := newMemNode(false, perm)
	newNode.data = append([]byte(nil), data...)
	dir.children[base] = newNode
	return nil
}

// Remove implements vfs.FileSystem.Remove.
func (fs *FS) Remove(name string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	p := clean(name)
	if p == "/" {
		return pathError("remove", name, errors.New("memfs: cannot remove root"))
	}
	parent, err := fs.nodeFromPath(path.Dir(p))
	if err != nil {
		return pathError("remove", name, err)
	}
	child, ok := parent.children[path.Base(p)]
	if !ok {
		return pathError("remove", name, vfs.ErrNotExist)
	}
	if child.isDir && len(child.children) > 0 {
		return pathError("remove", name, ErrDirectoryNotEmpty)
	}
	delete(parent.children, path.Base(p))
	return nil
}

// MkdirAll creates a directory at name and any necessary parents.
func (fs *FS) MkdirAll(name string, perm os.FileMode) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	current := fs.root
	for _, part := range splitPath(name) {
		child, ok := current.children[part]
		if ok {
			if !child.isDir {
				return pathError("mkdir", name, ErrNotDirectory)
			}
			current = child
			continue
		}
		newDir := newMemNode(true, perm)
		current.children[part] = newDir
		current = newDir
	}
	return nil
}

// nodeFromPath walks the filesystem and returns the node at the given path.
// Callers must hold fs.mu.
func (fs *FS) nodeFromPath(name string) (*memNode, error) {
	node := fs.root
	for _, part := range splitPath(name) {
		if !node.isDir {
			return nil, ErrNotDirectory
		}
		child, ok := node.children[part]
		if !ok {
			return nil, vfs.ErrNotExist
		}
		node = child
	}
	return node, nil
}

// clean anchors p at the root and removes dot segments. Unlike diskfs, ".."
// cannot climb above the root here.
func clean(p string) string {
	return path.Clean("/" + p)
}

// splitPath splits a path into components.
func splitPath(p string) []string {
	p = clean(p)
	if p == "/" {
		return nil
	}
	return strings.Split(p[1:], "/")
}

func pathError(op, name string, err error) error {
	return &iofs.PathError{Op: op, Path: name, Err: err}
}
