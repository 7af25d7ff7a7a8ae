// Package vfs defines the filesystem the file server reads and writes
// through, with a disk-backed implementation (diskfs) and an in-memory one
// (memfs).
//
// Paths handed to a FileSystem are request targets such as "/notes.txt".
// Implementations decide how a target maps onto storage; diskfs appends it to
// a base directory without any containment check.
//
// # Usage
//
//	fsys := diskfs.New(".")
//	ok, err := vfs.Exists(fsys, "/notes.txt")
//	if err != nil {
//		log.Fatal(err)
//	}
//	if !ok {
//		err = fsys.WriteFile("/notes.txt", []byte("hello"), vfs.DefaultPerm)
//	}
package vfs
