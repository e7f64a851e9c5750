// Package storage defines the site tree file-system abstraction.
package storage

import (
	"io"
	"io/fs"
)

// Provider is the interface for operations on a rooted site tree.
// All paths are relative to the tree root.
type Provider interface {
	// Root returns the absolute path of the tree root.
	Root() string
	// Abs resolves path against the root, rejecting escapes.
	Abs(path string) (string, error)
	// ReadDir lists the entries of the directory at path.
	ReadDir(path string) ([]fs.DirEntry, error)
	// Stat returns file info for path.
	Stat(path string) (fs.FileInfo, error)
	// Open opens the file at path for reading.
	Open(path string) (io.ReadCloser, error)
	// MkdirAll creates the directory at path and any missing parents.
	MkdirAll(path string) error
	// Write atomically writes content to path with the given permissions.
	Write(path string, content []byte, perm fs.FileMode) error
	// WriteFrom atomically streams r into path with the given permissions.
	WriteFrom(path string, r io.Reader, perm fs.FileMode) error
}
