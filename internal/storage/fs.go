package storage

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// tempPrefix marks in-flight writes; files carrying it never survive a Write.
const tempPrefix = ".psg-tmp-"

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to tree root
}

var _ Provider = (*FS)(nil)

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute tree root.
func (f *FS) Root() string {
	return f.root
}

// Abs resolves a relative path against the tree root and rejects
// any result that escapes it (directory traversal).
func (f *FS) Abs(rel string) (string, error) {
	if rel == "" || rel == "." {
		return f.root, nil
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s", rel)
	}
	abs := filepath.Join(f.root, cleaned)
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("storage: path escapes root: %s", rel)
	}
	return abs, nil
}

// ReadDir lists the directory at rel.
func (f *FS) ReadDir(rel string) ([]fs.DirEntry, error) {
	abs, err := f.Abs(rel)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read dir %s: %w", rel, err)
	}
	return entries, nil
}

// Stat returns the file info of rel. The returned error wraps
// fs.ErrNotExist when nothing exists there.
func (f *FS) Stat(rel string) (fs.FileInfo, error) {
	abs, err := f.Abs(rel)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat %s: %w", rel, err)
	}
	return info, nil
}

// Open opens rel for reading.
func (f *FS) Open(rel string) (io.ReadCloser, error) {
	abs, err := f.Abs(rel)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", rel, err)
	}
	return file, nil
}

// MkdirAll creates rel and its parents; existing directories are fine.
func (f *FS) MkdirAll(rel string) error {
	abs, err := f.Abs(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir %s: %w", rel, err)
	}
	return nil
}

// Write atomically writes content to rel.
func (f *FS) Write(rel string, content []byte, perm fs.FileMode) error {
	return f.WriteFrom(rel, bytes.NewReader(content), perm)
}

// WriteFrom atomically writes the contents of r: tmp file → fsync → chmod → rename.
func (f *FS) WriteFrom(rel string, r io.Reader, perm fs.FileMode) error {
	abs, err := f.Abs(rel)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		return fmt.Errorf("storage: write %s: %w", rel, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Chmod(tmpName, perm.Perm()); err != nil {
		return fmt.Errorf("storage: chmod %s: %w", rel, err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}
