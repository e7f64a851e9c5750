// Package testutil provides shared test helpers for setting up site projects.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Project is a temporary site layout: header.html, footer.html, src/ and
// the (not yet created) docs/ output directory.
type Project struct {
	Dir    string
	Source string
	Output string
	Header string
	Footer string
}

// NewProject creates a project whose header is "<html>" and footer "</html>",
// both dated an hour in the past.
func NewProject(t *testing.T) *Project {
	t.Helper()
	dir := t.TempDir()
	p := &Project{
		Dir:    dir,
		Source: filepath.Join(dir, "src"),
		Output: filepath.Join(dir, "docs"),
		Header: filepath.Join(dir, "header.html"),
		Footer: filepath.Join(dir, "footer.html"),
	}
	if err := os.MkdirAll(p.Source, 0o755); err != nil {
		t.Fatal(err)
	}
	WriteFile(t, p.Header, "<html>")
	WriteFile(t, p.Footer, "</html>")
	// Templates start older than any source written by the test.
	Age(t, time.Hour, p.Header, p.Footer)
	return p
}

// Src writes content to rel under the source directory and returns its path.
func (p *Project) Src(t *testing.T, rel, content string) string {
	t.Helper()
	path := filepath.Join(p.Source, filepath.FromSlash(rel))
	WriteFile(t, path, content)
	return path
}

// Out returns the path of rel under the output directory.
func (p *Project) Out(rel string) string {
	return filepath.Join(p.Output, filepath.FromSlash(rel))
}

// ReadOut returns the content of rel under the output directory.
func (p *Project) ReadOut(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(p.Out(rel))
	if err != nil {
		t.Fatalf("read output %s: %v", rel, err)
	}
	return string(data)
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// SetModTime sets both access and modification time of path.
func SetModTime(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
}

// Age pushes the mtime of every given path back by d.
func Age(t *testing.T, d time.Duration, paths ...string) {
	t.Helper()
	past := time.Now().Add(-d)
	for _, p := range paths {
		SetModTime(t, p, past)
	}
}
