package site

import (
	"bytes"
	"fmt"
	"os"

	"github.com/starford/psg/internal/apperr"
)

// Templates holds the header and footer fragments wrapped around every
// converted document, together with the paths they were read from so the
// staleness check can stat them.
type Templates struct {
	HeaderPath string
	FooterPath string
	Header     []byte
	Footer     []byte
}

// LoadTemplates reads both fragments fully into memory.
func LoadTemplates(headerPath, footerPath string) (*Templates, error) {
	header, err := readFragment(headerPath)
	if err != nil {
		return nil, err
	}
	footer, err := readFragment(footerPath)
	if err != nil {
		return nil, err
	}
	return &Templates{
		HeaderPath: headerPath,
		FooterPath: footerPath,
		Header:     header,
		Footer:     footer,
	}, nil
}

// Wrap returns header, newline, body, newline, footer. body is not escaped.
func (t *Templates) Wrap(body []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(len(t.Header) + len(body) + len(t.Footer) + 2)
	buf.Write(t.Header)
	buf.WriteByte('\n')
	buf.Write(body)
	buf.WriteByte('\n')
	buf.Write(t.Footer)
	return buf.Bytes()
}

func readFragment(path string) ([]byte, error) {
	if err := checkRegular(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("site: read %s: %w", path, err)
	}
	return data, nil
}

func checkRegular(path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return fmt.Errorf("%s does not exist: %w", path, apperr.ErrMissingTemplate)
	}
	return nil
}

// CheckProject verifies that both template fragments are regular files and
// that sourceDir is a directory. It runs before any command touches the tree.
func CheckProject(headerPath, footerPath, sourceDir string) error {
	if err := checkRegular(headerPath); err != nil {
		return err
	}
	if err := checkRegular(footerPath); err != nil {
		return err
	}
	info, err := os.Stat(sourceDir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%s directory does not exist: %w", sourceDir, apperr.ErrMissingSource)
	}
	return nil
}
