package site

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
)

// fakeEngine wraps the trimmed source text in <p> and reports diagnostics
// for any file whose base name is a key of fail.
type fakeEngine struct {
	fail  map[string]string
	calls atomic.Int32
}

func (f *fakeEngine) Render(_ context.Context, sourcePath string) ([]byte, []byte, error) {
	f.calls.Add(1)
	if diag, ok := f.fail[filepath.Base(sourcePath)]; ok {
		return []byte("<p>partial</p>"), []byte(diag), nil
	}
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, nil, err
	}
	return []byte("<p>" + strings.TrimSpace(string(data)) + "</p>"), nil, nil
}
