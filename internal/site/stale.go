package site

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

// NeedsRebuild reports whether dest must be regenerated from source.
//
// A missing dest is always stale. Otherwise dest is stale when source is
// newer than dest, or when either template fragment is newer than source.
// The fragments are compared against source, not dest.
func NeedsRebuild(source, dest, header, footer string) (bool, error) {
	destInfo, err := os.Stat(dest)
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("site: stat %s: %w", dest, err)
	}

	srcTime, err := modTime(source)
	if err != nil {
		return false, err
	}
	if srcTime.After(destInfo.ModTime()) {
		return true, nil
	}

	for _, tpl := range []string{header, footer} {
		tplTime, err := modTime(tpl)
		if err != nil {
			return false, err
		}
		if tplTime.After(srcTime) {
			return true, nil
		}
	}
	return false, nil
}

func modTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("site: stat %s: %w", path, err)
	}
	return info.ModTime(), nil
}
