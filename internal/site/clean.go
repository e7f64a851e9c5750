package site

import (
	"fmt"
	"os"

	"github.com/starford/psg/internal/apperr"
)

// Clean removes the output directory and everything below it. A missing
// directory is an error.
func Clean(outputDir string) error {
	info, err := os.Stat(outputDir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%s: %w", outputDir, apperr.ErrOutputMissing)
	}
	if err := os.RemoveAll(outputDir); err != nil {
		return fmt.Errorf("site: remove %s: %w", outputDir, err)
	}
	return nil
}
