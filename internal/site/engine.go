package site

import (
	"context"
	"fmt"
	"strings"
)

// Engine turns one Markdown file into an HTML fragment.
//
// Render returns the rendered HTML and any diagnostic output. Non-empty
// diagnostics fail the conversion even when err is nil.
type Engine interface {
	Render(ctx context.Context, sourcePath string) (html, diagnostics []byte, err error)
}

// ConversionError reports a Markdown file whose engine produced diagnostics.
type ConversionError struct {
	Source      string
	Diagnostics string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("site: convert %s: %s", e.Source, strings.TrimSpace(e.Diagnostics))
}

// Indented returns the diagnostics with every non-blank line prefixed by a tab.
func (e *ConversionError) Indented() string {
	lines := strings.SplitAfter(e.Diagnostics, "\n")
	var b strings.Builder
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			b.WriteByte('\t')
		}
		b.WriteString(line)
	}
	return b.String()
}
