// Package site implements the incremental build pipeline: staleness checks,
// Markdown conversion and source-to-output tree mirroring.
package site

import "strings"

const (
	// MarkdownExt marks source files that are converted rather than copied.
	MarkdownExt = ".md"
	// HTMLExt replaces MarkdownExt on converted output.
	HTMLExt = ".html"
)

// IsMarkdown reports whether name carries the Markdown extension.
func IsMarkdown(name string) bool {
	return strings.HasSuffix(name, MarkdownExt)
}

// OutputPath maps a source-relative path to its output-relative path.
// Only the trailing extension of Markdown files is rewritten.
func OutputPath(rel string) string {
	if !IsMarkdown(rel) {
		return rel
	}
	return strings.TrimSuffix(rel, MarkdownExt) + HTMLExt
}
