package site

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// GoldmarkEngine renders Markdown in-process. goldmark.Markdown is safe for
// concurrent use, so one engine serves every worker.
type GoldmarkEngine struct {
	md goldmark.Markdown
}

// NewGoldmarkEngine builds an engine with GFM extensions and raw HTML
// passthrough.
func NewGoldmarkEngine() *GoldmarkEngine {
	return &GoldmarkEngine{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Render converts the file at sourcePath. Conversion failures come back as
// diagnostics so they abort the build like converter stderr does.
func (e *GoldmarkEngine) Render(_ context.Context, sourcePath string) ([]byte, []byte, error) {
	src, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, nil, fmt.Errorf("site: read %s: %w", sourcePath, err)
	}
	var buf bytes.Buffer
	if err := e.md.Convert(src, &buf); err != nil {
		return nil, []byte(err.Error() + "\n"), nil
	}
	return buf.Bytes(), nil, nil
}
