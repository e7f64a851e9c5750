package site

import (
	"context"
	"fmt"

	"github.com/starford/psg/internal/storage"
)

// Converter renders Markdown files through an Engine and writes them,
// wrapped in the template fragments, into the output tree.
type Converter struct {
	engine    Engine
	templates *Templates
	dest      storage.Provider
}

// NewConverter creates a Converter writing into dest.
func NewConverter(engine Engine, templates *Templates, dest storage.Provider) *Converter {
	return &Converter{engine: engine, templates: templates, dest: dest}
}

// Convert renders sourcePath and writes the result to destRel with its
// Markdown extension replaced. destRel is the unmapped output path.
func (c *Converter) Convert(ctx context.Context, sourcePath, destRel string) error {
	body, diag, err := c.engine.Render(ctx, sourcePath)
	if len(diag) > 0 {
		return &ConversionError{Source: sourcePath, Diagnostics: string(diag)}
	}
	if err != nil {
		return err
	}

	out := OutputPath(destRel)
	if err := c.dest.Write(out, c.templates.Wrap(body), 0o644); err != nil {
		return fmt.Errorf("site: write %s: %w", out, err)
	}
	return nil
}
