package site

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/starford/psg/internal/storage"
)

// Project names the inputs and output of a site.
type Project struct {
	SourceDir  string
	OutputDir  string
	HeaderPath string
	FooterPath string
}

// Builder runs the build pipeline for a Project.
type Builder struct {
	project Project
	engine  Engine
	workers int
	logger  *slog.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(project Project, engine Engine, workers int, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{project: project, engine: engine, workers: workers, logger: logger}
}

// Build loads the template fragments, ensures the output root exists and
// mirrors the source tree into it. Templates are re-read on every call.
func (b *Builder) Build(ctx context.Context) (Stats, error) {
	start := time.Now()

	tpl, err := LoadTemplates(b.project.HeaderPath, b.project.FooterPath)
	if err != nil {
		return Stats{}, err
	}

	if err := os.MkdirAll(b.project.OutputDir, 0o755); err != nil {
		return Stats{}, fmt.Errorf("site: create output dir: %w", err)
	}
	source, err := storage.NewFS(b.project.SourceDir)
	if err != nil {
		return Stats{}, err
	}
	dest, err := storage.NewFS(b.project.OutputDir)
	if err != nil {
		return Stats{}, err
	}

	conv := NewConverter(b.engine, tpl, dest)
	stats, err := NewMirror(source, dest, conv, tpl, b.workers, b.logger).Run(ctx)
	stats.Duration = time.Since(start)
	return stats, err
}
