package site

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/psg/internal/storage"
)

// Stats summarises one build run.
type Stats struct {
	Dirs      int
	Converted int
	Copied    int
	Skipped   int
	Duration  time.Duration
}

// LogAttrs returns the stats as slog attributes.
func (s Stats) LogAttrs() []any {
	return []any{
		slog.Int("dirs", s.Dirs),
		slog.Int("converted", s.Converted),
		slog.Int("copied", s.Copied),
		slog.Int("skipped", s.Skipped),
		slog.Duration("duration", s.Duration),
	}
}

type counters struct {
	dirs, converted, copied, skipped atomic.Int64
}

func (c *counters) stats() Stats {
	return Stats{
		Dirs:      int(c.dirs.Load()),
		Converted: int(c.converted.Load()),
		Copied:    int(c.copied.Load()),
		Skipped:   int(c.skipped.Load()),
	}
}

// Mirror replicates the source tree into the output tree, converting stale
// Markdown files and copying every other stale file verbatim.
type Mirror struct {
	source    storage.Provider
	dest      storage.Provider
	converter *Converter
	templates *Templates
	workers   int
	logger    *slog.Logger
}

// NewMirror creates a Mirror. workers <= 1 processes files strictly one at a
// time in traversal order.
func NewMirror(source, dest storage.Provider, converter *Converter, templates *Templates, workers int, logger *slog.Logger) *Mirror {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mirror{
		source:    source,
		dest:      dest,
		converter: converter,
		templates: templates,
		workers:   workers,
		logger:    logger,
	}
}

// Run walks the whole source tree and returns the first error encountered.
// Output written before the failure is left in place.
func (m *Mirror) Run(ctx context.Context) (Stats, error) {
	var c counters

	if m.workers <= 1 {
		err := m.walk(ctx, ".", &c, func(rel string) error {
			return m.processFile(ctx, rel, &c)
		})
		return c.stats(), err
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)
	walkErr := m.walk(gCtx, ".", &c, func(rel string) error {
		if err := gCtx.Err(); err != nil {
			return err
		}
		g.Go(func() error {
			return m.processFile(gCtx, rel, &c)
		})
		return nil
	})
	if err := g.Wait(); err != nil {
		return c.stats(), err
	}
	return c.stats(), walkErr
}

// walk handles one directory level: every subdirectory is created in the
// output tree before any file at this level is submitted, then each
// subdirectory is descended into.
func (m *Mirror) walk(ctx context.Context, rel string, c *counters, submit func(rel string) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entries, err := m.source.ReadDir(rel)
	if err != nil {
		return err
	}

	var dirs, files []string
	for _, e := range entries {
		child := filepath.Join(rel, e.Name())
		isDir, descend, err := m.classify(child, e)
		if err != nil {
			return err
		}
		if !isDir {
			files = append(files, child)
			continue
		}
		if err := m.dest.MkdirAll(child); err != nil {
			return err
		}
		c.dirs.Add(1)
		if descend {
			dirs = append(dirs, child)
		}
	}

	for _, f := range files {
		if err := submit(f); err != nil {
			return err
		}
	}
	for _, d := range dirs {
		if err := m.walk(ctx, d, c, submit); err != nil {
			return err
		}
	}
	return nil
}

// classify reports whether e is a directory and whether to descend into it.
// Symlinked directories are mirrored as directories but not followed.
func (m *Mirror) classify(rel string, e fs.DirEntry) (isDir, descend bool, err error) {
	if e.IsDir() {
		return true, true, nil
	}
	if e.Type()&fs.ModeSymlink == 0 {
		return false, false, nil
	}
	info, err := m.source.Stat(rel)
	if err != nil {
		return false, false, err
	}
	return info.IsDir(), false, nil
}

func (m *Mirror) processFile(ctx context.Context, rel string, c *counters) error {
	srcAbs, err := m.source.Abs(rel)
	if err != nil {
		return err
	}
	destAbs, err := m.dest.Abs(OutputPath(rel))
	if err != nil {
		return err
	}

	stale, err := NeedsRebuild(srcAbs, destAbs, m.templates.HeaderPath, m.templates.FooterPath)
	if err != nil {
		return err
	}
	if !stale {
		c.skipped.Add(1)
		m.logger.Debug("build: skipped", slog.String("path", rel))
		return nil
	}

	if IsMarkdown(rel) {
		if err := m.converter.Convert(ctx, srcAbs, rel); err != nil {
			return err
		}
		c.converted.Add(1)
		m.logger.Debug("build: converted", slog.String("path", rel))
		return nil
	}

	if err := m.copyFile(rel); err != nil {
		return err
	}
	c.copied.Add(1)
	m.logger.Debug("build: copied", slog.String("path", rel))
	return nil
}

func (m *Mirror) copyFile(rel string) error {
	info, err := m.source.Stat(rel)
	if err != nil {
		return err
	}
	rc, err := m.source.Open(rel)
	if err != nil {
		return err
	}
	defer rc.Close()
	if err := m.dest.WriteFrom(rel, rc, info.Mode().Perm()); err != nil {
		return fmt.Errorf("site: copy %s: %w", rel, err)
	}
	return nil
}
