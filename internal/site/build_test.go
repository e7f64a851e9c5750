package site

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/starford/psg/internal/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newBuilder(p *testutil.Project, engine Engine, workers int) *Builder {
	return NewBuilder(Project{
		SourceDir:  p.Source,
		OutputDir:  p.Output,
		HeaderPath: p.Header,
		FooterPath: p.Footer,
	}, engine, workers, quietLogger())
}

func mustBuild(t *testing.T, b *Builder) Stats {
	t.Helper()
	stats, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return stats
}

func TestBuild_ExampleSite(t *testing.T) {
	p := testutil.NewProject(t)
	p.Src(t, "index.md", "# Hi")
	p.Src(t, "style.css", "body{}")

	stats := mustBuild(t, newBuilder(p, NewGoldmarkEngine(), 1))

	if got := p.ReadOut(t, "index.html"); got != "<html>\n<h1>Hi</h1>\n\n</html>" {
		t.Errorf("index.html = %q", got)
	}
	if got := p.ReadOut(t, "style.css"); got != "body{}" {
		t.Errorf("style.css = %q", got)
	}
	if stats.Converted != 1 || stats.Copied != 1 || stats.Skipped != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestBuild_MappingAndDirectories(t *testing.T) {
	p := testutil.NewProject(t)
	p.Src(t, "a.md", "a")
	p.Src(t, "blog/2024/post.md", "post")
	p.Src(t, "blog/2024/cover.png", "\x89PNG")
	p.Src(t, "notes.md.txt", "plain")
	if err := os.MkdirAll(filepath.Join(p.Source, "empty", "deeper"), 0o755); err != nil {
		t.Fatal(err)
	}

	stats := mustBuild(t, newBuilder(p, &fakeEngine{}, 1))

	for rel, want := range map[string]string{
		"a.html":              "<html>\n<p>a</p>\n</html>",
		"blog/2024/post.html": "<html>\n<p>post</p>\n</html>",
		"blog/2024/cover.png": "\x89PNG",
		"notes.md.txt":        "plain",
	} {
		if got := p.ReadOut(t, rel); got != want {
			t.Errorf("%s = %q, want %q", rel, got, want)
		}
	}
	for _, dir := range []string{"blog", "blog/2024", "empty", "empty/deeper"} {
		info, err := os.Stat(p.Out(dir))
		if err != nil || !info.IsDir() {
			t.Errorf("directory %s not mirrored", dir)
		}
	}
	if stats.Dirs != 4 {
		t.Errorf("dirs = %d, want 4", stats.Dirs)
	}
}

func TestBuild_Idempotent(t *testing.T) {
	p := testutil.NewProject(t)
	p.Src(t, "index.md", "home")
	p.Src(t, "sub/page.md", "page")
	p.Src(t, "sub/data.json", "{}")

	eng := &fakeEngine{}
	b := newBuilder(p, eng, 1)
	mustBuild(t, b)

	before, err := os.Stat(p.Out("sub/page.html"))
	if err != nil {
		t.Fatal(err)
	}
	calls := eng.calls.Load()

	stats := mustBuild(t, b)
	if stats.Converted != 0 || stats.Copied != 0 || stats.Skipped != 3 {
		t.Errorf("second build stats = %+v, want all skipped", stats)
	}
	if eng.calls.Load() != calls {
		t.Error("engine invoked on second build")
	}
	after, _ := os.Stat(p.Out("sub/page.html"))
	if !after.ModTime().Equal(before.ModTime()) {
		t.Error("output rewritten on second build")
	}
}

func TestBuild_TemplateTouchForcesRebuild(t *testing.T) {
	p := testutil.NewProject(t)
	p.Src(t, "a.md", "a")
	p.Src(t, "b/c.md", "c")
	b := newBuilder(p, &fakeEngine{}, 1)
	mustBuild(t, b)

	testutil.WriteFile(t, p.Header, "<html><body>")
	testutil.SetModTime(t, p.Header, time.Now().Add(time.Minute))

	stats := mustBuild(t, b)
	if stats.Converted != 2 {
		t.Errorf("converted = %d, want 2", stats.Converted)
	}
	if got := p.ReadOut(t, "b/c.html"); got != "<html><body>\n<p>c</p>\n</html>" {
		t.Errorf("c.html = %q", got)
	}
}

func TestBuild_SourceTouchRebuildsOnlyThatFile(t *testing.T) {
	p := testutil.NewProject(t)
	p.Src(t, "a.md", "a")
	b2 := p.Src(t, "b.md", "b")
	b := newBuilder(p, &fakeEngine{}, 1)
	mustBuild(t, b)

	testutil.WriteFile(t, b2, "b2")
	testutil.SetModTime(t, b2, time.Now().Add(time.Minute))

	stats := mustBuild(t, b)
	if stats.Converted != 1 || stats.Skipped != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if got := p.ReadOut(t, "b.html"); got != "<html>\n<p>b2</p>\n</html>" {
		t.Errorf("b.html = %q", got)
	}
}

func TestBuild_FailFastOnConversionError(t *testing.T) {
	p := testutil.NewProject(t)
	p.Src(t, "bad.md", "bad")
	eng := &fakeEngine{fail: map[string]string{"bad.md": "parse error\n"}}

	_, err := newBuilder(p, eng, 1).Build(context.Background())
	var convErr *ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("err = %v, want *ConversionError", err)
	}
	if _, statErr := os.Stat(p.Out("bad.html")); statErr == nil {
		t.Error("failed file must not get output")
	}
}

func TestBuild_StopsAfterFirstError(t *testing.T) {
	p := testutil.NewProject(t)
	p.Src(t, "bad.md", "bad")
	p.Src(t, "z/later.md", "later")
	eng := &fakeEngine{fail: map[string]string{"bad.md": "boom\n"}}

	if _, err := newBuilder(p, eng, 1).Build(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	// Directories at the failing level exist, later files were never visited.
	if _, err := os.Stat(p.Out("z")); err != nil {
		t.Error("sibling directory should be created before files are processed")
	}
	if _, err := os.Stat(p.Out("z/later.html")); err == nil {
		t.Error("build continued past the first error")
	}
}

func TestBuild_CopyPreservesPermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not preserved on windows")
	}
	p := testutil.NewProject(t)
	script := p.Src(t, "bin/run.sh", "#!/bin/sh\n")
	if err := os.Chmod(script, 0o750); err != nil {
		t.Fatal(err)
	}
	mustBuild(t, newBuilder(p, &fakeEngine{}, 1))

	info, err := os.Stat(p.Out("bin/run.sh"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o750 {
		t.Errorf("perm = %v, want 0750", info.Mode().Perm())
	}
}

func TestBuild_Parallel(t *testing.T) {
	p := testutil.NewProject(t)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		p.Src(t, "x/"+name+".md", name)
		p.Src(t, "y/"+name+".txt", name)
	}
	stats := mustBuild(t, newBuilder(p, &fakeEngine{}, 4))
	if stats.Converted != 5 || stats.Copied != 5 {
		t.Errorf("stats = %+v", stats)
	}
	if got := p.ReadOut(t, "x/c.html"); got != "<html>\n<p>c</p>\n</html>" {
		t.Errorf("x/c.html = %q", got)
	}
}

func TestBuild_ParallelReturnsConversionError(t *testing.T) {
	p := testutil.NewProject(t)
	p.Src(t, "ok.md", "ok")
	p.Src(t, "bad.md", "bad")
	eng := &fakeEngine{fail: map[string]string{"bad.md": "boom\n"}}

	_, err := newBuilder(p, eng, 3).Build(context.Background())
	var convErr *ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("err = %v, want *ConversionError", err)
	}
}

func TestBuild_MissingTemplate(t *testing.T) {
	p := testutil.NewProject(t)
	_ = os.Remove(p.Header)
	if _, err := newBuilder(p, &fakeEngine{}, 1).Build(context.Background()); err == nil {
		t.Fatal("expected error without header")
	}
	if _, err := os.Stat(p.Output); err == nil {
		t.Error("output created although templates were missing")
	}
}

func TestClean(t *testing.T) {
	p := testutil.NewProject(t)
	p.Src(t, "a.md", "a")
	b := newBuilder(p, &fakeEngine{}, 1)
	mustBuild(t, b)

	if err := Clean(p.Output); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if _, err := os.Stat(p.Output); err == nil {
		t.Fatal("output still exists after clean")
	}
	if err := Clean(p.Output); err == nil {
		t.Error("cleaning a missing directory should fail")
	}

	mustBuild(t, b)
	if got := p.ReadOut(t, "a.html"); got != "<html>\n<p>a</p>\n</html>" {
		t.Errorf("a.html after rebuild = %q", got)
	}
}
