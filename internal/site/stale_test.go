package site

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/psg/internal/testutil"
)

type staleFixture struct {
	src, dest, header, footer string
}

func newStaleFixture(t *testing.T) staleFixture {
	t.Helper()
	dir := t.TempDir()
	f := staleFixture{
		src:    filepath.Join(dir, "page.md"),
		dest:   filepath.Join(dir, "page.html"),
		header: filepath.Join(dir, "header.html"),
		footer: filepath.Join(dir, "footer.html"),
	}
	for _, p := range []string{f.src, f.dest, f.header, f.footer} {
		testutil.WriteFile(t, p, "x")
	}
	base := time.Now().Add(-time.Hour)
	testutil.SetModTime(t, f.header, base)
	testutil.SetModTime(t, f.footer, base)
	testutil.SetModTime(t, f.src, base.Add(10*time.Minute))
	testutil.SetModTime(t, f.dest, base.Add(20*time.Minute))
	return f
}

func (f staleFixture) check(t *testing.T) bool {
	t.Helper()
	stale, err := NeedsRebuild(f.src, f.dest, f.header, f.footer)
	if err != nil {
		t.Fatalf("NeedsRebuild: %v", err)
	}
	return stale
}

func TestNeedsRebuild_UpToDate(t *testing.T) {
	f := newStaleFixture(t)
	if f.check(t) {
		t.Error("fresh destination reported stale")
	}
}

func TestNeedsRebuild_MissingDest(t *testing.T) {
	f := newStaleFixture(t)
	f.dest = filepath.Join(filepath.Dir(f.dest), "absent.html")
	if !f.check(t) {
		t.Error("missing destination must be stale")
	}
}

func TestNeedsRebuild_SourceNewer(t *testing.T) {
	f := newStaleFixture(t)
	testutil.SetModTime(t, f.src, time.Now())
	if !f.check(t) {
		t.Error("source newer than destination must be stale")
	}
}

func TestNeedsRebuild_EqualTimesNotStale(t *testing.T) {
	f := newStaleFixture(t)
	same := time.Now().Add(-time.Minute)
	testutil.SetModTime(t, f.src, same)
	testutil.SetModTime(t, f.dest, same)
	if f.check(t) {
		t.Error("equal source and destination mtimes must not be stale")
	}
}

func TestNeedsRebuild_TemplateComparedAgainstSource(t *testing.T) {
	// Header newer than the source but older than the destination still
	// forces a rebuild.
	f := newStaleFixture(t)
	srcTime := time.Now().Add(-30 * time.Minute)
	testutil.SetModTime(t, f.src, srcTime)
	testutil.SetModTime(t, f.header, srcTime.Add(time.Minute))
	testutil.SetModTime(t, f.dest, srcTime.Add(5*time.Minute))
	if !f.check(t) {
		t.Error("header newer than source must be stale")
	}
}

func TestNeedsRebuild_FooterNewer(t *testing.T) {
	f := newStaleFixture(t)
	testutil.SetModTime(t, f.footer, time.Now())
	if !f.check(t) {
		t.Error("footer newer than source must be stale")
	}
}

func TestNeedsRebuild_MissingTemplateErrors(t *testing.T) {
	f := newStaleFixture(t)
	f.footer = filepath.Join(filepath.Dir(f.footer), "gone.html")
	if _, err := NeedsRebuild(f.src, f.dest, f.header, f.footer); err == nil {
		t.Error("expected error when footer cannot be stat'd")
	}
}
