package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func siteRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"index.html":      "<html>home</html>",
		"blog/index.html": "<html>blog</html>",
		"style.css":       "body{}",
	}
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestServesIndexForDirectories(t *testing.T) {
	r := NewRouter(siteRoot(t), nil)

	w := get(t, r, "/")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "home") {
		t.Errorf("/ = %d %q", w.Code, w.Body.String())
	}
	w = get(t, r, "/blog/")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "blog") {
		t.Errorf("/blog/ = %d %q", w.Code, w.Body.String())
	}
}

func TestServesStaticWithMIMEType(t *testing.T) {
	r := NewRouter(siteRoot(t), nil)
	w := get(t, r, "/style.css")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/css") {
		t.Errorf("Content-Type = %q", ct)
	}
	body, _ := io.ReadAll(w.Body)
	if string(body) != "body{}" {
		t.Errorf("body = %q", body)
	}
}

func TestMissingFile404(t *testing.T) {
	r := NewRouter(siteRoot(t), nil)
	if w := get(t, r, "/nope.html"); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestHealth(t *testing.T) {
	r := NewRouter(siteRoot(t), nil)
	w := get(t, r, "/health/live")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("health = %d %q", w.Code, w.Body.String())
	}
}

func TestEventsMountedOnlyWhenGiven(t *testing.T) {
	root := siteRoot(t)
	if w := get(t, NewRouter(root, nil), EventsPath); w.Code != http.StatusNotFound {
		t.Errorf("events without handler = %d, want 404", w.Code)
	}

	events := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	if w := get(t, NewRouter(root, events), EventsPath); w.Code != http.StatusTeapot {
		t.Errorf("events with handler = %d, want 418", w.Code)
	}
}
