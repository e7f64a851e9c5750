// Package server serves the built site over HTTP using chi.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// EventsPath is where the build event stream is mounted.
const EventsPath = "/_psg/events"

// NewRouter creates a chi router serving files from root. events, if
// non-nil, is mounted at EventsPath.
func NewRouter(root string, events http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", health)
	r.Get("/health/ready", health)

	if events != nil {
		r.Get(EventsPath, events.ServeHTTP)
	}

	files := http.FileServer(http.Dir(root))
	r.Handle("/*", files)

	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
