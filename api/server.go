/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack and the two routes this
  service has: the action endpoint and the static frontend.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Credentialed cross-origin requests for the frontend

ROUTES:
  POST /api   Action dispatcher (see handlers.go)
  GET  /*     Static frontend files, index.html fallback

SEE ALSO:
  - handlers.go: the action table
  - cmd/server/main.go: server startup
*/
package api

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates the router with all routes configured. staticDir may
// be empty or missing; the action endpoint works without a frontend.
func NewRouter(h *Handler, staticDir string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8000"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Post("/api", h.Dispatch)

	if staticDir != "" {
		if _, err := os.Stat(staticDir); err == nil {
			r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
				full := filepath.Join(staticDir, filepath.Clean(req.URL.Path))
				if st, err := os.Stat(full); err != nil || st.IsDir() {
					// SPA routing: serve index.html
					http.ServeFile(w, req, filepath.Join(staticDir, "index.html"))
					return
				}
				http.ServeFile(w, req, full)
			})
		}
	}

	return r
}
