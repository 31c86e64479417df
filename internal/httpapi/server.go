// Package httpapi is the thin HTTP adapter (C8): controllers that parse
// query parameters, invoke the selection/planner/preview/data-engine
// pipeline, consult the cache registry, and shape JSON responses. No
// domain logic lives here beyond request/response translation.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/scrapbird/hview/internal/cache"
	"github.com/scrapbird/hview/internal/hfile"
	"github.com/scrapbird/hview/internal/objectstore"
)

// Server holds the application state every handler needs. There is one
// instance per process, constructed explicitly at startup in cmd/server
// rather than reached through package-level globals.
type Server struct {
	Store   objectstore.Store
	Backend hfile.Backend
	Cache   *cache.Registry
	Logger  *slog.Logger
}

// NewServer wires the four shared dependencies into a Server.
func NewServer(store objectstore.Store, backend hfile.Backend, registry *cache.Registry, logger *slog.Logger) *Server {
	return &Server{Store: store, Backend: backend, Cache: registry, Logger: logger}
}

// Routes builds the request mux and wraps it in the CORS/correlation/
// logging middleware chain.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /files/{$}", s.handleListFiles)
	mux.HandleFunc("POST /files/refresh", s.handleRefresh)
	mux.HandleFunc("GET /files/{rest...}", s.handleFileSubroute)

	return s.withMiddleware(mux)
}

// handleFileSubroute recovers the object key and the requested sub-
// resource from the wildcard tail. Object keys may themselves contain
// slashes, so the five known suffixes are matched textually rather than
// through additional mux segments — net/http's wildcard can only trail a
// pattern, it cannot sit in the middle of one.
func (s *Server) handleFileSubroute(w http.ResponseWriter, r *http.Request) {
	rest := r.PathValue("rest")

	switch {
	case hasSuffixSegment(rest, "children"):
		s.handleChildren(w, r, trimSuffixSegment(rest, "children"))
	case hasSuffixSegment(rest, "meta"):
		s.handleMeta(w, r, trimSuffixSegment(rest, "meta"))
	case hasSuffixSegment(rest, "preview"):
		s.handlePreview(w, r, trimSuffixSegment(rest, "preview"))
	case hasSuffixSegment(rest, "data"):
		s.handleData(w, r, trimSuffixSegment(rest, "data"))
	case hasSuffixSegment(rest, "export"):
		s.handleExport(w, r, trimSuffixSegment(rest, "export"))
	default:
		writeNotFoundRoute(w)
	}
}

func hasSuffixSegment(rest, segment string) bool {
	suffix := "/" + segment
	return len(rest) > len(suffix) && rest[len(rest)-len(suffix):] == suffix
}

func trimSuffixSegment(rest, segment string) string {
	return rest[:len(rest)-len(segment)-1]
}
