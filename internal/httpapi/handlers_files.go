package httpapi

import (
	"net/http"
	"strconv"

	"github.com/scrapbird/hview/internal/apperrors"
	"github.com/scrapbird/hview/internal/cache"
)

const (
	defaultMaxItems = 20000
	minMaxItems     = 1
	maxMaxItems     = 50000
)

// handleListFiles serves GET /files/.
func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	logger := loggerFrom(r.Context())
	q := r.URL.Query()

	prefix := queryString(q, "prefix", "")
	includeFolders, err := queryBool(q, "include_folders", true)
	if err != nil {
		writeError(w, logger, err)
		return
	}
	maxItems, err := queryInt(q, "max_items", defaultMaxItems)
	if err != nil {
		writeError(w, logger, err)
		return
	}
	if maxItems < minMaxItems || maxItems > maxMaxItems {
		writeError(w, logger, apperrors.InvalidSelection("max_items must be between %d and %d", minMaxItems, maxMaxItems))
		return
	}

	key := cache.Key("file-list", cache.VersionTag(""), prefix, strconv.FormatBool(includeFolders), strconv.FormatInt(maxItems, 10))
	if cached, ok := s.Cache.FileList.Get(key); ok {
		writeSuccess(w, http.StatusOK, cached.(map[string]any), true, "ttl")
		return
	}

	result, err := s.Store.List(r.Context(), prefix, includeFolders, int(maxItems))
	if err != nil {
		writeError(w, logger, err)
		return
	}

	entries := make([]map[string]any, len(result.Entries))
	for i, d := range result.Entries {
		entries[i] = map[string]any{
			"key":           d.Key,
			"size":          d.Size,
			"last_modified": d.LastModified,
			"etag":          d.ETag,
			"kind":          string(d.Kind),
		}
	}
	payload := map[string]any{
		"files":     entries,
		"truncated": result.Truncated,
	}

	s.Cache.FileList.Set(key, payload, 0)
	writeSuccess(w, http.StatusOK, payload, false, "ttl")
}

// handleRefresh serves POST /files/refresh, flushing only the file-list
// cache (the wire contract never grew beyond that scope, even though
// cache.Cache exposes ClearMatching for a future scoped admin surface).
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	n := s.Cache.FileList.Clear()
	writeSuccess(w, http.StatusOK, map[string]any{"cleared": n}, false, "ttl")
}
