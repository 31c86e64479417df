package httpapi

import (
	"net/http"

	"github.com/scrapbird/hview/internal/cache"
)

// handleChildren serves GET /files/{key}/children?path=/.
func (s *Server) handleChildren(w http.ResponseWriter, r *http.Request, key string) {
	logger := loggerFrom(r.Context())
	path := queryString(r.URL.Query(), "path", "/")

	handle, head, err := s.openHandle(r.Context(), key)
	if err != nil {
		writeError(w, logger, err)
		return
	}
	version := treeMetaVersion(head)

	cacheKey := cache.Key("tree-meta", key, version, "children", path)
	if cached, ok := s.Cache.TreeMeta.Get(cacheKey); ok {
		writeSuccess(w, http.StatusOK, cached.(map[string]any), true, version)
		return
	}

	nodes, err := handle.Children(path)
	if err != nil {
		writeError(w, logger, err)
		return
	}

	children := make([]map[string]any, len(nodes))
	for i, n := range nodes {
		children[i] = treeNodeToJSON(n)
	}
	payload := map[string]any{"path": path, "children": children}

	s.Cache.TreeMeta.Set(cacheKey, payload, 0)
	writeSuccess(w, http.StatusOK, payload, false, version)
}

// handleMeta serves GET /files/{key}/meta?path=....
func (s *Server) handleMeta(w http.ResponseWriter, r *http.Request, key string) {
	logger := loggerFrom(r.Context())
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, logger, missingPathErr())
		return
	}

	handle, head, err := s.openHandle(r.Context(), key)
	if err != nil {
		writeError(w, logger, err)
		return
	}
	version := treeMetaVersion(head)

	cacheKey := cache.Key("tree-meta", key, version, "meta", path)
	if cached, ok := s.Cache.TreeMeta.Get(cacheKey); ok {
		writeSuccess(w, http.StatusOK, cached.(map[string]any), true, version)
		return
	}

	node, err := handle.Metadata(path)
	if err != nil {
		writeError(w, logger, err)
		return
	}
	payload := treeNodeToJSON(node)

	s.Cache.TreeMeta.Set(cacheKey, payload, 0)
	writeSuccess(w, http.StatusOK, payload, false, version)
}
