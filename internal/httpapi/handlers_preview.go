package httpapi

import (
	"net/http"
	"strconv"

	"github.com/scrapbird/hview/internal/cache"
	"github.com/scrapbird/hview/internal/preview"
	"github.com/scrapbird/hview/internal/selection"
)

// handlePreview serves GET /files/{key}/preview?path=....
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request, key string) {
	logger := loggerFrom(r.Context())
	q := r.URL.Query()

	path := q.Get("path")
	if path == "" {
		writeError(w, logger, missingPathErr())
		return
	}

	mode, err := selection.ParseMode(q.Get("mode"))
	if err != nil {
		writeError(w, logger, err)
		return
	}
	detail, err := selection.ParseDetail(q.Get("detail"))
	if err != nil {
		writeError(w, logger, err)
		return
	}
	includeStatsOverride, err := queryBoolPtr(q, "include_stats")
	if err != nil {
		writeError(w, logger, err)
		return
	}
	includeStats := selection.DefaultIncludeStats(detail, includeStatsOverride)

	maxSize, err := queryInt(q, "max_size", 0)
	if err != nil {
		writeError(w, logger, err)
		return
	}

	version := previewDataVersion(q.Get("etag"))

	cacheKey := cache.Key("data-response", key, version, "preview", path, string(mode), string(detail),
		strconv.FormatBool(includeStats), q.Get("display_dims"), q.Get("fixed_indices"))
	if cached, ok := s.Cache.DataResponse.Get(cacheKey); ok {
		writeSuccess(w, http.StatusOK, cached.(map[string]any), true, version)
		return
	}

	handle, head, err := s.openHandle(r.Context(), key)
	if err != nil {
		writeError(w, logger, err)
		return
	}
	datasetVersion := version
	if version == "ttl" {
		datasetVersion = treeMetaVersion(head)
	}
	info, err := s.datasetInfo(handle, key, path, datasetVersion)
	if err != nil {
		writeError(w, logger, err)
		return
	}

	sel, err := selection.Normalize(info.Shape, selection.RawParams{
		DisplayDims:  q.Get("display_dims"),
		FixedIndices: q.Get("fixed_indices"),
	})
	if err != nil {
		writeError(w, logger, err)
		return
	}

	payload, err := preview.Build(handle, key, path, info, sel.DisplayDims, sel.FixedIndices, string(mode), maxSize, includeStats)
	if err != nil {
		writeError(w, logger, err)
		return
	}
	body := previewPayloadToJSON(payload)

	s.Cache.DataResponse.Set(cacheKey, body, 0)
	writeSuccess(w, http.StatusOK, body, false, version)
}
