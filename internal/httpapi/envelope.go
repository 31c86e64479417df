package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/scrapbird/hview/internal/apperrors"
)

// writeSuccess merges payload into the {success:true, ...} envelope and
// writes it with the given status.
func writeSuccess(w http.ResponseWriter, status int, payload map[string]any, cached bool, cacheVersion string) {
	body := make(map[string]any, len(payload)+3)
	for k, v := range payload {
		body[k] = v
	}
	body["success"] = true
	body["cached"] = cached
	body["cache_version"] = cacheVersion

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError classifies err via apperrors.KindOf, logs it at a severity
// matching whether it's expected client traffic or a genuine fault, and
// writes the {success:false, error} envelope at the matching status.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	kind := apperrors.KindOf(err)
	status := statusForKind(kind)

	if status >= 500 {
		logger.Error("request failed", "error", err, "kind", kind.String())
	} else {
		logger.Info("request rejected", "error", err, "kind", kind.String())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   err.Error(),
	})
}

func statusForKind(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindInvalidSelection, apperrors.KindWrongNodeType, apperrors.KindCapExceeded:
		return http.StatusBadRequest
	case apperrors.KindBackend, apperrors.KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// writeNotFoundRoute handles a /files/{rest...} tail that matches none of
// the known sub-resources — a routing miss, not a domain NotFound.
func writeNotFoundRoute(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   "unknown route",
	})
}
