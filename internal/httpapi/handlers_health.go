package httpapi

import "net/http"

// handleHealth serves GET /health with liveness plus a snapshot of every
// named cache, so an operator can see hit rates without a separate
// metrics scrape.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	caches := make([]map[string]any, 0, 4)
	for _, st := range s.Cache.AllStats() {
		caches = append(caches, map[string]any{
			"name":            st.Name,
			"total":           st.Total,
			"active":          st.Active,
			"expired":         st.Expired,
			"hits":            st.Hits,
			"misses":          st.Misses,
			"evicted_total":   st.EvictedTotal,
			"expired_on_read": st.ExpiredOnRead,
		})
	}

	writeSuccess(w, http.StatusOK, map[string]any{
		"status": "ok",
		"caches": caches,
	}, false, "")
}
