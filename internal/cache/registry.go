package cache

import "time"

// Defaults per §4.2 of the design: TTL and entry bounds per named cache.
const (
	FileListTTL   = 30 * time.Second
	FileListMax   = 200
	TreeMetaTTL   = 300 * time.Second
	TreeMetaMax   = 3000
	DatasetInfoTTL = 300 * time.Second
	DatasetInfoMax = 3000
	DataResponseTTL = 120 * time.Second
	DataResponseMax = 1200
)

// Registry holds the four named caches used across the service. Each cache
// has its own mutex; the registry itself holds no shared lock, so callers
// touching different caches never contend with each other.
type Registry struct {
	FileList     *Cache
	TreeMeta     *Cache
	DatasetInfo  *Cache
	DataResponse *Cache
}

// NewRegistry constructs a Registry with the caches sized per the design's
// defaults. Safe to share across all concurrent requests in the process.
func NewRegistry() *Registry {
	return &Registry{
		FileList:     New("file-list", FileListTTL, FileListMax),
		TreeMeta:     New("tree-meta", TreeMetaTTL, TreeMetaMax),
		DatasetInfo:  New("dataset-info", DatasetInfoTTL, DatasetInfoMax),
		DataResponse: New("data-response", DataResponseTTL, DataResponseMax),
	}
}

// AllStats returns a snapshot of every named cache; GET /health reports
// it.
func (r *Registry) AllStats() []Stats {
	return []Stats{
		r.FileList.Stats(),
		r.TreeMeta.Stats(),
		r.DatasetInfo.Stats(),
		r.DataResponse.Stats(),
	}
}
