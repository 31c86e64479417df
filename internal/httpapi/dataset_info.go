package httpapi

import (
	"github.com/scrapbird/hview/internal/cache"
	"github.com/scrapbird/hview/internal/hfile"
)

// datasetInfo resolves a dataset's shape/ndim/dtype, consulting the
// dataset-info cache before asking the handle to parse the node.
func (s *Server) datasetInfo(handle *hfile.Handle, key, path, version string) (hfile.DatasetInfo, error) {
	cacheKey := cache.Key("dataset-info", key, version, path)
	if cached, ok := s.Cache.DatasetInfo.Get(cacheKey); ok {
		return cached.(hfile.DatasetInfo), nil
	}

	info, err := handle.DatasetInfo(path)
	if err != nil {
		return hfile.DatasetInfo{}, err
	}
	s.Cache.DatasetInfo.Set(cacheKey, info, 0)
	return info, nil
}
