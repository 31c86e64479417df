package httpapi

import (
	"context"

	"github.com/scrapbird/hview/internal/apperrors"
	"github.com/scrapbird/hview/internal/cache"
	"github.com/scrapbird/hview/internal/hfile"
	"github.com/scrapbird/hview/internal/objectstore"
)

func missingPathErr() error {
	return apperrors.InvalidSelection("path query parameter is required")
}

// openHandle HEADs key for its size/etag and opens an H-file handle over
// it. Every endpoint that touches a dataset or group calls this first;
// the HEAD is unavoidable since a byte-range reader must know the
// object's length up front.
func (s *Server) openHandle(ctx context.Context, key string) (*hfile.Handle, objectstore.HeadResult, error) {
	head, err := s.Store.Head(ctx, key)
	if err != nil {
		return nil, objectstore.HeadResult{}, err
	}
	handle, err := hfile.Open(ctx, s.Backend, s.Store, key, head.Size)
	if err != nil {
		return nil, objectstore.HeadResult{}, err
	}
	return handle, head, nil
}

// treeMetaVersion is the cache-version tag for /children and /meta:
// these endpoints always resolve the object's etag via HEAD and embed
// it, per spec.
func treeMetaVersion(head objectstore.HeadResult) string {
	return cache.VersionTag(head.ETag)
}

// previewDataVersion is the cache-version tag for /preview, /data, and
// /export: "ttl" unless the client supplied an explicit etag hint to
// sharpen invalidation.
func previewDataVersion(etagHint string) string {
	return cache.VersionTag(etagHint)
}

func treeNodeToJSON(n hfile.TreeNode) map[string]any {
	if n.Kind == hfile.NodeGroup {
		return map[string]any{
			"name":         n.Name,
			"path":         n.Path,
			"kind":         string(n.Kind),
			"num_children": n.NumChildren,
		}
	}

	compression := make([]map[string]any, len(n.Compression))
	for i, f := range n.Compression {
		entry := map[string]any{"name": f.Name, "id": f.ID}
		if f.Level != nil {
			entry["level"] = *f.Level
		}
		compression[i] = entry
	}

	return map[string]any{
		"name":                 n.Name,
		"path":                 n.Path,
		"kind":                 string(n.Kind),
		"shape":                n.Shape,
		"ndim":                 n.NDim,
		"dtype":                n.Dtype,
		"chunks":               n.Chunks,
		"compression":          compression,
		"attributes":           n.Attributes,
		"attributes_truncated": n.AttributesTruncated,
	}
}
