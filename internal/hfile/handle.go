package hfile

import (
	"context"

	"github.com/scrapbird/hview/internal/apperrors"
	"github.com/scrapbird/hview/internal/objectstore"
)

// Handle is a lightweight, per-request view over one object's H-file
// contents. All accesses go through the object store's range reads; the
// handle itself holds no connection state worth pooling.
type Handle struct {
	raw RawFile
}

// NewHandle wraps an already-open RawFile. Used directly by Open below,
// and by other packages' tests that need a Handle over a fake RawFile
// without going through a real backend/object store.
func NewHandle(raw RawFile) *Handle {
	return &Handle{raw: raw}
}

// Open opens key for H-file access. size is the object's content length
// (from a prior HEAD), needed up front because seeks must stay in-bounds.
func Open(ctx context.Context, backend Backend, store objectstore.Store, key string, size int64) (*Handle, error) {
	source := newRangeReaderAt(ctx, store, key, size)
	raw, err := backend.Open(source, size)
	if err != nil {
		return nil, err
	}
	return &Handle{raw: raw}, nil
}

// Children lists the immediate children at path, one level, no recursion.
// A non-existent path yields an empty, non-error result — lazy tree
// navigation relies on this.
func (h *Handle) Children(path string) ([]TreeNode, error) {
	raw, err := h.raw.Children(path)
	if err != nil {
		return nil, err
	}
	nodes := make([]TreeNode, 0, len(raw))
	for _, rn := range raw {
		nodes = append(nodes, h.toTreeNode(path, rn, maxAttributesChildren))
	}
	return nodes, nil
}

// Metadata returns the full Tree Node at path: filter pipeline and up to 20
// attributes for datasets, child count for groups.
func (h *Handle) Metadata(path string) (TreeNode, error) {
	raw, err := h.raw.Node(path)
	if err != nil {
		return TreeNode{}, err
	}
	return h.toTreeNode(parentOf(path), raw, maxAttributesMetadata), nil
}

// DatasetInfo returns the lightweight shape/dtype summary for path, without
// reading attributes or filters. Errors with WrongNodeType if path is a
// group.
func (h *Handle) DatasetInfo(path string) (DatasetInfo, error) {
	raw, err := h.raw.Node(path)
	if err != nil {
		return DatasetInfo{}, err
	}
	if raw.IsGroup {
		return DatasetInfo{}, apperrors.WrongNodeType("path %q is a group, not a dataset", path)
	}
	return DatasetInfo{Shape: raw.Shape, NDim: len(raw.Shape), Dtype: raw.Dtype}, nil
}

// Read applies axis selectors against the dataset at path. Each selector is
// either a scalar index or a half-open stride; the returned Array's Shape
// matches the non-scalar selectors in order.
func (h *Handle) Read(path string, selectors []AxisSelector) (Array, error) {
	return h.raw.Read(path, selectors)
}

func (h *Handle) toTreeNode(parentPath string, rn RawNode, cap int) TreeNode {
	path := joinPath(parentPath, rn.Name)
	if rn.IsGroup {
		return TreeNode{Name: rn.Name, Path: path, Kind: NodeGroup, NumChildren: rn.NumChildren}
	}

	attrs, truncated := convertAttributes(rn.Attributes, cap)
	return TreeNode{
		Name:                rn.Name,
		Path:                path,
		Kind:                NodeDataset,
		Shape:               rn.Shape,
		NDim:                len(rn.Shape),
		Dtype:               rn.Dtype,
		Chunks:              rn.Chunks,
		Compression:         rn.Filters,
		Attributes:          attrs,
		AttributesTruncated: truncated,
	}
}

func joinPath(parent, name string) string {
	if parent == "" || parent == "/" {
		return "/" + name
	}
	if parent[len(parent)-1] == '/' {
		return parent + name
	}
	return parent + "/" + name
}

func parentOf(path string) string {
	i := len(path) - 1
	for i >= 0 && path[i] != '/' {
		i--
	}
	if i <= 0 {
		return "/"
	}
	return path[:i]
}
