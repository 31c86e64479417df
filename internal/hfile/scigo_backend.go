package hfile

import (
	"io"

	scigohdf5 "github.com/scigolib/hdf5"

	"github.com/scrapbird/hview/internal/apperrors"
)

// scigoBackend adapts github.com/scigolib/hdf5 to this package's Backend
// seam. The upstream library already understands superblocks, B-trees,
// chunk indexes, and filter pipelines (gzip/lzf/szip, shuffle, fletcher32);
// this adapter only reshapes its tree/attribute/selector vocabulary into
// RawNode/RawAttr/AxisSelector.
type scigoBackend struct{}

// NewScigoBackend returns the production Backend used by cmd/server.
func NewScigoBackend() Backend { return scigoBackend{} }

func (scigoBackend) Open(source io.ReaderAt, size int64) (RawFile, error) {
	f, err := scigohdf5.Open(source, size)
	if err != nil {
		if scigohdf5.IsNotFound(err) {
			return nil, apperrors.NotFound("hfile: %v", err)
		}
		return nil, apperrors.Internal(err, "hfile: opening container")
	}
	return scigoFile{f: f}, nil
}

type scigoFile struct {
	f *scigohdf5.File
}

func (sf scigoFile) Children(path string) ([]RawNode, error) {
	group, err := sf.f.OpenGroup(path)
	if err != nil {
		if scigohdf5.IsNotFound(err) {
			return nil, nil
		}
		return nil, apperrors.Internal(err, "hfile: opening group %q", path)
	}

	entries, err := group.Children()
	if err != nil {
		return nil, apperrors.Internal(err, "hfile: listing children of %q", path)
	}

	nodes := make([]RawNode, 0, len(entries))
	for _, child := range entries {
		if child.IsGroup {
			nodes = append(nodes, RawNode{Name: child.Name, IsGroup: true, NumChildren: child.NumChildren})
			continue
		}
		nodes = append(nodes, datasetSummaryToRawNode(child.Name, child.Dataset))
	}
	return nodes, nil
}

func (sf scigoFile) Node(path string) (RawNode, error) {
	obj, err := sf.f.Open(path)
	if err != nil {
		if scigohdf5.IsNotFound(err) {
			return RawNode{}, apperrors.NotFound("path %q not found", path)
		}
		return RawNode{}, apperrors.Internal(err, "hfile: opening %q", path)
	}

	name := baseName(path)
	if obj.IsGroup() {
		children, err := obj.Group.Children()
		if err != nil {
			return RawNode{}, apperrors.Internal(err, "hfile: listing children of %q", path)
		}
		return RawNode{Name: name, IsGroup: true, NumChildren: len(children)}, nil
	}

	node := datasetSummaryToRawNode(name, obj.Dataset)
	attrs, err := readAttributes(obj.Dataset)
	if err != nil {
		return RawNode{}, apperrors.Internal(err, "hfile: reading attributes of %q", path)
	}
	node.Attributes = attrs
	return node, nil
}

func (sf scigoFile) Read(path string, selectors []AxisSelector) (Array, error) {
	ds, err := sf.f.OpenDataset(path)
	if err != nil {
		if scigohdf5.IsNotFound(err) {
			return Array{}, apperrors.NotFound("dataset %q not found", path)
		}
		return Array{}, apperrors.Internal(err, "hfile: opening dataset %q", path)
	}
	if ds == nil {
		return Array{}, apperrors.WrongNodeType("path %q is not a dataset", path)
	}

	sel := make([]scigohdf5.Selector, len(selectors))
	for i, s := range selectors {
		if s.IsScalar {
			sel[i] = scigohdf5.Index(s.Index)
		} else {
			sel[i] = scigohdf5.Slice(s.Start, s.Stop, s.Step)
		}
	}

	raw, outShape, err := ds.ReadSelection(sel)
	if err != nil {
		return Array{}, apperrors.Internal(err, "hfile: reading selection from %q", path)
	}

	values, err := decodeScalars(raw, ds.Dtype())
	if err != nil {
		return Array{}, apperrors.Internal(err, "hfile: decoding scalars from %q", path)
	}

	return Array{Shape: outShape, Dtype: ds.Dtype(), Values: values}, nil
}

func datasetSummaryToRawNode(name string, ds *scigohdf5.Dataset) RawNode {
	if ds == nil {
		return RawNode{Name: name, IsGroup: false}
	}
	return RawNode{
		Name:    name,
		IsGroup: false,
		Shape:   ds.Shape(),
		Dtype:   ds.Dtype(),
		Chunks:  ds.ChunkDims(),
		Filters: convertFilters(ds.Filters()),
	}
}

func convertFilters(raw []scigohdf5.FilterStage) []FilterInfo {
	out := make([]FilterInfo, 0, len(raw))
	for _, f := range raw {
		fi := FilterInfo{Name: f.Name, ID: f.ID}
		if f.HasLevel {
			level := f.Level
			fi.Level = &level
		}
		out = append(out, fi)
	}
	return out
}

func readAttributes(ds *scigohdf5.Dataset) ([]RawAttr, error) {
	if ds == nil {
		return nil, nil
	}
	raw, err := ds.Attributes()
	if err != nil {
		return nil, err
	}
	out := make([]RawAttr, 0, len(raw))
	for _, a := range raw {
		out = append(out, RawAttr{Name: a.Name, Value: a.Value})
	}
	return out, nil
}

// decodeScalars flattens the backend's native array representation into
// row-major Go scalars, deferring to the dtype to pick the decode path.
// Byte/unicode scalars decode to UTF-8 strings; complex scalars stringify;
// NaN/±Inf are left as Go float64 NaN/Inf here — sanitize.go normalizes
// them to nil at the JSON boundary.
func decodeScalars(raw any, dtype string) ([]any, error) {
	class := ClassifyDtype(dtype)
	switch v := raw.(type) {
	case []int64:
		out := make([]any, len(v))
		for i, x := range v {
			out[i] = x
		}
		return out, nil
	case []float64:
		out := make([]any, len(v))
		for i, x := range v {
			out[i] = x
		}
		return out, nil
	case []bool:
		out := make([]any, len(v))
		for i, x := range v {
			out[i] = x
		}
		return out, nil
	case [][]byte:
		out := make([]any, len(v))
		for i, x := range v {
			out[i] = decodeByteScalar(x)
		}
		return out, nil
	case []string:
		out := make([]any, len(v))
		for i, x := range v {
			out[i] = x
		}
		return out, nil
	case []any:
		// Already decoded by the backend (e.g. complex scalars stringified
		// upstream); pass through unchanged.
		return v, nil
	default:
		if class.Class == ClassUnknown {
			return nil, apperrors.Internal(nil, "hfile: unsupported scalar container for dtype %q", dtype)
		}
		return nil, apperrors.Internal(nil, "hfile: unexpected scalar container %T for dtype %q", raw, dtype)
	}
}

func decodeByteScalar(b []byte) string {
	return decodeUTF8Lossy(b)
}

func baseName(path string) string {
	i := len(path) - 1
	for i >= 0 && path[i] != '/' {
		i--
	}
	return path[i+1:]
}
