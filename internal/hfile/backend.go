package hfile

import "io"

// RawAttr is a single attribute as the backend library hands it back, before
// this package's JSON-safe conversion rules run.
type RawAttr struct {
	Name  string
	Value any // string, []byte, bool, int64, float64, or a nested []any
}

// RawNode is one level of the backend library's own tree representation.
type RawNode struct {
	Name        string
	IsGroup     bool
	NumChildren int // groups only; backend reports this without recursing

	Shape       []int64 // datasets only
	Dtype       string  // datasets only, backend-native descriptor
	Chunks      []int64 // datasets only, nil for contiguous/compact layout
	Filters     []FilterInfo
	Attributes  []RawAttr
}

// RawFile is an open handle over one H-file, backed by a random-access byte
// source. Backend is free to read ahead, cache internally, or hold the
// source open across calls; this package treats it as a per-request value.
type RawFile interface {
	// Children lists one level under path without recursing into groups.
	// A non-existent path yields an empty slice, not an error.
	Children(path string) ([]RawNode, error)

	// Node resolves the node at an exact path, including its full attribute
	// set (up to the backend's own cap) and filter pipeline for datasets.
	Node(path string) (RawNode, error)

	// Read applies axis selectors against the dataset at path, returning
	// row-major values in the shape implied by the selectors.
	Read(path string, selectors []AxisSelector) (Array, error)
}

// Backend opens a RawFile over a random-access byte source of the given
// total size. This is the integration seam to the external H-file parsing
// library — everything above this interface is this service's own code.
type Backend interface {
	Open(source io.ReaderAt, size int64) (RawFile, error)
}
