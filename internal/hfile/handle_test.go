package hfile

import (
	"testing"
)

type fakeRawFile struct {
	children map[string][]RawNode
	nodes    map[string]RawNode
	reads    map[string]Array
}

func (f fakeRawFile) Children(path string) ([]RawNode, error) {
	return f.children[path], nil
}

func (f fakeRawFile) Node(path string) (RawNode, error) {
	n, ok := f.nodes[path]
	if !ok {
		return RawNode{}, notFoundErr(path)
	}
	return n, nil
}

func (f fakeRawFile) Read(path string, selectors []AxisSelector) (Array, error) {
	return f.reads[path], nil
}

func notFoundErr(path string) error {
	return &testNotFound{path: path}
}

type testNotFound struct{ path string }

func (e *testNotFound) Error() string { return "not found: " + e.path }

func TestHandle_ChildrenBuildsPaths(t *testing.T) {
	raw := fakeRawFile{
		children: map[string][]RawNode{
			"/": {
				{Name: "grp", IsGroup: true, NumChildren: 2},
				{Name: "ds", Shape: []int64{10, 20}, Dtype: "<f4"},
			},
		},
	}
	h := &Handle{raw: raw}

	nodes, err := h.Children("/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(nodes))
	}
	if nodes[0].Path != "/grp" || nodes[0].Kind != NodeGroup {
		t.Fatalf("unexpected group node: %+v", nodes[0])
	}
	if nodes[1].Path != "/ds" || nodes[1].Kind != NodeDataset || nodes[1].NDim != 2 {
		t.Fatalf("unexpected dataset node: %+v", nodes[1])
	}
}

func TestConvertAttributes_TruncatesPastCap(t *testing.T) {
	raw := []RawAttr{
		{Name: "a", Value: "1"},
		{Name: "b", Value: int64(2)},
		{Name: "c", Value: []byte("hello")},
	}
	attrs, truncated := convertAttributes(raw, 2)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes after cap, got %d", len(attrs))
	}
	if !truncated {
		t.Fatalf("expected truncated=true")
	}
}

func TestConvertAttributes_UnreadableMarker(t *testing.T) {
	raw := []RawAttr{{Name: "weird", Value: struct{}{}}}
	attrs, truncated := convertAttributes(raw, 10)
	if truncated {
		t.Fatalf("did not expect truncation")
	}
	if attrs["weird"] != "<unreadable>" {
		t.Fatalf("expected unreadable marker, got %v", attrs["weird"])
	}
}

func TestJoinPath(t *testing.T) {
	cases := map[[2]string]string{
		{"/", "a"}:     "/a",
		{"", "a"}:      "/a",
		{"/grp", "b"}:  "/grp/b",
		{"/grp/", "b"}: "/grp/b",
	}
	for in, want := range cases {
		got := joinPath(in[0], in[1])
		if got != want {
			t.Errorf("joinPath(%q,%q) = %q, want %q", in[0], in[1], got, want)
		}
	}
}
