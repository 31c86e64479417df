package dataengine

import (
	"testing"

	"github.com/scrapbird/hview/internal/hfile"
	"github.com/scrapbird/hview/internal/planner"
)

// fakeRawFile serves Read by computing row-major values directly from
// the requested selectors, simulating a dense 2D/1D dataset of ints
// where each value is the sum over axes d of index[d]*100^d (so
// value(i,j) = i + 100*j). The shape and stride fields are not read.
type fakeRawFile struct {
	shape  []int64
	dtype  string
	stride int64
}

func (f fakeRawFile) Children(path string) ([]hfile.RawNode, error) { return nil, nil }
func (f fakeRawFile) Node(path string) (hfile.RawNode, error)       { return hfile.RawNode{}, nil }

func (f fakeRawFile) Read(path string, selectors []hfile.AxisSelector) (hfile.Array, error) {
	ranges := make([][]int64, len(selectors))
	for i, sel := range selectors {
		if sel.IsScalar {
			ranges[i] = []int64{sel.Index}
			continue
		}
		for v := sel.Start; v < sel.Stop; v += sel.Step {
			ranges[i] = append(ranges[i], v)
		}
	}

	var outShape []int64
	for i, sel := range selectors {
		if !sel.IsScalar {
			outShape = append(outShape, int64(len(ranges[i])))
		}
	}

	var values []any
	var walk func(dim int, idx []int64)
	walk = func(dim int, idx []int64) {
		if dim == len(ranges) {
			v := int64(0)
			for i, x := range idx {
				v += x * pow10(i)
			}
			values = append(values, v)
			return
		}
		for _, x := range ranges[dim] {
			walk(dim+1, append(idx, x))
		}
	}
	walk(0, nil)

	return hfile.Array{Shape: outShape, Dtype: f.dtype, Values: values}, nil
}

func pow10(n int) int64 {
	v := int64(1)
	for i := 0; i < n; i++ {
		v *= 100
	}
	return v
}

func TestMatrix_ReshapesAndSanitizes(t *testing.T) {
	raw := fakeRawFile{shape: []int64{3, 4}, dtype: "<i8"}
	h := hfile.NewHandle(raw)

	plan, err := planner.PlanMatrix(0, 1, 3, 4, 0, 3, 0, 4, 1, 1, map[int]int64{})
	if err != nil {
		t.Fatalf("unexpected plan error: %v", err)
	}

	result, err := Matrix(h, "/ds", 2, plan)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Shape != [2]int64{3, 4} {
		t.Fatalf("unexpected shape: %+v", result.Shape)
	}
	if len(result.Data) != 3 || len(result.Data[0]) != 4 {
		t.Fatalf("unexpected data dims: %d x %d", len(result.Data), len(result.Data[0]))
	}
}

func TestMatrix_TransposesWhenRowDimGreater(t *testing.T) {
	raw := fakeRawFile{shape: []int64{3, 4}, dtype: "<i8"}
	h := hfile.NewHandle(raw)

	plan, err := planner.PlanMatrix(1, 0, 4, 3, 0, 4, 0, 3, 1, 1, map[int]int64{})
	if err != nil {
		t.Fatalf("unexpected plan error: %v", err)
	}
	if !plan.NeedsTranspose {
		t.Fatalf("expected needs_transpose")
	}

	result, err := Matrix(h, "/ds", 2, plan)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// dim0 (col here) has length 3, dim1 (row) has length 4; after
	// transpose the output should have 4 rows x 3 cols matching row_dim=1.
	if len(result.Data) != 4 || len(result.Data[0]) != 3 {
		t.Fatalf("unexpected post-transpose dims: %d x %d", len(result.Data), len(result.Data[0]))
	}
}

func TestMatrix_EmptyLimitReturnsEmptyGrid(t *testing.T) {
	raw := fakeRawFile{shape: []int64{3, 4}, dtype: "<i8"}
	h := hfile.NewHandle(raw)

	plan, err := planner.PlanMatrix(0, 1, 3, 4, 5, 3, 0, 4, 1, 1, map[int]int64{})
	if err != nil {
		t.Fatalf("unexpected plan error: %v", err)
	}
	if plan.RowLimit != 0 {
		t.Fatalf("expected row limit 0 for offset past bounds, got %d", plan.RowLimit)
	}

	result, err := Matrix(h, "/ds", 2, plan)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Shape != [2]int64{0, 0} {
		t.Fatalf("expected empty shape, got %+v", result.Shape)
	}
}

func TestLine_DimAxis(t *testing.T) {
	raw := fakeRawFile{shape: []int64{10}, dtype: "<f8"}
	h := hfile.NewHandle(raw)

	plan, err := planner.PlanLine("dim", 0, 0, 0, -1, 10, "exact", planner.MaxLinePoints, map[int]int64{})
	if err != nil {
		t.Fatalf("unexpected plan error: %v", err)
	}

	result, err := Line(h, "/ds", 1, plan, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Shape[0] != 10 {
		t.Fatalf("expected 10 points, got %d", result.Shape[0])
	}
	if result.Index != nil {
		t.Fatalf("expected nil index for dim axis")
	}
}

func TestLine_RowAxisRequiresDisplayDims(t *testing.T) {
	raw := fakeRawFile{shape: []int64{5, 5}, dtype: "<f8"}
	h := hfile.NewHandle(raw)

	plan, err := planner.PlanLine("row", 0, 2, 0, -1, 5, "exact", planner.MaxLinePoints, map[int]int64{})
	if err != nil {
		t.Fatalf("unexpected plan error: %v", err)
	}

	_, err = Line(h, "/ds", 2, plan, nil)
	if err == nil {
		t.Fatalf("expected error for row axis with nil display dims")
	}
}

func TestLine_RowAxisWithDisplayDims(t *testing.T) {
	raw := fakeRawFile{shape: []int64{5, 5}, dtype: "<f8"}
	h := hfile.NewHandle(raw)

	plan, err := planner.PlanLine("row", 0, 2, 0, -1, 5, "exact", planner.MaxLinePoints, map[int]int64{})
	if err != nil {
		t.Fatalf("unexpected plan error: %v", err)
	}
	dims := [2]int{0, 1}

	result, err := Line(h, "/ds", 2, plan, &dims)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Index == nil || *result.Index != 2 {
		t.Fatalf("expected index 2, got %v", result.Index)
	}
	if result.Shape[0] != 5 {
		t.Fatalf("expected 5 points, got %d", result.Shape[0])
	}
}

func TestHeatmap_ComputesStats(t *testing.T) {
	raw := fakeRawFile{shape: []int64{4, 4}, dtype: "<i8"}
	h := hfile.NewHandle(raw)

	plan, err := planner.PlanHeatmap(0, 1, 4, 4, 512, true)
	if err != nil {
		t.Fatalf("unexpected plan error: %v", err)
	}

	result, err := Heatmap(h, "/ds", 2, plan, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Stats.Min == nil || result.Stats.Max == nil {
		t.Fatalf("expected stats to be computed for numeric dtype")
	}
	if *result.Stats.Min > *result.Stats.Max {
		t.Fatalf("min should not exceed max")
	}
}
