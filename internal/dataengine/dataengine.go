// Package dataengine executes read planner plans against an H-file
// handle and sanitizes the result into JSON-safe payloads for the
// matrix/heatmap/line viewer endpoints.
package dataengine

import (
	"github.com/scrapbird/hview/internal/apperrors"
	"github.com/scrapbird/hview/internal/hfile"
	"github.com/scrapbird/hview/internal/planner"
	"github.com/scrapbird/hview/internal/sanitize"
)

// DownsampleInfo2D reports the per-axis stride actually applied.
type DownsampleInfo2D struct {
	RowStep int64 `json:"row_step"`
	ColStep int64 `json:"col_step"`
}

// MatrixResult is the executed form of a planner.MatrixPlan.
type MatrixResult struct {
	Data           [][]any
	Shape          [2]int64
	Dtype          string
	RowOffset      int64
	ColOffset      int64
	DownsampleInfo DownsampleInfo2D
}

// Stats2D holds the optional min/max pair computed over a heatmap's raw
// sample, before sanitization.
type Stats2D struct {
	Min *float64
	Max *float64
}

// HeatmapResult is the executed form of a planner.HeatmapPlan.
type HeatmapResult struct {
	Data           [][]any
	Shape          [2]int64
	Dtype          string
	Stats          Stats2D
	RowOffset      int64
	ColOffset      int64
	DownsampleInfo DownsampleInfo2D
	Sampled        bool
}

// LineResult is the executed form of a planner.LinePlan.
type LineResult struct {
	Data           []any
	Shape          [1]int64
	Dtype          string
	Axis           string
	Index          *int64
	DownsampleInfo struct {
		Step int64 `json:"step"`
	}
}

// Matrix reads the strided 2D block described by plan and returns a
// sanitized, row-major-nested result oriented so output rows align to
// plan.RowDim (transposing when RowDim > ColDim, per needs_transpose).
func Matrix(h *hfile.Handle, path string, ndim int, plan planner.MatrixPlan) (MatrixResult, error) {
	if plan.RowLimit == 0 || plan.ColLimit == 0 {
		return MatrixResult{
			Shape:          [2]int64{0, 0},
			DownsampleInfo: DownsampleInfo2D{RowStep: plan.RowStep, ColStep: plan.ColStep},
		}, nil
	}

	selectors := make([]hfile.AxisSelector, ndim)
	for dim := 0; dim < ndim; dim++ {
		switch dim {
		case plan.RowDim:
			selectors[dim] = hfile.Strided(plan.RowOffset, plan.RowOffset+plan.RowLimit, plan.RowStep)
		case plan.ColDim:
			selectors[dim] = hfile.Strided(plan.ColOffset, plan.ColOffset+plan.ColLimit, plan.ColStep)
		default:
			selectors[dim] = hfile.Scalar(plan.FixedIndices[dim])
		}
	}

	arr, err := h.Read(path, selectors)
	if err != nil {
		return MatrixResult{}, err
	}

	grid, err := reshape2D(arr)
	if err != nil {
		return MatrixResult{}, err
	}
	if plan.NeedsTranspose {
		grid = transpose2D(grid)
	}

	data := make([][]any, len(grid))
	for i, row := range grid {
		data[i] = sanitizeRow(row)
	}

	return MatrixResult{
		Data:           data,
		Shape:          [2]int64{int64(len(data)), outCols(data)},
		Dtype:          arr.Dtype,
		RowOffset:      plan.RowOffset,
		ColOffset:      plan.ColOffset,
		DownsampleInfo: DownsampleInfo2D{RowStep: plan.RowStep, ColStep: plan.ColStep},
	}, nil
}

// Heatmap reads the strided 2D plane described by plan, computes
// optional min/max over the raw (pre-sanitized) sample, and returns a
// sanitized result.
func Heatmap(h *hfile.Handle, path string, ndim int, plan planner.HeatmapPlan, includeStats bool) (HeatmapResult, error) {
	selectors := make([]hfile.AxisSelector, ndim)
	for dim := 0; dim < ndim; dim++ {
		switch dim {
		case plan.RowDim:
			selectors[dim] = hfile.Strided(0, plan.Rows, plan.StepRow)
		case plan.ColDim:
			selectors[dim] = hfile.Strided(0, plan.Cols, plan.StepCol)
		default:
			selectors[dim] = hfile.Scalar(plan.FixedIndices[dim])
		}
	}

	arr, err := h.Read(path, selectors)
	if err != nil {
		return HeatmapResult{}, err
	}

	grid, err := reshape2D(arr)
	if err != nil {
		return HeatmapResult{}, err
	}
	if plan.NeedsTranspose {
		grid = transpose2D(grid)
	}

	stats := Stats2D{}
	if includeStats && hfile.ClassifyDtype(arr.Dtype).Numeric() {
		stats = rawMinMax(arr.Values)
	}

	data := make([][]any, len(grid))
	for i, row := range grid {
		data[i] = sanitizeRow(row)
	}

	return HeatmapResult{
		Data:           data,
		Shape:          [2]int64{int64(len(data)), outCols(data)},
		Dtype:          arr.Dtype,
		Stats:          stats,
		DownsampleInfo: DownsampleInfo2D{RowStep: plan.StepRow, ColStep: plan.StepCol},
		Sampled:        plan.Sampled,
	}, nil
}

// Line reads the strided 1D window described by plan. For "dim" axis it
// varies the named dimension; for "row"/"col" axis it holds one display
// dimension fixed at plan.Index and varies the other.
func Line(h *hfile.Handle, path string, ndim int, plan planner.LinePlan, displayDims *[2]int) (LineResult, error) {
	varyDim, fixedDisplayDim, fixedDisplayIdx, err := lineAxes(plan, ndim, displayDims)
	if err != nil {
		return LineResult{}, err
	}

	if plan.Limit == 0 {
		result := LineResult{Shape: [1]int64{0}, Axis: plan.Axis}
		result.DownsampleInfo.Step = plan.Step
		if plan.Axis != "dim" {
			idx := plan.Index
			result.Index = &idx
		}
		return result, nil
	}

	selectors := make([]hfile.AxisSelector, ndim)
	for dim := 0; dim < ndim; dim++ {
		switch {
		case dim == varyDim:
			selectors[dim] = hfile.Strided(plan.Offset, plan.Offset+plan.Limit, plan.Step)
		case plan.Axis != "dim" && dim == fixedDisplayDim:
			selectors[dim] = hfile.Scalar(fixedDisplayIdx)
		default:
			selectors[dim] = hfile.Scalar(plan.FixedIndices[dim])
		}
	}

	arr, err := h.Read(path, selectors)
	if err != nil {
		return LineResult{}, err
	}

	data := sanitizeRow(arr.Values)
	result := LineResult{
		Data:  data,
		Shape: [1]int64{int64(len(data))},
		Dtype: arr.Dtype,
		Axis:  plan.Axis,
	}
	result.DownsampleInfo.Step = plan.Step
	if plan.Axis != "dim" {
		idx := plan.Index
		result.Index = &idx
	}
	return result, nil
}

// lineAxes resolves which dimension varies and, for row/col lines, which
// display dimension is held fixed at plan.Index.
func lineAxes(plan planner.LinePlan, ndim int, displayDims *[2]int) (varyDim, fixedDisplayDim int, fixedDisplayIdx int64, err error) {
	switch {
	case ndim == 1:
		return 0, -1, 0, nil
	case plan.Axis == "dim":
		return plan.Dim, -1, 0, nil
	case plan.Axis == "row":
		if displayDims == nil {
			return 0, 0, 0, apperrors.InvalidSelection("display_dims required for row/col line")
		}
		return displayDims[1], displayDims[0], plan.Index, nil
	case plan.Axis == "col":
		if displayDims == nil {
			return 0, 0, 0, apperrors.InvalidSelection("display_dims required for row/col line")
		}
		return displayDims[0], displayDims[1], plan.Index, nil
	default:
		return 0, -1, 0, apperrors.InvalidSelection("invalid line axis %q", plan.Axis)
	}
}

// reshape2D nests a flattened Array into a 2D grid matching arr.Shape.
// arr.Shape must have exactly two entries (the two non-scalar
// selectors); anything else is an internal error since the caller
// always supplies exactly one stride per display axis.
func reshape2D(arr hfile.Array) ([][]any, error) {
	if len(arr.Shape) != 2 {
		return nil, apperrors.Internal(nil, "expected a 2D read, got shape %v", arr.Shape)
	}
	rows, cols := arr.Shape[0], arr.Shape[1]
	grid := make([][]any, rows)
	for r := int64(0); r < rows; r++ {
		row := make([]any, cols)
		for c := int64(0); c < cols; c++ {
			row[c] = arr.Values[r*cols+c]
		}
		grid[r] = row
	}
	return grid, nil
}

func transpose2D(grid [][]any) [][]any {
	if len(grid) == 0 {
		return grid
	}
	rows, cols := len(grid), len(grid[0])
	out := make([][]any, cols)
	for c := 0; c < cols; c++ {
		row := make([]any, rows)
		for r := 0; r < rows; r++ {
			row[r] = grid[r][c]
		}
		out[c] = row
	}
	return out
}

func sanitizeRow(values []any) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = sanitize.Value(v)
	}
	return out
}

func outCols(data [][]any) int64 {
	if len(data) == 0 {
		return 0
	}
	return int64(len(data[0]))
}

// rawMinMax computes min/max over numeric scalars, skipping NaN the way
// np.nanmin/np.nanmax do; returns a zero-value Stats2D when every value
// is NaN or non-numeric, or the sample is empty.
func rawMinMax(values []any) Stats2D {
	var min, max float64
	found := false
	for _, v := range values {
		f, ok := asFloat(v)
		if !ok || isNaN(f) {
			continue
		}
		if !found {
			min, max = f, f
			found = true
			continue
		}
		if f < min {
			min = f
		}
		if f > max {
			max = f
		}
	}
	if !found {
		return Stats2D{}
	}
	return Stats2D{Min: &min, Max: &max}
}

func asFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int64:
		return float64(val), true
	case int:
		return float64(val), true
	default:
		return 0, false
	}
}

func isNaN(f float64) bool {
	return f != f
}
