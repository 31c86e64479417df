// Package planner turns a canonical selection and a display mode into a
// concrete slice plan with strides and an output shape, under the
// service's hard element ceilings. It performs no I/O; it only computes
// what the data engine must read.
package planner

import (
	"math"

	"github.com/scrapbird/hview/internal/apperrors"
)

// Element ceilings, shared across all modes.
const (
	MaxElements     = 1_000_000
	MaxJSONElements = 500_000
	MaxMatrixRows   = 2000
	MaxMatrixCols   = 2000
	MaxHeatmapSize  = 1024
	MaxLinePoints   = 5000
	MaxStatsSample  = 100_000
)

// Plan is the common envelope for the three mode-specific plans. Callers
// switch on Mode() to recover the concrete type.
type Plan interface {
	Mode() string
}

// MatrixPlan describes a strided 2D read over the display axes with
// scalar indices on every other axis.
type MatrixPlan struct {
	RowDim, ColDim             int
	RowOffset, ColOffset       int64
	RowLimit, ColLimit         int64
	RowStep, ColStep           int64
	OutRows, OutCols           int64
	FixedIndices               map[int]int64
	NeedsTranspose              bool
}

func (MatrixPlan) Mode() string { return "matrix" }

// HeatmapPlan describes a strided 2D read whose output size has been
// clamped to respect the element ceilings.
type HeatmapPlan struct {
	RowDim, ColDim         int
	Rows, Cols             int64
	RequestedMaxSize       int64
	EffectiveMaxSize       int64
	MaxSizeClamped         bool
	TargetRows, TargetCols int64
	StepRow, StepCol       int64
	Sampled                bool
	FixedIndices           map[int]int64
	NeedsTranspose         bool
}

func (HeatmapPlan) Mode() string { return "heatmap" }

// LinePlan describes a strided 1D read along one axis (ndim=1, an
// explicit axis, or a row/col line relative to display_dims).
type LinePlan struct {
	Axis            string // "dim" | "row" | "col"
	Dim             int
	Index           int64
	Offset          int64
	Limit           int64
	Step            int64
	RequestedPoints int64
	OutputPoints    int64
	QualityApplied  string // "exact" | "overview"
	FixedIndices    map[int]int64
}

func (LinePlan) Mode() string { return "line" }

// EnforceElementLimits rejects a selection whose element count exceeds
// either JSON or absolute ceiling, citing the limit that was hit.
func EnforceElementLimits(count int64) error {
	if count > MaxJSONElements {
		return apperrors.CapExceeded("Selection too large for JSON (%d > %d elements)", count, MaxJSONElements)
	}
	if count > MaxElements {
		return apperrors.CapExceeded("Selection exceeds max_elements (%d > %d elements)", count, MaxElements)
	}
	return nil
}

// PlanMatrix clamps offsets/limits/steps to the axis bounds and computes
// the output shape, rejecting limits past MaxMatrixRows/Cols and
// selections past the element ceilings.
func PlanMatrix(rowDim, colDim int, rows, cols int64, rowOffset, rowLimit, colOffset, colLimit, rowStep, colStep int64, fixed map[int]int64) (MatrixPlan, error) {
	if rowStep < 1 {
		rowStep = 1
	}
	if colStep < 1 {
		colStep = 1
	}

	rowLimit = clampLimit(rowLimit, rows, rowOffset)
	colLimit = clampLimit(colLimit, cols, colOffset)

	if rowLimit > MaxMatrixRows || colLimit > MaxMatrixCols {
		return MatrixPlan{}, apperrors.CapExceeded("Matrix limits exceed %dx%d", MaxMatrixRows, MaxMatrixCols)
	}

	outRows := ceilDiv(rowLimit, rowStep)
	outCols := ceilDiv(colLimit, colStep)
	if err := EnforceElementLimits(outRows * outCols); err != nil {
		return MatrixPlan{}, err
	}

	return MatrixPlan{
		RowDim: rowDim, ColDim: colDim,
		RowOffset: rowOffset, ColOffset: colOffset,
		RowLimit: rowLimit, ColLimit: colLimit,
		RowStep: rowStep, ColStep: colStep,
		OutRows: outRows, OutCols: outCols,
		FixedIndices:   fixed,
		NeedsTranspose: rowDim > colDim,
	}, nil
}

// PlanHeatmap clamps requestedMaxSize via binary search on projected cell
// counts so the output respects the element ceilings even when the
// caller asks for more than the axes can safely provide.
func PlanHeatmap(rowDim, colDim int, rows, cols int64, requestedMaxSize int64, includeStats bool) (HeatmapPlan, error) {
	if requestedMaxSize > MaxHeatmapSize {
		return HeatmapPlan{}, apperrors.InvalidSelection("max_size exceeds %d", MaxHeatmapSize)
	}

	effective := clampHeatmapMaxSize(rows, cols, requestedMaxSize)
	targetRows := min64(rows, effective)
	targetCols := min64(cols, effective)

	if err := EnforceElementLimits(targetRows * targetCols); err != nil {
		return HeatmapPlan{}, err
	}

	stepRow := int64(1)
	if targetRows > 0 {
		stepRow = ceilDiv(rows, targetRows)
	}
	stepCol := int64(1)
	if targetCols > 0 {
		stepCol = ceilDiv(cols, targetCols)
	}
	if stepRow < 1 {
		stepRow = 1
	}
	if stepCol < 1 {
		stepCol = 1
	}

	return HeatmapPlan{
		RowDim: rowDim, ColDim: colDim,
		Rows: rows, Cols: cols,
		RequestedMaxSize: requestedMaxSize,
		EffectiveMaxSize: effective,
		MaxSizeClamped:   effective != requestedMaxSize,
		TargetRows:       targetRows,
		TargetCols:       targetCols,
		StepRow:          stepRow,
		StepCol:          stepCol,
		Sampled:          stepRow > 1 || stepCol > 1,
		NeedsTranspose:   rowDim > colDim,
	}, nil
}

// clampHeatmapMaxSize finds the largest size s <= requested such that
// min(rows,s)*min(cols,s) stays within the element cap, via binary
// search — the two axes clamp independently once s exceeds an axis's
// own length, so this isn't reducible to a closed-form sqrt.
func clampHeatmapMaxSize(rows, cols, requested int64) int64 {
	if requested <= 0 {
		return 1
	}
	cap := int64(min(MaxJSONElements, MaxElements))
	projected := func(size int64) int64 {
		return min64(rows, size) * min64(cols, size)
	}
	if projected(requested) <= cap {
		return requested
	}

	low, high, best := int64(1), requested, int64(1)
	for low <= high {
		mid := low + (high-low)/2
		if projected(mid) <= cap {
			best = mid
			low = mid + 1
		} else {
			high = mid - 1
		}
	}
	return best
}

// PlanLine resolves the line window (offset/limit clamped to axis
// length), applies quality policy (already decided by
// selection.ResolveQuality), and computes the output stride.
func PlanLine(axis string, dim int, index, offset, requestedLimit, lineLength int64, quality string, maxPoints int64, fixed map[int]int64) (LinePlan, error) {
	if maxPoints > MaxLinePoints {
		maxPoints = MaxLinePoints
	}
	if maxPoints < 1 {
		maxPoints = 1
	}

	limit := clampLimit(requestedLimit, lineLength, offset)
	requestedPoints := limit

	step := int64(1)
	if quality == "overview" && requestedPoints > 0 {
		step = max64(1, ceilDiv(requestedPoints, maxPoints))
	}

	outputPoints := int64(0)
	if requestedPoints > 0 {
		outputPoints = ceilDiv(requestedPoints, step)
	}

	if err := EnforceElementLimits(outputPoints); err != nil {
		return LinePlan{}, err
	}

	return LinePlan{
		Axis: axis, Dim: dim, Index: index,
		Offset: offset, Limit: limit, Step: step,
		RequestedPoints: requestedPoints,
		OutputPoints:    outputPoints,
		QualityApplied:  quality,
		FixedIndices:    fixed,
	}, nil
}

// clampLimit bounds a requested limit to what remains on the axis after
// offset; a negative limit (how callers pass an unspecified one) means
// the full remaining length.
func clampLimit(limit, axisLen, offset int64) int64 {
	remaining := max64(0, axisLen-offset)
	if limit < 0 {
		return remaining
	}
	return min64(limit, remaining)
}

func ceilDiv(a, b int64) int64 {
	if b <= 0 {
		b = 1
	}
	return (a + b - 1) / b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// StatsSampleStride computes the uniform per-axis stride that keeps a
// full strided read under MaxStatsSample elements.
func StatsSampleStride(total int64, ndim int) int64 {
	if total <= int64(MaxStatsSample) || ndim <= 0 {
		return 1
	}
	root := math.Pow(float64(total)/float64(MaxStatsSample), 1/float64(ndim))
	stride := int64(math.Ceil(root))
	if stride < 1 {
		stride = 1
	}
	return stride
}
