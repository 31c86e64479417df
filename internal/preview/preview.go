// Package preview builds the combined table+plot+profile+stats payload
// for a dataset's /preview endpoint: a 1000-row table (1D) or 200x200
// table (2D/ND reduced to a plane), a downsampled line or heatmap plot,
// a middle-row profile for 2D+, and sampled summary statistics.
package preview

import (
	"math"

	"github.com/scrapbird/hview/internal/hfile"
	"github.com/scrapbird/hview/internal/planner"
	"github.com/scrapbird/hview/internal/sanitize"
	"github.com/scrapbird/hview/internal/selection"
)

const (
	MaxPreviewElements = 250_000
	MaxHeatmapSize     = 512
	MaxHeatmapElements = 200_000
	MaxLinePoints      = 5000
	MinLinePoints      = 2000
	Table1DMax         = 1000
	Table2DMax         = 200
	MaxStatsSample     = 100_000
	profileLineTarget  = 3000
)

// Stats is the numeric summary over a strided sample of the dataset, or
// an explanation of why stats don't apply.
type Stats struct {
	Supported  bool
	Reason     string // "non-numeric" | "empty" | "complex" | "skipped", when !Supported
	Min        *float64
	Max        *float64
	Mean       *float64
	Std        *float64
	SampleSize int64
	Sampled    bool
	Method     string
}

// Table1D is the leading-values table for a 1D dataset.
type Table1D struct {
	Values []any
	Count  int
	Start  int64
	Step   int64
}

// LinePlot is a 1D line rendering: supported=false with Reason set when
// the dtype isn't plottable.
type LinePlot struct {
	Supported bool
	Reason    string
	X         []int64
	Y         []any
	Count     int
	XStart    int64
	XStep     int64
}

// Table2D is the leading rows/cols table for a 2D-or-reduced dataset.
type Table2D struct {
	Data     [][]any
	Shape    [2]int64
	RowStart int64
	ColStart int64
	RowStep  int64
	ColStep  int64
}

// HeatmapPlot is a 2D downsampled rendering.
type HeatmapPlot struct {
	Supported bool
	Reason    string
	Data      [][]any
	Shape     [2]int64
	RowStart  int64
	ColStart  int64
	RowStep   int64
	ColStep   int64
}

// Profile is the middle-row line extracted from a 2D+ plane, alongside
// the plot, for a quick cross-section view.
type Profile struct {
	Index   int64
	X       []int64
	Y       []any
	Count   int
	XStart  int64
	XStep   int64
	DimRow  int
	DimCol  int
}

// Limits echoes the caps this payload was built under, for clients that
// want to render an accurate "there's more data" affordance.
type Limits struct {
	MaxElements     int64
	MaxHeatmapSize  int64
	MaxLinePoints   int64
	Table1DMax      int64
	Table2DMax      int64
}

// Payload is the full /preview response body.
type Payload struct {
	Key          string
	Path         string
	Dtype        string
	Shape        []int64
	NDim         int
	PreviewType  string // "1d" | "2d" | "nd"
	Mode         string
	DisplayDims  *[2]int
	FixedIndices map[int]int64
	Stats        Stats
	Table        any // Table1D | Table2D
	Plot         any // LinePlot | HeatmapPlot
	Profile      *Profile
	Limits       Limits
}

// Build reads and assembles a preview payload. displayDims/fixedIndices
// must already be normalized (internal/selection); for ndim==1 both are
// ignored. includeStats gates the sampled min/max/mean/std computation —
// callers resolve it from the detail/include_stats query parameters via
// selection.DefaultIncludeStats before calling Build.
func Build(h *hfile.Handle, key, path string, info hfile.DatasetInfo, displayDims *[2]int, fixedIndices map[int]int64, mode string, maxSize int64, includeStats bool) (Payload, error) {
	dtype := hfile.ClassifyDtype(info.Dtype)
	numeric := dtype.Numeric()

	var stats Stats
	if includeStats {
		var err error
		stats, err = computeStats(h, path, info.Shape, numeric, dtype.Complex)
		if err != nil {
			return Payload{}, err
		}
	} else {
		stats = Stats{Supported: false, Reason: "skipped"}
	}

	payload := Payload{
		Key: key, Path: path, Dtype: info.Dtype,
		Shape: info.Shape, NDim: info.NDim, Mode: mode,
		Stats: stats,
		Limits: Limits{
			MaxElements:    MaxPreviewElements,
			MaxHeatmapSize: minI64(orDefault(maxSize, MaxHeatmapSize), MaxHeatmapSize),
			MaxLinePoints:  MaxLinePoints,
			Table1DMax:     Table1DMax,
			Table2DMax:     Table2DMax,
		},
	}

	if info.NDim == 1 {
		payload.PreviewType = "1d"
		table, plot, err := preview1D(h, path, info.Shape[0], info.Dtype, numeric)
		if err != nil {
			return Payload{}, err
		}
		payload.Table = table
		payload.Plot = plot
		payload.FixedIndices = map[int]int64{}
		return payload, nil
	}

	if info.NDim == 2 {
		payload.PreviewType = "2d"
	} else {
		payload.PreviewType = "nd"
	}

	maxHeatmapSize := minI64(orDefault(maxSize, MaxHeatmapSize), MaxHeatmapSize)
	table, plot, profile, err := preview2D(h, path, info.NDim, info.Shape, *displayDims, fixedIndices, maxHeatmapSize, info.Dtype, numeric)
	if err != nil {
		return Payload{}, err
	}
	payload.Table = table
	payload.Plot = plot
	payload.Profile = profile
	payload.DisplayDims = displayDims
	payload.FixedIndices = fixedIndices
	return payload, nil
}

func orDefault(v, def int64) int64 {
	if v <= 0 {
		return def
	}
	return v
}

func minI64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// computeStats samples the full dataset with a uniform per-axis stride
// and reports min/max/mean/std over the finite subset.
func computeStats(h *hfile.Handle, path string, shape []int64, numeric, isComplex bool) (Stats, error) {
	if isComplex {
		return Stats{Supported: false, Reason: "complex"}, nil
	}
	if !numeric {
		return Stats{Supported: false, Reason: "non-numeric"}, nil
	}

	total := int64(1)
	for _, s := range shape {
		total *= s
	}
	if total == 0 {
		return Stats{Supported: false, Reason: "empty"}, nil
	}

	stride := planner.StatsSampleStride(total, len(shape))
	selectors := make([]hfile.AxisSelector, len(shape))
	for i, size := range shape {
		selectors[i] = hfile.Strided(0, size, stride)
	}

	arr, err := h.Read(path, selectors)
	if err != nil {
		return Stats{}, err
	}
	if len(arr.Values) == 0 {
		return Stats{Supported: false, Reason: "empty"}, nil
	}

	sample := arr.Values
	if int64(len(sample)) > MaxStatsSample {
		sample = sample[:MaxStatsSample]
	}

	var sum, sumSq float64
	var minV, maxV float64
	count := 0
	for _, v := range sample {
		f, ok := toFloat(v)
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		if count == 0 {
			minV, maxV = f, f
		} else {
			if f < minV {
				minV = f
			}
			if f > maxV {
				maxV = f
			}
		}
		sum += f
		sumSq += f * f
		count++
	}
	if count == 0 {
		return Stats{Supported: false, Reason: "empty"}, nil
	}

	mean := sum / float64(count)
	variance := sumSq/float64(count) - mean*mean
	if variance < 0 {
		variance = 0
	}
	std := math.Sqrt(variance)

	return Stats{
		Supported:  true,
		Min:        ptr(minV),
		Max:        ptr(maxV),
		Mean:       ptr(mean),
		Std:        ptr(std),
		SampleSize: int64(count),
		Sampled:    int64(len(sample)) < total,
		Method:     "strided",
	}, nil
}

func preview1D(h *hfile.Handle, path string, length int64, dtypeStr string, numeric bool) (Table1D, LinePlot, error) {
	tableN := minI64(Table1DMax, length)
	var tableValues []any
	if tableN > 0 {
		arr, err := h.Read(path, []hfile.AxisSelector{hfile.Strided(0, tableN, 1)})
		if err != nil {
			return Table1D{}, LinePlot{}, err
		}
		tableValues = sanitizeAll(arr.Values)
	}
	table := Table1D{Values: tableValues, Count: len(tableValues), Start: 0, Step: 1}

	if !numeric {
		return table, LinePlot{Supported: false, Reason: "non-numeric"}, nil
	}

	step := int64(1)
	var yValues []any
	if length <= MaxLinePoints {
		if length > 0 {
			arr, err := h.Read(path, []hfile.AxisSelector{hfile.Strided(0, length, 1)})
			if err != nil {
				return Table1D{}, LinePlot{}, err
			}
			yValues = sanitizeAll(arr.Values)
		}
	} else {
		target := minI64(MaxLinePoints, maxI64(MinLinePoints, profileLineTarget))
		step = maxI64(1, selection.CeilDiv(length, target))
		arr, err := h.Read(path, []hfile.AxisSelector{hfile.Strided(0, length, step)})
		if err != nil {
			return Table1D{}, LinePlot{}, err
		}
		values := arr.Values
		if int64(len(values)) > MaxLinePoints {
			values = values[:MaxLinePoints]
		}
		yValues = sanitizeAll(values)
	}

	xValues := make([]int64, len(yValues))
	for i := range xValues {
		xValues[i] = int64(i) * step
	}

	plot := LinePlot{Supported: true, X: xValues, Y: yValues, Count: len(yValues), XStart: 0, XStep: step}
	return table, plot, nil
}

func preview2D(h *hfile.Handle, path string, ndim int, shape []int64, displayDims [2]int, fixed map[int]int64, maxHeatmapSize int64, dtypeStr string, numeric bool) (Table2D, HeatmapPlot, *Profile, error) {
	rowDim, colDim := displayDims[0], displayDims[1]
	rows, cols := shape[rowDim], shape[colDim]
	needsTranspose := rowDim > colDim

	tableRows := minI64(Table2DMax, rows)
	tableCols := minI64(Table2DMax, cols)

	var tableData [][]any
	if tableRows > 0 && tableCols > 0 {
		arr, err := readPlane(h, path, ndim, rowDim, colDim, fixed, hfile.Strided(0, tableRows, 1), hfile.Strided(0, tableCols, 1))
		if err != nil {
			return Table2D{}, HeatmapPlot{}, nil, err
		}
		tableData = reshapeAndMaybeTranspose(arr, needsTranspose)
	}
	table := Table2D{
		Data: sanitizeGrid(tableData),
		Shape: [2]int64{tableRows, tableCols},
		RowStep: 1, ColStep: 1,
	}

	if !numeric || rows == 0 || cols == 0 {
		reason := "empty"
		if !numeric {
			reason = "non-numeric"
		}
		return table, HeatmapPlot{Supported: false, Reason: reason}, nil, nil
	}

	targetRows := minI64(rows, maxHeatmapSize)
	targetCols := minI64(cols, maxHeatmapSize)
	if targetRows*targetCols > MaxHeatmapElements {
		scale := math.Sqrt(float64(targetRows*targetCols) / float64(MaxHeatmapElements))
		targetRows = maxI64(1, int64(math.Floor(float64(targetRows)/scale)))
		targetCols = maxI64(1, int64(math.Floor(float64(targetCols)/scale)))
	}

	stepR := maxI64(1, selection.CeilDiv(rows, targetRows))
	stepC := maxI64(1, selection.CeilDiv(cols, targetCols))

	heatArr, err := readPlane(h, path, ndim, rowDim, colDim, fixed, hfile.Strided(0, rows, stepR), hfile.Strided(0, cols, stepC))
	if err != nil {
		return Table2D{}, HeatmapPlot{}, nil, err
	}
	heatGrid := reshapeAndMaybeTranspose(heatArr, needsTranspose)
	plot := HeatmapPlot{
		Supported: true,
		Data:      sanitizeGrid(heatGrid),
		Shape:     [2]int64{int64(len(heatGrid)), rowLen(heatGrid)},
		RowStep:   stepR, ColStep: stepC,
	}

	rowIndex := rows / 2
	targetLine := minI64(MaxLinePoints, maxI64(MinLinePoints, profileLineTarget))
	stepLine := maxI64(1, selection.CeilDiv(cols, targetLine))

	selectors := make([]hfile.AxisSelector, ndim)
	for dim := 0; dim < ndim; dim++ {
		switch dim {
		case rowDim:
			selectors[dim] = hfile.Scalar(rowIndex)
		case colDim:
			selectors[dim] = hfile.Strided(0, cols, stepLine)
		default:
			selectors[dim] = hfile.Scalar(fixed[dim])
		}
	}
	lineArr, err := h.Read(path, selectors)
	if err != nil {
		return Table2D{}, HeatmapPlot{}, nil, err
	}
	lineValues := lineArr.Values
	if int64(len(lineValues)) > MaxLinePoints {
		lineValues = lineValues[:MaxLinePoints]
	}
	lineX := make([]int64, len(lineValues))
	for i := range lineX {
		lineX[i] = int64(i) * stepLine
	}

	profile := &Profile{
		Index: rowIndex, X: lineX, Y: sanitizeAll(lineValues),
		Count: len(lineValues), XStart: 0, XStep: stepLine,
		DimRow: rowDim, DimCol: colDim,
	}

	return table, plot, profile, nil
}

func readPlane(h *hfile.Handle, path string, ndim, rowDim, colDim int, fixed map[int]int64, rowSel, colSel hfile.AxisSelector) (hfile.Array, error) {
	selectors := make([]hfile.AxisSelector, ndim)
	for dim := 0; dim < ndim; dim++ {
		switch dim {
		case rowDim:
			selectors[dim] = rowSel
		case colDim:
			selectors[dim] = colSel
		default:
			selectors[dim] = hfile.Scalar(fixed[dim])
		}
	}
	return h.Read(path, selectors)
}

func reshapeAndMaybeTranspose(arr hfile.Array, transpose bool) [][]any {
	if len(arr.Shape) != 2 {
		return nil
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
	if !transpose {
		return grid
	}
	out := make([][]any, cols)
	for c := int64(0); c < cols; c++ {
		row := make([]any, rows)
		for r := int64(0); r < rows; r++ {
			row[r] = grid[r][c]
		}
		out[c] = row
	}
	return out
}

func rowLen(grid [][]any) int64 {
	if len(grid) == 0 {
		return 0
	}
	return int64(len(grid[0]))
}

func sanitizeAll(values []any) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = sanitize.Value(v)
	}
	return out
}

func sanitizeGrid(grid [][]any) [][]any {
	out := make([][]any, len(grid))
	for i, row := range grid {
		out[i] = sanitizeAll(row)
	}
	return out
}

func toFloat(v any) (float64, bool) {
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

func ptr(f float64) *float64 { return &f }

func maxI64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
