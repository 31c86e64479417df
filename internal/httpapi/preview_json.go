package httpapi

import (
	"strconv"

	"github.com/scrapbird/hview/internal/preview"
)

func previewPayloadToJSON(p preview.Payload) map[string]any {
	body := map[string]any{
		"key":           p.Key,
		"path":          p.Path,
		"dtype":         p.Dtype,
		"shape":         p.Shape,
		"ndim":          p.NDim,
		"preview_type":  p.PreviewType,
		"mode":          p.Mode,
		"fixed_indices": fixedIndicesToJSON(p.FixedIndices),
		"stats":         statsToJSON(p.Stats),
		"limits":        limitsToJSON(p.Limits),
	}
	if p.DisplayDims != nil {
		body["display_dims"] = []int{p.DisplayDims[0], p.DisplayDims[1]}
	}

	switch t := p.Table.(type) {
	case preview.Table1D:
		body["table"] = table1DToJSON(t)
	case preview.Table2D:
		body["table"] = table2DToJSON(t)
	}

	switch pl := p.Plot.(type) {
	case preview.LinePlot:
		body["plot"] = linePlotToJSON(pl)
	case preview.HeatmapPlot:
		body["plot"] = heatmapPlotToJSON(pl)
	}

	if p.Profile != nil {
		body["profile"] = profileToJSON(*p.Profile)
	}

	return body
}

func fixedIndicesToJSON(fixed map[int]int64) map[string]int64 {
	out := make(map[string]int64, len(fixed))
	for dim, idx := range fixed {
		out[strconv.Itoa(dim)] = idx
	}
	return out
}

func statsToJSON(s preview.Stats) map[string]any {
	out := map[string]any{"supported": s.Supported}
	if !s.Supported {
		out["reason"] = s.Reason
		return out
	}
	out["min"] = s.Min
	out["max"] = s.Max
	out["mean"] = s.Mean
	out["std"] = s.Std
	out["sample_size"] = s.SampleSize
	out["sampled"] = s.Sampled
	out["method"] = s.Method
	return out
}

func table1DToJSON(t preview.Table1D) map[string]any {
	return map[string]any{
		"values": t.Values,
		"count":  t.Count,
		"start":  t.Start,
		"step":   t.Step,
	}
}

func table2DToJSON(t preview.Table2D) map[string]any {
	return map[string]any{
		"data":      t.Data,
		"shape":     t.Shape,
		"row_start": t.RowStart,
		"col_start": t.ColStart,
		"row_step":  t.RowStep,
		"col_step":  t.ColStep,
	}
}

func linePlotToJSON(p preview.LinePlot) map[string]any {
	out := map[string]any{"supported": p.Supported}
	if !p.Supported {
		out["reason"] = p.Reason
		return out
	}
	out["x"] = p.X
	out["y"] = p.Y
	out["count"] = p.Count
	out["x_start"] = p.XStart
	out["x_step"] = p.XStep
	return out
}

func heatmapPlotToJSON(p preview.HeatmapPlot) map[string]any {
	out := map[string]any{"supported": p.Supported}
	if !p.Supported {
		out["reason"] = p.Reason
		return out
	}
	out["data"] = p.Data
	out["shape"] = p.Shape
	out["row_start"] = p.RowStart
	out["col_start"] = p.ColStart
	out["row_step"] = p.RowStep
	out["col_step"] = p.ColStep
	return out
}

func profileToJSON(p preview.Profile) map[string]any {
	return map[string]any{
		"index":   p.Index,
		"x":       p.X,
		"y":       p.Y,
		"count":   p.Count,
		"x_start": p.XStart,
		"x_step":  p.XStep,
		"dim_row": p.DimRow,
		"dim_col": p.DimCol,
	}
}

func limitsToJSON(l preview.Limits) map[string]any {
	return map[string]any{
		"max_elements":      l.MaxElements,
		"max_heatmap_size":  l.MaxHeatmapSize,
		"max_line_points":   l.MaxLinePoints,
		"table_1d_max":      l.Table1DMax,
		"table_2d_max":      l.Table2DMax,
	}
}
