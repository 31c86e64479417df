package httpapi

import (
	"net/http"
	"net/url"

	"github.com/scrapbird/hview/internal/apperrors"
	"github.com/scrapbird/hview/internal/cache"
	"github.com/scrapbird/hview/internal/dataengine"
	"github.com/scrapbird/hview/internal/hfile"
	"github.com/scrapbird/hview/internal/planner"
	"github.com/scrapbird/hview/internal/selection"
)

// handleData serves GET /files/{key}/data?path=...&mode=matrix|heatmap|line.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request, key string) {
	logger := loggerFrom(r.Context())
	q := r.URL.Query()

	path := q.Get("path")
	if path == "" {
		writeError(w, logger, missingPathErr())
		return
	}
	mode := q.Get("mode")
	if mode != "matrix" && mode != "heatmap" && mode != "line" {
		writeError(w, logger, apperrors.InvalidSelection("mode must be matrix, heatmap, or line"))
		return
	}

	version := previewDataVersion(q.Get("etag"))
	cacheKey := cache.Key("data-response", key, version, "data", path, mode, q.Encode())
	if cached, ok := s.Cache.DataResponse.Get(cacheKey); ok {
		writeSuccess(w, http.StatusOK, cached.(map[string]any), true, version)
		return
	}

	handle, head, err := s.openHandle(r.Context(), key)
	if err != nil {
		writeError(w, logger, err)
		return
	}
	datasetVersion := version
	if version == "ttl" {
		datasetVersion = treeMetaVersion(head)
	}
	info, err := s.datasetInfo(handle, key, path, datasetVersion)
	if err != nil {
		writeError(w, logger, err)
		return
	}

	sel, err := selection.Normalize(info.Shape, selection.RawParams{
		DisplayDims:  q.Get("display_dims"),
		FixedIndices: q.Get("fixed_indices"),
	})
	if err != nil {
		writeError(w, logger, err)
		return
	}

	var body map[string]any
	switch mode {
	case "matrix":
		body, err = s.dataMatrix(handle, path, info, sel, q)
	case "heatmap":
		body, err = s.dataHeatmap(handle, path, info, sel, q)
	case "line":
		body, err = s.dataLine(handle, path, info, sel, q)
	}
	if err != nil {
		writeError(w, logger, err)
		return
	}

	s.Cache.DataResponse.Set(cacheKey, body, 0)
	writeSuccess(w, http.StatusOK, body, false, version)
}

func requireDisplayDims(sel selection.Selection) (int, int, error) {
	if sel.DisplayDims == nil {
		return 0, 0, apperrors.InvalidSelection("this mode requires a dataset with ndim >= 2")
	}
	return sel.DisplayDims[0], sel.DisplayDims[1], nil
}

func (s *Server) dataMatrix(handle *hfile.Handle, path string, info hfile.DatasetInfo, sel selection.Selection, values url.Values) (map[string]any, error) {
	rowDim, colDim, err := requireDisplayDims(sel)
	if err != nil {
		return nil, err
	}
	rows, cols := info.Shape[rowDim], info.Shape[colDim]

	rowOffset, err := queryInt(values, "row_offset", 0)
	if err != nil {
		return nil, err
	}
	rowLimitPtr, err := queryIntPtr(values, "row_limit")
	if err != nil {
		return nil, err
	}
	colOffset, err := queryInt(values, "col_offset", 0)
	if err != nil {
		return nil, err
	}
	colLimitPtr, err := queryIntPtr(values, "col_limit")
	if err != nil {
		return nil, err
	}
	rowStep, err := queryInt(values, "row_step", 1)
	if err != nil {
		return nil, err
	}
	colStep, err := queryInt(values, "col_step", 1)
	if err != nil {
		return nil, err
	}

	plan, err := planner.PlanMatrix(rowDim, colDim, rows, cols,
		rowOffset, intPtrOr(rowLimitPtr, -1), colOffset, intPtrOr(colLimitPtr, -1), rowStep, colStep, sel.FixedIndices)
	if err != nil {
		return nil, err
	}

	result, err := dataengine.Matrix(handle, path, info.NDim, plan)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"data":       result.Data,
		"shape":      result.Shape,
		"dtype":      result.Dtype,
		"row_offset": result.RowOffset,
		"col_offset": result.ColOffset,
		"downsample_info": map[string]any{
			"row_step": result.DownsampleInfo.RowStep,
			"col_step": result.DownsampleInfo.ColStep,
		},
		"display_dims":  []int{rowDim, colDim},
		"fixed_indices": fixedIndicesToJSON(sel.FixedIndices),
	}, nil
}

func (s *Server) dataHeatmap(handle *hfile.Handle, path string, info hfile.DatasetInfo, sel selection.Selection, values url.Values) (map[string]any, error) {
	rowDim, colDim, err := requireDisplayDims(sel)
	if err != nil {
		return nil, err
	}
	rows, cols := info.Shape[rowDim], info.Shape[colDim]

	maxSize, err := queryInt(values, "max_size", planner.MaxHeatmapSize)
	if err != nil {
		return nil, err
	}
	includeStats, err := queryBool(values, "include_stats", false)
	if err != nil {
		return nil, err
	}

	plan, err := planner.PlanHeatmap(rowDim, colDim, rows, cols, maxSize, includeStats)
	if err != nil {
		return nil, err
	}
	plan.FixedIndices = sel.FixedIndices

	result, err := dataengine.Heatmap(handle, path, info.NDim, plan, includeStats)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"data":  result.Data,
		"shape": result.Shape,
		"dtype": result.Dtype,
		"downsample_info": map[string]any{
			"row_step": result.DownsampleInfo.RowStep,
			"col_step": result.DownsampleInfo.ColStep,
		},
		"sampled":            result.Sampled,
		"requested_max_size": plan.RequestedMaxSize,
		"effective_max_size": plan.EffectiveMaxSize,
		"max_size_clamped":   plan.MaxSizeClamped,
		"display_dims":       []int{rowDim, colDim},
		"fixed_indices":      fixedIndicesToJSON(sel.FixedIndices),
	}
	if result.Stats.Min != nil || result.Stats.Max != nil {
		body["stats"] = map[string]any{"min": result.Stats.Min, "max": result.Stats.Max}
	}
	return body, nil
}

func (s *Server) dataLine(handle *hfile.Handle, path string, info hfile.DatasetInfo, sel selection.Selection, values url.Values) (map[string]any, error) {

	var axis string
	var dim int
	if info.NDim == 1 {
		axis, dim = "dim", 0
	} else {
		ld, err := selection.ParseLineDim(values.Get("line_dim"), info.NDim)
		if err != nil {
			return nil, err
		}
		if ld == nil {
			return nil, apperrors.InvalidSelection("line_dim is required for ndim > 1")
		}
		if ld.IsAxis {
			axis, dim = "dim", ld.Axis
		} else {
			axis = ld.Symbol
		}
	}

	var lineLength int64
	var fixedDisplayDim int
	switch axis {
	case "dim":
		lineLength = info.Shape[dim]
	case "row":
		rowDim, colDim, err := requireDisplayDims(sel)
		if err != nil {
			return nil, err
		}
		fixedDisplayDim = rowDim
		lineLength = info.Shape[colDim]
	case "col":
		rowDim, colDim, err := requireDisplayDims(sel)
		if err != nil {
			return nil, err
		}
		fixedDisplayDim = colDim
		lineLength = info.Shape[rowDim]
	}

	lineIndex := int64(0)
	if axis != "dim" {
		axisLen := info.Shape[fixedDisplayDim]
		lineIndex = axisLen / 2
		if idxPtr, err := queryIntPtr(values, "line_index"); err != nil {
			return nil, err
		} else if idxPtr != nil {
			idx := *idxPtr
			if idx < 0 {
				idx += axisLen
			}
			if idx < 0 || idx >= axisLen {
				return nil, apperrors.InvalidSelection("line_index out of range")
			}
			lineIndex = idx
		}
	}

	offset, err := queryInt(values, "line_offset", 0)
	if err != nil {
		return nil, err
	}
	limitPtr, err := queryIntPtr(values, "line_limit")
	if err != nil {
		return nil, err
	}
	windowPoints := clampAxisLimit(limitPtr, lineLength, offset)

	requestedQuality, err := selection.ParseQuality(values.Get("quality"))
	if err != nil {
		return nil, err
	}
	resolvedQuality, err := selection.ResolveQuality(requestedQuality, windowPoints)
	if err != nil {
		return nil, err
	}

	maxPoints, err := queryInt(values, "max_points", planner.MaxLinePoints)
	if err != nil {
		return nil, err
	}

	plan, err := planner.PlanLine(axis, dim, lineIndex, offset, intPtrOr(limitPtr, -1), lineLength, string(resolvedQuality), maxPoints, sel.FixedIndices)
	if err != nil {
		return nil, err
	}

	result, err := dataengine.Line(handle, path, info.NDim, plan, sel.DisplayDims)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"data":  result.Data,
		"shape": result.Shape,
		"dtype": result.Dtype,
		"axis":  result.Axis,
		"downsample_info": map[string]any{
			"step": result.DownsampleInfo.Step,
		},
		"quality_applied":  plan.QualityApplied,
		"requested_points": plan.RequestedPoints,
		"returned_points":  plan.OutputPoints,
	}
	if result.Index != nil {
		body["index"] = *result.Index
	}
	return body, nil
}

func clampAxisLimit(limit *int64, axisLen, offset int64) int64 {
	remaining := axisLen - offset
	if remaining < 0 {
		remaining = 0
	}
	if limit == nil || *limit < 0 {
		return remaining
	}
	if *limit > remaining {
		return remaining
	}
	return *limit
}
