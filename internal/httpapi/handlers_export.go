package httpapi

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/scrapbird/hview/internal/apperrors"
	"github.com/scrapbird/hview/internal/dataengine"
	"github.com/scrapbird/hview/internal/hfile"
	"github.com/scrapbird/hview/internal/planner"
	"github.com/scrapbird/hview/internal/selection"
)

// handleExport serves GET /files/{key}/export?path=...&mode=matrix|line,
// streaming CSV rows directly from the data engine's read rather than
// building a full JSON payload first. This reuses the same
// selection/planner path as /data; it is not cached, since a download is
// a one-shot transfer rather than a repeatable query.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, key string) {
	logger := loggerFrom(r.Context())
	q := r.URL.Query()

	path := q.Get("path")
	if path == "" {
		writeError(w, logger, missingPathErr())
		return
	}
	mode := q.Get("mode")
	if mode != "matrix" && mode != "line" {
		writeError(w, logger, apperrors.InvalidSelection("export mode must be matrix or line"))
		return
	}

	handle, head, err := s.openHandle(r.Context(), key)
	if err != nil {
		writeError(w, logger, err)
		return
	}
	version := previewDataVersion(q.Get("etag"))
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

	rows, err := exportRows(handle, path, info, sel, mode, q)
	if err != nil {
		writeError(w, logger, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", csvFilename(key, path)))
	writer := csv.NewWriter(w)
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			logger.Error("export failed mid-stream", "error", err)
			return
		}
		writer.Flush()
	}
}

// exportRows builds the CSV rows for either export mode, reusing the same
// plan construction the /data endpoint uses for matrix/line.
func exportRows(handle *hfile.Handle, path string, info hfile.DatasetInfo, sel selection.Selection, mode string, q url.Values) ([][]string, error) {
	switch mode {
	case "matrix":
		return exportMatrixRows(handle, path, info, sel, q)
	default:
		return exportLineRows(handle, path, info, sel, q)
	}
}

func exportMatrixRows(handle *hfile.Handle, path string, info hfile.DatasetInfo, sel selection.Selection, q url.Values) ([][]string, error) {
	rowDim, colDim, err := requireDisplayDims(sel)
	if err != nil {
		return nil, err
	}
	rows, cols := info.Shape[rowDim], info.Shape[colDim]

	rowOffset, err := queryInt(q, "row_offset", 0)
	if err != nil {
		return nil, err
	}
	rowLimitPtr, err := queryIntPtr(q, "row_limit")
	if err != nil {
		return nil, err
	}
	colOffset, err := queryInt(q, "col_offset", 0)
	if err != nil {
		return nil, err
	}
	colLimitPtr, err := queryIntPtr(q, "col_limit")
	if err != nil {
		return nil, err
	}
	rowStep, err := queryInt(q, "row_step", 1)
	if err != nil {
		return nil, err
	}
	colStep, err := queryInt(q, "col_step", 1)
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

	csvRows := make([][]string, len(result.Data))
	for i, row := range result.Data {
		record := make([]string, len(row))
		for j, v := range row {
			record[j] = fmt.Sprint(v)
		}
		csvRows[i] = record
	}
	return csvRows, nil
}

func exportLineRows(handle *hfile.Handle, path string, info hfile.DatasetInfo, sel selection.Selection, q url.Values) ([][]string, error) {
	var axis string
	var dim int
	if info.NDim == 1 {
		axis, dim = "dim", 0
	} else {
		ld, err := selection.ParseLineDim(q.Get("line_dim"), info.NDim)
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
		if idxPtr, err := queryIntPtr(q, "line_index"); err != nil {
			return nil, err
		} else if idxPtr != nil {
			lineIndex = *idxPtr
			if lineIndex < 0 {
				lineIndex += axisLen
			}
			if lineIndex < 0 || lineIndex >= axisLen {
				return nil, apperrors.InvalidSelection("line_index out of range")
			}
		}
	}

	offset, err := queryInt(q, "line_offset", 0)
	if err != nil {
		return nil, err
	}
	limitPtr, err := queryIntPtr(q, "line_limit")
	if err != nil {
		return nil, err
	}
	windowPoints := clampAxisLimit(limitPtr, lineLength, offset)

	requestedQuality, err := selection.ParseQuality(q.Get("quality"))
	if err != nil {
		return nil, err
	}
	resolvedQuality, err := selection.ResolveQuality(requestedQuality, windowPoints)
	if err != nil {
		return nil, err
	}

	maxPoints, err := queryInt(q, "max_points", planner.MaxLinePoints)
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

	rows := make([][]string, 0, len(result.Data)+1)
	rows = append(rows, []string{"index", "value"})
	for i, v := range result.Data {
		idx := offset + int64(i)*plan.Step
		rows = append(rows, []string{strconv.FormatInt(idx, 10), fmt.Sprint(v)})
	}
	return rows, nil
}

func csvFilename(key, path string) string {
	return sanitizeFilenameComponent(key) + "_" + sanitizeFilenameComponent(path) + ".csv"
}

func sanitizeFilenameComponent(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '/' || c == '\\' || c == ' ' {
			out = append(out, '_')
			continue
		}
		out = append(out, c)
	}
	return string(out)
}
