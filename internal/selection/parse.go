package selection

import (
	"strconv"
	"strings"

	"github.com/scrapbird/hview/internal/apperrors"
)

// parseDisplayDims parses "d1,d2" into an ordered pair of distinct axes.
// Negative indices resolve modulo ndim. Absent for ndim<2; defaults to
// (ndim-2, ndim-1) for ndim>=2 when the param is empty.
func parseDisplayDims(raw string, ndim int) (*[2]int, error) {
	if ndim < 2 {
		return nil, nil
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return &[2]int{ndim - 2, ndim - 1}, nil
	}

	parts := splitNonEmpty(raw, ',')
	if len(parts) != 2 {
		return nil, apperrors.InvalidSelection("display_dims must include two distinct dims")
	}

	var dims [2]int
	for i, part := range parts {
		dim, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, apperrors.InvalidSelection("invalid display_dims parameter")
		}
		dim = resolveAxis(dim, ndim)
		if dim < 0 || dim >= ndim {
			return nil, apperrors.InvalidSelection("display_dims out of range")
		}
		dims[i] = dim
	}
	if dims[0] == dims[1] {
		return nil, apperrors.InvalidSelection("display_dims must include two distinct dims")
	}
	return &dims, nil
}

// parseFixedIndices parses "dim=idx,dim=idx" (also "dim:idx") into a
// dim->index map. Negative dims resolve modulo ndim; index normalization
// against the dataset shape happens in Normalize, not here.
func parseFixedIndices(raw string, ndim int) (map[int]int64, error) {
	out := make(map[int]int64)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return out, nil
	}

	for _, part := range splitNonEmpty(raw, ',') {
		dimStr, idxStr, ok := splitPair(part)
		if !ok {
			return nil, apperrors.InvalidSelection("invalid fixed_indices parameter")
		}
		dim, err := strconv.Atoi(strings.TrimSpace(dimStr))
		if err != nil {
			return nil, apperrors.InvalidSelection("invalid fixed_indices parameter")
		}
		idx, err := strconv.ParseInt(strings.TrimSpace(idxStr), 10, 64)
		if err != nil {
			return nil, apperrors.InvalidSelection("invalid fixed_indices parameter")
		}
		dim = resolveAxis(dim, ndim)
		if dim < 0 || dim >= ndim {
			return nil, apperrors.InvalidSelection("fixed_indices dim out of range")
		}
		out[dim] = idx
	}
	return out, nil
}

// LineDim is the parsed form of the data endpoint's line_dim parameter: an
// explicit axis index for ndim>=1, or the symbolic "row"/"col" for the
// row-col (display_dims-relative) case.
type LineDim struct {
	IsAxis bool
	Axis   int
	Symbol string // "row" | "col", when !IsAxis
}

// ParseLineDim parses line_dim, which is either "row"/"col" or an integer
// axis (possibly negative).
func ParseLineDim(raw string, ndim int) (*LineDim, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	lowered := strings.ToLower(raw)
	if lowered == "row" || lowered == "col" {
		return &LineDim{Symbol: lowered}, nil
	}
	dim, err := strconv.Atoi(lowered)
	if err != nil {
		return nil, apperrors.InvalidSelection("invalid line_dim parameter")
	}
	dim = resolveAxis(dim, ndim)
	if dim < 0 || dim >= ndim {
		return nil, apperrors.InvalidSelection("line_dim out of range")
	}
	return &LineDim{IsAxis: true, Axis: dim}, nil
}

// ParseBool parses the service's boolean query convention:
// 1/true/yes/on and 0/false/no/off (case-insensitive).
func ParseBool(raw string, name string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, apperrors.InvalidSelection("invalid %s parameter", name)
	}
}

func resolveAxis(dim, ndim int) int {
	if dim < 0 {
		return ndim + dim
	}
	return dim
}

func splitNonEmpty(s string, sep byte) []string {
	var out []string
	for _, part := range strings.Split(s, string(sep)) {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func splitPair(s string) (key, value string, ok bool) {
	if i := strings.Index(s, "="); i >= 0 {
		return s[:i], s[i+1:], true
	}
	if i := strings.Index(s, ":"); i >= 0 {
		return s[:i], s[i+1:], true
	}
	return "", "", false
}
