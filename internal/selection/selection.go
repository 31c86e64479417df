// Package selection normalizes client-supplied selection parameters
// (display dims, fixed indices, mode/quality/detail flags) against a
// dataset's shape into a canonical, already-validated Selection. Downstream
// code (planner, preview, data engine) may assume every invariant below
// holds; this package is the sole gatekeeper of selection legality.
package selection

import (
	"math"

	"github.com/scrapbird/hview/internal/apperrors"
)

// Mode is the display mode requested for a /preview or /data call.
type Mode string

const (
	ModeAuto    Mode = "auto"
	ModeLine    Mode = "line"
	ModeTable   Mode = "table"
	ModeHeatmap Mode = "heatmap"
	ModeMatrix  Mode = "matrix"
)

// Detail controls a preview's default verbosity.
type Detail string

const (
	DetailFast Detail = "fast"
	DetailFull Detail = "full"
)

// Quality controls a line window's downsampling behavior.
type Quality string

const (
	QualityAuto     Quality = "auto"
	QualityExact    Quality = "exact"
	QualityOverview Quality = "overview"
)

// MaxLineExactPoints is the hard ceiling on "exact" quality line windows,
// and the threshold auto-quality uses to pick exact vs. overview.
const MaxLineExactPoints = 20_000

// Selection is the canonical, validated selection. Its invariants (checked
// by Normalize and never re-checked downstream):
//   - DisplayDims, when present, hold two distinct axes in [0, ndim).
//   - FixedIndices has exactly one entry per axis not in DisplayDims.
//   - Every FixedIndices value is in [0, shape[axis]).
type Selection struct {
	NDim        int
	Shape       []int64
	DisplayDims *[2]int
	FixedIndices map[int]int64
}

// RawParams are the as-received, loosely typed query fields. Callers fill
// in only the fields relevant to their endpoint; zero values mean "absent".
type RawParams struct {
	DisplayDims   string // "d1,d2"
	FixedIndices  string // "d=i,d=i" or "d:i,d:i"
	Mode          string
	Detail        string
	IncludeStats  *bool
	Quality       string
}

// Normalize parses and validates RawParams against shape, producing a
// canonical Selection. This is the semantic-validation half of the
// two-step pipeline: surface parsing happens in parse.go, then normalized
// values are checked here against the dataset's actual shape.
func Normalize(shape []int64, p RawParams) (Selection, error) {
	ndim := len(shape)

	displayDims, err := parseDisplayDims(p.DisplayDims, ndim)
	if err != nil {
		return Selection{}, err
	}

	fixed, err := parseFixedIndices(p.FixedIndices, ndim)
	if err != nil {
		return Selection{}, err
	}

	if displayDims != nil {
		delete(fixed, displayDims[0])
		delete(fixed, displayDims[1])
	}

	for dim, idx := range fixed {
		size := shape[dim]
		if size <= 0 {
			fixed[dim] = 0
			continue
		}
		normalized := idx
		if normalized < 0 {
			normalized += size
		}
		if normalized < 0 || normalized >= size {
			return Selection{}, apperrors.InvalidSelection("fixed_indices index out of range for dim %d", dim)
		}
		fixed[dim] = normalized
	}

	for dim := 0; dim < ndim; dim++ {
		if displayDims != nil && (dim == displayDims[0] || dim == displayDims[1]) {
			continue
		}
		if _, ok := fixed[dim]; !ok {
			fixed[dim] = midpoint(shape[dim])
		}
	}

	return Selection{NDim: ndim, Shape: shape, DisplayDims: displayDims, FixedIndices: fixed}, nil
}

func midpoint(size int64) int64 {
	if size <= 0 {
		return 0
	}
	return size / 2
}

// ParseMode validates a mode string, defaulting to ModeAuto.
func ParseMode(raw string) (Mode, error) {
	switch Mode(raw) {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeLine, ModeTable, ModeHeatmap, ModeMatrix:
		return Mode(raw), nil
	default:
		return "", apperrors.InvalidSelection("invalid mode parameter %q", raw)
	}
}

// ParseDetail validates a detail string, defaulting to DetailFull.
func ParseDetail(raw string) (Detail, error) {
	switch Detail(raw) {
	case "":
		return DetailFull, nil
	case DetailFast, DetailFull:
		return Detail(raw), nil
	default:
		return "", apperrors.InvalidSelection("invalid detail parameter %q", raw)
	}
}

// DefaultIncludeStats applies "full implies stats on, fast implies stats
// off" unless the caller explicitly overrode it.
func DefaultIncludeStats(detail Detail, explicit *bool) bool {
	if explicit != nil {
		return *explicit
	}
	return detail == DetailFull
}

// ParseQuality validates a quality string, defaulting to QualityAuto.
func ParseQuality(raw string) (Quality, error) {
	switch Quality(raw) {
	case "":
		return QualityAuto, nil
	case QualityAuto, QualityExact, QualityOverview:
		return Quality(raw), nil
	default:
		return "", apperrors.InvalidSelection("invalid quality parameter %q", raw)
	}
}

// ResolveQuality applies quality=auto's rule: exact when the requested
// window fits under MaxLineExactPoints, else overview. Returns an error
// when quality=exact was requested explicitly but the window is too large.
func ResolveQuality(requested Quality, windowPoints int64) (Quality, error) {
	switch requested {
	case QualityExact:
		if windowPoints > MaxLineExactPoints {
			return "", apperrors.InvalidSelection(
				"Exact line window exceeds %d points. Reduce line_limit/zoom window or use quality=overview.",
				MaxLineExactPoints,
			)
		}
		return QualityExact, nil
	case QualityOverview:
		return QualityOverview, nil
	default:
		if windowPoints <= MaxLineExactPoints {
			return QualityExact, nil
		}
		return QualityOverview, nil
	}
}

// CeilDiv computes ceil(a/b) for positive a, b using integer arithmetic to
// avoid float rounding at the scale these windows can reach.
func CeilDiv(a, b int64) int64 {
	if b <= 0 {
		b = 1
	}
	return (a + b - 1) / b
}

// CeilRoot computes ceil(x^(1/root)), the uniform per-axis stride
// formula. Returns 1 when x <= 1 or root <= 0.
func CeilRoot(x float64, root int) int64 {
	if x <= 1 || root <= 0 {
		return 1
	}
	v := math.Pow(x, 1/float64(root))
	return int64(math.Ceil(v))
}
