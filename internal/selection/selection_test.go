package selection

import (
	"testing"

	"github.com/scrapbird/hview/internal/apperrors"
)

func TestNormalize_DefaultsDisplayDimsToLastTwo(t *testing.T) {
	shape := []int64{4, 5, 6}
	sel, err := Normalize(shape, RawParams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sel.DisplayDims == nil || *sel.DisplayDims != [2]int{1, 2} {
		t.Fatalf("expected display dims (1,2), got %+v", sel.DisplayDims)
	}
	if idx, ok := sel.FixedIndices[0]; !ok || idx != 2 {
		t.Fatalf("expected dim 0 fixed at midpoint 2, got %v ok=%v", idx, ok)
	}
}

func TestNormalize_NoDisplayDimsBelowTwoDims(t *testing.T) {
	sel, err := Normalize([]int64{10}, RawParams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sel.DisplayDims != nil {
		t.Fatalf("expected nil display dims for 1-d shape, got %+v", sel.DisplayDims)
	}
}

func TestNormalize_ExplicitDisplayDimsAndFixedIndices(t *testing.T) {
	shape := []int64{3, 4, 5}
	sel, err := Normalize(shape, RawParams{DisplayDims: "0,2", FixedIndices: "1=3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *sel.DisplayDims != [2]int{0, 2} {
		t.Fatalf("unexpected display dims: %+v", sel.DisplayDims)
	}
	if sel.FixedIndices[1] != 3 {
		t.Fatalf("expected fixed index 3 at dim 1, got %v", sel.FixedIndices[1])
	}
}

func TestNormalize_NegativeDisplayDimsWrap(t *testing.T) {
	shape := []int64{3, 4, 5}
	sel, err := Normalize(shape, RawParams{DisplayDims: "-2,-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *sel.DisplayDims != [2]int{1, 2} {
		t.Fatalf("expected wrapped dims (1,2), got %+v", sel.DisplayDims)
	}
}

func TestNormalize_DuplicateDisplayDimsRejected(t *testing.T) {
	_, err := Normalize([]int64{3, 4}, RawParams{DisplayDims: "0,0"})
	if apperrors.KindOf(err) != apperrors.KindInvalidSelection {
		t.Fatalf("expected InvalidSelection, got %v", err)
	}
}

func TestNormalize_FixedIndexOutOfRange(t *testing.T) {
	_, err := Normalize([]int64{3, 4, 5}, RawParams{FixedIndices: "0=99"})
	if apperrors.KindOf(err) != apperrors.KindInvalidSelection {
		t.Fatalf("expected InvalidSelection, got %v", err)
	}
}

func TestNormalize_NegativeFixedIndexWraps(t *testing.T) {
	sel, err := Normalize([]int64{3, 4, 5}, RawParams{DisplayDims: "1,2", FixedIndices: "0=-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sel.FixedIndices[0] != 2 {
		t.Fatalf("expected dim 0 to wrap to 2, got %v", sel.FixedIndices[0])
	}
}

func TestParseMode_DefaultsToAuto(t *testing.T) {
	m, err := ParseMode("")
	if err != nil || m != ModeAuto {
		t.Fatalf("expected auto, got %v err=%v", m, err)
	}
}

func TestParseMode_Invalid(t *testing.T) {
	_, err := ParseMode("bogus")
	if apperrors.KindOf(err) != apperrors.KindInvalidSelection {
		t.Fatalf("expected InvalidSelection, got %v", err)
	}
}

func TestDefaultIncludeStats(t *testing.T) {
	if !DefaultIncludeStats(DetailFull, nil) {
		t.Fatalf("expected true for full detail with no override")
	}
	if DefaultIncludeStats(DetailFast, nil) {
		t.Fatalf("expected false for fast detail with no override")
	}
	f := false
	if DefaultIncludeStats(DetailFull, &f) {
		t.Fatalf("expected explicit override to win")
	}
}

func TestResolveQuality_AutoPicksExactUnderThreshold(t *testing.T) {
	q, err := ResolveQuality(QualityAuto, 100)
	if err != nil || q != QualityExact {
		t.Fatalf("expected exact, got %v err=%v", q, err)
	}
}

func TestResolveQuality_AutoPicksOverviewOverThreshold(t *testing.T) {
	q, err := ResolveQuality(QualityAuto, MaxLineExactPoints+1)
	if err != nil || q != QualityOverview {
		t.Fatalf("expected overview, got %v err=%v", q, err)
	}
}

func TestResolveQuality_ExactRejectsOversizedWindow(t *testing.T) {
	_, err := ResolveQuality(QualityExact, MaxLineExactPoints+1)
	if apperrors.KindOf(err) != apperrors.KindInvalidSelection {
		t.Fatalf("expected InvalidSelection, got %v", err)
	}
}

func TestResolveQuality_OverviewAlwaysAccepted(t *testing.T) {
	q, err := ResolveQuality(QualityOverview, MaxLineExactPoints*100)
	if err != nil || q != QualityOverview {
		t.Fatalf("expected overview, got %v err=%v", q, err)
	}
}

func TestParseDisplayDims_EmptyBelowTwoDims(t *testing.T) {
	dims, err := parseDisplayDims("", 1)
	if err != nil || dims != nil {
		t.Fatalf("expected nil,nil for ndim<2, got %v %v", dims, err)
	}
}

func TestParseFixedIndices_ColonSeparator(t *testing.T) {
	out, err := parseFixedIndices("0:1,2:3", 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0] != 1 || out[2] != 3 {
		t.Fatalf("unexpected parse result: %+v", out)
	}
}

func TestParseLineDim_RowCol(t *testing.T) {
	ld, err := ParseLineDim("row", 3)
	if err != nil || ld == nil || ld.Symbol != "row" {
		t.Fatalf("expected row symbol, got %+v err=%v", ld, err)
	}
}

func TestParseLineDim_Axis(t *testing.T) {
	ld, err := ParseLineDim("-1", 3)
	if err != nil || ld == nil || !ld.IsAxis || ld.Axis != 2 {
		t.Fatalf("expected axis 2, got %+v err=%v", ld, err)
	}
}

func TestParseBool(t *testing.T) {
	v, err := ParseBool("yes", "include_stats")
	if err != nil || !v {
		t.Fatalf("expected true, got %v err=%v", v, err)
	}
	_, err = ParseBool("maybe", "include_stats")
	if apperrors.KindOf(err) != apperrors.KindInvalidSelection {
		t.Fatalf("expected InvalidSelection, got %v", err)
	}
}

func TestCeilDivAndCeilRoot(t *testing.T) {
	if CeilDiv(10, 3) != 4 {
		t.Fatalf("expected 4")
	}
	if CeilRoot(100, 2) != 10 {
		t.Fatalf("expected 10")
	}
	if CeilRoot(0, 2) != 1 {
		t.Fatalf("expected fallback to 1")
	}
}
