package planner

import (
	"testing"

	"github.com/scrapbird/hview/internal/apperrors"
)

func TestPlanMatrix_ClampsLimitsToAxisBounds(t *testing.T) {
	plan, err := PlanMatrix(0, 1, 10, 20, 5, 100, 0, 100, 1, 1, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.RowLimit != 5 {
		t.Fatalf("expected row limit clamped to 5, got %d", plan.RowLimit)
	}
	if plan.ColLimit != 20 {
		t.Fatalf("expected col limit clamped to 20, got %d", plan.ColLimit)
	}
	if plan.OutRows != 5 || plan.OutCols != 20 {
		t.Fatalf("unexpected out shape: %d x %d", plan.OutRows, plan.OutCols)
	}
}

func TestPlanMatrix_RejectsOversizedLimits(t *testing.T) {
	_, err := PlanMatrix(0, 1, 10000, 10000, 0, 3000, 0, 3000, 1, 1, nil)
	if apperrors.KindOf(err) != apperrors.KindCapExceeded {
		t.Fatalf("expected CapExceeded, got %v", err)
	}
}

func TestPlanMatrix_NeedsTransposeWhenRowDimGreater(t *testing.T) {
	plan, err := PlanMatrix(2, 1, 10, 10, 0, 5, 0, 5, 1, 1, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !plan.NeedsTranspose {
		t.Fatalf("expected needs_transpose when row_dim > col_dim")
	}
}

func TestPlanHeatmap_ClampsForLargeDataset(t *testing.T) {
	// S4: shape [5000,5000], max_size=1024 -> effective_max_size=707, clamped=true.
	plan, err := PlanHeatmap(0, 1, 5000, 5000, 1024, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.EffectiveMaxSize != 707 {
		t.Fatalf("expected effective max size 707, got %d", plan.EffectiveMaxSize)
	}
	if !plan.MaxSizeClamped {
		t.Fatalf("expected max_size_clamped=true")
	}
	if plan.TargetRows*plan.TargetCols > MaxJSONElements {
		t.Fatalf("projected cells exceed cap: %d", plan.TargetRows*plan.TargetCols)
	}
}

func TestPlanHeatmap_NoClampForSmallDataset(t *testing.T) {
	plan, err := PlanHeatmap(0, 1, 100, 100, 512, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.MaxSizeClamped {
		t.Fatalf("did not expect clamping for a small dataset")
	}
	if plan.EffectiveMaxSize != 512 {
		t.Fatalf("expected effective size 512, got %d", plan.EffectiveMaxSize)
	}
}

func TestPlanHeatmap_RejectsMaxSizeOverCeiling(t *testing.T) {
	_, err := PlanHeatmap(0, 1, 100, 100, MaxHeatmapSize+1, true)
	if apperrors.KindOf(err) != apperrors.KindInvalidSelection {
		t.Fatalf("expected InvalidSelection, got %v", err)
	}
}

func TestPlanLine_OverviewDownsamples(t *testing.T) {
	// S2: shape [5_000_000], line mode -> overview, step=1000, <=5000 points.
	plan, err := PlanLine("dim", 0, 0, 0, -1, 5_000_000, "overview", MaxLinePoints, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.QualityApplied != "overview" {
		t.Fatalf("expected overview, got %s", plan.QualityApplied)
	}
	if plan.Step != 1000 {
		t.Fatalf("expected step 1000, got %d", plan.Step)
	}
	if plan.OutputPoints > MaxLinePoints {
		t.Fatalf("expected output points <= %d, got %d", MaxLinePoints, plan.OutputPoints)
	}
	if plan.Limit != 5_000_000 {
		t.Fatalf("expected line_limit 5000000, got %d", plan.Limit)
	}
}

func TestPlanLine_ExactRespectsStep1(t *testing.T) {
	plan, err := PlanLine("dim", 0, 0, 0, 100, 1000, "exact", MaxLinePoints, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Step != 1 {
		t.Fatalf("expected step 1 for exact quality, got %d", plan.Step)
	}
}

func TestPlanLine_OutputWithinMaxPoints(t *testing.T) {
	plan, err := PlanLine("dim", 0, 0, 0, -1, 20_000, "overview", MaxLinePoints, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.OutputPoints > MaxLinePoints {
		t.Fatalf("returned points %d exceed max_points %d", plan.OutputPoints, MaxLinePoints)
	}
}

func TestEnforceElementLimits(t *testing.T) {
	if err := EnforceElementLimits(100); err != nil {
		t.Fatalf("unexpected error for small count: %v", err)
	}
	err := EnforceElementLimits(MaxJSONElements + 1)
	if apperrors.KindOf(err) != apperrors.KindCapExceeded {
		t.Fatalf("expected CapExceeded, got %v", err)
	}
}

func TestStatsSampleStride(t *testing.T) {
	if StatsSampleStride(100, 2) != 1 {
		t.Fatalf("expected stride 1 for small dataset")
	}
	stride := StatsSampleStride(1_000_000_000, 2)
	if stride < 2 {
		t.Fatalf("expected stride > 1 for large dataset, got %d", stride)
	}
}
