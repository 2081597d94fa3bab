package runner

import (
	"testing"

	"github.com/ceipp/crystalverify/internal/model"
)

func statsRecord(phase string, phaseMatch, needsReview bool, level model.ConfidenceLevel, valid, invalid int) model.ImageVerificationRecord {
	return model.ImageVerificationRecord{
		ImageName:     "img.jpg",
		ExpectedPhase: phase,
		Summary: model.VerificationSummary{
			PhaseMatch:  &phaseMatch,
			Confidence:  level,
			NeedsReview: needsReview,
		},
		Validation: model.ValidationStats{
			ValidResponses:   valid,
			InvalidResponses: invalid,
		},
	}
}

func TestComputeStatistics(t *testing.T) {
	results := []model.ImageVerificationRecord{
		statsRecord("labile", true, false, model.ConfidenceHigh, 13, 0),
		statsRecord("labile", true, false, model.ConfidenceMedium, 10, 3),
		statsRecord("labile", false, true, model.ConfidenceLow, 5, 8),
		statsRecord("metastable", true, false, model.ConfidenceHigh, 12, 1),
	}

	stats := ComputeStatistics(results, 2)

	if stats.TotalProcessed != 4 {
		t.Errorf("Expected 4 processed, got %d", stats.TotalProcessed)
	}
	if stats.Errors != 2 {
		t.Errorf("Expected 2 errors, got %d", stats.Errors)
	}
	if stats.Successful != 3 {
		t.Errorf("Expected 3 successful, got %d", stats.Successful)
	}
	if stats.PhaseMatchRate != 0.75 {
		t.Errorf("Expected phase match rate 0.75, got %v", stats.PhaseMatchRate)
	}
	if stats.NeedsReviewCount != 1 {
		t.Errorf("Expected 1 needs-review, got %d", stats.NeedsReviewCount)
	}

	if stats.Confidence[model.ConfidenceHigh] != 2 ||
		stats.Confidence[model.ConfidenceMedium] != 1 ||
		stats.Confidence[model.ConfidenceLow] != 1 {
		t.Errorf("Unexpected confidence distribution: %v", stats.Confidence)
	}

	labile := stats.ByPhase["labile"]
	if labile == nil || labile.Total != 3 || labile.PhaseMatch != 2 || labile.NeedsReview != 1 {
		t.Errorf("Unexpected labile phase stats: %+v", labile)
	}

	if stats.Validation.TotalValid != 40 || stats.Validation.TotalInvalid != 12 {
		t.Errorf("Expected 40/12 validation totals, got %d/%d", stats.Validation.TotalValid, stats.Validation.TotalInvalid)
	}
	// 40 of 52 = 76.9% after rounding.
	if stats.Validation.AvgRate != 76.9 {
		t.Errorf("Expected avg rate 76.9, got %v", stats.Validation.AvgRate)
	}
}

func TestComputeStatistics_Empty(t *testing.T) {
	stats := ComputeStatistics(nil, 0)
	if stats.TotalProcessed != 0 || stats.PhaseMatchRate != 0 || stats.Validation.AvgRate != 0 {
		t.Errorf("Expected zeroed statistics, got %+v", stats)
	}
}

func TestNeedsReview(t *testing.T) {
	results := []model.ImageVerificationRecord{
		statsRecord("labile", true, false, model.ConfidenceHigh, 13, 0),
		statsRecord("labile", false, true, model.ConfidenceLow, 3, 10),
		statsRecord("metastable", false, true, model.ConfidenceLow, 4, 9),
	}

	flagged := NeedsReview(results)
	if len(flagged) != 2 {
		t.Fatalf("Expected 2 flagged records, got %d", len(flagged))
	}
	for _, rec := range flagged {
		if !rec.Summary.NeedsReview {
			t.Error("Expected only flagged records in the review set")
		}
	}
}
