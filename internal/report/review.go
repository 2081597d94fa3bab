package report

import (
	"fmt"
	"io"

	"github.com/ceipp/crystalverify/internal/model"
)

// ReviewBreakdown summarizes why low-confidence records failed, to guide
// manual review of the flagged images.
type ReviewBreakdown struct {
	Total            int            `json:"total"`
	ByPhase          map[string]int `json:"by_phase"`
	InvalidByPrompt  map[string]int `json:"invalid_by_prompt"`
	FailedCalls      int            `json:"failed_calls"`
	AvgConfidencePct float64        `json:"avg_confidence_pct"`
	AvgValidRatio    float64        `json:"avg_valid_ratio"`
}

// AnalyzeReview builds a breakdown over the records flagged for review.
func AnalyzeReview(records []model.ImageVerificationRecord) ReviewBreakdown {
	breakdown := ReviewBreakdown{
		ByPhase:         map[string]int{},
		InvalidByPrompt: map[string]int{},
	}

	pctSum := 0.0
	ratioSum := 0.0
	for _, rec := range records {
		if !rec.Summary.NeedsReview {
			continue
		}
		breakdown.Total++
		breakdown.ByPhase[rec.ExpectedPhase]++
		pctSum += rec.Summary.ConfidencePct
		ratioSum += rec.Summary.ValidRatio()

		for promptID, answer := range rec.Answers {
			if answer.Status == model.CallError {
				breakdown.FailedCalls++
			}
			if answer.ValidationStatus == model.ValidationInvalid {
				breakdown.InvalidByPrompt[promptID]++
			}
		}
	}

	if breakdown.Total > 0 {
		breakdown.AvgConfidencePct = pctSum / float64(breakdown.Total)
		breakdown.AvgValidRatio = ratioSum / float64(breakdown.Total)
	}
	return breakdown
}

// WriteReview prints the review breakdown
func WriteReview(w io.Writer, breakdown ReviewBreakdown) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "  Review Queue\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Flagged:          %d images\n", breakdown.Total)
	fmt.Fprintf(w, "  Failed calls:     %d\n", breakdown.FailedCalls)
	fmt.Fprintf(w, "  Avg confidence:   %.1f%%\n", breakdown.AvgConfidencePct)
	fmt.Fprintf(w, "  Avg valid ratio:  %.2f\n", breakdown.AvgValidRatio)
	fmt.Fprintf(w, "\n")

	if len(breakdown.ByPhase) > 0 {
		fmt.Fprintf(w, "  By phase:\n")
		for _, phase := range sortedKeys(breakdown.ByPhase) {
			fmt.Fprintf(w, "    %-14s %d\n", phase, breakdown.ByPhase[phase])
		}
		fmt.Fprintf(w, "\n")
	}

	if len(breakdown.InvalidByPrompt) > 0 {
		fmt.Fprintf(w, "  Invalid answers by prompt:\n")
		for _, promptID := range sortedKeys(breakdown.InvalidByPrompt) {
			fmt.Fprintf(w, "    %-24s %d\n", promptID, breakdown.InvalidByPrompt[promptID])
		}
		fmt.Fprintf(w, "\n")
	}
}
