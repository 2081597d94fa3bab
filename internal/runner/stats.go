package runner

import (
	"math"
	"time"

	"github.com/ceipp/crystalverify/internal/model"
)

// ComputeStatistics derives corpus-level aggregates from the full result
// set. Statistics are never authoritative: they can be recomputed at any
// time from the persisted records.
func ComputeStatistics(results []model.ImageVerificationRecord, errors int) model.CorpusStatistics {
	stats := model.CorpusStatistics{
		TotalProcessed:  len(results),
		Errors:          errors,
		ByPhase:         make(map[string]*model.PhaseStats),
		Confidence:      make(map[model.ConfidenceLevel]int),
		InvalidByPrompt: make(map[string]int),
		GeneratedAt:     time.Now().UTC(),
	}

	phaseMatches := 0
	captionMatches := 0
	totalValid := 0
	totalInvalid := 0

	for _, r := range results {
		phase := r.ExpectedPhase
		if phase == "" {
			phase = "unknown"
		}
		ps, ok := stats.ByPhase[phase]
		if !ok {
			ps = &model.PhaseStats{}
			stats.ByPhase[phase] = ps
		}
		ps.Total++

		summary := r.Summary
		if summary.PhaseMatch != nil && *summary.PhaseMatch {
			phaseMatches++
			ps.PhaseMatch++
		}
		if summary.CaptionAccurate != nil && *summary.CaptionAccurate {
			captionMatches++
			ps.CaptionAccurate++
		}
		if summary.NeedsReview {
			stats.NeedsReviewCount++
			ps.NeedsReview++
		}

		level := summary.Confidence
		if level == "" {
			level = model.ConfidenceLow
		}
		stats.Confidence[level]++

		totalValid += r.Validation.ValidResponses
		totalInvalid += r.Validation.InvalidResponses

		for promptID, answer := range r.Answers {
			if answer.Status == model.CallSuccess && answer.ValidationStatus == model.ValidationInvalid {
				stats.InvalidByPrompt[promptID+"_"+string(answer.Kind)]++
			}
		}
	}

	if len(results) > 0 {
		stats.PhaseMatchRate = round4(float64(phaseMatches) / float64(len(results)))
		stats.CaptionAccuracyRate = round4(float64(captionMatches) / float64(len(results)))
	}

	stats.Validation.TotalValid = totalValid
	stats.Validation.TotalInvalid = totalInvalid
	if total := totalValid + totalInvalid; total > 0 {
		stats.Validation.AvgRate = round1(float64(totalValid) / float64(total) * 100)
	}

	stats.Successful = len(results) - stats.NeedsReviewCount

	return stats
}

// NeedsReview filters the records flagged for human review.
func NeedsReview(results []model.ImageVerificationRecord) []model.ImageVerificationRecord {
	var flagged []model.ImageVerificationRecord
	for _, r := range results {
		if r.Summary.NeedsReview {
			flagged = append(flagged, r)
		}
	}
	return flagged
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
