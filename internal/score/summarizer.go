package score

import (
	"math"
	"strings"

	"github.com/ceipp/crystalverify/internal/catalog"
	"github.com/ceipp/crystalverify/internal/model"
)

// Level thresholds. High and medium each require BOTH a confidence
// percentage and a minimum valid-response ratio, so a high score built on
// mostly-invalid responses cannot mask low-confidence data.
const (
	highPctThreshold     = 60.0
	highRatioThreshold   = 0.6
	mediumPctThreshold   = 40.0
	mediumRatioThreshold = 0.5
	validRatioBonusFloor = 0.7
)

// Summarizer folds validated answers into a confidence-scored summary.
// It is pure: the same answers and expected phase always produce a
// bit-identical summary.
type Summarizer struct{}

// NewSummarizer creates a new summarizer.
func NewSummarizer() *Summarizer {
	return &Summarizer{}
}

// Summarize derives the per-image summary from validated answers. Only
// successful calls count toward successful prompts; only valid answers
// contribute to scoring fields.
func (s *Summarizer) Summarize(answers map[string]model.ValidatedAnswer, expectedPhase string) model.VerificationSummary {
	summary := model.VerificationSummary{
		TotalPrompts: len(answers),
		Confidence:   model.ConfidenceUnknown,
	}

	for promptID, answer := range answers {
		if answer.Status != model.CallSuccess {
			continue
		}
		summary.SuccessfulPrompts++

		if answer.ValidationStatus != model.ValidationValid {
			continue
		}
		summary.ValidResponses++

		s.applyAnswer(&summary, promptID, answer)
	}

	s.scoreConfidence(&summary, expectedPhase)
	return summary
}

// applyAnswer folds one valid answer into its derived summary field.
func (s *Summarizer) applyAnswer(summary *model.VerificationSummary, promptID string, answer model.ValidatedAnswer) {
	switch promptID {
	case catalog.PromptPhaseCorrect:
		if b, ok := answer.CleanedValue.(bool); ok {
			summary.PhaseMatch = &b
		}

	case catalog.PromptCaptionAccurate:
		if b, ok := answer.CleanedValue.(bool); ok {
			summary.CaptionAccurate = &b
		}

	case catalog.PromptInfoCorrect:
		if b, ok := answer.CleanedValue.(bool); ok {
			summary.ParticlesVisible = &b
		}

	case catalog.PromptCrystalClarity:
		if n, ok := answer.CleanedValue.(int); ok {
			summary.CrystalClarity = &n
		}

	case catalog.PromptOverallVerification:
		if n, ok := answer.CleanedValue.(int); ok {
			summary.OverallScore = &n
		}

	case catalog.PromptGrowthEstimation:
		if n, ok := answer.CleanedValue.(int); ok {
			summary.GrowthPercentage = &n
		}

	case catalog.PromptPhaseClassification:
		if v, ok := answer.CleanedValue.(string); ok {
			summary.PredictedPhase = predictPhase(v)
		}

	case catalog.PromptLiquidClarity:
		if v, ok := answer.CleanedValue.(string); ok {
			summary.LiquidClarity = v
		}

	case catalog.PromptCrystalCount:
		summary.ParticleCount = strings.ToLower(strings.TrimSpace(answer.Response))
		if v, ok := answer.CleanedValue.(string); ok {
			summary.ParticleCountNorm = v
		}
	}
}

// predictPhase maps a normalized classification value to a phase name. A
// literal phase name in the value takes precedence over the phrase mapping,
// first phase in canonical order wins.
func predictPhase(value string) string {
	for _, phase := range catalog.Phases() {
		if strings.Contains(value, phase) {
			return phase
		}
	}

	switch {
	case strings.Contains(value, "clear liquid"),
		strings.Contains(value, "clear") && !strings.Contains(value, "liquid"):
		return catalog.PhaseUnsaturated
	case strings.Contains(value, "cloudy"):
		return catalog.PhaseLabile
	case strings.Contains(value, "small particle"), strings.Contains(value, "particle"):
		return catalog.PhaseIntermediate
	case strings.Contains(value, "large crystal"), strings.Contains(value, "crystal"):
		return catalog.PhaseMetastable
	}
	return ""
}

// scoreConfidence computes the six-criterion confidence score with running
// point and max accumulators: max only grows for criteria that were
// attempted, keeping percentages comparable across images with partially
// missing data.
func (s *Summarizer) scoreConfidence(summary *model.VerificationSummary, expectedPhase string) {
	points := 0
	maxPoints := 0

	// 1. Direct phase question answered.
	if summary.PhaseMatch != nil {
		maxPoints += 2
		if *summary.PhaseMatch {
			points += 2
		}
	}

	// 2. Predicted phase agrees with the expected label.
	if summary.PredictedPhase != "" {
		maxPoints += 2
		if summary.PredictedPhase == expectedPhase {
			points += 2
		}
	}

	// 3. Overall quality score, graded.
	if summary.OverallScore != nil {
		maxPoints += 3
		switch {
		case *summary.OverallScore >= 5:
			points += 3
		case *summary.OverallScore >= 3:
			points += 2
		default:
			points++
		}
	}

	// 4. Particle clarity score, graded.
	if summary.CrystalClarity != nil {
		maxPoints += 2
		switch {
		case *summary.CrystalClarity >= 3:
			points += 2
		case *summary.CrystalClarity >= 2:
			points++
		}
	}

	// 5. Particle count parsed to a known category.
	if summary.ParticleCountNorm != "" && summary.ParticleCountNorm != "unknown" {
		maxPoints++
		points++
	}

	// 6. Valid-response ratio bonus, always applicable.
	maxPoints++
	validRatio := summary.ValidRatio()
	if validRatio >= validRatioBonusFloor {
		points++
	}

	pct := 0.0
	if maxPoints > 0 {
		pct = float64(points) / float64(maxPoints) * 100
	}
	pct = math.Round(pct*10) / 10

	summary.ConfidencePoints = points
	summary.ConfidenceMax = maxPoints
	summary.ConfidencePct = pct

	switch {
	case pct >= highPctThreshold && validRatio >= highRatioThreshold:
		summary.Confidence = model.ConfidenceHigh
		summary.NeedsReview = false
	case pct >= mediumPctThreshold && validRatio >= mediumRatioThreshold:
		summary.Confidence = model.ConfidenceMedium
		summary.NeedsReview = false
	default:
		summary.Confidence = model.ConfidenceLow
		summary.NeedsReview = true
	}
}
