package catalog

import (
	"strconv"
	"strings"

	"github.com/ceipp/crystalverify/internal/model"
)

// Prompt IDs referenced by the validator and summarizer.
const (
	PromptPhaseCorrect        = "phase_correct"
	PromptCaptionAccurate     = "caption_accurate"
	PromptInfoCorrect         = "info_correct"
	PromptCrystalClarity      = "crystal_clarity"
	PromptPhaseClassification = "phase_classification"
	PromptVisualDescription   = "visual_characteristics"
	PromptGrowthEstimation    = "growth_estimation"
	PromptLiquidClarity       = "growth_to_next_stage"
	PromptImageQuality        = "image_quality"
	PromptCaptionCompleteness = "caption_completeness"
	PromptMaterialType        = "material_type"
	PromptCrystalCount        = "crystal_count"
	PromptOverallVerification = "overall_verification"
)

// Catalog is the static, ordered set of verification questions. Constructed
// once at process start, never mutated.
type Catalog struct {
	prompts []model.VerificationPrompt
	byID    map[string]model.VerificationPrompt
}

// Default returns the full catalog of thirteen verification prompts. The
// questions are phrased for instruction-tuned vision models that answer
// directly rather than echoing the prompt.
func Default() *Catalog {
	prompts := []model.VerificationPrompt{
		{
			ID:            PromptPhaseCorrect,
			Template:      "Is this image showing a {expected_phase} state? Answer yes or no.",
			Kind:          model.AnswerYesNo,
			PhaseSpecific: true,
		},
		{
			ID:       PromptCaptionAccurate,
			Template: "Is this a microscopic or scientific image? Answer yes or no.",
			Kind:     model.AnswerYesNo,
		},
		{
			ID:       PromptInfoCorrect,
			Template: "Are there visible particles or crystals in this image? Answer yes or no.",
			Kind:     model.AnswerYesNo,
		},
		{
			ID:       PromptCrystalClarity,
			Template: "How clear are the particles? Answer only 1, 2, 3, 4, or 5.",
			Kind:     model.AnswerBoundedScore,
			ScoreMin: 1,
			ScoreMax: 5,
		},
		{
			ID:       PromptPhaseClassification,
			Template: "Is this image: clear liquid, cloudy liquid, small particles, or large crystals? Answer one.",
			Kind:     model.AnswerClassification,
		},
		{
			ID:       PromptVisualDescription,
			Template: "Describe what you see in this image in one sentence.",
			Kind:     model.AnswerFreeText,
		},
		{
			ID:       PromptGrowthEstimation,
			Template: "What percentage of the image has visible particles? Answer a number 0 to 100.",
			Kind:     model.AnswerBoundedScore,
			ScoreMin: 0,
			ScoreMax: 100,
		},
		{
			ID:       PromptLiquidClarity,
			Template: "Is the liquid clear or cloudy? Answer clear or cloudy.",
			Kind:     model.AnswerClassification,
		},
		{
			ID:       PromptImageQuality,
			Template: "Rate image sharpness. Answer only 1, 2, 3, 4, or 5.",
			Kind:     model.AnswerBoundedScore,
			ScoreMin: 1,
			ScoreMax: 5,
		},
		{
			ID:       PromptCaptionCompleteness,
			Template: "What objects or substances are visible in this image?",
			Kind:     model.AnswerFreeText,
		},
		{
			ID:       PromptMaterialType,
			Template: "Is this a photograph or computer generated? Answer photo or generated.",
			Kind:     model.AnswerClassification,
		},
		{
			ID:       PromptCrystalCount,
			Template: "How many particles are visible? Answer none, few, some, or many.",
			Kind:     model.AnswerClassification,
		},
		{
			ID:       PromptOverallVerification,
			Template: "Rate this image quality from 1 to 10. Answer only the number.",
			Kind:     model.AnswerBoundedScore,
			ScoreMin: 1,
			ScoreMax: 10,
		},
	}

	byID := make(map[string]model.VerificationPrompt, len(prompts))
	for _, p := range prompts {
		byID[p.ID] = p
	}
	return &Catalog{prompts: prompts, byID: byID}
}

// Prompts returns the ordered prompt list.
func (c *Catalog) Prompts() []model.VerificationPrompt {
	return c.prompts
}

// Lookup returns the prompt with the given ID.
func (c *Catalog) Lookup(id string) (model.VerificationPrompt, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// Select returns the prompts whose IDs appear in ids, in catalog order.
// An empty ids list selects the full catalog.
func (c *Catalog) Select(ids []string) []model.VerificationPrompt {
	if len(ids) == 0 {
		return c.prompts
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []model.VerificationPrompt
	for _, p := range c.prompts {
		if want[p.ID] {
			out = append(out, p)
		}
	}
	return out
}

// Render substitutes the named placeholders in a prompt template with values
// from the caption record.
func (c *Catalog) Render(p model.VerificationPrompt, rec model.CaptionRecord) string {
	phase := rec.Phase
	if phase == "" {
		phase = "unknown"
	}
	growth := "unknown"
	if rec.GrowthPercentage != nil {
		growth = strconv.Itoa(*rec.GrowthPercentage)
	}
	r := strings.NewReplacer(
		"{expected_phase}", phase,
		"{caption}", rec.InitialCaption,
		"{growth_percentage}", growth,
	)
	return r.Replace(p.Template)
}
