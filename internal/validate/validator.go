package validate

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ceipp/crystalverify/internal/catalog"
	"github.com/ceipp/crystalverify/internal/model"
)

var (
	wordNumberRe  = regexp.MustCompile(`\b(\d{1,3})\b`)
	singleDigitRe = regexp.MustCompile(`\b(\d)\b`)

	// Known non-answer shapes for free-text prompts. Matched against the
	// lower-cased response, anchored at the start.
	nonAnswerRes = []*regexp.Regexp{
		regexp.MustCompile(`^i (don't|have no) (know|idea)`),
		regexp.MustCompile(`^if you can't`),
		regexp.MustCompile(`^what do you`),
		regexp.MustCompile(`^i can't`),
		regexp.MustCompile(`^\?+$`),
	}
)

// Validator checks raw model answers against their declared answer kind and
// produces normalized values. It holds no state beyond the catalog's declared
// ranges, is deterministic, and fails closed on absent or empty input.
type Validator struct {
	catalog *catalog.Catalog
}

// NewValidator creates a validator over the given prompt catalog.
func NewValidator(cat *catalog.Catalog) *Validator {
	return &Validator{catalog: cat}
}

// Validate checks a raw answer text against the expected kind for promptID.
// Returns whether the text parsed and the typed normalized value: bool for
// yes/no, int for bounded scores, string for classifications and free text.
func (v *Validator) Validate(text string, kind model.AnswerKind, promptID string) (bool, interface{}) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return false, nil
	}

	switch kind {
	case model.AnswerYesNo:
		return validateYesNo(text)
	case model.AnswerBoundedScore:
		min, max := v.scoreRange(promptID)
		return validateScore(text, min, max)
	case model.AnswerClassification:
		return validateClassification(text, promptID)
	case model.AnswerFreeText:
		return validateFreeText(text)
	}

	// Unknown kind: accept non-empty text as-is.
	return true, text
}

// Apply validates a raw answer and attaches the outcome. Failed calls are
// always invalid with no normalized value.
func (v *Validator) Apply(raw model.RawAnswer, promptID string) model.ValidatedAnswer {
	out := model.ValidatedAnswer{RawAnswer: raw, ValidationStatus: model.ValidationInvalid}
	if raw.Status != model.CallSuccess {
		return out
	}
	ok, cleaned := v.Validate(raw.Response, raw.Kind, promptID)
	if ok {
		out.ValidationStatus = model.ValidationValid
		out.CleanedValue = cleaned
	}
	return out
}

// scoreRange returns the declared range for a bounded-score prompt. Prompts
// not in the catalog get a permissive default.
func (v *Validator) scoreRange(promptID string) (int, int) {
	if p, ok := v.catalog.Lookup(promptID); ok && p.Kind == model.AnswerBoundedScore {
		return p.ScoreMin, p.ScoreMax
	}
	return 0, 999
}

// validateYesNo accepts text containing "yes" or "no". "yes" is checked
// first, so text containing both resolves to true.
func validateYesNo(text string) (bool, interface{}) {
	if strings.Contains(text, "yes") {
		return true, true
	}
	if strings.Contains(text, "no") {
		return true, false
	}
	return false, nil
}

// validateScore extracts the first word-boundary integer token inside
// [min, max]. For the 1-5 range a relaxed single-digit pass is attempted
// before giving up.
func validateScore(text string, min, max int) (bool, interface{}) {
	for _, tok := range wordNumberRe.FindAllString(text, -1) {
		n, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		if n >= min && n <= max {
			return true, n
		}
	}

	if min == 1 && max == 5 {
		if tok := singleDigitRe.FindString(text); tok != "" {
			if n, err := strconv.Atoi(tok); err == nil && n >= 1 && n <= 5 {
				return true, n
			}
		}
	}

	return false, nil
}

// Canonical vocabularies per classification prompt. Order matters: the first
// contained phrase wins.
var phaseClassPhrases = []string{
	"clear liquid", "cloudy liquid", "small particles", "large crystals",
	"clear", "cloudy", "particles", "crystals",
}

// Particle-count categories with accepted synonyms, checked in order.
var particleCountCategories = []struct {
	canonical string
	synonyms  []string
}{
	{"none", []string{"none", "no particle", "not visible"}},
	{"few", []string{"few", "a few"}},
	{"some", []string{"some", "several"}},
	{"many", []string{"many", "lot", "multiple"}},
}

func validateClassification(text string, promptID string) (bool, interface{}) {
	switch promptID {
	case catalog.PromptPhaseClassification:
		// An explicit phase name anywhere in the answer overrides the
		// visual-phrase vocabulary, first phase in canonical order wins.
		for _, phase := range catalog.Phases() {
			if strings.Contains(text, phase) {
				return true, phase
			}
		}
		for _, phrase := range phaseClassPhrases {
			if strings.Contains(text, phrase) {
				return true, phrase
			}
		}
		return false, nil

	case catalog.PromptLiquidClarity:
		if strings.Contains(text, "clear") {
			return true, "clear"
		}
		if strings.Contains(text, "cloudy") {
			return true, "cloudy"
		}
		return false, nil

	case catalog.PromptMaterialType:
		if strings.Contains(text, "photo") {
			return true, "photo"
		}
		if strings.Contains(text, "generated") || strings.Contains(text, "computer") || strings.Contains(text, "simulated") {
			return true, "generated"
		}
		return false, nil

	case catalog.PromptCrystalCount:
		for _, cat := range particleCountCategories {
			for _, syn := range cat.synonyms {
				if strings.Contains(text, syn) {
					return true, cat.canonical
				}
			}
		}
		// Zero phrased numerically or negatively still means none.
		if strings.Contains(text, "0") || strings.Contains(text, "no ") {
			return true, "none"
		}
		return false, nil
	}

	// Generic classification: any non-empty text passes through.
	return true, text
}

func validateFreeText(text string) (bool, interface{}) {
	for _, re := range nonAnswerRes {
		if re.MatchString(text) {
			return false, nil
		}
	}
	return true, text
}
