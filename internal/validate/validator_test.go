package validate

import (
	"testing"

	"github.com/ceipp/crystalverify/internal/catalog"
	"github.com/ceipp/crystalverify/internal/model"
)

func TestValidator_Validate_YesNo(t *testing.T) {
	v := NewValidator(catalog.Default())

	tests := []struct {
		name     string
		text     string
		wantOK   bool
		wantBool bool
	}{
		{"plain yes", "yes", true, true},
		{"plain no", "no", true, false},
		{"yes in sentence", "Yes, the image shows a labile state.", true, true},
		{"no in sentence", "No particles are visible.", true, false},
		{"yes wins over no", "yes, but no crystals formed yet", true, true},
		{"hedge is invalid", "maybe", false, false},
		{"empty is invalid", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, cleaned := v.Validate(tt.text, model.AnswerYesNo, catalog.PromptPhaseCorrect)
			if ok != tt.wantOK {
				t.Errorf("Expected ok=%v for %q, got %v", tt.wantOK, tt.text, ok)
			}
			if ok {
				b, isBool := cleaned.(bool)
				if !isBool {
					t.Fatalf("Expected bool cleaned value, got %T", cleaned)
				}
				if b != tt.wantBool {
					t.Errorf("Expected %v for %q, got %v", tt.wantBool, tt.text, b)
				}
			}
		})
	}
}

func TestValidator_Validate_BoundedScore(t *testing.T) {
	v := NewValidator(catalog.Default())

	tests := []struct {
		name     string
		text     string
		promptID string
		wantOK   bool
		wantInt  int
	}{
		{"bare digit", "3", catalog.PromptCrystalClarity, true, 3},
		{"digit in sentence", "I would rate it 4 out of 5.", catalog.PromptCrystalClarity, true, 4},
		{"first in-range wins", "3 out of 5", catalog.PromptCrystalClarity, true, 3},
		{"out of range", "7", catalog.PromptCrystalClarity, false, 0},
		{"percentage", "about 85 percent", catalog.PromptGrowthEstimation, true, 85},
		{"ten scale", "8/10", catalog.PromptOverallVerification, true, 8},
		{"zero percent", "0", catalog.PromptGrowthEstimation, true, 0},
		{"no number", "quite clear", catalog.PromptCrystalClarity, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, cleaned := v.Validate(tt.text, model.AnswerBoundedScore, tt.promptID)
			if ok != tt.wantOK {
				t.Errorf("Expected ok=%v for %q, got %v", tt.wantOK, tt.text, ok)
			}
			if ok {
				n, isInt := cleaned.(int)
				if !isInt {
					t.Fatalf("Expected int cleaned value, got %T", cleaned)
				}
				if n != tt.wantInt {
					t.Errorf("Expected %d for %q, got %d", tt.wantInt, tt.text, n)
				}
			}
		})
	}
}

func TestValidator_Validate_PhaseClassification(t *testing.T) {
	v := NewValidator(catalog.Default())

	tests := []struct {
		name    string
		text    string
		wantOK  bool
		wantVal string
	}{
		{"vocabulary phrase", "cloudy liquid", true, "cloudy liquid"},
		{"phrase in sentence", "The image shows small particles suspended in liquid.", true, "small particles"},
		// An explicit phase name overrides the visual-phrase vocabulary.
		{"phase name wins", "I see clear liquid but this is actually labile", true, "labile"},
		{"bare phase name", "metastable", true, "metastable"},
		{"single word fallback", "crystals everywhere", true, "crystals"},
		{"no match", "a green field", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, cleaned := v.Validate(tt.text, model.AnswerClassification, catalog.PromptPhaseClassification)
			if ok != tt.wantOK {
				t.Errorf("Expected ok=%v for %q, got %v", tt.wantOK, tt.text, ok)
			}
			if ok && cleaned != tt.wantVal {
				t.Errorf("Expected %q for %q, got %v", tt.wantVal, tt.text, cleaned)
			}
		})
	}
}

func TestValidator_Validate_CrystalCount(t *testing.T) {
	v := NewValidator(catalog.Default())

	tests := []struct {
		text    string
		wantOK  bool
		wantVal string
	}{
		{"none", true, "none"},
		{"a few particles here and there", true, "few"},
		{"several large ones", true, "some"},
		{"a lot of them", true, "many"},
		{"multiple crystals visible", true, "many"},
		{"0", true, "none"},
		{"no particles at all", true, "none"},
		{"countless", false, ""},
	}

	for _, tt := range tests {
		ok, cleaned := v.Validate(tt.text, model.AnswerClassification, catalog.PromptCrystalCount)
		if ok != tt.wantOK {
			t.Errorf("Expected ok=%v for %q, got %v", tt.wantOK, tt.text, ok)
		}
		if ok && cleaned != tt.wantVal {
			t.Errorf("Expected %q for %q, got %v", tt.wantVal, tt.text, cleaned)
		}
	}
}

func TestValidator_Validate_LiquidClarity(t *testing.T) {
	v := NewValidator(catalog.Default())

	ok, cleaned := v.Validate("The liquid appears clear.", model.AnswerClassification, catalog.PromptLiquidClarity)
	if !ok || cleaned != "clear" {
		t.Errorf("Expected (true, clear), got (%v, %v)", ok, cleaned)
	}

	ok, cleaned = v.Validate("it looks cloudy to me", model.AnswerClassification, catalog.PromptLiquidClarity)
	if !ok || cleaned != "cloudy" {
		t.Errorf("Expected (true, cloudy), got (%v, %v)", ok, cleaned)
	}

	ok, _ = v.Validate("hard to tell", model.AnswerClassification, catalog.PromptLiquidClarity)
	if ok {
		t.Error("Expected ambiguous clarity answer to be invalid")
	}
}

func TestValidator_Validate_FreeText(t *testing.T) {
	v := NewValidator(catalog.Default())

	ok, cleaned := v.Validate("Small translucent particles in a clear solution.", model.AnswerFreeText, catalog.PromptVisualDescription)
	if !ok {
		t.Error("Expected descriptive answer to be valid")
	}
	if cleaned != "small translucent particles in a clear solution." {
		t.Errorf("Expected lower-cased passthrough, got %v", cleaned)
	}

	nonAnswers := []string{
		"I don't know what this is",
		"I have no idea",
		"If you can't see it, neither can I",
		"What do you mean?",
		"I can't determine that",
		"???",
	}
	for _, text := range nonAnswers {
		if ok, _ := v.Validate(text, model.AnswerFreeText, catalog.PromptVisualDescription); ok {
			t.Errorf("Expected non-answer %q to be invalid", text)
		}
	}
}

func TestValidator_Apply_FailedCall(t *testing.T) {
	v := NewValidator(catalog.Default())

	raw := model.RawAnswer{
		Prompt: "Is this image showing a labile state? Answer yes or no.",
		Kind:   model.AnswerYesNo,
		Status: model.CallError,
		Error:  "connection refused",
	}

	out := v.Apply(raw, catalog.PromptPhaseCorrect)
	if out.ValidationStatus != model.ValidationInvalid {
		t.Errorf("Expected failed call to be invalid, got %s", out.ValidationStatus)
	}
	if out.CleanedValue != nil {
		t.Errorf("Expected nil cleaned value for failed call, got %v", out.CleanedValue)
	}
	if out.IsValid() {
		t.Error("Expected IsValid to be false for failed call")
	}
}

func TestValidator_Apply_Success(t *testing.T) {
	v := NewValidator(catalog.Default())

	raw := model.RawAnswer{
		Prompt:   "How clear are the particles? Answer only 1, 2, 3, 4, or 5.",
		Response: "I'd say 4.",
		Kind:     model.AnswerBoundedScore,
		Status:   model.CallSuccess,
	}

	out := v.Apply(raw, catalog.PromptCrystalClarity)
	if !out.IsValid() {
		t.Fatal("Expected answer to be valid")
	}
	if out.CleanedValue != 4 {
		t.Errorf("Expected cleaned value 4, got %v", out.CleanedValue)
	}
}
