package model

import "time"

// ConfidenceLevel is the tri-valued outcome of the weighted scoring function.
type ConfidenceLevel string

const (
	ConfidenceHigh    ConfidenceLevel = "high"
	ConfidenceMedium  ConfidenceLevel = "medium"
	ConfidenceLow     ConfidenceLevel = "low"
	ConfidenceUnknown ConfidenceLevel = "unknown"
)

// VerificationSummary holds the derived fields for one image. It is a pure
// function of the image's validated answers and its expected phase, so it can
// be recomputed at any time from stored raw data.
type VerificationSummary struct {
	TotalPrompts      int `json:"total_prompts"`
	SuccessfulPrompts int `json:"successful_prompts"`
	ValidResponses    int `json:"valid_responses"`

	PhaseMatch         *bool  `json:"phase_match"`
	CaptionAccurate    *bool  `json:"caption_accurate"`
	ParticlesVisible   *bool  `json:"particles_visible"`
	CrystalClarity     *int   `json:"crystal_clarity_score"`
	OverallScore       *int   `json:"overall_score"`
	GrowthPercentage   *int   `json:"growth_percentage,omitempty"`
	PredictedPhase     string `json:"predicted_phase,omitempty"`
	ParticleCount      string `json:"particle_count,omitempty"`
	ParticleCountNorm  string `json:"particle_count_normalized,omitempty"`
	LiquidClarity      string `json:"liquid_clarity,omitempty"`

	ConfidencePoints int             `json:"confidence_points"`
	ConfidenceMax    int             `json:"confidence_max"`
	ConfidencePct    float64         `json:"confidence_pct"`
	Confidence       ConfidenceLevel `json:"confidence_level"`
	NeedsReview      bool            `json:"needs_review"`
}

// ValidRatio returns valid responses over successful prompts (0 when no
// prompt succeeded).
func (s VerificationSummary) ValidRatio() float64 {
	if s.SuccessfulPrompts == 0 {
		return 0
	}
	return float64(s.ValidResponses) / float64(s.SuccessfulPrompts)
}

// ValidationStats summarizes parse outcomes per image.
type ValidationStats struct {
	ValidResponses   int     `json:"valid_responses"`
	InvalidResponses int     `json:"invalid_responses"`
	ValidationRate   float64 `json:"validation_rate"` // percentage, one decimal
}

// ImageVerificationRecord is the complete result for one image. Once an image
// name appears in the persisted result set the record is final unless
// explicitly rescored.
type ImageVerificationRecord struct {
	ImagePath       string                     `json:"image_path"`
	ImageName       string                     `json:"image_name"`
	ExpectedPhase   string                     `json:"expected_phase"`
	ExpectedCaption string                     `json:"expected_caption"`
	Answers         map[string]ValidatedAnswer `json:"verification_results"`
	Summary         VerificationSummary        `json:"verification_summary"`
	Validation      ValidationStats            `json:"validation_stats"`
	Timestamp       time.Time                  `json:"timestamp"`
}
