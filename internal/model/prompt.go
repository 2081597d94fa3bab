package model

// AnswerKind describes the expected shape of a verification answer.
type AnswerKind string

const (
	AnswerYesNo          AnswerKind = "yes_no"         // "yes" or "no" somewhere in the text
	AnswerBoundedScore   AnswerKind = "score"          // integer inside a declared range
	AnswerClassification AnswerKind = "classification" // one of a small canonical vocabulary
	AnswerFreeText       AnswerKind = "description"    // free text, rejected only for known non-answers
)

// VerificationPrompt is a single question in the catalog. Prompts are defined
// once at process start and never mutated.
type VerificationPrompt struct {
	ID            string     `json:"id"`
	Template      string     `json:"prompt"`          // question text with named placeholders
	Kind          AnswerKind `json:"response_type"`
	PhaseSpecific bool       `json:"phase_specific,omitempty"`

	// ScoreMin/ScoreMax declare the accepted range for bounded-score prompts.
	ScoreMin int `json:"score_min,omitempty"`
	ScoreMax int `json:"score_max,omitempty"`
}
