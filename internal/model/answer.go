package model

// CallStatus records whether the answering model produced a response at all.
type CallStatus string

const (
	CallSuccess CallStatus = "success"
	CallError   CallStatus = "error"
)

// ValidationStatus records whether a raw answer parsed into its declared kind.
type ValidationStatus string

const (
	ValidationValid   ValidationStatus = "valid"
	ValidationInvalid ValidationStatus = "invalid"
)

// RawAnswer is the response from the answering model for one (image, prompt)
// pair. Immutable once recorded.
type RawAnswer struct {
	Prompt   string     `json:"prompt"`             // rendered question sent to the model
	Response string     `json:"response,omitempty"` // free text, possibly empty
	Kind     AnswerKind `json:"response_type"`
	Status   CallStatus `json:"status"`
	Error    string     `json:"error,omitempty"`
}

// ValidatedAnswer extends a RawAnswer with its validation outcome.
// CleanedValue is typed per kind: bool (yes/no), int (bounded score), or
// string (classification, free text); nil when invalid or the call failed.
type ValidatedAnswer struct {
	RawAnswer

	ValidationStatus ValidationStatus `json:"validation_status"`
	CleanedValue     interface{}      `json:"cleaned_value"`
}

// IsValid reports whether the answer both succeeded and parsed.
func (a ValidatedAnswer) IsValid() bool {
	return a.Status == CallSuccess && a.ValidationStatus == ValidationValid
}
