package model

import "time"

// CorpusCheckpoint marks which images have completed full processing. Its
// presence on disk signals a resumable paused run; it is removed on clean
// completion. Invariant: ProcessedImages is always a subset of the image
// names present in the persisted result set.
type CorpusCheckpoint struct {
	ProcessedImages []string  `json:"processed_images"`
	LastIndex       int       `json:"last_index"`
	Timestamp       time.Time `json:"timestamp"`
	TotalProcessed  int       `json:"total_processed"`
}

// ProcessedSet returns the processed image names as a lookup set.
func (c *CorpusCheckpoint) ProcessedSet() map[string]bool {
	set := make(map[string]bool, len(c.ProcessedImages))
	for _, name := range c.ProcessedImages {
		set[name] = true
	}
	return set
}

// PhaseStats holds per-phase aggregate counts.
type PhaseStats struct {
	Total           int `json:"total"`
	PhaseMatch      int `json:"phase_match"`
	CaptionAccurate int `json:"caption_accurate"`
	NeedsReview     int `json:"needs_review"`
}

// ValidationTotals aggregates parse outcomes across the corpus.
type ValidationTotals struct {
	TotalValid   int     `json:"total_valid_responses"`
	TotalInvalid int     `json:"total_invalid_responses"`
	AvgRate      float64 `json:"avg_validation_rate"` // percentage, one decimal
}

// CorpusStatistics is derived from the full result set and never
// authoritative: it can be recomputed at any time.
type CorpusStatistics struct {
	TotalProcessed      int                       `json:"total_processed"`
	Successful          int                       `json:"successful"`
	Errors              int                       `json:"errors"`
	ByPhase             map[string]*PhaseStats    `json:"by_phase"`
	PhaseMatchRate      float64                   `json:"phase_match_rate"`
	CaptionAccuracyRate float64                   `json:"caption_accuracy_rate"`
	NeedsReviewCount    int                       `json:"needs_review_count"`
	Confidence          map[ConfidenceLevel]int   `json:"confidence_distribution"`
	Validation          ValidationTotals          `json:"validation_summary"`
	InvalidByPrompt     map[string]int            `json:"invalid_response_types,omitempty"`
	GeneratedAt         time.Time                 `json:"generated_at"`
}
