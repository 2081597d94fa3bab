package runner

import (
	"fmt"
	"math"

	"github.com/ceipp/crystalverify/internal/catalog"
	"github.com/ceipp/crystalverify/internal/model"
	"github.com/ceipp/crystalverify/internal/score"
	"github.com/ceipp/crystalverify/internal/validate"
)

// Rescore re-validates the raw model answers in a stored result set and
// recomputes every derived field, without calling the model. It rewrites the
// results, statistics, and needs-review artifacts in place. Running it twice
// over the same store produces identical output.
func Rescore(store *Store) (*RunResult, error) {
	results, err := store.LoadResults()
	if err != nil {
		return nil, err
	}
	if results == nil {
		return nil, fmt.Errorf("no results to rescore in %s", store.Dir())
	}

	cat := catalog.Default()
	validator := validate.NewValidator(cat)
	summarizer := score.NewSummarizer()

	for i := range results {
		rescoreRecord(&results[i], validator, summarizer)
	}

	stats := ComputeStatistics(results, 0)

	if err := store.SaveResults(results); err != nil {
		return nil, err
	}
	if err := store.SaveStatistics(stats); err != nil {
		return nil, err
	}
	if err := store.SaveNeedsReview(NeedsReview(results)); err != nil {
		return nil, err
	}

	return &RunResult{Results: results, Stats: &stats, State: StateCompleted}, nil
}

func rescoreRecord(rec *model.ImageVerificationRecord, validator *validate.Validator, summarizer *score.Summarizer) {
	validCount := 0
	invalidCount := 0

	for promptID, answer := range rec.Answers {
		revalidated := validator.Apply(answer.RawAnswer, promptID)
		if revalidated.ValidationStatus == model.ValidationValid {
			validCount++
		} else {
			invalidCount++
		}
		rec.Answers[promptID] = revalidated
	}

	rec.Summary = summarizer.Summarize(rec.Answers, rec.ExpectedPhase)

	validationRate := 0.0
	if total := validCount + invalidCount; total > 0 {
		validationRate = math.Round(float64(validCount)/float64(total)*1000) / 10
	}
	rec.Validation = model.ValidationStats{
		ValidResponses:   validCount,
		InvalidResponses: invalidCount,
		ValidationRate:   validationRate,
	}
}
