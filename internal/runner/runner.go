package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/ceipp/crystalverify/internal/catalog"
	"github.com/ceipp/crystalverify/internal/model"
	"github.com/ceipp/crystalverify/internal/score"
	"github.com/ceipp/crystalverify/internal/validate"
	"github.com/ceipp/crystalverify/internal/vlm"
)

// ErrNoImages signals a completed run in which not a single corpus image
// could be located.
var ErrNoImages = errors.New("no corpus images could be located")

// errInterrupted aborts the current image when cancellation lands mid-image;
// the partial record is discarded so the checkpoint never covers it.
var errInterrupted = errors.New("run interrupted")

// Runner drives verification over the caption corpus: one image at a time,
// one prompt at a time, with periodic checkpoints and resume-after-interrupt.
// A Runner instance exclusively owns its store for the duration of Run.
type Runner struct {
	catalog    *catalog.Catalog
	validator  *validate.Validator
	summarizer *score.Summarizer
	answerer   vlm.Answerer
	store      *Store
	cfg        *model.Config
	state      State

	// Log receives progress output; defaults to stderr.
	Log io.Writer
}

// New creates a runner. The answerer is the external answering collaborator;
// calls to it are strictly sequential because the model instance is assumed
// to hold exclusive hardware resources.
func New(cat *catalog.Catalog, answerer vlm.Answerer, store *Store, cfg *model.Config) *Runner {
	return &Runner{
		catalog:    cat,
		validator:  validate.NewValidator(cat),
		summarizer: score.NewSummarizer(),
		answerer:   answerer,
		store:      store,
		cfg:        cfg,
		state:      StateIdle,
		Log:        os.Stderr,
	}
}

// State returns the runner's current lifecycle state.
func (r *Runner) State() State {
	return r.state
}

// RunResult is the outcome of a batch run.
type RunResult struct {
	Results []model.ImageVerificationRecord
	Stats   *model.CorpusStatistics // nil when paused
	State   State
	Errors  int // images skipped because the file could not be located
}

type corpusEntry struct {
	index  int
	record model.CaptionRecord
}

// Run executes the batch. Cancellation of ctx is cooperative: it is checked
// between images (and honored after an in-flight model call returns), and
// pauses the run with a checkpoint rather than failing it.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	if err := r.state.transition(StateLoading); err != nil {
		return nil, err
	}

	corpus, err := LoadCorpus(r.cfg.Corpus.CaptionsFile)
	if err != nil {
		return nil, err
	}
	r.logf("Loaded %d captions\n", len(corpus))

	results, processed, lastIndex, err := r.loadPriorProgress()
	if err != nil {
		return nil, err
	}

	// A random sample is drawn once, only on fresh starts; resumption always
	// operates over the original corpus selection.
	selection := corpus
	if n := r.cfg.Runner.SampleSize; n > 0 && n < len(corpus) && len(processed) == 0 {
		selection = sampleCorpus(corpus, n)
		r.logf("Sampled %d captions for verification\n", n)
	}

	var remaining []corpusEntry
	for i, rec := range selection {
		if !processed[rec.Image] {
			remaining = append(remaining, corpusEntry{index: i, record: rec})
		}
	}

	if len(remaining) == 0 {
		r.logf("All images already verified\n")
		if err := r.state.transition(StateCompleted); err != nil {
			return nil, err
		}
		return r.finalize(results, 0)
	}
	r.logf("%d images remaining to verify\n", len(remaining))

	if err := r.state.transition(StateProcessing); err != nil {
		return nil, err
	}

	processedList := setToList(processed)
	processedThisRun := 0
	locateErrors := 0
	checkpointEvery := r.cfg.Runner.CheckpointEvery
	if checkpointEvery <= 0 {
		checkpointEvery = 10
	}

	for _, entry := range remaining {
		if ctx.Err() != nil {
			return r.pause(results, processedList, lastIndex)
		}

		imagePath, err := ResolveImagePath(entry.record, r.cfg.Corpus.DatasetRoot)
		if err != nil {
			// Recoverable: skipped, not marked processed, retried next run.
			r.logf("✗ %s: %v\n", entry.record.Image, err)
			locateErrors++
			continue
		}

		record, err := r.verifyImage(ctx, entry.record, imagePath)
		if err != nil {
			if errors.Is(err, errInterrupted) {
				return r.pause(results, processedList, lastIndex)
			}
			return nil, err
		}

		results = append(results, record)
		processed[entry.record.Image] = true
		processedList = append(processedList, entry.record.Image)
		lastIndex = entry.index
		processedThisRun++

		r.logf("✓ %s (%s, %.1f%%)\n", entry.record.Image, record.Summary.Confidence, record.Summary.ConfidencePct)

		if processedThisRun%checkpointEvery == 0 {
			if err := r.checkpoint(results, processedList, lastIndex); err != nil {
				return nil, err
			}
		}
	}

	if err := r.state.transition(StateCompleted); err != nil {
		return nil, err
	}
	return r.finalize(results, locateErrors)
}

// loadPriorProgress loads the prior result set and processed-image set when
// resuming. A corrupt checkpoint falls back to a fresh start.
func (r *Runner) loadPriorProgress() ([]model.ImageVerificationRecord, map[string]bool, int, error) {
	if !r.cfg.Runner.Resume || !r.store.HasCheckpoint() {
		return nil, map[string]bool{}, 0, nil
	}

	cp, err := r.store.LoadCheckpoint()
	if err != nil {
		r.logf("Warning: failed to load checkpoint (%v), starting fresh\n", err)
		return nil, map[string]bool{}, 0, nil
	}

	results, err := r.store.LoadResults()
	if err != nil {
		r.logf("Warning: failed to load prior results (%v), starting fresh\n", err)
		return nil, map[string]bool{}, 0, nil
	}

	r.logf("Resuming from checkpoint: %d images already processed\n", len(cp.ProcessedImages))
	return results, cp.ProcessedSet(), cp.LastIndex, nil
}

// verifyImage runs the full prompt battery against one image. A failed model
// call is recorded on that prompt only and never aborts the image's other
// prompts; cancellation surfacing through a call aborts the whole image via
// errInterrupted.
func (r *Runner) verifyImage(ctx context.Context, rec model.CaptionRecord, imagePath string) (model.ImageVerificationRecord, error) {
	prompts := r.catalog.Select(r.cfg.Runner.PromptIDs)
	answers := make(map[string]model.ValidatedAnswer, len(prompts))
	validCount := 0
	invalidCount := 0

	for _, p := range prompts {
		question := r.catalog.Render(p, rec)
		raw := model.RawAnswer{Prompt: question, Kind: p.Kind, Status: model.CallSuccess}

		text, err := r.answerer.Answer(ctx, vlm.AnswerRequest{
			ImagePath: imagePath,
			Question:  question,
			MaxTokens: r.cfg.Model.MaxTokens,
		})
		if err != nil {
			if ctx.Err() != nil {
				return model.ImageVerificationRecord{}, errInterrupted
			}
			raw.Status = model.CallError
			raw.Error = err.Error()
		} else {
			raw.Response = text
		}

		validated := r.validator.Apply(raw, p.ID)
		if validated.ValidationStatus == model.ValidationValid {
			validCount++
		} else {
			invalidCount++
		}
		answers[p.ID] = validated
	}

	expectedCaption := rec.InitialCaption
	if expectedCaption == "" {
		if rendered, err := catalog.RenderCaption(rec.CategoryID, rec.Phase); err == nil {
			expectedCaption = rendered
		}
	}

	validationRate := 0.0
	if total := validCount + invalidCount; total > 0 {
		validationRate = math.Round(float64(validCount)/float64(total)*1000) / 10
	}

	return model.ImageVerificationRecord{
		ImagePath:       imagePath,
		ImageName:       rec.Image,
		ExpectedPhase:   rec.Phase,
		ExpectedCaption: expectedCaption,
		Answers:         answers,
		Summary:         r.summarizer.Summarize(answers, rec.Phase),
		Validation: model.ValidationStats{
			ValidResponses:   validCount,
			InvalidResponses: invalidCount,
			ValidationRate:   validationRate,
		},
		Timestamp: time.Now().UTC(),
	}, nil
}

// checkpoint persists results and checkpoint together. Persistence failure
// here is run-terminating: continuing without durable progress would lose
// work silently.
func (r *Runner) checkpoint(results []model.ImageVerificationRecord, processed []string, lastIndex int) error {
	if err := r.state.transition(StateCheckpointing); err != nil {
		return err
	}
	if err := r.store.SaveSnapshot(results, processed, lastIndex); err != nil {
		return err
	}
	r.logf("Checkpoint saved (%d images)\n", len(processed))
	return r.state.transition(StateProcessing)
}

// pause persists everything and exits without error. The checkpoint's
// presence makes the next run resume from the unprocessed remainder.
func (r *Runner) pause(results []model.ImageVerificationRecord, processed []string, lastIndex int) (*RunResult, error) {
	if err := r.state.transition(StatePaused); err != nil {
		return nil, err
	}
	if err := r.store.SaveSnapshot(results, processed, lastIndex); err != nil {
		return nil, err
	}
	r.logf("Paused: progress saved (%d images). Run again to resume.\n", len(processed))
	return &RunResult{Results: results, State: StatePaused}, nil
}

// finalize computes statistics, writes the terminal artifacts, and removes
// the checkpoint so its absence signals clean completion.
func (r *Runner) finalize(results []model.ImageVerificationRecord, locateErrors int) (*RunResult, error) {
	stats := ComputeStatistics(results, locateErrors)

	if err := r.store.SaveResults(results); err != nil {
		return nil, err
	}
	if err := r.store.SaveStatistics(stats); err != nil {
		return nil, err
	}
	if err := r.store.SaveNeedsReview(NeedsReview(results)); err != nil {
		return nil, err
	}
	if err := r.store.RemoveCheckpoint(); err != nil {
		return nil, err
	}

	result := &RunResult{
		Results: results,
		Stats:   &stats,
		State:   r.state,
		Errors:  locateErrors,
	}
	if len(results) == 0 {
		return result, ErrNoImages
	}
	return result, nil
}

func (r *Runner) logf(format string, args ...interface{}) {
	if r.Log != nil {
		fmt.Fprintf(r.Log, format, args...)
	}
}

// sampleCorpus draws n records uniformly without replacement, preserving
// corpus order among the drawn records.
func sampleCorpus(corpus []model.CaptionRecord, n int) []model.CaptionRecord {
	indices := rand.Perm(len(corpus))[:n]
	sort.Ints(indices)

	sampled := make([]model.CaptionRecord, n)
	for i, idx := range indices {
		sampled[i] = corpus[idx]
	}
	return sampled
}

func setToList(set map[string]bool) []string {
	list := make([]string, 0, len(set))
	for name := range set {
		list = append(list, name)
	}
	sort.Strings(list)
	return list
}
