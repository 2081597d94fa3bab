package runner

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ceipp/crystalverify/internal/catalog"
	"github.com/ceipp/crystalverify/internal/model"
	"github.com/ceipp/crystalverify/internal/vlm"
	"github.com/stretchr/testify/require"
)

// fakeAnswerer scripts plausible answers from the question text so the full
// battery validates and scores without a live model.
type fakeAnswerer struct {
	callsByImage map[string]int
	onCall       func(imageName string, calls int)
	failFor      map[string]bool
}

func newFakeAnswerer() *fakeAnswerer {
	return &fakeAnswerer{
		callsByImage: make(map[string]int),
		failFor:      make(map[string]bool),
	}
}

func (f *fakeAnswerer) Name() string { return "fake" }

func (f *fakeAnswerer) IsAvailable(ctx context.Context) bool { return true }

func (f *fakeAnswerer) Answer(ctx context.Context, req vlm.AnswerRequest) (string, error) {
	name := filepath.Base(req.ImagePath)
	f.callsByImage[name]++
	if f.onCall != nil {
		f.onCall(name, f.callsByImage[name])
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.failFor[name] {
		return "", errors.New("model unavailable")
	}

	question := req.Question
	switch {
	case strings.Contains(question, "yes or no"):
		return "yes", nil
	case strings.Contains(question, "1, 2, 3, 4, or 5"):
		return "4", nil
	case strings.Contains(question, "1 to 10"):
		return "8", nil
	case strings.Contains(question, "0 to 100"):
		return "60", nil
	case strings.Contains(question, "clear liquid, cloudy liquid"):
		return "cloudy liquid", nil
	case strings.Contains(question, "clear or cloudy"):
		return "cloudy", nil
	case strings.Contains(question, "photograph or computer"):
		return "photo", nil
	case strings.Contains(question, "none, few, some, or many"):
		return "a few", nil
	default:
		return "Small bright specks on a dark background.", nil
	}
}

// makeCorpus writes a caption corpus and the matching image files, returning
// a ready-to-run configuration.
func makeCorpus(t *testing.T, imageNames []string) *model.Config {
	t.Helper()
	dir := t.TempDir()
	datasetRoot := filepath.Join(dir, "dataset")

	records := make([]model.CaptionRecord, 0, len(imageNames))
	for _, name := range imageNames {
		imageDir := filepath.Join(datasetRoot, "phy_sugar_db", catalog.PhaseLabile)
		require.NoError(t, os.MkdirAll(imageDir, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(imageDir, name), []byte("jpeg"), 0644))

		records = append(records, model.CaptionRecord{
			Image:          name,
			Phase:          catalog.PhaseLabile,
			CategoryID:     "phy_sugar_db",
			InitialCaption: "Microscopic view of the labile phase.",
		})
	}

	captionsPath := filepath.Join(dir, "captions.json")
	writeJSONFile(t, captionsPath, records)

	cfg := model.DefaultConfig()
	cfg.Corpus.CaptionsFile = captionsPath
	cfg.Corpus.DatasetRoot = datasetRoot
	cfg.Output.Dir = filepath.Join(dir, "out")
	return cfg
}

func newTestRunner(t *testing.T, answerer vlm.Answerer, cfg *model.Config) (*Runner, *Store) {
	t.Helper()
	store, err := NewStore(cfg.Output.Dir)
	require.NoError(t, err)

	r := New(catalog.Default(), answerer, store, cfg)
	r.Log = io.Discard
	return r, store
}

func TestRunner_Run_Completes(t *testing.T) {
	cfg := makeCorpus(t, []string{"img_001.jpg", "img_002.jpg", "img_003.jpg"})
	answerer := newFakeAnswerer()
	r, store := newTestRunner(t, answerer, cfg)

	result, err := r.Run(context.Background())
	require.NoError(t, err)

	if result.State != StateCompleted {
		t.Errorf("Expected completed state, got %s", result.State)
	}
	if len(result.Results) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(result.Results))
	}
	if result.Errors != 0 {
		t.Errorf("Expected no errors, got %d", result.Errors)
	}

	// Every record was fully answered and confidently verified.
	for _, rec := range result.Results {
		if rec.Summary.TotalPrompts != 13 {
			t.Errorf("Expected 13 prompts for %s, got %d", rec.ImageName, rec.Summary.TotalPrompts)
		}
		if rec.Summary.Confidence != model.ConfidenceHigh {
			t.Errorf("Expected high confidence for %s, got %s", rec.ImageName, rec.Summary.Confidence)
		}
		if rec.Summary.NeedsReview {
			t.Errorf("Expected %s not to need review", rec.ImageName)
		}
	}

	// Clean completion removes the checkpoint and writes the artifacts.
	if store.HasCheckpoint() {
		t.Error("Expected checkpoint to be removed after completion")
	}
	for _, name := range []string{ResultsFile, StatisticsFile, NeedsReviewFile} {
		if _, err := os.Stat(filepath.Join(store.Dir(), name)); err != nil {
			t.Errorf("Expected artifact %s to exist: %v", name, err)
		}
	}
}

func TestRunner_Run_PauseAndResume(t *testing.T) {
	cfg := makeCorpus(t, []string{"img_001.jpg", "img_002.jpg", "img_003.jpg", "img_004.jpg"})

	// Cancel as soon as the third image's first call lands: the in-flight
	// image is aborted without a record and the run pauses.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	answerer := newFakeAnswerer()
	answerer.onCall = func(imageName string, calls int) {
		if imageName == "img_003.jpg" && calls == 1 {
			cancel()
		}
	}

	r, store := newTestRunner(t, answerer, cfg)
	result, err := r.Run(ctx)
	require.NoError(t, err)

	if result.State != StatePaused {
		t.Fatalf("Expected paused state, got %s", result.State)
	}
	if len(result.Results) != 2 {
		t.Fatalf("Expected 2 records before pause, got %d", len(result.Results))
	}
	if !store.HasCheckpoint() {
		t.Fatal("Expected checkpoint after pause")
	}

	// The checkpoint covers exactly the persisted records.
	cp, err := store.LoadCheckpoint()
	require.NoError(t, err)
	persisted, err := store.LoadResults()
	require.NoError(t, err)
	if len(cp.ProcessedImages) != len(persisted) {
		t.Errorf("Expected checkpoint to match persisted records: %d vs %d", len(cp.ProcessedImages), len(persisted))
	}

	// Resume with a fresh runner: only the remaining images are verified.
	resumeAnswerer := newFakeAnswerer()
	r2, store2 := newTestRunner(t, resumeAnswerer, cfg)
	result, err = r2.Run(context.Background())
	require.NoError(t, err)

	if result.State != StateCompleted {
		t.Fatalf("Expected completed state after resume, got %s", result.State)
	}
	if len(result.Results) != 4 {
		t.Fatalf("Expected 4 records after resume, got %d", len(result.Results))
	}
	for _, done := range []string{"img_001.jpg", "img_002.jpg"} {
		if resumeAnswerer.callsByImage[done] != 0 {
			t.Errorf("Expected no calls for already-processed %s, got %d", done, resumeAnswerer.callsByImage[done])
		}
	}
	if store2.HasCheckpoint() {
		t.Error("Expected checkpoint to be removed after resumed completion")
	}
}

func TestRunner_Run_CheckpointCadence(t *testing.T) {
	cfg := makeCorpus(t, []string{"img_001.jpg", "img_002.jpg", "img_003.jpg", "img_004.jpg", "img_005.jpg"})
	cfg.Runner.CheckpointEvery = 2

	var checkpointSeen bool
	var checkpointCount int
	answerer := newFakeAnswerer()
	r, store := newTestRunner(t, answerer, cfg)

	// By the third image's first call, the first cadence checkpoint (after
	// image 2) must be on disk.
	answerer.onCall = func(imageName string, calls int) {
		if imageName == "img_003.jpg" && calls == 1 && store.HasCheckpoint() {
			cp, err := store.LoadCheckpoint()
			if err == nil {
				checkpointSeen = true
				checkpointCount = len(cp.ProcessedImages)
			}
		}
	}

	result, err := r.Run(context.Background())
	require.NoError(t, err)

	if !checkpointSeen {
		t.Fatal("Expected a cadence checkpoint before the third image")
	}
	if checkpointCount != 2 {
		t.Errorf("Expected checkpoint to cover 2 images, got %d", checkpointCount)
	}
	if result.State != StateCompleted {
		t.Errorf("Expected completed state, got %s", result.State)
	}
	if store.HasCheckpoint() {
		t.Error("Expected checkpoint removed after completion")
	}
}

func TestRunner_Run_MissingImageSkipped(t *testing.T) {
	cfg := makeCorpus(t, []string{"img_001.jpg", "img_002.jpg", "img_003.jpg"})
	missing := filepath.Join(cfg.Corpus.DatasetRoot, "phy_sugar_db", catalog.PhaseLabile, "img_002.jpg")
	require.NoError(t, os.Remove(missing))

	answerer := newFakeAnswerer()
	r, _ := newTestRunner(t, answerer, cfg)

	result, err := r.Run(context.Background())
	require.NoError(t, err)

	if len(result.Results) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(result.Results))
	}
	if result.Errors != 1 {
		t.Errorf("Expected 1 locate error, got %d", result.Errors)
	}
	if result.Stats.Errors != 1 {
		t.Errorf("Expected statistics to count the locate error, got %d", result.Stats.Errors)
	}
	for _, rec := range result.Results {
		if rec.ImageName == "img_002.jpg" {
			t.Error("Expected no record for the missing image")
		}
	}
	if answerer.callsByImage["img_002.jpg"] != 0 {
		t.Errorf("Expected no model calls for the missing image, got %d", answerer.callsByImage["img_002.jpg"])
	}
}

func TestRunner_Run_NoImages(t *testing.T) {
	cfg := makeCorpus(t, []string{"img_001.jpg"})
	require.NoError(t, os.RemoveAll(cfg.Corpus.DatasetRoot))

	r, _ := newTestRunner(t, newFakeAnswerer(), cfg)

	result, err := r.Run(context.Background())
	if !errors.Is(err, ErrNoImages) {
		t.Fatalf("Expected ErrNoImages, got %v", err)
	}
	if result == nil || len(result.Results) != 0 {
		t.Error("Expected an empty result set alongside the signal")
	}
}

func TestRunner_Run_FailedCallsStillRecorded(t *testing.T) {
	cfg := makeCorpus(t, []string{"img_001.jpg", "img_002.jpg"})
	answerer := newFakeAnswerer()
	answerer.failFor["img_002.jpg"] = true

	r, _ := newTestRunner(t, answerer, cfg)
	result, err := r.Run(context.Background())
	require.NoError(t, err)

	if len(result.Results) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(result.Results))
	}

	var failed *model.ImageVerificationRecord
	for i := range result.Results {
		if result.Results[i].ImageName == "img_002.jpg" {
			failed = &result.Results[i]
		}
	}
	require.NotNil(t, failed)

	// A failing model degrades the record to low confidence instead of
	// aborting the run.
	if failed.Summary.SuccessfulPrompts != 0 {
		t.Errorf("Expected 0 successful prompts, got %d", failed.Summary.SuccessfulPrompts)
	}
	if failed.Summary.Confidence != model.ConfidenceLow {
		t.Errorf("Expected low confidence, got %s", failed.Summary.Confidence)
	}
	if !failed.Summary.NeedsReview {
		t.Error("Expected failed record to need review")
	}
	for promptID, answer := range failed.Answers {
		if answer.Status != model.CallError {
			t.Errorf("Expected call error recorded for %s, got %s", promptID, answer.Status)
		}
	}
}

func TestRunner_Run_SampleSize(t *testing.T) {
	cfg := makeCorpus(t, []string{"img_001.jpg", "img_002.jpg", "img_003.jpg", "img_004.jpg", "img_005.jpg"})
	cfg.Runner.SampleSize = 2

	r, _ := newTestRunner(t, newFakeAnswerer(), cfg)
	result, err := r.Run(context.Background())
	require.NoError(t, err)

	if len(result.Results) != 2 {
		t.Errorf("Expected 2 sampled records, got %d", len(result.Results))
	}
}

func TestState_Transitions(t *testing.T) {
	s := StateIdle
	for _, next := range []State{StateLoading, StateProcessing, StateCheckpointing, StateProcessing, StateCompleted} {
		if err := s.transition(next); err != nil {
			t.Fatalf("Expected legal transition to %s: %v", next, err)
		}
	}
	if !s.Terminal() {
		t.Error("Expected completed state to be terminal")
	}

	s = StateCompleted
	if err := s.transition(StateProcessing); err == nil {
		t.Error("Expected transition out of completed to fail")
	}

	s = StateIdle
	if err := s.transition(StateProcessing); err == nil {
		t.Error("Expected idle to processing to be illegal")
	}
}
