package runner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ceipp/crystalverify/internal/model"
)

// Artifact file names inside the output directory.
const (
	ResultsFile     = "verification_results.json"
	CheckpointFile  = "verification_checkpoint.json"
	StatisticsFile  = "verification_statistics.json"
	NeedsReviewFile = "needs_review.json"
)

// Store owns the persisted result set and checkpoint for one output
// location. A single runner instance owns the store for the run's duration;
// concurrent runs against the same directory are not supported.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir, creating the directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the output directory.
func (s *Store) Dir() string {
	return s.dir
}

// HasCheckpoint reports whether a resumable checkpoint exists.
func (s *Store) HasCheckpoint() bool {
	_, err := os.Stat(filepath.Join(s.dir, CheckpointFile))
	return err == nil
}

// LoadCheckpoint reads the checkpoint artifact.
func (s *Store) LoadCheckpoint() (*model.CorpusCheckpoint, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, CheckpointFile))
	if err != nil {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}

	var cp model.CorpusCheckpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("parse checkpoint: %w", err)
	}
	return &cp, nil
}

// LoadResults reads the persisted result set. A missing file yields an empty
// set, not an error.
func (s *Store) LoadResults() ([]model.ImageVerificationRecord, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, ResultsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read results: %w", err)
	}

	var results []model.ImageVerificationRecord
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return results, nil
}

// SaveSnapshot persists the full result set and a matching checkpoint.
// Results are written before the checkpoint, each atomically, so the
// checkpoint's processed set is always a subset of persisted records: a
// crash between the two writes undercounts (images re-verify) rather than
// overcounts.
func (s *Store) SaveSnapshot(results []model.ImageVerificationRecord, processed []string, lastIndex int) error {
	if err := s.writeJSON(ResultsFile, results); err != nil {
		return fmt.Errorf("persist results: %w", err)
	}

	cp := model.CorpusCheckpoint{
		ProcessedImages: processed,
		LastIndex:       lastIndex,
		Timestamp:       time.Now().UTC(),
		TotalProcessed:  len(processed),
	}
	if err := s.writeJSON(CheckpointFile, cp); err != nil {
		return fmt.Errorf("persist checkpoint: %w", err)
	}
	return nil
}

// SaveResults rewrites the result set without touching the checkpoint.
func (s *Store) SaveResults(results []model.ImageVerificationRecord) error {
	if err := s.writeJSON(ResultsFile, results); err != nil {
		return fmt.Errorf("persist results: %w", err)
	}
	return nil
}

// SaveStatistics writes the derived statistics artifact.
func (s *Store) SaveStatistics(stats model.CorpusStatistics) error {
	if err := s.writeJSON(StatisticsFile, stats); err != nil {
		return fmt.Errorf("persist statistics: %w", err)
	}
	return nil
}

// SaveNeedsReview writes the flagged-for-review subset.
func (s *Store) SaveNeedsReview(records []model.ImageVerificationRecord) error {
	if err := s.writeJSON(NeedsReviewFile, records); err != nil {
		return fmt.Errorf("persist needs-review set: %w", err)
	}
	return nil
}

// RemoveCheckpoint deletes the checkpoint artifact; its absence after a run
// signals clean completion.
func (s *Store) RemoveCheckpoint() error {
	err := os.Remove(filepath.Join(s.dir, CheckpointFile))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove checkpoint: %w", err)
	}
	return nil
}

// writeJSON writes v atomically: marshal, write to a temp file in the same
// directory, rename over the target.
func (s *Store) writeJSON(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", name, err)
	}

	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}
