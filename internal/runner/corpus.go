package runner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ceipp/crystalverify/internal/model"
)

// LoadCorpus reads the caption corpus. A missing or unreadable corpus is
// fatal: no partial run is attempted.
func LoadCorpus(path string) ([]model.CaptionRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read captions file: %w", err)
	}

	var records []model.CaptionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse captions file: %w", err)
	}

	return records, nil
}

// ResolveImagePath locates the image file for a corpus record. The stored
// path is tried first; a stale or absent path falls back to the
// deterministic dataset layout root/category/phase/name.
func ResolveImagePath(rec model.CaptionRecord, datasetRoot string) (string, error) {
	if rec.ImagePath != "" {
		if _, err := os.Stat(rec.ImagePath); err == nil {
			return rec.ImagePath, nil
		}
	}

	reconstructed := filepath.Join(datasetRoot, rec.CategoryID, rec.Phase, rec.Image)
	if _, err := os.Stat(reconstructed); err == nil {
		return reconstructed, nil
	}

	return "", fmt.Errorf("image not found: %s (tried %q and %q)", rec.Image, rec.ImagePath, reconstructed)
}
