package runner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ceipp/crystalverify/internal/model"
)

func TestLoadCorpus(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "captions.json")

	records := []model.CaptionRecord{
		{Image: "img_001.jpg", Phase: "labile", CategoryID: "phy_sugar_db"},
		{Image: "img_002.jpg", Phase: "metastable", CategoryID: "vir_polymer"},
	}
	writeJSONFile(t, path, records)

	loaded, err := LoadCorpus(path)
	if err != nil {
		t.Fatalf("LoadCorpus: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(loaded))
	}
	if loaded[0].Image != "img_001.jpg" || loaded[0].Phase != "labile" {
		t.Errorf("Expected first record to round-trip, got %+v", loaded[0])
	}
}

func TestLoadCorpus_Missing(t *testing.T) {
	if _, err := LoadCorpus(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Expected error for missing corpus")
	}
}

func TestLoadCorpus_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "captions.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := LoadCorpus(path); err == nil {
		t.Error("Expected error for malformed corpus")
	}
}

func TestResolveImagePath_StoredPath(t *testing.T) {
	dir := t.TempDir()
	stored := filepath.Join(dir, "img_001.jpg")
	if err := os.WriteFile(stored, []byte("jpeg"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	rec := model.CaptionRecord{Image: "img_001.jpg", ImagePath: stored}
	got, err := ResolveImagePath(rec, filepath.Join(dir, "unused-root"))
	if err != nil {
		t.Fatalf("ResolveImagePath: %v", err)
	}
	if got != stored {
		t.Errorf("Expected stored path %s, got %s", stored, got)
	}
}

func TestResolveImagePath_Reconstructed(t *testing.T) {
	root := t.TempDir()
	imageDir := filepath.Join(root, "phy_sugar_db", "labile")
	if err := os.MkdirAll(imageDir, 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	want := filepath.Join(imageDir, "img_001.jpg")
	if err := os.WriteFile(want, []byte("jpeg"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	// The stored path points at a machine that no longer exists; the
	// deterministic layout under the dataset root recovers it.
	rec := model.CaptionRecord{
		Image:      "img_001.jpg",
		ImagePath:  "/mnt/old-host/img_001.jpg",
		Phase:      "labile",
		CategoryID: "phy_sugar_db",
	}
	got, err := ResolveImagePath(rec, root)
	if err != nil {
		t.Fatalf("ResolveImagePath: %v", err)
	}
	if got != want {
		t.Errorf("Expected reconstructed path %s, got %s", want, got)
	}
}

func TestResolveImagePath_NotFound(t *testing.T) {
	rec := model.CaptionRecord{Image: "img_404.jpg", Phase: "labile", CategoryID: "phy_sugar_db"}
	if _, err := ResolveImagePath(rec, t.TempDir()); err == nil {
		t.Error("Expected error when neither path exists")
	}
}
