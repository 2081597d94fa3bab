package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ceipp/crystalverify/internal/model"
)

// Renderer writes verification statistics as JSON or Markdown artifacts.
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the statistics to a JSON file
func (r *Renderer) RenderJSON(stats model.CorpusStatistics, path string) error {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal statistics: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderMarkdown writes a human-readable statistics report
func (r *Renderer) RenderMarkdown(stats model.CorpusStatistics, path string) error {
	var b strings.Builder

	b.WriteString("# Caption Verification Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", stats.GeneratedAt.Format(time.RFC3339))

	b.WriteString("## Overview\n\n")
	fmt.Fprintf(&b, "| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Images processed | %d |\n", stats.TotalProcessed)
	fmt.Fprintf(&b, "| Successful | %d |\n", stats.Successful)
	fmt.Fprintf(&b, "| Errors | %d |\n", stats.Errors)
	fmt.Fprintf(&b, "| Phase match rate | %.1f%% |\n", stats.PhaseMatchRate*100)
	fmt.Fprintf(&b, "| Caption accuracy rate | %.1f%% |\n", stats.CaptionAccuracyRate*100)
	fmt.Fprintf(&b, "| Needs review | %d |\n", stats.NeedsReviewCount)
	b.WriteString("\n")

	b.WriteString("## Confidence Distribution\n\n")
	fmt.Fprintf(&b, "| Level | Count |\n|---|---|\n")
	for _, level := range []model.ConfidenceLevel{model.ConfidenceHigh, model.ConfidenceMedium, model.ConfidenceLow} {
		fmt.Fprintf(&b, "| %s | %d |\n", level, stats.Confidence[level])
	}
	b.WriteString("\n")

	b.WriteString("## By Phase\n\n")
	fmt.Fprintf(&b, "| Phase | Total | Phase Match | Caption Accurate | Needs Review |\n|---|---|---|---|---|\n")
	for _, phase := range sortedPhases(stats.ByPhase) {
		ps := stats.ByPhase[phase]
		fmt.Fprintf(&b, "| %s | %d | %d | %d | %d |\n", phase, ps.Total, ps.PhaseMatch, ps.CaptionAccurate, ps.NeedsReview)
	}
	b.WriteString("\n")

	b.WriteString("## Response Validation\n\n")
	fmt.Fprintf(&b, "- Valid responses: %d\n", stats.Validation.TotalValid)
	fmt.Fprintf(&b, "- Invalid responses: %d\n", stats.Validation.TotalInvalid)
	fmt.Fprintf(&b, "- Average validation rate: %.1f%%\n\n", stats.Validation.AvgRate)

	if len(stats.InvalidByPrompt) > 0 {
		b.WriteString("### Invalid Responses by Prompt\n\n")
		for _, key := range sortedKeys(stats.InvalidByPrompt) {
			fmt.Fprintf(&b, "- %s: %d\n", key, stats.InvalidByPrompt[key])
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		b.WriteString("---\n\n")
		b.WriteString("Generated by crystalverify. Statistics are derived from stored raw answers and can be recomputed at any time.\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WriteSummary prints the run summary banner
func WriteSummary(w io.Writer, stats model.CorpusStatistics) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "  Verification Complete\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Processed:       %d images\n", stats.TotalProcessed)
	fmt.Fprintf(w, "  Errors:          %d\n", stats.Errors)
	fmt.Fprintf(w, "  Phase match:     %.1f%%\n", stats.PhaseMatchRate*100)
	fmt.Fprintf(w, "  Caption accuracy: %.1f%%\n", stats.CaptionAccuracyRate*100)
	fmt.Fprintf(w, "  High confidence:  %d\n", stats.Confidence[model.ConfidenceHigh])
	fmt.Fprintf(w, "  Medium confidence: %d\n", stats.Confidence[model.ConfidenceMedium])
	fmt.Fprintf(w, "  Low confidence:   %d\n", stats.Confidence[model.ConfidenceLow])
	fmt.Fprintf(w, "  Needs review:     %d\n", stats.NeedsReviewCount)
	fmt.Fprintf(w, "\n")
}

func sortedPhases(byPhase map[string]*model.PhaseStats) []string {
	phases := make([]string, 0, len(byPhase))
	for phase := range byPhase {
		phases = append(phases, phase)
	}
	sort.Strings(phases)
	return phases
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
