package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ceipp/crystalverify/internal/catalog"
	"github.com/ceipp/crystalverify/internal/runner"
	"github.com/spf13/cobra"
)

var (
	promptsCaptions string
	promptsOut      string
	promptsSelect   []string
)

// preparedPrompts is the per-image export: every rendered question keyed by
// prompt ID, ready for offline or external answering.
type preparedPrompts struct {
	Image         string            `json:"image"`
	ExpectedPhase string            `json:"expected_phase"`
	Prompts       map[string]string `json:"prompts"`
}

// promptsCmd represents the prompts command
var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Render all verification prompts without calling a model",
	Long: `Prompts renders the full verification question battery for every caption
in the corpus and writes them to a JSON file. No model is contacted.

Useful for inspecting the exact questions a verify run would ask, or for
feeding the prompts to an external answering system.

Example:
  crystalverify prompts --captions all_captions.json
  crystalverify prompts --select phase_correct,caption_accuracy`,
	Args: cobra.NoArgs,
	RunE: runPrompts,
}

func init() {
	rootCmd.AddCommand(promptsCmd)

	promptsCmd.Flags().StringVar(&promptsCaptions, "captions", "all_captions.json", "caption corpus JSON file")
	promptsCmd.Flags().StringVar(&promptsOut, "out", "verification_prompts_prepared.json", "output JSON path")
	promptsCmd.Flags().StringSliceVar(&promptsSelect, "select", nil, "comma-separated prompt IDs to render (default: full catalog)")
}

func runPrompts(cmd *cobra.Command, args []string) error {
	corpus, err := runner.LoadCorpus(promptsCaptions)
	if err != nil {
		return err
	}

	cat := catalog.Default()
	selected := cat.Select(promptsSelect)
	if len(selected) == 0 {
		return fmt.Errorf("no prompts matched selection %v", promptsSelect)
	}

	prepared := make([]preparedPrompts, 0, len(corpus))
	for _, rec := range corpus {
		rendered := make(map[string]string, len(selected))
		for _, p := range selected {
			rendered[p.ID] = cat.Render(p, rec)
		}
		prepared = append(prepared, preparedPrompts{
			Image:         rec.Image,
			ExpectedPhase: rec.Phase,
			Prompts:       rendered,
		})
	}

	data, err := json.MarshalIndent(prepared, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal prompts: %w", err)
	}
	if dir := filepath.Dir(promptsOut); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(promptsOut, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", promptsOut, err)
	}

	fmt.Fprintf(os.Stderr, "✓ Rendered %d prompts for %d captions: %s\n", len(selected), len(prepared), promptsOut)
	return nil
}
