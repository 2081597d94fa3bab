package cli

import (
	"fmt"
	"os"

	"github.com/ceipp/crystalverify/internal/report"
	"github.com/ceipp/crystalverify/internal/runner"
	"github.com/spf13/cobra"
)

var rescoreDir string

// rescoreCmd represents the rescore command
var rescoreCmd = &cobra.Command{
	Use:   "rescore",
	Short: "Re-validate and re-score stored results without calling the model",
	Long: `Rescore reloads a stored result set, re-runs answer validation over the
raw model responses, and recomputes every derived field: per-image
summaries, confidence scores, review flags, and corpus statistics.

Use it after a validator or scoring change to bring old results up to
date without repeating any model calls.

Example:
  crystalverify rescore
  crystalverify rescore --output-dir ./verification_results`,
	Args: cobra.NoArgs,
	RunE: runRescore,
}

func init() {
	rootCmd.AddCommand(rescoreCmd)

	rescoreCmd.Flags().StringVar(&rescoreDir, "output-dir", "verification_results", "directory holding the stored results")
}

func runRescore(cmd *cobra.Command, args []string) error {
	store, err := runner.NewStore(rescoreDir)
	if err != nil {
		return fmt.Errorf("open output directory: %w", err)
	}

	result, err := runner.Rescore(store)
	if err != nil {
		return fmt.Errorf("rescore failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ Rescored %d records\n", len(result.Results))
	report.WriteSummary(os.Stderr, *result.Stats)

	return nil
}
