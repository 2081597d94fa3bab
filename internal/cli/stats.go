package cli

import (
	"fmt"
	"os"

	"github.com/ceipp/crystalverify/internal/report"
	"github.com/ceipp/crystalverify/internal/runner"
	"github.com/spf13/cobra"
)

var (
	statsDir    string
	statsMD     string
	statsReview bool
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Recompute and display statistics from stored results",
	Long: `Stats reloads a stored result set, recomputes corpus statistics from the
records, and prints a summary. With --review it also breaks down the
low-confidence records flagged for manual review.

Example:
  crystalverify stats
  crystalverify stats --review
  crystalverify stats --md report.md`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringVar(&statsDir, "output-dir", "verification_results", "directory holding the stored results")
	statsCmd.Flags().StringVar(&statsMD, "md", "", "write a Markdown statistics report to this path (optional)")
	statsCmd.Flags().BoolVar(&statsReview, "review", false, "break down records flagged for review")
}

func runStats(cmd *cobra.Command, args []string) error {
	store, err := runner.NewStore(statsDir)
	if err != nil {
		return fmt.Errorf("open output directory: %w", err)
	}

	results, err := store.LoadResults()
	if err != nil {
		return err
	}
	if results == nil {
		return fmt.Errorf("no results found in %s", statsDir)
	}

	stats := runner.ComputeStatistics(results, 0)
	report.WriteSummary(os.Stderr, stats)

	if statsReview {
		report.WriteReview(os.Stderr, report.AnalyzeReview(results))
	}

	if statsMD != "" {
		renderer := report.NewRenderer(true)
		if err := renderer.RenderMarkdown(stats, statsMD); err != nil {
			return fmt.Errorf("render report: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Markdown report: %s\n", statsMD)
	}

	return nil
}
