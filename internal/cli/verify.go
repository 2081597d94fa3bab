package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ceipp/crystalverify/internal/cache"
	"github.com/ceipp/crystalverify/internal/catalog"
	"github.com/ceipp/crystalverify/internal/model"
	"github.com/ceipp/crystalverify/internal/report"
	"github.com/ceipp/crystalverify/internal/runner"
	"github.com/ceipp/crystalverify/internal/vlm"
	"github.com/spf13/cobra"
)

var (
	captionsFile string
	datasetRoot  string
	outputDir    string
	provider     string
	modelName    string
	baseURL      string
	sampleSize   int
	noResume     bool
	promptIDs    []string
	callTimeout  int
	maxTokens    int
	rateLimit    float64
	burstSize    int
	noCache      bool
	cacheDir     string
	mdReport     string
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify captions against a vision-language model",
	Long: `Verify runs the full verification battery over the caption corpus:
- Load captions and locate each image on disk
- Ask the model every verification question about every image
- Validate each answer against its expected format
- Score confidence and flag low-confidence images for review
- Checkpoint periodically; Ctrl+C pauses, rerun resumes

Example:
  crystalverify verify --captions all_captions.json --provider ollama --model llava
  crystalverify verify --provider openai --model gpt-4o-mini --sample 100
  crystalverify verify --prompts phase_correct,caption_accuracy --no-cache`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	// Corpus flags
	verifyCmd.Flags().StringVar(&captionsFile, "captions", "all_captions.json", "caption corpus JSON file")
	verifyCmd.Flags().StringVar(&datasetRoot, "dataset-root", "balanced_crystallization", "root directory of the image dataset")
	verifyCmd.Flags().StringVar(&outputDir, "output-dir", "verification_results", "output directory for artifacts")

	// Run flags
	verifyCmd.Flags().IntVar(&sampleSize, "sample", 0, "verify a random sample of N images (0 = full corpus)")
	verifyCmd.Flags().BoolVar(&noResume, "no-resume", false, "ignore any existing checkpoint and start fresh")
	verifyCmd.Flags().StringSliceVar(&promptIDs, "prompts", nil, "comma-separated prompt IDs to run (default: full catalog)")

	// Model flags
	verifyCmd.Flags().StringVar(&provider, "provider", "ollama", "answering provider (openai, ollama)")
	verifyCmd.Flags().StringVar(&modelName, "model", "", "model name (provider default if empty)")
	verifyCmd.Flags().StringVar(&baseURL, "base-url", "", "custom endpoint URL (e.g., Ollama, vLLM)")
	verifyCmd.Flags().IntVar(&callTimeout, "timeout", 120, "per-call timeout in seconds")
	verifyCmd.Flags().IntVar(&maxTokens, "max-tokens", 50, "max response tokens per answer")

	// Rate limiting flags
	verifyCmd.Flags().Float64Var(&rateLimit, "rate", 0, "max model calls per second (0 = unthrottled)")
	verifyCmd.Flags().IntVar(&burstSize, "burst", 1, "rate limiter burst size")

	// Cache flags
	verifyCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable answer caching")
	verifyCmd.Flags().StringVar(&cacheDir, "cache-dir", ".crystalverify-cache", "answer cache directory")

	// Report flags
	verifyCmd.Flags().StringVar(&mdReport, "md", "", "write a Markdown statistics report to this path (optional)")
}

func runVerify(cmd *cobra.Command, args []string) error {
	// Ctrl+C pauses the run with a checkpoint instead of killing it.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := buildVerifyConfig()

	if verbose {
		fmt.Fprintf(os.Stderr, "Captions:  %s\n", cfg.Corpus.CaptionsFile)
		fmt.Fprintf(os.Stderr, "Dataset:   %s\n", cfg.Corpus.DatasetRoot)
		fmt.Fprintf(os.Stderr, "Provider:  %s\n", cfg.Model.Provider)
		fmt.Fprintf(os.Stderr, "Output:    %s\n", cfg.Output.Dir)
		fmt.Fprintln(os.Stderr)
	}

	answerer, err := buildAnswerer(ctx, cfg)
	if err != nil {
		return err
	}

	store, err := runner.NewStore(cfg.Output.Dir)
	if err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	r := runner.New(catalog.Default(), answerer, store, cfg)

	result, err := r.Run(ctx)
	if err != nil {
		if errors.Is(err, runner.ErrNoImages) {
			fmt.Fprintf(os.Stderr, "✗ No corpus images could be located under %s\n", cfg.Corpus.DatasetRoot)
		}
		return err
	}

	if result.State == runner.StatePaused {
		fmt.Fprintf(os.Stderr, "\nRun the same command again to resume.\n")
		return nil
	}

	report.WriteSummary(os.Stderr, *result.Stats)
	fmt.Fprintf(os.Stderr, "  Output:          %s\n\n", cfg.Output.Dir)

	if mdReport != "" {
		renderer := report.NewRenderer(true)
		if err := renderer.RenderMarkdown(*result.Stats, mdReport); err != nil {
			return fmt.Errorf("render report: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Markdown report: %s\n", mdReport)
	}

	return nil
}

// buildVerifyConfig assembles the run configuration from flags and
// environment.
func buildVerifyConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.Corpus.CaptionsFile = captionsFile
	cfg.Corpus.DatasetRoot = datasetRoot
	cfg.Runner.SampleSize = sampleSize
	cfg.Runner.Resume = !noResume
	cfg.Runner.PromptIDs = promptIDs
	cfg.Model.Provider = provider
	cfg.Model.Model = modelName
	cfg.Model.BaseURL = baseURL
	cfg.Model.Timeout = callTimeout
	cfg.Model.MaxTokens = maxTokens
	cfg.Rate.RequestsPerSecond = rateLimit
	cfg.Rate.BurstSize = burstSize
	cfg.Cache.Enabled = !noCache
	cfg.Cache.Dir = cacheDir
	cfg.Output.Dir = outputDir
	cfg.Output.Verbose = verbose

	switch cfg.Model.Provider {
	case "openai":
		cfg.Model.APIKey = os.Getenv("OPENAI_API_KEY")
	case "ollama":
		if cfg.Model.BaseURL == "" {
			if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
				cfg.Model.BaseURL = baseURL
			}
		}
	}
	return cfg
}

// buildAnswerer wires the provider with caching and throttling decorators.
func buildAnswerer(ctx context.Context, cfg *model.Config) (vlm.Answerer, error) {
	if cfg.Model.Provider == "openai" && cfg.Model.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	answerer, err := vlm.NewAnswerer(vlm.ConfigFromModel(cfg.Model))
	if err != nil {
		return nil, err
	}
	if answerer == nil {
		return nil, fmt.Errorf("no answering provider configured (use --provider)")
	}

	if !answerer.IsAvailable(ctx) {
		fmt.Fprintf(os.Stderr, "Warning: provider %s not reachable, calls may fail\n", answerer.Name())
	}

	if cfg.Cache.Enabled {
		diskDir := filepath.Join(cfg.Cache.Dir, "answers")
		c := cache.NewLayeredCache(1*time.Hour, diskDir, cfg.Cache.TTL)
		answerer = vlm.NewCachedAnswerer(answerer, c)
	}

	return vlm.NewThrottledAnswerer(answerer, cfg.Rate.RequestsPerSecond, cfg.Rate.BurstSize), nil
}
