package model

import "time"

// Config holds the complete runtime configuration.
type Config struct {
	Corpus CorpusConfig `yaml:"corpus" mapstructure:"corpus"`
	Runner RunnerConfig `yaml:"runner" mapstructure:"runner"`
	Model  ModelConfig  `yaml:"model" mapstructure:"model"`
	Cache  CacheConfig  `yaml:"cache" mapstructure:"cache"`
	Rate   RateConfig   `yaml:"rate" mapstructure:"rate"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
}

// CorpusConfig locates the caption corpus and the image dataset.
type CorpusConfig struct {
	CaptionsFile string `yaml:"captions_file" mapstructure:"captions_file"`
	DatasetRoot  string `yaml:"dataset_root" mapstructure:"dataset_root"`
}

// RunnerConfig controls the batch run.
type RunnerConfig struct {
	SampleSize      int      `yaml:"sample_size" mapstructure:"sample_size"` // 0 = full corpus
	Resume          bool     `yaml:"resume" mapstructure:"resume"`
	CheckpointEvery int      `yaml:"checkpoint_every" mapstructure:"checkpoint_every"`
	PromptIDs       []string `yaml:"prompt_ids,omitempty" mapstructure:"prompt_ids"` // empty = full catalog
}

// ModelConfig configures the answering model endpoint.
type ModelConfig struct {
	Provider   string `yaml:"provider" mapstructure:"provider"` // "openai", "ollama", ""
	Model      string `yaml:"model" mapstructure:"model"`
	APIKey     string `yaml:"-" mapstructure:"api_key"`
	BaseURL    string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout    int    `yaml:"timeout" mapstructure:"timeout"` // seconds, 0 = provider default
	MaxTokens  int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	HTTPProxy  string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy    string `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CacheConfig controls answer caching.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir     string        `yaml:"dir" mapstructure:"dir"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// RateConfig throttles calls to the answering model.
type RateConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// OutputConfig controls artifact placement and verbosity.
type OutputConfig struct {
	Dir     string `yaml:"dir" mapstructure:"dir"`
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Corpus: CorpusConfig{
			CaptionsFile: "all_captions.json",
			DatasetRoot:  "balanced_crystallization",
		},
		Runner: RunnerConfig{
			Resume:          true,
			CheckpointEvery: 10,
		},
		Model: ModelConfig{
			Provider:  "",
			Timeout:   120,
			MaxTokens: 50,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".crystalverify-cache",
			TTL:     30 * 24 * time.Hour,
		},
		Rate: RateConfig{
			RequestsPerSecond: 0, // 0 = unthrottled
			BurstSize:         1,
		},
		Output: OutputConfig{
			Dir: "verification_results",
		},
	}
}
