package vlm

import (
	"fmt"
	"strings"

	"github.com/ceipp/crystalverify/internal/model"
)

// NewAnswerer creates an answering provider based on configuration.
func NewAnswerer(config Config) (Answerer, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "openai":
		return NewOpenAIAnswerer(config)

	case "ollama":
		return NewOllamaAnswerer(config)

	case "":
		// No provider configured
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown answering provider: %s (supported: openai, ollama)", config.Provider)
	}
}

// ConfigFromModel converts model.ModelConfig to vlm.Config.
func ConfigFromModel(mc model.ModelConfig) Config {
	return Config{
		Provider:   mc.Provider,
		Model:      mc.Model,
		APIKey:     mc.APIKey,
		BaseURL:    mc.BaseURL,
		Timeout:    mc.Timeout,
		MaxTokens:  mc.MaxTokens,
		HTTPProxy:  mc.HTTPProxy,
		HTTPSProxy: mc.HTTPSProxy,
		NoProxy:    mc.NoProxy,
	}
}
