package vlm

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Answerer is the boundary to the external image-answering model: one image,
// one question, one free-text answer at a time. Calls are synchronous and
// may block for an unbounded time; the single model instance is assumed to
// hold exclusive hardware resources, so callers must not overlap calls.
type Answerer interface {
	// Name returns the provider name.
	Name() string

	// Answer asks one question about one image and returns the model's raw
	// free-text response.
	Answer(ctx context.Context, req AnswerRequest) (string, error)

	// IsAvailable checks if the provider is properly configured and reachable.
	IsAvailable(ctx context.Context) bool
}

// AnswerRequest is one question about one image.
type AnswerRequest struct {
	// ImagePath is the local path of the image file.
	ImagePath string

	// Question is the rendered prompt text.
	Question string

	// MaxTokens limits the response length (0 = provider default).
	MaxTokens int
}

// Config holds answering-provider configuration.
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI-compatible endpoints
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama, vLLM)
	BaseURL string

	// Timeout for API requests, seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Model:     "",
		Timeout:   120,
		MaxTokens: 50,
	}
}

// cleanResponse strips answer prefixes some models prepend despite being
// asked for the bare answer.
func cleanResponse(response string) string {
	response = strings.TrimSpace(response)
	for _, prefix := range []string{"answer:", "response:", "a:"} {
		if len(response) >= len(prefix) && strings.EqualFold(response[:len(prefix)], prefix) {
			response = strings.TrimSpace(response[len(prefix):])
		}
	}
	return response
}

// encodeImage reads an image file and returns its base64 payload and MIME
// type.
func encodeImage(path string) (string, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("read image: %w", err)
	}

	mime := "image/jpeg"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		mime = "image/png"
	case ".bmp":
		mime = "image/bmp"
	case ".tif", ".tiff":
		mime = "image/tiff"
	}

	return base64.StdEncoding.EncodeToString(data), mime, nil
}
