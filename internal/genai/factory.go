package genai

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/geosick/geosick/internal/model"
)

// NewClient creates a provider client based on configuration.
func NewClient(config model.GenAIConfig, log zerolog.Logger) (Client, error) {
	switch strings.ToLower(config.Provider) {
	case "gemini", "":
		return NewGeminiClient(config, log)

	case "openai":
		return NewOpenAIClient(config, log)

	default:
		return nil, fmt.Errorf("unknown provider: %s (supported: gemini, openai)", config.Provider)
	}
}
