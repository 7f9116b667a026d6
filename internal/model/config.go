package model

import "time"

// Config holds the full application configuration.
type Config struct {
	GenAI       GenAIConfig       `yaml:"genai"`
	Cache       CacheConfig       `yaml:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Language    string            `yaml:"language"`
}

// GenAIConfig configures the generative-model provider.
type GenAIConfig struct {
	// Provider name: "gemini" or "openai"
	Provider string `yaml:"provider"`

	// Model name (provider-specific)
	Model string `yaml:"model"`

	// ImageModel for illustration generation (provider-specific)
	ImageModel string `yaml:"image_model"`

	// APIKey for the provider
	APIKey string `yaml:"api_key"`

	// BaseURL for custom endpoints (tests, proxies)
	BaseURL string `yaml:"base_url"`

	// Timeout for a single API request, in seconds
	Timeout int `yaml:"timeout"`

	// MaxTokens for response generation (0 = provider default)
	MaxTokens int `yaml:"max_tokens"`

	// RequestsPerSecond throttles outbound calls (0 = unlimited)
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// Retry settings for rate-limited calls
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
}

// CacheConfig configures the advisory result cache.
type CacheConfig struct {
	// Dir for the disk layer (default: ~/.geosick/cache)
	Dir string `yaml:"dir"`

	// Disabled turns caching off entirely. Every orchestrator must
	// behave identically with the cache disabled.
	Disabled bool `yaml:"disabled"`
}

// ConcurrencyConfig bounds the fan-out work.
type ConcurrencyConfig struct {
	// GeocodeWorkers bounds the per-item coordinate repair fan-out.
	GeocodeWorkers int `yaml:"geocode_workers"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		GenAI: GenAIConfig{
			Provider:     "gemini",
			Model:        "gemini-2.5-flash",
			ImageModel:   "imagen-4.0-generate-001",
			Timeout:      60,
			MaxAttempts:  3,
			InitialDelay: time.Second,
		},
		Cache: CacheConfig{},
		Concurrency: ConcurrencyConfig{
			GeocodeWorkers: 4,
		},
		Language: "English",
	}
}
