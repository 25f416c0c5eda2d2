package driving

import "github.com/custodia-labs/voxqa/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Effective returns Get with missing API keys filled from the environment.
	Effective() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetPipeline validates and stores chunking, retrieval and generation parameters.
	SetPipeline(cfg domain.PipelineConfig) error

	// SetValue parses and stores a single setting by its config key.
	SetValue(key, value string) error

	// Keys lists the keys accepted by SetValue.
	Keys() []string

	// SetAPIKey stores the API key for the embedding or LLM provider.
	SetAPIKey(target domain.SettingsTarget, apiKey string) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetLLMProvider configures the LLM provider.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// Validate checks the current settings.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
	ValidateEmbeddingConfig() error

	// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
	ValidateLLMConfig() error
}
