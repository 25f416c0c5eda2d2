package services

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/voxqa/internal/core/domain"
	"github.com/custodia-labs/voxqa/internal/core/ports/driven"
	"github.com/custodia-labs/voxqa/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyChunkSize        = "chunking.chunk_size"
	keyChunkOverlap     = "chunking.chunk_overlap"
	keyK                = "retrieval.k"
	keyTemperature      = "generation.temperature"
	keyMaxOutputLength  = "generation.max_output_length"
	keyGenerateTimeout  = "generation.timeout"
	keyEmbedBatchSize   = "embedding.batch_size"
	keyEmbedConcurrency = "embedding.concurrency"
	keyEmbedTimeout     = "embedding.timeout"
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
)

// EnvAPIKey is read for any provider whose API key is not configured.
//
//nolint:gosec // G101: environment variable name, not a credential.
const EnvAPIKey = "VOXQA_API_KEY"

// providerEnvKeys are the provider-specific API key variables, checked before EnvAPIKey.
var providerEnvKeys = map[domain.AIProvider]string{
	domain.AIProviderOpenAI:    "OPENAI_API_KEY",
	domain.AIProviderGemini:    "GOOGLE_API_KEY",
	domain.AIProviderAnthropic: "ANTHROPIC_API_KEY",
}

const defaultOllamaURL = "http://localhost:11434"

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves the stored settings, with defaults for anything unset.
// API keys are returned as stored; see Effective for environment fallbacks.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()
	p := defaults.Pipeline

	embedProvider := s.getProvider(keyEmbedProvider, defaults.Embedding.Provider)
	llmProvider := s.getProvider(keyLLMProvider, defaults.LLM.Provider)

	embedModel := s.configStore.GetString(keyEmbedModel)
	if embedModel == "" {
		embedModel = domain.DefaultEmbeddingModels()[embedProvider]
	}
	llmModel := s.configStore.GetString(keyLLMModel)
	if llmModel == "" {
		llmModel = domain.DefaultLLMModels()[llmProvider]
	}

	embedTimeout, err := s.getDuration(keyEmbedTimeout, p.EmbedTimeout)
	if err != nil {
		return nil, err
	}
	generateTimeout, err := s.getDuration(keyGenerateTimeout, p.GenerateTimeout)
	if err != nil {
		return nil, err
	}

	return &domain.AppSettings{
		Pipeline: domain.PipelineConfig{
			ChunkSize:        s.getInt(keyChunkSize, p.ChunkSize),
			ChunkOverlap:     s.getInt(keyChunkOverlap, p.ChunkOverlap),
			K:                s.getInt(keyK, p.K),
			Temperature:      s.getFloat(keyTemperature, p.Temperature),
			MaxOutputLength:  s.getInt(keyMaxOutputLength, p.MaxOutputLength),
			EmbedBatchSize:   s.getInt(keyEmbedBatchSize, p.EmbedBatchSize),
			EmbedConcurrency: s.getInt(keyEmbedConcurrency, p.EmbedConcurrency),
			EmbedTimeout:     embedTimeout,
			GenerateTimeout:  generateTimeout,
		},
		Embedding: domain.EmbeddingSettings{
			Provider: embedProvider,
			Model:    embedModel,
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider: llmProvider,
			Model:    llmModel,
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
	}, nil
}

// Effective returns Get with missing API keys filled from the environment.
// The result is for building services; it is never saved.
func (s *SettingsService) Effective() (*domain.AppSettings, error) {
	settings, err := s.Get()
	if err != nil {
		return nil, err
	}
	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = envAPIKey(settings.Embedding.Provider)
	}
	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = envAPIKey(settings.LLM.Provider)
	}
	return settings, nil
}

// envAPIKey returns the API key for provider from the environment.
func envAPIKey(provider domain.AIProvider) string {
	if !provider.RequiresAPIKey() {
		return ""
	}
	if name, ok := providerEnvKeys[provider]; ok {
		if key := os.Getenv(name); key != "" {
			return key
		}
	}
	return os.Getenv(EnvAPIKey)
}

// Save persists application settings. Empty API keys leave stored keys untouched.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := s.savePipeline(settings.Pipeline); err != nil {
		return err
	}

	// Save embedding settings
	if err := s.configStore.Set(keyEmbedProvider, settings.Embedding.Provider.String()); err != nil {
		return fmt.Errorf("save embedding provider: %w", err)
	}
	if err := s.configStore.Set(keyEmbedModel, settings.Embedding.Model); err != nil {
		return fmt.Errorf("save embedding model: %w", err)
	}
	if err := s.configStore.Set(keyEmbedBaseURL, settings.Embedding.BaseURL); err != nil {
		return fmt.Errorf("save embedding base_url: %w", err)
	}
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}

	// Save LLM settings
	if err := s.configStore.Set(keyLLMProvider, settings.LLM.Provider.String()); err != nil {
		return fmt.Errorf("save llm provider: %w", err)
	}
	if err := s.configStore.Set(keyLLMModel, settings.LLM.Model); err != nil {
		return fmt.Errorf("save llm model: %w", err)
	}
	if err := s.configStore.Set(keyLLMBaseURL, settings.LLM.BaseURL); err != nil {
		return fmt.Errorf("save llm base_url: %w", err)
	}
	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}

	return nil
}

// SetPipeline validates and stores chunking, retrieval and generation parameters.
func (s *SettingsService) SetPipeline(cfg domain.PipelineConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	return s.savePipeline(cfg)
}

func (s *SettingsService) savePipeline(cfg domain.PipelineConfig) error {
	values := []struct {
		key   string
		value any
	}{
		{keyChunkSize, cfg.ChunkSize},
		{keyChunkOverlap, cfg.ChunkOverlap},
		{keyK, cfg.K},
		{keyTemperature, cfg.Temperature},
		{keyMaxOutputLength, cfg.MaxOutputLength},
		{keyEmbedBatchSize, cfg.EmbedBatchSize},
		{keyEmbedConcurrency, cfg.EmbedConcurrency},
		{keyEmbedTimeout, cfg.EmbedTimeout.String()},
		{keyGenerateTimeout, cfg.GenerateTimeout.String()},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// SetValue parses value for one pipeline or provider key and stores it.
// Pipeline values are validated together with the rest of the configuration.
func (s *SettingsService) SetValue(key, value string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	p := &settings.Pipeline

	switch key {
	case keyChunkSize, keyChunkOverlap, keyK, keyMaxOutputLength, keyEmbedBatchSize, keyEmbedConcurrency:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer, got %q", domain.ErrConfiguration, key, value)
		}
		switch key {
		case keyChunkSize:
			p.ChunkSize = n
		case keyChunkOverlap:
			p.ChunkOverlap = n
		case keyK:
			p.K = n
		case keyMaxOutputLength:
			p.MaxOutputLength = n
		case keyEmbedBatchSize:
			p.EmbedBatchSize = n
		default:
			p.EmbedConcurrency = n
		}
	case keyTemperature:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number, got %q", domain.ErrConfiguration, key, value)
		}
		p.Temperature = f
	case keyEmbedTimeout, keyGenerateTimeout:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be a duration like 30s, got %q", domain.ErrConfiguration, key, value)
		}
		if key == keyEmbedTimeout {
			p.EmbedTimeout = d
		} else {
			p.GenerateTimeout = d
		}
	case keyEmbedProvider:
		return s.SetEmbeddingProvider(domain.AIProvider(value), "", settings.Embedding.APIKey)
	case keyLLMProvider:
		return s.SetLLMProvider(domain.AIProvider(value), "", settings.LLM.APIKey)
	case keyEmbedModel, keyEmbedBaseURL, keyLLMModel, keyLLMBaseURL:
		return s.configStore.Set(key, value)
	case keyEmbedAPIKey, keyLLMAPIKey:
		return fmt.Errorf("%w: use `settings api-key` to store API keys", domain.ErrInvalidInput)
	default:
		return fmt.Errorf("%w: unknown setting %q (known: %s)",
			domain.ErrInvalidInput, key, strings.Join(SettingKeys(), ", "))
	}

	return s.SetPipeline(*p)
}

// SettingKeys returns the keys accepted by SetValue.
func SettingKeys() []string {
	return []string{
		keyChunkSize, keyChunkOverlap, keyK, keyTemperature, keyMaxOutputLength,
		keyEmbedBatchSize, keyEmbedConcurrency, keyEmbedTimeout, keyGenerateTimeout,
		keyEmbedProvider, keyEmbedModel, keyEmbedBaseURL,
		keyLLMProvider, keyLLMModel, keyLLMBaseURL,
	}
}

// Keys returns SettingKeys.
func (s *SettingsService) Keys() []string {
	return SettingKeys()
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrConfiguration, provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrConfiguration, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" && envAPIKey(provider) == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrConfiguration, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.Embedding.Model = model
	} else {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}

	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() || !slices.Contains(domain.AllLLMProviders(), provider) {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrConfiguration, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" && envAPIKey(provider) == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrConfiguration, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	if model != "" {
		settings.LLM.Model = model
	} else {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}
	settings.LLM.BaseURL = baseURLFor(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// baseURLFor keeps a configured Ollama URL, defaults it when missing, and
// clears it for cloud providers.
func baseURLFor(provider domain.AIProvider, current string) string {
	if provider != domain.AIProviderOllama {
		return ""
	}
	if current == "" {
		return defaultOllamaURL
	}
	return current
}

// SetAPIKey stores the API key used by the embedding or LLM provider.
func (s *SettingsService) SetAPIKey(target domain.SettingsTarget, apiKey string) error {
	if strings.TrimSpace(apiKey) == "" {
		return fmt.Errorf("%w: API key is empty", domain.ErrInvalidInput)
	}

	var key string
	switch target {
	case domain.TargetEmbedding:
		key = keyEmbedAPIKey
	case domain.TargetLLM:
		key = keyLLMAPIKey
	default:
		return fmt.Errorf("%w: unknown settings target %q", domain.ErrInvalidInput, target)
	}

	if err := s.configStore.Set(key, strings.TrimSpace(apiKey)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Validate checks that the stored pipeline configuration is valid, that the
// embedding provider is usable, and that a configured LLM provider is usable.
// An unset LLM provider is allowed: ingestion works without one.
func (s *SettingsService) Validate() error {
	settings, err := s.Effective()
	if err != nil {
		return err
	}

	if err := settings.Pipeline.Validate(); err != nil {
		return err
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q is not configured",
			domain.ErrConfiguration, settings.Embedding.Provider)
	}
	if settings.LLM.Provider != "" && !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: LLM provider %q is not configured",
			domain.ErrConfiguration, settings.LLM.Provider)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Effective()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Effective()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.
// Zero is a valid value for several keys, so presence decides.

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", domain.ErrConfiguration, key, err)
	}
	return d, nil
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
