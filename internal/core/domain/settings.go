package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or generation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is the Google Generative Language API.
	AIProviderGemini AIProvider = "gemini"

	// AIProviderLocal is the in-process hashing embedder.
	AIProviderLocal AIProvider = "local"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini, AIProviderLocal:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGemini
}

// IsLocal returns true if this provider runs on this machine.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderLocal
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	case AIProviderLocal:
		return "Hashing embedder (offline)"
	default:
		return unknownDescription
	}
}

// SettingsTarget selects which provider a credential belongs to.
type SettingsTarget string

// Settings targets.
const (
	TargetEmbedding SettingsTarget = "embedding"
	TargetLLM       SettingsTarget = "llm"
)

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL overrides the API endpoint.
	BaseURL string

	// APIKey authenticates cloud providers. Never logged.
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds generation provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL overrides the API endpoint.
	BaseURL string

	// APIKey authenticates cloud providers. Never logged.
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Provider == AIProviderLocal {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// PipelineConfig holds chunking, retrieval and generation parameters.
type PipelineConfig struct {
	// ChunkSize is the maximum chunk length in characters.
	ChunkSize int

	// ChunkOverlap is the maximum overlap between consecutive chunks.
	ChunkOverlap int

	// K is the number of chunks retrieved per query.
	K int

	// Temperature is the sampling temperature in [0, 1].
	Temperature float64

	// MaxOutputLength caps the generated answer length in tokens.
	MaxOutputLength int

	// EmbedBatchSize is the number of chunks per embedding call.
	EmbedBatchSize int

	// EmbedConcurrency bounds parallel embedding calls.
	EmbedConcurrency int

	// EmbedTimeout bounds a single embedding call.
	EmbedTimeout time.Duration

	// GenerateTimeout bounds a single generation call.
	GenerateTimeout time.Duration
}

// Pipeline defaults.
const (
	DefaultChunkSize        = 1000
	DefaultChunkOverlap     = 200
	DefaultK                = 5
	DefaultTemperature      = 0.4
	DefaultMaxOutputLength  = 500
	DefaultEmbedBatchSize   = 32
	DefaultEmbedConcurrency = 4
	DefaultEmbedTimeout     = 60 * time.Second
	DefaultGenerateTimeout  = 120 * time.Second
)

// DefaultPipelineConfig returns the default pipeline configuration.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		ChunkSize:        DefaultChunkSize,
		ChunkOverlap:     DefaultChunkOverlap,
		K:                DefaultK,
		Temperature:      DefaultTemperature,
		MaxOutputLength:  DefaultMaxOutputLength,
		EmbedBatchSize:   DefaultEmbedBatchSize,
		EmbedConcurrency: DefaultEmbedConcurrency,
		EmbedTimeout:     DefaultEmbedTimeout,
		GenerateTimeout:  DefaultGenerateTimeout,
	}
}

// Validate checks every parameter and returns ErrConfiguration on the first violation.
func (c PipelineConfig) Validate() error {
	if err := c.IngestOptions().Validate(); err != nil {
		return err
	}
	if err := c.QueryOptions().Validate(); err != nil {
		return err
	}
	if c.EmbedBatchSize < 1 {
		return fmt.Errorf("%w: embed batch size must be positive, got %d", ErrConfiguration, c.EmbedBatchSize)
	}
	if c.EmbedConcurrency < 1 {
		return fmt.Errorf("%w: embed concurrency must be positive, got %d", ErrConfiguration, c.EmbedConcurrency)
	}
	if c.EmbedTimeout < 0 || c.GenerateTimeout < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrConfiguration)
	}
	return nil
}

// IngestOptions returns the chunking options of this config.
func (c PipelineConfig) IngestOptions() IngestOptions {
	return IngestOptions{ChunkSize: c.ChunkSize, ChunkOverlap: c.ChunkOverlap}
}

// QueryOptions returns the retrieval and generation options of this config.
func (c PipelineConfig) QueryOptions() QueryOptions {
	return QueryOptions{K: c.K, Temperature: c.Temperature, MaxOutputLength: c.MaxOutputLength}
}

// ProcessorConfigs returns per-processor configuration for the post-processor registry.
func (c PipelineConfig) ProcessorConfigs() map[string]map[string]any {
	return c.IngestOptions().ProcessorConfigs()
}

// IngestOptions configures a single ingestion.
type IngestOptions struct {
	ChunkSize    int
	ChunkOverlap int
}

// Validate checks the chunking parameters.
func (o IngestOptions) Validate() error {
	if o.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrConfiguration, o.ChunkSize)
	}
	if o.ChunkOverlap < 0 {
		return fmt.Errorf("%w: chunk overlap must not be negative, got %d", ErrConfiguration, o.ChunkOverlap)
	}
	if o.ChunkOverlap >= o.ChunkSize {
		return fmt.Errorf("%w: chunk overlap %d must be smaller than chunk size %d",
			ErrConfiguration, o.ChunkOverlap, o.ChunkSize)
	}
	return nil
}

// ProcessorConfigs returns the chunker configuration map.
func (o IngestOptions) ProcessorConfigs() map[string]map[string]any {
	return map[string]map[string]any{
		"chunker": {
			"chunk_size": o.ChunkSize,
			"overlap":    o.ChunkOverlap,
		},
	}
}

// QueryOptions configures a single query.
type QueryOptions struct {
	K               int
	Temperature     float64
	MaxOutputLength int
}

// Validate checks the retrieval and generation parameters.
func (o QueryOptions) Validate() error {
	if o.K < 1 {
		return fmt.Errorf("%w: k must be at least 1, got %d", ErrConfiguration, o.K)
	}
	if o.Temperature < 0 || o.Temperature > 1 {
		return fmt.Errorf("%w: temperature must be within [0, 1], got %g", ErrConfiguration, o.Temperature)
	}
	if o.MaxOutputLength <= 0 {
		return fmt.Errorf("%w: max output length must be positive, got %d", ErrConfiguration, o.MaxOutputLength)
	}
	return nil
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Pipeline holds chunking, retrieval and generation parameters.
	Pipeline PipelineConfig

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds generation provider settings.
	LLM LLMSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// Embeddings default to the offline hashing embedder; generation is left
// unconfigured until a provider is chosen.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Pipeline: DefaultPipelineConfig(),
		Embedding: EmbeddingSettings{
			Provider: AIProviderLocal,
			Model:    DefaultEmbeddingModels()[AIProviderLocal],
		},
		LLM: LLMSettings{},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderLocal,
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderGemini,
	}
}

// AllLLMProviders returns providers that support generation.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderGemini,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderLocal:  "hashing-512",
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderGemini: "models/embedding-001",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderGemini:    "gemini-1.5-pro",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Local
		"hashing-512": 512,
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Gemini models
		"models/embedding-001":      768,
		"models/text-embedding-004": 768,
	}
}
