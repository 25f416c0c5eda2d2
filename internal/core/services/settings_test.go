package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/voxqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/voxqa/internal/core/domain"
)

// clearAPIKeyEnv hides API keys from the developer's environment.
func clearAPIKeyEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{EnvAPIKey, "OPENAI_API_KEY", "GOOGLE_API_KEY", "ANTHROPIC_API_KEY"} {
		t.Setenv(name, "")
	}
}

type mockValidator struct {
	embedding *domain.EmbeddingSettings
	llm       *domain.LLMSettings
	err       error
}

func (m *mockValidator) ValidateEmbedding(cfg *domain.EmbeddingSettings) error {
	m.embedding = cfg
	return m.err
}

func (m *mockValidator) ValidateLLM(cfg *domain.LLMSettings) error {
	m.llm = cfg
	return m.err
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAppSettings(), *settings)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("chunking.chunk_size", 800)
	_ = store.Set("chunking.chunk_overlap", 0)
	_ = store.Set("retrieval.k", 3)
	_ = store.Set("generation.temperature", 0.0)
	_ = store.Set("generation.timeout", "45s")
	_ = store.Set("embedding.provider", "openai")
	_ = store.Set("llm.provider", "gemini")

	settings, err := NewSettingsService(store, nil).Get()

	require.NoError(t, err)
	assert.Equal(t, 800, settings.Pipeline.ChunkSize)
	assert.Equal(t, 0, settings.Pipeline.ChunkOverlap, "stored zero is kept")
	assert.Equal(t, 3, settings.Pipeline.K)
	assert.Equal(t, 0.0, settings.Pipeline.Temperature, "stored zero is kept")
	assert.Equal(t, 45*time.Second, settings.Pipeline.GenerateTimeout)
	assert.Equal(t, domain.DefaultEmbedTimeout, settings.Pipeline.EmbedTimeout)
	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", settings.Embedding.Model, "model defaults per provider")
	assert.Equal(t, "gemini-1.5-pro", settings.LLM.Model)
}

func TestSettingsService_Get_InvalidValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("embedding.provider", "invalid_provider")

	settings, err := NewSettingsService(store, nil).Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderLocal, settings.Embedding.Provider)

	_ = store.Set("embedding.timeout", "soon")
	_, err = NewSettingsService(store, nil).Get()
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestSettingsService_SaveAndGet(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	settings := domain.DefaultAppSettings()
	settings.Pipeline.K = 8
	settings.Embedding = domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		Model:    "all-minilm",
		BaseURL:  "http://gpu-box:11434",
	}
	settings.LLM = domain.LLMSettings{
		Provider: domain.AIProviderOpenAI,
		Model:    "gpt-4o",
		APIKey:   "sk-test",
	}
	require.NoError(t, service.Save(&settings))

	got, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, settings, *got)
}

func TestSettingsService_Save_EmptyKeyKeepsStoredKey(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("llm.api_key", "sk-stored")
	service := NewSettingsService(store, nil)

	settings, err := service.Get()
	require.NoError(t, err)
	settings.LLM.APIKey = ""
	require.NoError(t, service.Save(settings))

	assert.Equal(t, "sk-stored", store.GetString("llm.api_key"))
}

func TestSettingsService_Effective_EnvironmentKeys(t *testing.T) {
	clearAPIKeyEnv(t)
	store := memory.NewConfigStore()
	_ = store.Set("embedding.provider", "gemini")
	_ = store.Set("llm.provider", "openai")
	service := NewSettingsService(store, nil)

	t.Setenv("GOOGLE_API_KEY", "google-key")
	t.Setenv(EnvAPIKey, "generic-key")

	settings, err := service.Effective()
	require.NoError(t, err)
	assert.Equal(t, "google-key", settings.Embedding.APIKey, "provider variable wins")
	assert.Equal(t, "generic-key", settings.LLM.APIKey, "generic variable as fallback")

	stored, err := service.Get()
	require.NoError(t, err)
	assert.Empty(t, stored.Embedding.APIKey, "Get never reads the environment")

	_ = store.Set("llm.api_key", "sk-config")
	settings, err = service.Effective()
	require.NoError(t, err)
	assert.Equal(t, "sk-config", settings.LLM.APIKey, "configured key wins")
}

func TestSettingsService_Effective_LocalProvidersGetNoKey(t *testing.T) {
	t.Setenv(EnvAPIKey, "generic-key")

	settings, err := NewSettingsService(memory.NewConfigStore(), nil).Effective()

	require.NoError(t, err)
	assert.Empty(t, settings.Embedding.APIKey)
}

func TestSettingsService_SetPipeline(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	cfg := domain.DefaultPipelineConfig()
	cfg.ChunkSize = 500
	cfg.ChunkOverlap = 50
	cfg.Temperature = 0
	require.NoError(t, service.SetPipeline(cfg))

	got, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, cfg, got.Pipeline)

	cfg.ChunkOverlap = 500
	err = service.SetPipeline(cfg)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Equal(t, 50, store.GetInt("chunking.chunk_overlap"), "invalid config is not stored")
}

func TestSettingsService_SetValue(t *testing.T) {
	clearAPIKeyEnv(t)

	tests := []struct {
		name    string
		key     string
		value   string
		check   func(t *testing.T, s *domain.AppSettings)
		wantErr error
	}{
		{"chunk size", "chunking.chunk_size", "1200", func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, 1200, s.Pipeline.ChunkSize)
		}, nil},
		{"k", "retrieval.k", "9", func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, 9, s.Pipeline.K)
		}, nil},
		{"temperature", "generation.temperature", "0.75", func(t *testing.T, s *domain.AppSettings) {
			assert.InDelta(t, 0.75, s.Pipeline.Temperature, 1e-9)
		}, nil},
		{"timeout", "embedding.timeout", "2m", func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, 2*time.Minute, s.Pipeline.EmbedTimeout)
		}, nil},
		{"model", "llm.model", "llama3.1", func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, "llama3.1", s.LLM.Model)
		}, nil},
		{"provider", "llm.provider", "ollama", func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, domain.AIProviderOllama, s.LLM.Provider)
			assert.Equal(t, "http://localhost:11434", s.LLM.BaseURL)
		}, nil},
		{"not a number", "retrieval.k", "many", nil, domain.ErrConfiguration},
		{"out of range", "generation.temperature", "2", nil, domain.ErrConfiguration},
		{"overlap too large", "chunking.chunk_overlap", "1000", nil, domain.ErrConfiguration},
		{"bad duration", "generation.timeout", "forever", nil, domain.ErrConfiguration},
		{"cloud provider without key", "embedding.provider", "openai", nil, domain.ErrConfiguration},
		{"api key", "llm.api_key", "sk", nil, domain.ErrInvalidInput},
		{"unknown", "search.mode", "hybrid", nil, domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStore(), nil)

			err := service.SetValue(tt.key, tt.value)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			settings, err := service.Get()
			require.NoError(t, err)
			tt.check(t, settings)
		})
	}
}

func TestSettingKeys(t *testing.T) {
	keys := SettingKeys()
	assert.Contains(t, keys, "chunking.chunk_size")
	assert.Contains(t, keys, "generation.max_output_length")
	assert.NotContains(t, keys, "embedding.api_key")
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	clearAPIKeyEnv(t)

	t.Run("cloud provider with key", func(t *testing.T) {
		service := NewSettingsService(memory.NewConfigStore(), nil)
		require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOpenAI, "", "sk-test"))

		settings, err := service.Get()
		require.NoError(t, err)
		assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
		assert.Equal(t, "text-embedding-3-small", settings.Embedding.Model)
		assert.Equal(t, "sk-test", settings.Embedding.APIKey)
		assert.Empty(t, settings.Embedding.BaseURL)
	})

	t.Run("cloud provider with key in environment", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-env")
		service := NewSettingsService(memory.NewConfigStore(), nil)
		require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOpenAI, "text-embedding-3-large", ""))

		settings, err := service.Get()
		require.NoError(t, err)
		assert.Equal(t, "text-embedding-3-large", settings.Embedding.Model)
		assert.Empty(t, settings.Embedding.APIKey, "environment keys are not stored")
	})

	t.Run("ollama gets default URL", func(t *testing.T) {
		service := NewSettingsService(memory.NewConfigStore(), nil)
		require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOllama, "", ""))

		settings, err := service.Get()
		require.NoError(t, err)
		assert.Equal(t, "nomic-embed-text", settings.Embedding.Model)
		assert.Equal(t, "http://localhost:11434", settings.Embedding.BaseURL)
	})

	t.Run("rejections", func(t *testing.T) {
		service := NewSettingsService(memory.NewConfigStore(), nil)
		assert.ErrorIs(t, service.SetEmbeddingProvider("invalid", "", ""), domain.ErrConfiguration)
		assert.ErrorIs(t, service.SetEmbeddingProvider(domain.AIProviderAnthropic, "", "key"), domain.ErrConfiguration)
		assert.ErrorIs(t, service.SetEmbeddingProvider(domain.AIProviderGemini, "", ""), domain.ErrConfiguration)
	})
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	clearAPIKeyEnv(t)
	service := NewSettingsService(memory.NewConfigStore(), nil)

	require.NoError(t, service.SetLLMProvider(domain.AIProviderAnthropic, "", "sk-ant"))
	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderAnthropic, settings.LLM.Provider)
	assert.Equal(t, "claude-3-5-sonnet-latest", settings.LLM.Model)

	assert.ErrorIs(t, service.SetLLMProvider(domain.AIProviderLocal, "", ""), domain.ErrConfiguration)
	assert.ErrorIs(t, service.SetLLMProvider(domain.AIProviderOpenAI, "", ""), domain.ErrConfiguration)
}

func TestSettingsService_SetAPIKey(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	require.NoError(t, service.SetAPIKey(domain.TargetEmbedding, "  sk-embed \n"))
	require.NoError(t, service.SetAPIKey(domain.TargetLLM, "sk-llm"))

	assert.Equal(t, "sk-embed", store.GetString("embedding.api_key"))
	assert.Equal(t, "sk-llm", store.GetString("llm.api_key"))

	assert.ErrorIs(t, service.SetAPIKey(domain.TargetLLM, "   "), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.SetAPIKey("search", "sk"), domain.ErrInvalidInput)
}

func TestSettingsService_Validate(t *testing.T) {
	clearAPIKeyEnv(t)

	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, NewSettingsService(memory.NewConfigStore(), nil).Validate())
	})

	t.Run("invalid stored pipeline", func(t *testing.T) {
		store := memory.NewConfigStore()
		_ = store.Set("retrieval.k", 0)
		assert.ErrorIs(t, NewSettingsService(store, nil).Validate(), domain.ErrConfiguration)
	})

	t.Run("embedding key missing", func(t *testing.T) {
		store := memory.NewConfigStore()
		_ = store.Set("embedding.provider", "openai")
		assert.ErrorIs(t, NewSettingsService(store, nil).Validate(), domain.ErrConfiguration)
	})

	t.Run("llm key from environment", func(t *testing.T) {
		store := memory.NewConfigStore()
		_ = store.Set("llm.provider", "anthropic")
		service := NewSettingsService(store, nil)
		assert.ErrorIs(t, service.Validate(), domain.ErrConfiguration)

		t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
		assert.NoError(t, service.Validate())
	})
}

func TestSettingsService_ValidateProviders(t *testing.T) {
	clearAPIKeyEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-env")

	store := memory.NewConfigStore()
	_ = store.Set("llm.provider", "openai")
	validator := &mockValidator{}
	service := NewSettingsService(store, validator)

	require.NoError(t, service.ValidateEmbeddingConfig())
	assert.Equal(t, domain.AIProviderLocal, validator.embedding.Provider)

	require.NoError(t, service.ValidateLLMConfig())
	assert.Equal(t, "sk-env", validator.llm.APIKey, "validation uses effective settings")

	validator.err = errors.New("unreachable")
	assert.Error(t, service.ValidateLLMConfig())

	assert.NoError(t, NewSettingsService(store, nil).ValidateLLMConfig())
}

func TestSettingsService_GetDefaults(t *testing.T) {
	assert.Equal(t, domain.DefaultAppSettings(), NewSettingsService(memory.NewConfigStore(), nil).GetDefaults())
}
