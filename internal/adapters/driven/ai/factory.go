// Package ai builds embedding and LLM service adapters from settings.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	geminiembed "github.com/custodia-labs/voxqa/internal/adapters/driven/embedding/gemini"
	"github.com/custodia-labs/voxqa/internal/adapters/driven/embedding/hashing"
	ollamaembed "github.com/custodia-labs/voxqa/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/voxqa/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/voxqa/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/custodia-labs/voxqa/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/custodia-labs/voxqa/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/voxqa/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/voxqa/internal/core/domain"
	"github.com/custodia-labs/voxqa/internal/core/ports/driven"
	"github.com/custodia-labs/voxqa/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// fixHint is appended to configuration errors.
const fixHint = "run 'voxqa settings' to fix"

// InitResult holds the services built from settings.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	Warnings         []string // Non-fatal issues, e.g. an unreachable LLM.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() error {
	var errs []error
	if r.EmbeddingService != nil {
		errs = append(errs, r.EmbeddingService.Close())
	}
	if r.LLMService != nil {
		errs = append(errs, r.LLMService.Close())
	}
	return errors.Join(errs...)
}

// Init builds the services for settings. The embedding service is required;
// an LLM that cannot be built or reached is dropped with a warning so that
// ingestion keeps working. With validate set, both services are pinged.
func Init(ctx context.Context, settings domain.AppSettings, validate bool) (*InitResult, error) {
	create := CreateEmbeddingService
	if validate {
		create = func(s *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
			return CreateAndValidateEmbeddingService(ctx, s)
		}
	}
	embedder, err := create(&settings.Embedding)
	if err != nil {
		return nil, err
	}
	if embedder == nil {
		return nil, fmt.Errorf("%w: no embedding provider configured; %s", domain.ErrConfiguration, fixHint)
	}

	result := &InitResult{EmbeddingService: embedder}
	if !settings.LLM.IsConfigured() {
		return result, nil
	}

	var llm driven.LLMService
	if validate {
		llm, err = CreateAndValidateLLMService(ctx, &settings.LLM)
	} else {
		llm, err = CreateLLMService(&settings.LLM)
	}
	if err != nil {
		logger.Warn("LLM unavailable: %v", err)
		result.Warnings = append(result.Warnings, err.Error())
		return result, nil
	}
	result.LLMService = llm
	return result, nil
}

// CreateAndValidateEmbeddingService creates an embedding service and pings it.
func CreateAndValidateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil || svc == nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(pingCtx); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: %s embedding service unreachable: %w; %s",
			domain.ErrConfiguration, settings.Provider, err, fixHint)
	}
	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and pings it.
func CreateAndValidateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil || svc == nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(pingCtx); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: %s LLM service unreachable: %w; %s",
			domain.ErrConfiguration, settings.Provider, err, fixHint)
	}
	return svc, nil
}

// ValidateEmbeddingConfig creates a service for settings and pings it.
// Unconfigured settings are valid.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	svc, err := CreateAndValidateEmbeddingService(context.Background(), settings)
	if err != nil || svc == nil {
		return err
	}
	return svc.Close()
}

// ValidateLLMConfig creates a service for settings and pings it.
// Unconfigured settings are valid.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	svc, err := CreateAndValidateLLMService(context.Background(), settings)
	if err != nil || svc == nil {
		return err
	}
	return svc.Close()
}

// CreateEmbeddingService creates the embedding service for settings,
// rate limited for cloud providers. Returns nil if not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	var (
		svc driven.EmbeddingService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderLocal:
		svc, err = hashing.NewEmbeddingService(hashing.DimensionsForModel(settings.Model))

	case domain.AIProviderOllama:
		svc = ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: domain.EmbeddingDimensions()[settings.Model],
		})

	case domain.AIProviderOpenAI:
		svc, err = openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderGemini:
		svc, err = geminiembed.NewEmbeddingService(geminiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: domain.EmbeddingDimensions()[settings.Model],
		})

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider %q", domain.ErrConfiguration, settings.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}

	logger.Debug("Embedding service: %s/%s (%d dims)", settings.Provider, svc.ModelName(), svc.Dimensions())
	return WithEmbeddingRateLimit(svc, limiterFor(settings.Provider)), nil
}

// CreateLLMService creates the LLM service for settings,
// rate limited for cloud providers. Returns nil if not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	var (
		svc driven.LLMService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderOllama:
		svc = ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderOpenAI:
		svc, err = openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		svc, err = anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderGemini:
		svc, err = geminillm.NewLLMService(geminillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider %q", domain.ErrConfiguration, settings.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}

	logger.Debug("LLM service: %s/%s", settings.Provider, svc.ModelName())
	return WithLLMRateLimit(svc, limiterFor(settings.Provider)), nil
}
