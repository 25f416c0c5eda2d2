package driven

import "github.com/custodia-labs/voxqa/internal/core/domain"

// AIConfigValidator checks provider settings against the live service.
// Unconfigured settings pass: there is nothing to reach yet.
type AIConfigValidator interface {
	ValidateEmbedding(settings *domain.EmbeddingSettings) error
	ValidateLLM(settings *domain.LLMSettings) error
}
