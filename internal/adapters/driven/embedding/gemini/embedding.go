// Package gemini provides an embedding service adapter for the Google
// Generative Language API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/voxqa/internal/adapters/driven/ai/jsonclient"
	"github.com/custodia-labs/voxqa/internal/core/ports/driven"
)

var (
	_ driven.EmbeddingService = (*EmbeddingService)(nil)
	_ driven.ProviderNamer    = (*EmbeddingService)(nil)
)

// Default configuration values.
const (
	DefaultBaseURL    = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel      = "models/embedding-001"
	DefaultTimeout    = 60 * time.Second
	DefaultDimensions = 768

	// MaxBatchSize is the request limit of batchEmbedContents.
	MaxBatchSize = 100
)

// Config holds configuration for the Gemini embedding service.
type Config struct {
	// APIKey is the Google API key (required). Sent as a header, never in the URL.
	APIKey string

	// BaseURL overrides the API base URL.
	BaseURL string

	// Model is the embedding model, with or without the "models/" prefix.
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// Dimensions is the expected vector size (default: 768).
	Dimensions int
}

// EmbeddingService generates embeddings with batchEmbedContents.
type EmbeddingService struct {
	api        *jsonclient.Client
	model      string
	dimensions int
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type embedContentRequest struct {
	Model   string  `json:"model"`
	Content content `json:"content"`
}

type batchRequest struct {
	Requests []embedContentRequest `json:"requests"`
}

type batchResponse struct {
	Embeddings []struct {
		Values []float32 `json:"values"`
	} `json:"embeddings"`
}

// NewEmbeddingService creates a new Gemini embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if !strings.HasPrefix(cfg.Model, "models/") {
		cfg.Model = "models/" + cfg.Model
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}

	return &EmbeddingService{
		api:        jsonclient.New("gemini", cfg.BaseURL, cfg.Timeout, apiKeyHeader(cfg.APIKey)),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in requests of at most MaxBatchSize, in input order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += MaxBatchSize {
		end := min(start+MaxBatchSize, len(texts))
		batch, err := s.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}
	if len(vectors) == 0 {
		return nil, nil
	}
	return vectors, nil
}

func (s *EmbeddingService) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	reqBody := batchRequest{Requests: make([]embedContentRequest, len(texts))}
	for i, text := range texts {
		reqBody.Requests[i] = embedContentRequest{
			Model:   s.model,
			Content: content{Parts: []part{{Text: text}}},
		}
	}

	var out batchResponse
	if err := s.api.Post(ctx, "/"+s.model+":batchEmbedContents", reqBody, &out); err != nil {
		return nil, err
	}
	if len(out.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini: got %d embeddings for %d inputs", len(out.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for i, e := range out.Embeddings {
		vectors[i] = e.Values
	}
	return vectors, nil
}

// Dimensions returns the expected embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the model resource name, e.g. "models/embedding-001".
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// ProviderName returns "gemini".
func (s *EmbeddingService) ProviderName() string {
	return "gemini"
}

// Ping validates the key by fetching the model description.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.api.Get(ctx, "/"+s.model, nil)
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

// apiKeyHeader keeps the key out of request URLs.
func apiKeyHeader(key string) http.Header {
	h := http.Header{}
	h.Set("x-goog-api-key", key)
	return h
}
