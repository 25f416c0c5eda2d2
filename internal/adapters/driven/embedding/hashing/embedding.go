// Package hashing provides an offline embedding service.
//
// Texts are embedded with the hashing trick: each lower-cased word and each
// pair of adjacent words is hashed to a signed bucket, and the bucket counts
// are L2-normalised. Texts that share words land close together under cosine
// similarity. No model or network is involved, so results are deterministic.
package hashing

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/custodia-labs/voxqa/internal/core/domain"
	"github.com/custodia-labs/voxqa/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interfaces.
var (
	_ driven.EmbeddingService = (*EmbeddingService)(nil)
	_ driven.ProviderNamer    = (*EmbeddingService)(nil)
)

// DefaultDimensions is the vector size used when none is configured.
const DefaultDimensions = 512

// bigramWeight scales word pairs relative to single words.
const bigramWeight = 0.5

// stopwords carry no topical signal and are skipped.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "in": true, "is": true,
	"it": true, "of": true, "on": true, "or": true, "that": true, "the": true,
	"this": true, "to": true, "was": true, "what": true, "which": true, "who": true,
	"with": true,
}

// EmbeddingService embeds text by feature hashing.
type EmbeddingService struct {
	dimensions int
}

// NewEmbeddingService creates a hashing embedder producing vectors of size
// dimensions. Zero selects DefaultDimensions.
func NewEmbeddingService(dimensions int) (*EmbeddingService, error) {
	if dimensions == 0 {
		dimensions = DefaultDimensions
	}
	if dimensions < 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive, got %d", domain.ErrConfiguration, dimensions)
	}
	return &EmbeddingService{dimensions: dimensions}, nil
}

// DimensionsForModel parses the size from a model name like "hashing-512".
// Unknown names return DefaultDimensions.
func DimensionsForModel(model string) int {
	var n int
	if _, err := fmt.Sscanf(model, "hashing-%d", &n); err != nil || n <= 0 {
		return DefaultDimensions
	}
	return n
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float64, s.dimensions)
	words := tokenize(text)
	for i, w := range words {
		s.add(vec, w, 1)
		if i > 0 {
			s.add(vec, words[i-1]+" "+w, bigramWeight)
		}
	}

	var sum float64
	for _, v := range vec {
		sum += v * v
	}

	out := make([]float32, s.dimensions)
	if sum == 0 {
		return out, nil
	}
	norm := math.Sqrt(sum)
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out, nil
}

// add hashes feature into vec with weight. One bit of the hash picks the sign
// so that collisions tend to cancel.
func (s *EmbeddingService) add(vec []float64, feature string, weight float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()

	bucket := int(sum % uint64(s.dimensions))
	if sum>>63 == 1 {
		weight = -weight
	}
	vec[bucket] += weight
}

// tokenize lower-cases text and splits it into words, dropping stopwords.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	words := fields[:0]
	for _, f := range fields {
		if !stopwords[f] {
			words = append(words, f)
		}
	}
	return words
}

// EmbedBatch generates embeddings for multiple texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embedding, err := s.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		embeddings[i] = embedding
	}
	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns "hashing-<dimensions>".
func (s *EmbeddingService) ModelName() string {
	return fmt.Sprintf("hashing-%d", s.dimensions)
}

// ProviderName returns the local provider name.
func (s *EmbeddingService) ProviderName() string {
	return string(domain.AIProviderLocal)
}

// Ping always succeeds.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
