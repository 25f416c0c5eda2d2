package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/voxqa/internal/core/domain"
	"github.com/custodia-labs/voxqa/internal/core/ports/driven"
	"github.com/custodia-labs/voxqa/internal/logger"
)

// Retriever finds the chunks most similar to a query.
// It never modifies the index.
type Retriever struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	// timeout bounds the query embedding call; zero means no bound.
	timeout time.Duration
}

// NewRetriever creates a retriever over index, embedding queries with embedder.
func NewRetriever(embedder driven.EmbeddingService, index driven.VectorIndex) *Retriever {
	return &Retriever{embedder: embedder, index: index}
}

// WithTimeout bounds each query embedding call by d and returns r.
func (r *Retriever) WithTimeout(d time.Duration) *Retriever {
	r.timeout = d
	return r
}

// Retrieve returns up to k chunks, most similar first.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]domain.Chunk, error) {
	scored, err := r.RetrieveScored(ctx, query, k)
	if err != nil {
		return nil, err
	}

	chunks := make([]domain.Chunk, len(scored))
	for i, s := range scored {
		chunks[i] = s.Chunk
	}
	return chunks, nil
}

// RetrieveScored is Retrieve with similarity scores.
func (r *Retriever) RetrieveScored(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error) {
	if r == nil || r.embedder == nil || r.index == nil {
		return nil, fmt.Errorf("%w: retriever has no embedder or index", domain.ErrNotReady)
	}
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1, got %d", domain.ErrConfiguration, k)
	}
	if r.index.Len() == 0 {
		return nil, domain.ErrIndexNotReady
	}

	vec, err := r.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	results, err := r.index.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	// The index may have been cleared since the Len check.
	if len(results) == 0 {
		return nil, domain.ErrIndexNotReady
	}

	logger.Debug("retrieve: %d of %d chunks for k=%d", len(results), r.index.Len(), k)
	return results, nil
}

func (r *Retriever) embedQuery(ctx context.Context, query string) ([]float32, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, providerError(ctx, domain.ErrEmbedding, "embedding query", err)
	}
	return vec, nil
}
