package domain

import "fmt"

// Embedding is a fixed-length vector for a piece of text.
type Embedding []float32

// IndexEntry pairs a chunk with its embedding inside the vector index.
type IndexEntry struct {
	// ID is the stable entry identifier.
	ID string

	// Embedding is the chunk vector.
	Embedding Embedding

	// Chunk is the indexed chunk.
	Chunk Chunk
}

// ScoredChunk is a search hit.
type ScoredChunk struct {
	Chunk Chunk

	// Score is the cosine similarity to the query.
	Score float64
}

// EmbeddingFingerprint identifies an embedding space.
// Vectors from different fingerprints are not comparable.
func EmbeddingFingerprint(provider, model string, dimensions int) string {
	return fmt.Sprintf("%s/%s/%d", provider, model, dimensions)
}
