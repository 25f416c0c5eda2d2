package driven

import (
	"context"

	"github.com/custodia-labs/voxqa/internal/core/domain"
)

// VectorIndex stores chunk embeddings and answers similarity queries.
// Entries are append-only; Clear is the only way to remove them.
type VectorIndex interface {
	// Add appends entries in order. The call is all-or-nothing.
	Add(ctx context.Context, entries []domain.IndexEntry) error

	// Search returns the k entries most similar to query, best first.
	// Ties keep insertion order. k larger than Len returns every entry.
	Search(ctx context.Context, query []float32, k int) ([]domain.ScoredChunk, error)

	// Len returns the number of entries.
	Len() int

	// Entries returns a copy of all entries in insertion order.
	Entries() []domain.IndexEntry

	// Fingerprint identifies the embedding space of the stored vectors.
	Fingerprint() string

	// SetFingerprint records the embedding space. Only valid on an empty index
	// or when fp matches the current fingerprint.
	SetFingerprint(fp string) error

	// Persist writes the index to the directory at location.
	Persist(ctx context.Context, location string) error

	// Clear removes every entry and deletes the persisted directory.
	Clear(ctx context.Context) error

	// Close releases resources.
	Close() error
}
