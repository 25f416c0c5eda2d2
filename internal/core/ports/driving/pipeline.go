package driving

import (
	"context"

	"github.com/custodia-labs/voxqa/internal/core/domain"
)

// PipelineService is the question-answering pipeline.
// It is the only contract the outer surfaces depend on.
type PipelineService interface {
	// Ingest normalises, chunks, embeds and indexes a document.
	// Returns the number of chunks added. Nothing is added on failure, except
	// when only persisting fails: the entries stay indexed and the error is
	// domain.ErrPersistence.
	Ingest(ctx context.Context, raw domain.RawDocument, opts domain.IngestOptions) (int, error)

	// Query answers a question from the indexed chunks.
	Query(ctx context.Context, question string, opts domain.QueryOptions) (*domain.Answer, error)

	// Clear drops the index and its persisted state.
	Clear(ctx context.Context) error

	// Status reports readiness and index size.
	Status(ctx context.Context) (domain.Status, error)

	// Defaults returns the configured default options.
	Defaults() domain.PipelineConfig
}
