package driven

import (
	"context"

	"github.com/custodia-labs/voxqa/internal/core/domain"
)

// PostProcessor turns a normalised document into chunks.
// PostProcessors are chained in a pipeline; the chunker is always first.
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process receives the chunks produced so far and returns the new set.
	// A processor that creates chunks receives nil.
	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the document through all processors in order.
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}

// PostProcessorPipelineFactory builds a pipeline configured for one ingestion.
type PostProcessorPipelineFactory interface {
	// Build returns a pipeline chunking with opts. Invalid options fail with
	// domain.ErrConfiguration.
	Build(opts domain.IngestOptions) (PostProcessorPipeline, error)
}
