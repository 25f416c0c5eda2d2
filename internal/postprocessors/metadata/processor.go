// Package metadata stamps document-level attributes onto chunks.
package metadata

import (
	"context"
	"maps"

	"github.com/custodia-labs/voxqa/internal/core/domain"
)

// Name is the registered processor name.
const Name = "metadata"

// Metadata keys written to every chunk.
const (
	KeyTitle    = "title"
	KeyMIMEType = "mime_type"
	KeyPage     = "page"
)

// Processor copies the document title and MIME type into chunk metadata.
type Processor struct{}

// New creates a metadata processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return Name
}

// Process annotates chunks in place. Existing chunk keys win.
func (p *Processor) Process(_ context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	base := map[string]any{}
	if doc.Title != "" {
		base[KeyTitle] = doc.Title
	}
	if mt, ok := doc.Metadata[KeyMIMEType]; ok {
		base[KeyMIMEType] = mt
	}

	for i := range chunks {
		md := maps.Clone(base)
		md[KeyPage] = chunks[i].Page
		maps.Copy(md, chunks[i].Metadata)
		chunks[i].Metadata = md
	}

	return chunks, nil
}
