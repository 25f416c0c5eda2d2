package postprocessors

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/custodia-labs/voxqa/internal/core/domain"
)

func TestFactory_Build(t *testing.T) {
	f := NewDefaultFactory()

	pipeline, err := f.Build(domain.IngestOptions{ChunkSize: 20, ChunkOverlap: 5})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	doc := &domain.Document{
		ID:      "doc-1",
		Source:  "facts.txt",
		Title:   "Facts",
		Content: strings.Repeat("word ", 20),
	}
	chunks, err := pipeline.Process(context.Background(), doc)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if len([]rune(c.Content)) > 20 {
			t.Errorf("chunk %d longer than chunk size: %q", c.Position, c.Content)
		}
		if c.Metadata["title"] != "Facts" {
			t.Errorf("chunk %d missing title metadata", c.Position)
		}
	}
}

func TestFactory_Build_InvalidOptions(t *testing.T) {
	f := NewDefaultFactory()

	tests := []domain.IngestOptions{
		{ChunkSize: 0, ChunkOverlap: 0},
		{ChunkSize: 10, ChunkOverlap: -1},
		{ChunkSize: 10, ChunkOverlap: 10},
	}
	for _, opts := range tests {
		if _, err := f.Build(opts); !errors.Is(err, domain.ErrConfiguration) {
			t.Errorf("Build(%+v) error = %v, want ErrConfiguration", opts, err)
		}
	}
}

func TestNewFactory_CustomNames(t *testing.T) {
	f := NewFactory(NewRegistry(), "missing")
	if _, err := f.Build(domain.IngestOptions{ChunkSize: 10}); err == nil {
		t.Error("expected error for unregistered processor")
	}
}
