package mcp

import (
	"context"

	"github.com/custodia-labs/voxqa/internal/core/domain"
)

// mockPipeline is a mock implementation of driving.PipelineService.
type mockPipeline struct {
	chunks int
	answer *domain.Answer
	status domain.Status
	err    error

	lastRaw    domain.RawDocument
	lastIngest domain.IngestOptions
	lastQuery  domain.QueryOptions
	question   string
	cleared    bool
}

func (m *mockPipeline) Ingest(_ context.Context, raw domain.RawDocument, opts domain.IngestOptions) (int, error) {
	m.lastRaw = raw
	m.lastIngest = opts
	return m.chunks, m.err
}

func (m *mockPipeline) Query(_ context.Context, question string, opts domain.QueryOptions) (*domain.Answer, error) {
	m.question = question
	m.lastQuery = opts
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

func (m *mockPipeline) Clear(_ context.Context) error {
	m.cleared = m.err == nil
	return m.err
}

func (m *mockPipeline) Status(_ context.Context) (domain.Status, error) {
	return m.status, m.err
}

func (m *mockPipeline) Defaults() domain.PipelineConfig {
	return domain.DefaultPipelineConfig()
}
