package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/voxqa/internal/core/domain"
	"github.com/custodia-labs/voxqa/internal/core/ports/driven"
	"github.com/custodia-labs/voxqa/internal/core/ports/driving"
	"github.com/custodia-labs/voxqa/internal/logger"
)

// Ensure Session implements the interface.
var _ driving.PipelineService = (*Session)(nil)

// customProvider names embedders that do not report a provider.
const customProvider = "custom"

// Session is the question-answering pipeline.
// It owns the index handle and serialises every write to it.
type Session struct {
	mu sync.Mutex

	normalisers driven.NormaliserRegistry
	pipelines   driven.PostProcessorPipelineFactory
	embedder    driven.EmbeddingService
	generator   driven.LLMService // optional
	prompts     driven.PromptStore
	index       driven.VectorIndex

	config   domain.PipelineConfig
	location string

	retriever *Retriever
	chain     *AnswerChain
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithGenerator binds the answer generator. Without one, queries fail with
// domain.ErrNotReady.
func WithGenerator(llm driven.LLMService) SessionOption {
	return func(s *Session) {
		s.generator = llm
	}
}

// WithPrompts sets the prompt store used for the answer template.
func WithPrompts(prompts driven.PromptStore) SessionOption {
	return func(s *Session) {
		s.prompts = prompts
	}
}

// WithConfig replaces the default pipeline configuration.
func WithConfig(cfg domain.PipelineConfig) SessionOption {
	return func(s *Session) {
		s.config = cfg
	}
}

// WithLocation sets the directory the index is persisted to after each ingestion.
// An empty location keeps the index in memory only.
func WithLocation(dir string) SessionOption {
	return func(s *Session) {
		s.location = dir
	}
}

// NewSession creates a pipeline session over index.
func NewSession(
	index driven.VectorIndex,
	embedder driven.EmbeddingService,
	normalisers driven.NormaliserRegistry,
	pipelines driven.PostProcessorPipelineFactory,
	opts ...SessionOption,
) (*Session, error) {
	if index == nil || embedder == nil || normalisers == nil || pipelines == nil {
		return nil, fmt.Errorf("%w: session needs an index, embedder, normalisers and pipeline factory",
			domain.ErrConfiguration)
	}

	s := &Session{
		normalisers: normalisers,
		pipelines:   pipelines,
		embedder:    embedder,
		index:       index,
		config:      domain.DefaultPipelineConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.config.Validate(); err != nil {
		return nil, err
	}

	s.retriever = NewRetriever(embedder, index).WithTimeout(s.config.EmbedTimeout)
	if s.generator != nil {
		s.chain = NewAnswerChain(s.retriever, s.generator, s.prompts).WithTimeout(s.config.GenerateTimeout)
	}

	return s, nil
}

// Defaults returns the session configuration.
func (s *Session) Defaults() domain.PipelineConfig {
	return s.config
}

// Retriever returns the session retriever.
func (s *Session) Retriever() *Retriever {
	return s.retriever
}

// Ingest normalises, chunks, embeds and indexes raw.
// Zero options use the session defaults. Every chunk is embedded before anything
// is added, so a failed ingestion leaves the index untouched.
func (s *Session) Ingest(ctx context.Context, raw domain.RawDocument, opts domain.IngestOptions) (int, error) {
	if opts == (domain.IngestOptions{}) {
		opts = s.config.IngestOptions()
	}

	// Configuration errors are reported before any work is done
	pipeline, err := s.pipelines.Build(opts)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	logger.Section("Ingest " + raw.Name())
	start := time.Now()

	result, err := s.normalisers.Normalise(ctx, &raw)
	if err != nil {
		return 0, err
	}
	doc := result.Document
	logger.Debug("ingest: normalised %s into %d pages", doc.Source, len(doc.PageTexts()))

	chunks, err := pipeline.Process(ctx, &doc)
	if err != nil {
		return 0, fmt.Errorf("chunking %s: %w", doc.Source, err)
	}
	if len(chunks) == 0 {
		logger.Warn("ingest: %s has no text, nothing indexed", doc.Source)
		return 0, nil
	}
	logger.Debug("ingest: %d chunks (size %d, overlap %d)", len(chunks), opts.ChunkSize, opts.ChunkOverlap)

	if err := s.checkEmbedder(); err != nil {
		return 0, err
	}

	vectors, err := s.embedChunks(ctx, chunks)
	if err != nil {
		return 0, err
	}

	fingerprint := domain.EmbeddingFingerprint(s.providerName(), s.embedder.ModelName(), len(vectors[0]))
	previous := s.index.Fingerprint()
	if err := s.index.SetFingerprint(fingerprint); err != nil {
		return 0, err
	}

	entries := make([]domain.IndexEntry, len(chunks))
	for i := range chunks {
		entries[i] = domain.IndexEntry{
			ID:        chunks[i].ID,
			Embedding: vectors[i],
			Chunk:     chunks[i],
		}
	}

	if err := s.index.Add(ctx, entries); err != nil {
		if s.index.Len() == 0 {
			_ = s.index.SetFingerprint(previous)
		}
		return 0, fmt.Errorf("adding %s to index: %w", doc.Source, err)
	}

	if s.location != "" {
		// Entries stay indexed; the next successful Persist writes them
		if err := s.index.Persist(ctx, s.location); err != nil {
			return len(entries), err
		}
	}

	logger.Debug("ingest: %s indexed in %s, %d entries total",
		doc.Source, time.Since(start).Round(time.Millisecond), s.index.Len())
	return len(entries), nil
}

// checkEmbedder rejects an embedder whose provider or model differs from the
// one the index was built with, before any embedding call is made.
func (s *Session) checkEmbedder() error {
	current := s.index.Fingerprint()
	if current == "" || s.index.Len() == 0 {
		return nil
	}

	prefix := s.providerName() + "/" + s.embedder.ModelName() + "/"
	if !strings.HasPrefix(current, prefix) {
		return fmt.Errorf("%w: index was built with %s, embedder is %s; clear the index first",
			domain.ErrConfiguration, current, strings.TrimSuffix(prefix, "/"))
	}
	return nil
}

// embedChunks embeds chunk contents in batches on a bounded pool.
// Vectors are returned in chunk order.
func (s *Session) embedChunks(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	size := s.config.EmbedBatchSize
	vectors := make([][]float32, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.EmbedConcurrency)

	for start := 0; start < len(chunks); start += size {
		end := min(start+size, len(chunks))

		g.Go(func() error {
			texts := make([]string, end-start)
			for i := range texts {
				texts[i] = chunks[start+i].Content
			}

			batch, err := s.embedBatch(gctx, texts)
			if err != nil {
				return err
			}
			if len(batch) != len(texts) {
				return fmt.Errorf("%w: provider returned %d vectors for %d chunks",
					domain.ErrEmbedding, len(batch), len(texts))
			}
			copy(vectors[start:end], batch)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) == 0 || len(v) != dim {
			return nil, fmt.Errorf("%w: chunk %d has a %d-dimensional vector, expected %d",
				domain.ErrEmbedding, i, len(v), dim)
		}
	}

	logger.Debug("ingest: embedded %d chunks with %s (%d dimensions)", len(chunks), s.embedder.ModelName(), dim)
	return vectors, nil
}

func (s *Session) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, cancel := withTimeout(ctx, s.config.EmbedTimeout)
	defer cancel()

	batch, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, providerError(ctx, domain.ErrEmbedding, "embedding chunks with "+s.embedder.ModelName(), err)
	}
	return batch, nil
}

func (s *Session) providerName() string {
	if named, ok := s.embedder.(driven.ProviderNamer); ok && named.ProviderName() != "" {
		return named.ProviderName()
	}
	return customProvider
}

// Query answers question from the indexed chunks.
// Zero options use the session defaults. The index is never modified.
func (s *Session) Query(ctx context.Context, question string, opts domain.QueryOptions) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrConfiguration)
	}

	if opts == (domain.QueryOptions{}) {
		opts = s.config.QueryOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if s.index.Len() == 0 {
		return nil, fmt.Errorf("%w: ingest a document first", domain.ErrIndexNotReady)
	}
	if s.chain == nil {
		return nil, fmt.Errorf("%w: no answer generator configured", domain.ErrNotReady)
	}

	logger.Section("Query")
	start := time.Now()

	answer, err := s.chain.Answer(ctx, question, opts)
	if err != nil {
		return nil, err
	}

	logger.Debug("query: answered from %d chunks in %s",
		len(answer.SupportingChunks), time.Since(start).Round(time.Millisecond))
	return answer, nil
}

// Clear drops every entry and the persisted index directory.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Clear(ctx); err != nil {
		return err
	}
	logger.Debug("clear: index emptied")
	return nil
}

// Status reports readiness, index size and the documents indexed so far.
func (s *Session) Status(ctx context.Context) (domain.Status, error) {
	if err := ctx.Err(); err != nil {
		return domain.Status{}, err
	}

	entries := s.index.Entries()
	state := domain.StateUninitialized
	if len(entries) > 0 {
		state = domain.StateReady
	}

	seen := make(map[string]bool)
	sources := []string{}
	for _, e := range entries {
		if !seen[e.Chunk.Source] {
			seen[e.Chunk.Source] = true
			sources = append(sources, e.Chunk.Source)
		}
	}

	return domain.Status{
		Ready:       state == domain.StateReady && s.chain != nil,
		State:       string(state),
		Entries:     len(entries),
		Sources:     sources,
		Fingerprint: s.index.Fingerprint(),
		Location:    s.location,
	}, nil
}

// Close releases the embedder, generator and index.
func (s *Session) Close() error {
	var errs []error
	if err := s.embedder.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing embedder: %w", err))
	}
	if s.generator != nil {
		if err := s.generator.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing generator: %w", err))
		}
	}
	if err := s.index.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing index: %w", err))
	}
	return errors.Join(errs...)
}
