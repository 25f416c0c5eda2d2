package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/voxqa/internal/core/domain"
	"github.com/custodia-labs/voxqa/internal/core/ports/driven"
	"github.com/custodia-labs/voxqa/internal/logger"
)

// contextSeparator separates retrieved chunks in the prompt.
const contextSeparator = "\n\n"

// AnswerChain answers a question from retrieved chunks in a single generation call.
type AnswerChain struct {
	retriever *Retriever
	generator driven.LLMService
	prompts   driven.PromptStore
	// timeout bounds the generation call; zero means no bound.
	timeout time.Duration
}

// NewAnswerChain creates an answer chain. prompts may be nil, in which case the
// built-in template is used.
func NewAnswerChain(retriever *Retriever, generator driven.LLMService, prompts driven.PromptStore) *AnswerChain {
	return &AnswerChain{
		retriever: retriever,
		generator: generator,
		prompts:   prompts,
	}
}

// WithTimeout bounds each generation call by d and returns c.
func (c *AnswerChain) WithTimeout(d time.Duration) *AnswerChain {
	c.timeout = d
	return c
}

// Answer retrieves opts.K chunks, builds one prompt from them and generates the answer.
// Generation failures are returned as domain.ErrGeneration and never retried.
func (c *AnswerChain) Answer(ctx context.Context, question string, opts domain.QueryOptions) (*domain.Answer, error) {
	if c == nil || c.retriever == nil || c.generator == nil {
		return nil, fmt.Errorf("%w: no retriever or generator bound", domain.ErrNotReady)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	scored, err := c.retriever.RetrieveScored(ctx, question, opts.K)
	if err != nil {
		return nil, err
	}

	chunks := make([]domain.Chunk, len(scored))
	scores := make([]float64, len(scored))
	for i, s := range scored {
		chunks[i] = s.Chunk
		scores[i] = s.Score
	}

	prompt := BuildPrompt(c.template(), question, chunks)
	logger.Debug("answer: prompt of %d characters from %d chunks", len(prompt), len(chunks))

	genCtx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	text, err := c.generator.Generate(genCtx, prompt, driven.GenerateOptions{
		MaxTokens:   opts.MaxOutputLength,
		Temperature: opts.Temperature,
	})
	if err != nil {
		return nil, providerError(genCtx, domain.ErrGeneration, "generating answer with "+c.generator.ModelName(), err)
	}

	return &domain.Answer{
		Text:             strings.TrimSpace(text),
		SupportingChunks: chunks,
		Scores:           scores,
		Prompt:           prompt,
	}, nil
}

// template returns the configured answer template, or the built-in one when
// the configured template is missing or malformed.
func (c *AnswerChain) template() string {
	if c.prompts == nil {
		return driven.DefaultAnswerPrompt
	}

	tmpl, err := c.prompts.Load(driven.PromptAnswer)
	if err != nil {
		logger.Warn("answer prompt unavailable, using built-in: %v", err)
		return driven.DefaultAnswerPrompt
	}
	if !validTemplate(tmpl) {
		logger.Warn("answer prompt must contain exactly two %%s placeholders, using built-in")
		return driven.DefaultAnswerPrompt
	}
	return tmpl
}

// validTemplate accepts templates whose only verbs are two %s, allowing %% escapes.
func validTemplate(tmpl string) bool {
	rest := strings.ReplaceAll(tmpl, "%%", "")
	return strings.Count(rest, "%s") == 2 && strings.Count(rest, "%") == 2
}

// BuildPrompt fills tmpl with the chunk texts, in order, and the verbatim question.
func BuildPrompt(tmpl, question string, chunks []domain.Chunk) string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	return fmt.Sprintf(tmpl, strings.Join(texts, contextSeparator), question)
}
