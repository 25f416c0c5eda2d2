package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/voxqa/internal/core/domain"
	"github.com/custodia-labs/voxqa/internal/core/ports/driven"
)

var defaultQuery = domain.QueryOptions{K: 2, Temperature: 0.4, MaxOutputLength: 500}

func TestAnswerChain_Answer(t *testing.T) {
	llm := &mockLLM{response: "  Chunk two says so.\n"}
	embedder := &mockEmbedder{fallback: []float32{0.1, 0.9, 0.3}}
	chain := NewAnswerChain(NewRetriever(embedder, threeChunkIndex(t)), llm, nil)

	answer, err := chain.Answer(context.Background(), "What does chunk two say?", defaultQuery)

	require.NoError(t, err)
	assert.Equal(t, "Chunk two says so.", answer.Text)
	require.Len(t, answer.SupportingChunks, 2)
	assert.Equal(t, "c2", answer.SupportingChunks[0].ID)
	assert.Equal(t, "c3", answer.SupportingChunks[1].ID)
	assert.Len(t, answer.Scores, 2)

	assert.Equal(t, answer.Prompt, llm.lastPrompt)
	assert.Contains(t, llm.lastPrompt, "chunk two\n\nchunk three", "chunks in retrieval order")
	assert.Contains(t, llm.lastPrompt, "Question: What does chunk two say?")
	assert.Contains(t, llm.lastPrompt, "say that you don't know")
	assert.NotContains(t, llm.lastPrompt, "chunk one")
}

func TestAnswerChain_PassesOptionsUnchanged(t *testing.T) {
	llm := &mockLLM{response: "ok"}
	chain := NewAnswerChain(NewRetriever(&mockEmbedder{fallback: []float32{1, 0, 0}}, threeChunkIndex(t)), llm, nil)

	_, err := chain.Answer(context.Background(), "q", domain.QueryOptions{K: 1, Temperature: 0, MaxOutputLength: 77})

	require.NoError(t, err)
	assert.Equal(t, driven.GenerateOptions{MaxTokens: 77, Temperature: 0}, llm.lastOpts)
}

func TestAnswerChain_IndexClearedBeforeSearch(t *testing.T) {
	idx := threeChunkIndex(t)
	embedder := &mockEmbedder{
		fallback: []float32{1, 0, 0},
		onEmbed:  func() { _ = idx.Clear(context.Background()) },
	}
	llm := &mockLLM{response: "should not be generated"}
	chain := NewAnswerChain(NewRetriever(embedder, idx), llm, nil)

	answer, err := chain.Answer(context.Background(), "q", domain.QueryOptions{K: 2, Temperature: 0.4, MaxOutputLength: 50})

	assert.ErrorIs(t, err, domain.ErrIndexNotReady)
	assert.Nil(t, answer)
	assert.Zero(t, llm.calls, "no generation without supporting chunks")
}

func TestAnswerChain_NotReady(t *testing.T) {
	retriever := NewRetriever(&mockEmbedder{fallback: []float32{1, 0, 0}}, threeChunkIndex(t))

	tests := []struct {
		name  string
		chain *AnswerChain
	}{
		{"nil chain", nil},
		{"no generator", NewAnswerChain(retriever, nil, nil)},
		{"no retriever", NewAnswerChain(nil, &mockLLM{}, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.chain.Answer(context.Background(), "q", defaultQuery)
			assert.ErrorIs(t, err, domain.ErrNotReady)
		})
	}
}

func TestAnswerChain_InvalidOptions(t *testing.T) {
	llm := &mockLLM{}
	chain := NewAnswerChain(NewRetriever(&mockEmbedder{fallback: []float32{1, 0, 0}}, threeChunkIndex(t)), llm, nil)

	_, err := chain.Answer(context.Background(), "q", domain.QueryOptions{K: 1, Temperature: 1.5, MaxOutputLength: 10})

	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Zero(t, llm.calls)
}

func TestAnswerChain_GenerationError(t *testing.T) {
	cause := errors.New("429 quota exceeded")
	llm := &mockLLM{err: cause}
	chain := NewAnswerChain(NewRetriever(&mockEmbedder{fallback: []float32{1, 0, 0}}, threeChunkIndex(t)), llm, nil)

	answer, err := chain.Answer(context.Background(), "q", defaultQuery)

	assert.Nil(t, answer)
	assert.ErrorIs(t, err, domain.ErrGeneration)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, llm.calls, "no automatic retry")
	assert.Contains(t, err.Error(), "mock-llm")
}

func TestAnswerChain_GenerationTimeout(t *testing.T) {
	llm := &mockLLM{block: true}
	chain := NewAnswerChain(NewRetriever(&mockEmbedder{fallback: []float32{1, 0, 0}}, threeChunkIndex(t)), llm, nil).
		WithTimeout(20 * time.Millisecond)

	_, err := chain.Answer(context.Background(), "q", defaultQuery)

	assert.ErrorIs(t, err, domain.ErrGeneration)
	assert.Equal(t, domain.KindTimeout, domain.ErrorKind(err))
}

func TestAnswerChain_CustomTemplate(t *testing.T) {
	llm := &mockLLM{response: "ok"}
	prompts := &mockPrompts{template: "CTX[%s] Q[%s] 100%% grounded"}
	chain := NewAnswerChain(NewRetriever(&mockEmbedder{fallback: []float32{1, 0, 0}}, threeChunkIndex(t)), llm, prompts)

	_, err := chain.Answer(context.Background(), "why?", domain.QueryOptions{K: 1, Temperature: 0.2, MaxOutputLength: 50})

	require.NoError(t, err)
	assert.Equal(t, "CTX[chunk one] Q[why?] 100% grounded", llm.lastPrompt)
}

func TestAnswerChain_TemplateFallback(t *testing.T) {
	tests := []struct {
		name    string
		prompts *mockPrompts
	}{
		{"load error", &mockPrompts{err: errors.New("permission denied")}},
		{"one placeholder", &mockPrompts{template: "Context: %s"}},
		{"extra verb", &mockPrompts{template: "%s %s %d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := &AnswerChain{prompts: tt.prompts}
			assert.Equal(t, driven.DefaultAnswerPrompt, chain.template())
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	chunks := []domain.Chunk{{Content: "First."}, {Content: "Second."}}

	prompt := BuildPrompt(driven.DefaultAnswerPrompt, "Which comes first?", chunks)

	assert.True(t, strings.HasPrefix(prompt, "You are an assistant for question-answering tasks."))
	assert.Contains(t, prompt, "Context:\nFirst.\n\nSecond.\n\nQuestion: Which comes first?")
	assert.True(t, strings.HasSuffix(prompt, "Answer:"))
}

func TestBuildPrompt_QuestionVerbatim(t *testing.T) {
	prompt := BuildPrompt("%s|%s", "100% sure? %s", []domain.Chunk{{Content: "c"}})
	assert.Equal(t, "c|100% sure? %s", prompt)
}
