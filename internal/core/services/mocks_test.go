package services

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/voxqa/internal/core/ports/driven"
)

// mockEmbedder returns fixed vectors keyed by trimmed text, or a default vector.
type mockEmbedder struct {
	vectors  map[string][]float32
	fallback []float32
	model    string
	provider string
	err      error
	// block makes every call wait for its context.
	block bool
	// onEmbed runs at the start of every Embed call.
	onEmbed func()

	calls      atomic.Int32
	batchSizes []int
	mu         sync.Mutex
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.calls.Add(1)
	if m.onEmbed != nil {
		m.onEmbed()
	}
	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.err != nil {
		return nil, m.err
	}
	if v, ok := m.vectors[strings.TrimSpace(text)]; ok {
		return v, nil
	}
	return m.fallback, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batchSizes = append(m.batchSizes, len(texts))
	m.mu.Unlock()

	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int { return len(m.fallback) }

func (m *mockEmbedder) ModelName() string {
	if m.model == "" {
		return "mock-embed"
	}
	return m.model
}

func (m *mockEmbedder) ProviderName() string { return m.provider }

func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// mockLLM records its prompt and options.
type mockLLM struct {
	response string
	err      error
	block    bool
	// answer derives the response from the prompt when set.
	answer func(prompt string) string

	calls      int
	lastPrompt string
	lastOpts   driven.GenerateOptions
	closed     bool
}

func (m *mockLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.calls++
	m.lastPrompt = prompt
	m.lastOpts = opts
	if m.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if m.err != nil {
		return "", m.err
	}
	if m.answer != nil {
		return m.answer(prompt), nil
	}
	return m.response, nil
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error {
	m.closed = true
	return nil
}

// extractiveLLM answers with the first context sentence mentioning a word
// of the question, the way a grounded model would.
func extractiveLLM() *mockLLM {
	return &mockLLM{answer: func(prompt string) string {
		ctxStart := strings.Index(prompt, "Context:\n")
		qStart := strings.Index(prompt, "\n\nQuestion: ")
		if ctxStart < 0 || qStart < 0 {
			return "I don't know."
		}
		passage := prompt[ctxStart+len("Context:\n") : qStart]
		question := strings.TrimSuffix(strings.SplitN(prompt[qStart+len("\n\nQuestion: "):], "\n", 2)[0], "?")

		for _, sentence := range strings.Split(passage, ".") {
			for _, word := range strings.Fields(question) {
				if len(word) > 4 && strings.Contains(sentence, word) {
					return strings.TrimSpace(sentence) + "."
				}
			}
		}
		return "I don't know."
	}}
}

// mockPrompts serves a fixed template.
type mockPrompts struct {
	template string
	err      error
}

func (m *mockPrompts) Load(_ string) (string, error) { return m.template, m.err }
func (m *mockPrompts) Reload()                       {}
