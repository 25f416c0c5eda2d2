package mcp

import (
	"context"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/voxqa/internal/core/domain"
)

// IngestInput is the input schema for the ingest tool.
type IngestInput struct {
	Path         string `json:"path" jsonschema:"path of a .txt, .md, .csv or .pdf file on the server machine"`
	ChunkSize    int    `json:"chunk_size,omitempty" jsonschema:"maximum chunk length in characters (default from settings)"`
	ChunkOverlap *int   `json:"chunk_overlap,omitempty" jsonschema:"overlap between chunks in characters (default from settings)"`
}

// IngestOutput is the output schema for the ingest tool.
type IngestOutput struct {
	Source string `json:"source"`
	Chunks int    `json:"chunks"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question    string   `json:"question" jsonschema:"the question to answer from the indexed documents"`
	K           int      `json:"k,omitempty" jsonschema:"number of chunks to retrieve (default from settings)"`
	Temperature *float64 `json:"temperature,omitempty" jsonschema:"sampling temperature between 0 and 1 (default from settings)"`
	MaxOutput   int      `json:"max_output,omitempty" jsonschema:"maximum answer length in tokens (default from settings)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string         `json:"answer"`
	Sources []SourceOutput `json:"sources"`
}

// SourceOutput is one supporting chunk of an answer.
type SourceOutput struct {
	Source   string  `json:"source"`
	Position int     `json:"position"`
	Score    float64 `json:"score"`
	Content  string  `json:"content"`
}

// ClearInput is the empty input of the clear tool.
type ClearInput struct{}

// ClearOutput is the output schema for the clear tool.
type ClearOutput struct {
	Cleared bool `json:"cleared"`
}

// StatusInput is the empty input of the status tool.
type StatusInput struct{}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest",
		Description: "Chunk, embed and index a document so questions can be answered from it",
	}, s.handleIngest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using only the indexed documents, with the supporting chunks",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "clear",
		Description: "Remove every indexed chunk",
	}, s.handleClear)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "status",
		Description: "Report whether the index is ready and how many chunks it holds",
	}, s.handleStatus)
}

func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	if input.Path == "" {
		return nil, IngestOutput{}, toolError(fmt.Errorf("%w: path is required", domain.ErrInvalidInput))
	}

	opts := s.ports.Pipeline.Defaults().IngestOptions()
	if input.ChunkSize > 0 {
		opts.ChunkSize = input.ChunkSize
	}
	if input.ChunkOverlap != nil {
		opts.ChunkOverlap = *input.ChunkOverlap
	}

	content, err := os.ReadFile(input.Path)
	if err != nil {
		return nil, IngestOutput{}, toolError(fmt.Errorf("%w: reading %s: %w", domain.ErrInvalidInput, input.Path, err))
	}

	n, err := s.ports.Pipeline.Ingest(ctx, domain.RawDocument{URI: input.Path, Content: content}, opts)
	if err != nil {
		return nil, IngestOutput{}, toolError(err)
	}
	return nil, IngestOutput{Source: input.Path, Chunks: n}, nil
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	opts := s.ports.Pipeline.Defaults().QueryOptions()
	if input.K > 0 {
		opts.K = input.K
	}
	if input.Temperature != nil {
		opts.Temperature = *input.Temperature
	}
	if input.MaxOutput > 0 {
		opts.MaxOutputLength = input.MaxOutput
	}

	answer, err := s.ports.Pipeline.Query(ctx, input.Question, opts)
	if err != nil {
		return nil, AskOutput{}, toolError(err)
	}

	output := AskOutput{
		Answer:  answer.Text,
		Sources: make([]SourceOutput, len(answer.SupportingChunks)),
	}
	for i, c := range answer.SupportingChunks {
		output.Sources[i] = SourceOutput{
			Source:   c.Source,
			Position: c.Position,
			Content:  c.Content,
		}
		if i < len(answer.Scores) {
			output.Sources[i].Score = answer.Scores[i]
		}
	}
	return nil, output, nil
}

func (s *Server) handleClear(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ClearInput,
) (*mcp.CallToolResult, ClearOutput, error) {
	if err := s.ports.Pipeline.Clear(ctx); err != nil {
		return nil, ClearOutput{}, toolError(err)
	}
	return nil, ClearOutput{Cleared: true}, nil
}

func (s *Server) handleStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatusInput,
) (*mcp.CallToolResult, domain.Status, error) {
	status, err := s.ports.Pipeline.Status(ctx)
	if err != nil {
		return nil, domain.Status{}, toolError(err)
	}
	if status.Sources == nil {
		status.Sources = []string{}
	}
	return nil, status, nil
}
