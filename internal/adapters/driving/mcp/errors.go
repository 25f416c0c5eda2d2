// Package mcp exposes the question-answering pipeline as an MCP (Model Context
// Protocol) server, so AI assistants can ingest documents and ask questions.
package mcp

import (
	"errors"

	"github.com/custodia-labs/voxqa/internal/core/domain"
)

// ErrMissingPipeline is returned when the pipeline service is not provided.
var ErrMissingPipeline = errors.New("mcp: pipeline service is required")

// ToolError carries the structured error kind back to the client.
type ToolError struct {
	domain.ErrorResult
	err error
}

// Error renders as "kind: message".
func (e *ToolError) Error() string {
	return e.Kind + ": " + e.Message
}

func (e *ToolError) Unwrap() error {
	return e.err
}

func toolError(err error) error {
	if err == nil {
		return nil
	}
	return &ToolError{ErrorResult: domain.NewErrorResult(err), err: err}
}
