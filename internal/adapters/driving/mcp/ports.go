package mcp

import (
	"github.com/custodia-labs/voxqa/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server depends on.
type Ports struct {
	// Pipeline ingests documents and answers questions.
	Pipeline driving.PipelineService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Pipeline == nil {
		return ErrMissingPipeline
	}
	return nil
}
