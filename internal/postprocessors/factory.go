package postprocessors

import (
	"github.com/custodia-labs/voxqa/internal/core/domain"
	"github.com/custodia-labs/voxqa/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.PostProcessorPipelineFactory = (*Factory)(nil)

// Factory builds a fresh pipeline of named processors per ingestion.
type Factory struct {
	registry *Registry
	names    []string
}

// NewFactory returns a factory for the given processors, in order.
// With no names the DefaultProcessors are used.
func NewFactory(registry *Registry, names ...string) *Factory {
	if len(names) == 0 {
		names = DefaultProcessors
	}
	return &Factory{registry: registry, names: names}
}

// NewDefaultFactory returns a factory over a registry holding the built-in processors.
func NewDefaultFactory() *Factory {
	r := NewRegistry()
	RegisterDefaults(r)
	return NewFactory(r)
}

// Build validates opts and builds the pipeline.
func (f *Factory) Build(opts domain.IngestOptions) (driven.PostProcessorPipeline, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	pipeline, err := f.registry.BuildPipeline(f.names, opts.ProcessorConfigs())
	if err != nil {
		return nil, err
	}
	return pipeline, nil
}
