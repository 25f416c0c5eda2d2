package normalisers

import (
	"github.com/custodia-labs/voxqa/internal/normalisers/markdown"
	"github.com/custodia-labs/voxqa/internal/normalisers/pdf"
	"github.com/custodia-labs/voxqa/internal/normalisers/plaintext"
)

// RegisterDefaults registers the built-in normalisers.
func RegisterDefaults(r *Registry) {
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(pdf.New())
}

// NewDefaultRegistry returns a registry with the built-in normalisers.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}
