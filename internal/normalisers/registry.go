package normalisers

import (
	"context"
	"fmt"
	"mime"
	"sort"
	"sync"

	"github.com/custodia-labs/voxqa/internal/core/domain"
	"github.com/custodia-labs/voxqa/internal/core/ports/driven"
	"github.com/custodia-labs/voxqa/internal/logger"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry dispatches documents to normalisers by MIME type.
type Registry struct {
	mu     sync.RWMutex
	byMIME map[string][]driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byMIME: make(map[string][]driven.Normaliser)}
}

// Register adds a normaliser for each MIME type it supports.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, mt := range n.SupportedMIMETypes() {
		list := append(r.byMIME[mt], n)
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority() > list[j].Priority()
		})
		r.byMIME[mt] = list
	}
}

// SupportedMIMETypes returns every registered MIME type, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.byMIME))
	for mt := range r.byMIME {
		types = append(types, mt)
	}
	sort.Strings(types)
	return types
}

// Normalise runs the best normaliser for raw. An empty MIME type is detected
// from the file extension.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	mimeType := raw.MIMEType
	if mimeType == "" {
		mimeType = domain.DetectMIMEType(raw.URI)
	}
	if parsed, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = parsed
	}

	r.mu.RLock()
	candidates := r.byMIME[mimeType]
	r.mu.RUnlock()

	if len(candidates) == 0 {
		if mimeType == "" {
			return nil, fmt.Errorf("%w: %s has an unrecognised extension", domain.ErrUnsupportedDocument, raw.Name())
		}
		return nil, fmt.Errorf("%w: %s (%s)", domain.ErrUnsupportedDocument, raw.Name(), mimeType)
	}

	normalised := *raw
	normalised.MIMEType = mimeType

	logger.Debug("normalise: %s as %s", raw.Name(), mimeType)
	return candidates[0].Normalise(ctx, &normalised)
}
