// Package flat provides an exact, in-memory vector index with SQLite persistence.
//
// Every search scores the query against all entries by cosine similarity, so
// results are exact and deterministic. Entries are append-only and ties are
// broken by insertion order. The index is persisted to a directory through the
// sqlite entry store; only rows not yet written are appended on each Persist.
package flat

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/voxqa/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/voxqa/internal/core/domain"
	"github.com/custodia-labs/voxqa/internal/core/ports/driven"
	"github.com/custodia-labs/voxqa/internal/logger"
)

// Meta keys stored alongside the entries.
const (
	metaFingerprint = "fingerprint"
	metaDimension   = "dimension"
)

// Verify interface compliance.
var _ driven.VectorIndex = (*Index)(nil)

// Index is an exact cosine-similarity index.
type Index struct {
	mu          sync.RWMutex
	entries     []domain.IndexEntry
	norms       []float64
	dim         int
	fingerprint string

	// location is the directory last persisted to or loaded from.
	location string
}

// New creates an empty index.
func New() *Index {
	return &Index{}
}

// Exists reports whether location holds a persisted index.
func Exists(location string) bool {
	return sqlite.Exists(location)
}

// Load reconstructs an index from the directory at location without re-embedding.
func Load(ctx context.Context, location string) (*Index, error) {
	if !Exists(location) {
		return nil, fmt.Errorf("%w: no index at %s: %w", domain.ErrPersistence, location, os.ErrNotExist)
	}

	store, err := sqlite.NewStore(location)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	defer store.Close()

	entries, err := store.LoadEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	idx := New()
	if len(entries) > 0 {
		if err := idx.append(entries); err != nil {
			return nil, fmt.Errorf("%w: corrupt index at %s: %w", domain.ErrPersistence, location, err)
		}
	}

	fp, err := store.GetMeta(ctx, metaFingerprint)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	idx.fingerprint = fp

	if raw, err := store.GetMeta(ctx, metaDimension); err == nil && idx.dim != 0 {
		if d, convErr := strconv.Atoi(raw); convErr != nil || d != idx.dim {
			return nil, fmt.Errorf("%w: stored dimension %q does not match entries (%d)",
				domain.ErrPersistence, raw, idx.dim)
		}
	}

	idx.location = location

	logger.Debug("flat: loaded %d entries from %s", len(entries), location)
	return idx, nil
}

// Add appends entries in order. Entries without an ID get one.
// The call is all-or-nothing: any invalid entry rejects the whole batch.
func (i *Index) Add(ctx context.Context, entries []domain.IndexEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	return i.appendLocked(entries)
}

func (i *Index) append(entries []domain.IndexEntry) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.appendLocked(entries)
}

func (i *Index) appendLocked(entries []domain.IndexEntry) error {
	dim := i.dim
	for k, e := range entries {
		if len(e.Embedding) == 0 {
			return fmt.Errorf("%w: entry %d has an empty embedding", domain.ErrConfiguration, k)
		}
		if dim == 0 {
			dim = len(e.Embedding)
		}
		if len(e.Embedding) != dim {
			return fmt.Errorf("%w: embedding dimension %d does not match index dimension %d",
				domain.ErrConfiguration, len(e.Embedding), dim)
		}
	}

	for _, e := range entries {
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		e.Embedding = append(domain.Embedding(nil), e.Embedding...)
		i.entries = append(i.entries, e)
		i.norms = append(i.norms, norm(e.Embedding))
	}
	i.dim = dim

	return nil
}

// Search returns the k entries most similar to query, best first.
func (i *Index) Search(ctx context.Context, query []float32, k int) ([]domain.ScoredChunk, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1, got %d", domain.ErrConfiguration, k)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	if len(i.entries) == 0 {
		return nil, nil
	}
	if len(query) != i.dim {
		return nil, fmt.Errorf("%w: query dimension %d does not match index dimension %d",
			domain.ErrConfiguration, len(query), i.dim)
	}

	qn := norm(query)
	order := make([]int, len(i.entries))
	scores := make([]float64, len(i.entries))
	for n, e := range i.entries {
		order[n] = n
		scores[n] = cosine(query, e.Embedding, qn, i.norms[n])
	}

	// Stable sort over insertion order keeps earlier entries first on ties
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if k > len(order) {
		k = len(order)
	}

	results := make([]domain.ScoredChunk, k)
	for n := 0; n < k; n++ {
		results[n] = domain.ScoredChunk{
			Chunk: i.entries[order[n]].Chunk,
			Score: scores[order[n]],
		}
	}

	return results, nil
}

// Len returns the number of entries.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries)
}

// Dimension returns the embedding dimension, or 0 when empty.
func (i *Index) Dimension() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.dim
}

// Entries returns a copy of all entries in insertion order.
func (i *Index) Entries() []domain.IndexEntry {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return append([]domain.IndexEntry(nil), i.entries...)
}

// Fingerprint identifies the embedding space of the stored vectors.
func (i *Index) Fingerprint() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.fingerprint
}

// SetFingerprint records the embedding space.
// A non-empty index only accepts its current fingerprint.
func (i *Index) SetFingerprint(fp string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if len(i.entries) > 0 && i.fingerprint != "" && i.fingerprint != fp {
		return fmt.Errorf("%w: index was built with %s, embedder is %s; clear the index first",
			domain.ErrConfiguration, i.fingerprint, fp)
	}
	i.fingerprint = fp
	return nil
}

// Location returns the directory last persisted to or loaded from.
func (i *Index) Location() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.location
}

// Persist writes the index to the directory at location.
// Entries already stored there are kept; only new ones are appended.
// Searches may run while the write is in progress.
func (i *Index) Persist(ctx context.Context, location string) error {
	i.mu.RLock()
	entries := i.entries
	fingerprint := i.fingerprint
	dim := i.dim
	i.mu.RUnlock()

	// Recorded before writing so Clear also removes a partly written store.
	i.mu.Lock()
	i.location = location
	i.mu.Unlock()

	store, err := sqlite.NewStore(location)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	defer store.Close()

	stored, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	if isPrefix(ctx, store, stored, entries) {
		err = store.AppendEntries(ctx, stored, entries[stored:])
	} else {
		logger.Debug("flat: rewriting %d stored entries at %s", stored, location)
		err = store.ReplaceEntries(ctx, entries)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	if err := store.SetMeta(ctx, metaFingerprint, fingerprint); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	if err := store.SetMeta(ctx, metaDimension, strconv.Itoa(dim)); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	logger.Debug("flat: persisted %d entries to %s", len(entries), location)
	return nil
}

// isPrefix reports whether the stored rows are the leading entries of the index.
func isPrefix(ctx context.Context, store *sqlite.Store, stored int, entries []domain.IndexEntry) bool {
	if stored == 0 {
		return true
	}
	if stored > len(entries) {
		return false
	}
	id, err := store.EntryIDAt(ctx, stored-1)
	return err == nil && id == entries[stored-1].ID
}

// Clear removes every entry and deletes the persisted directory.
func (i *Index) Clear(_ context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.entries = nil
	i.norms = nil
	i.dim = 0
	i.fingerprint = ""

	if i.location == "" {
		return nil
	}
	if err := os.RemoveAll(i.location); err != nil {
		return fmt.Errorf("%w: removing %s: %w", domain.ErrPersistence, i.location, err)
	}

	logger.Debug("flat: removed %s", i.location)
	return nil
}

// Close releases resources. The index holds no open handles between calls.
func (i *Index) Close() error {
	return nil
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// cosine returns the cosine similarity of a and b given their norms.
// Zero vectors score 0.
func cosine(a, b []float32, na, nb float64) float64 {
	if na == 0 || nb == 0 {
		return 0
	}
	var dot float64
	for n := range a {
		dot += float64(a[n]) * float64(b[n])
	}
	return dot / (na * nb)
}
