// Package chunker provides a boundary-aware, lossless text chunking processor.
//
// Each page of a document is cut into windows of at most chunk_size characters.
// A window ends on the largest semantic boundary it contains (paragraph, line,
// sentence, word) and falls back to a hard cut. The next window starts inside
// the tail of the previous one, overlapping it by at most chunk_overlap
// characters, so dropping each chunk's overlap prefix and concatenating the
// rest reproduces the page text exactly.
package chunker

import (
	"context"
	"fmt"
	"unicode"

	"github.com/google/uuid"

	"github.com/custodia-labs/voxqa/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// Name is the registered processor name.
const Name = "chunker"

// separators in priority order: paragraph, line, sentence, word.
var separators = [][]rune{
	[]rune("\n\n"),
	[]rune("\n"),
	[]rune(". "),
	[]rune("! "),
	[]rune("? "),
	[]rune("; "),
	[]rune(" "),
	[]rune("\t"),
}

// Processor splits document pages into overlapping chunks.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// New creates a chunker. It fails with domain.ErrConfiguration unless
// chunk size is positive and 0 <= overlap < chunk size.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	err := domain.IngestOptions{ChunkSize: p.chunkSize, ChunkOverlap: p.overlap}.Validate()
	if err != nil {
		return nil, err
	}

	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return Name
}

// ChunkSize returns the configured chunk size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Process splits every page of the document into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
// Positions run across pages so they stay unique within the document.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", domain.ErrInvalidInput)
	}

	var chunks []domain.Chunk
	position := 0

	for _, page := range doc.PageTexts() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for _, span := range p.Split(page.Text) {
			chunks = append(chunks, domain.Chunk{
				ID:         uuid.New().String(),
				DocumentID: doc.ID,
				Source:     doc.Source,
				Content:    span.Text,
				Position:   position,
				Page:       page.Number,
				Offset:     span.Start,
				Length:     span.End - span.Start,
				Metadata:   make(map[string]any),
			})
			position++
		}
	}

	return chunks, nil
}

// Span is a chunk window over a text, in character offsets.
type Span struct {
	Start int
	End   int
	Text  string
}

// Split cuts text into spans. It is deterministic and has no side effects.
func (p *Processor) Split(text string) []Span {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}

	spans := make([]Span, 0, n/(p.chunkSize-p.overlap)+1)
	start := 0

	for {
		if n-start <= p.chunkSize {
			spans = append(spans, Span{Start: start, End: n, Text: string(runes[start:n])})
			return spans
		}

		end := p.breakPoint(runes, start)
		spans = append(spans, Span{Start: start, End: end, Text: string(runes[start:end])})
		start = p.nextStart(runes, start, end)
	}
}

// breakPoint returns the end of the window starting at start.
// The end lies in (start+overlap, start+chunkSize] so the next window always advances.
func (p *Processor) breakPoint(runes []rune, start int) int {
	limit := start + p.chunkSize
	floor := start + p.overlap

	for _, sep := range separators {
		for end := limit; end > floor; end-- {
			if end-len(sep) < start {
				break
			}
			if hasSuffixAt(runes, end, sep) {
				return end
			}
		}
	}

	return limit
}

// nextStart picks the start of the window after [start, end).
// It is the earliest word start inside the overlap region, or a hard
// overlap of exactly p.overlap characters when no word starts there.
func (p *Processor) nextStart(runes []rune, start, end int) int {
	if p.overlap == 0 {
		return end
	}

	from := max(end-p.overlap, start+1)
	for i := from; i < end; i++ {
		if unicode.IsSpace(runes[i-1]) && !unicode.IsSpace(runes[i]) {
			return i
		}
	}

	return end - p.overlap
}

func hasSuffixAt(runes []rune, end int, sep []rune) bool {
	offset := end - len(sep)
	for i, r := range sep {
		if runes[offset+i] != r {
			return false
		}
	}
	return true
}
