package domain

import "time"

// Document represents a normalised document ready for chunking.
// It is discarded once its chunks have been indexed.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Source is the name the document was uploaded under.
	Source string

	// Title is the human-readable title.
	Title string

	// Content is the full text, pages joined by newlines.
	Content string

	// Pages holds one text per page. Text documents have a single page 0.
	Pages []Page

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the document was normalised.
	CreatedAt time.Time
}

// Page is one page of extracted text.
type Page struct {
	Number int
	Text   string
}

// PageTexts returns the document pages, falling back to Content as page 0.
func (d *Document) PageTexts() []Page {
	if len(d.Pages) > 0 {
		return d.Pages
	}
	if d.Content == "" {
		return nil
	}
	return []Page{{Number: 0, Text: d.Content}}
}

// Chunk represents a retrievable unit cut from a document page.
// (DocumentID, Page, Offset) identifies a chunk unambiguously across ingestions.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Source is the originating document name.
	Source string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Page is the page number the chunk was cut from.
	Page int

	// Offset is the start of the chunk within the page text, in characters.
	Offset int

	// Length is the chunk length in characters.
	Length int

	// Metadata contains chunk-specific key-value pairs.
	Metadata map[string]any
}
