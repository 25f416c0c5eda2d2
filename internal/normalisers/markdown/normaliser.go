// Package markdown normalises Markdown documents.
//
// Markdown is indexed as written: the source text is what gets chunked and
// quoted back as supporting context. Only the title is derived from the markup.
package markdown

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/voxqa/internal/core/domain"
	"github.com/custodia-labs/voxqa/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

var (
	atxHeading   = regexp.MustCompile(`^#{1,6}\s+(.+?)\s*#*\s*$`)
	frontMatter  = regexp.MustCompile(`(?s)\A---\n(.*?)\n---\n`)
	frontTitle   = regexp.MustCompile(`(?m)^title:\s*["']?(.+?)["']?\s*$`)
	inlineMarkup = strings.NewReplacer("**", "", "__", "", "`", "", "*", "")
)

// Normaliser handles Markdown documents.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise converts a markdown document into a single-page document.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	content := bytes.TrimPrefix(raw.Content, []byte{0xEF, 0xBB, 0xBF})
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8 text", domain.ErrUnsupportedDocument, raw.Name())
	}
	text := strings.ReplaceAll(string(content), "\r\n", "\n")

	doc := domain.Document{
		ID:        uuid.New().String(),
		Source:    raw.Name(),
		Title:     extractTitle(text, raw.Name()),
		Content:   text,
		Metadata:  make(map[string]any, len(raw.Metadata)+2),
		CreatedAt: time.Now(),
	}
	for k, v := range raw.Metadata {
		doc.Metadata[k] = v
	}
	doc.Metadata["mime_type"] = raw.MIMEType
	doc.Metadata["format"] = "markdown"

	return &driven.NormaliseResult{Document: doc}, nil
}

// extractTitle returns the front matter title, else the first heading of any
// level, else the file name without extension.
func extractTitle(text, name string) string {
	if m := frontMatter.FindStringSubmatch(text); m != nil {
		if t := frontTitle.FindStringSubmatch(m[1]); t != nil {
			return t[1]
		}
	}

	for _, line := range strings.Split(text, "\n") {
		if m := atxHeading.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			return inlineMarkup.Replace(m[1])
		}
	}

	name = strings.TrimSuffix(name, filepath.Ext(name))
	return strings.NewReplacer("_", " ", "-", " ").Replace(name)
}
