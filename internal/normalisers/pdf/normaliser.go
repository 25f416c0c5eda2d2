// Package pdf normalises PDF documents into page-structured text.
//
// Text is extracted with pdftotext from poppler, which must be on PATH.
// pdftotext ends every page with a form feed, so pages are recovered by
// splitting on '\f'.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/voxqa/internal/core/domain"
	"github.com/custodia-labs/voxqa/internal/core/ports/driven"
	"github.com/custodia-labs/voxqa/internal/logger"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

const (
	toolName = "pdftotext"

	// maxTitleLength bounds a first line used as title.
	maxTitleLength = 200
)

// ErrPDFToolNotFound indicates pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// CommandRunner runs an external command and returns its standard output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil && stderr.Len() > 0 {
		return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out, err
}

// Normaliser handles PDF documents.
type Normaliser struct {
	runner CommandRunner
	// lookup checks the tool is installed; nil skips the check.
	lookup func() error
}

// New creates a PDF normaliser that runs pdftotext from PATH.
func New() *Normaliser {
	return &Normaliser{runner: execRunner{}, lookup: CheckAvailable}
}

// NewWithRunner creates a PDF normaliser that extracts text through runner.
func NewWithRunner(runner CommandRunner) *Normaliser {
	return &Normaliser{runner: runner}
}

// CheckAvailable returns ErrPDFToolNotFound if pdftotext is not on PATH.
func CheckAvailable() error {
	if _, err := exec.LookPath(toolName); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions explains how to install pdftotext.
func InstallInstructions() string {
	return `PDF support requires pdftotext (poppler).
  macOS:          brew install poppler
  Debian/Ubuntu:  sudo apt install poppler-utils
  Fedora:         sudo dnf install poppler-utils`
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts one text per page. Page numbers start at 1 and pages
// without text are omitted.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if n.lookup != nil {
		if err := n.lookup(); err != nil {
			return nil, fmt.Errorf("%w: %w\n%s", domain.ErrConfiguration, err, InstallInstructions())
		}
	}

	tmp, err := os.CreateTemp("", "voxqa-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw.Content); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("closing temp file: %w", err)
	}

	out, err := n.runner.Run(ctx, toolName, "-layout", "-enc", "UTF-8", tmp.Name(), "-")
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: pdftotext failed on %s: %w", domain.ErrUnsupportedDocument, raw.Name(), err)
	}
	if !utf8.Valid(out) {
		return nil, fmt.Errorf("%w: %s produced invalid UTF-8", domain.ErrUnsupportedDocument, raw.Name())
	}

	pages := splitPages(string(out))
	logger.Debug("pdf: %s has %d pages with text", raw.Name(), len(pages))

	texts := make([]string, len(pages))
	for i, p := range pages {
		texts[i] = p.Text
	}
	content := strings.Join(texts, "\n")

	doc := domain.Document{
		ID:        uuid.New().String(),
		Source:    raw.Name(),
		Title:     extractTitle(content, raw.URI),
		Content:   content,
		Pages:     pages,
		Metadata:  copyMetadata(raw.Metadata),
		CreatedAt: time.Now(),
	}
	if doc.Metadata == nil {
		doc.Metadata = make(map[string]any)
	}
	doc.Metadata["mime_type"] = raw.MIMEType
	doc.Metadata["format"] = "pdf"
	doc.Metadata["page_count"] = len(pages)

	return &driven.NormaliseResult{Document: doc}, nil
}

// splitPages splits pdftotext output on form feeds.
func splitPages(out string) []domain.Page {
	raw := strings.Split(out, "\f")
	pages := make([]domain.Page, 0, len(raw))
	for i, text := range raw {
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, domain.Page{Number: i + 1, Text: text})
	}
	return pages
}

// extractTitle uses the first short non-empty line, else the file name.
func extractTitle(content, uri string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && len(line) <= maxTitleLength && utf8.ValidString(line) && !strings.ContainsRune(line, 0) {
			return line
		}
	}

	name := filepath.Base(uri)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return strings.NewReplacer("_", " ", "-", " ").Replace(name)
}

func copyMetadata(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
