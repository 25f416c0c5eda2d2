package pdf

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/voxqa/internal/core/domain"
	"github.com/custodia-labs/voxqa/internal/core/ports/driven"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error

	name  string
	args  []string
	input []byte
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.name = name
	m.args = args
	// The input file is the argument before "-"
	if len(args) >= 2 {
		m.input, _ = os.ReadFile(args[len(args)-2])
	}
	return m.output, m.err
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = (*Normaliser)(nil)
}

func TestSupportedMIMETypes(t *testing.T) {
	n := New()
	assert.Equal(t, []string{"application/pdf"}, n.SupportedMIMETypes())
	assert.Equal(t, 50, n.Priority())
}

func TestNewWithRunner(t *testing.T) {
	runner := &mockRunner{}
	n := NewWithRunner(runner)
	assert.Equal(t, runner, n.runner)
	assert.Nil(t, n.lookup)
}

func TestNormalise_NilDocument(t *testing.T) {
	result, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestNormalise_SplitsPages(t *testing.T) {
	runner := &mockRunner{
		output: []byte("Annual Report\n\nIntro text.\n\fSecond page.\n\f\n\n\fFourth page.\n\f"),
	}
	raw := &domain.RawDocument{
		URI:      "/uploads/report.pdf",
		MIMEType: "application/pdf",
		Content:  []byte("%PDF-1.4 fake pdf content"),
	}

	result, err := NewWithRunner(runner).Normalise(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, "pdftotext", runner.name)
	assert.Equal(t, []string{"-layout", "-enc", "UTF-8"}, runner.args[:3])
	assert.Equal(t, "-", runner.args[len(runner.args)-1])
	assert.Equal(t, raw.Content, runner.input)

	doc := result.Document
	assert.Equal(t, "report.pdf", doc.Source)
	assert.Equal(t, "Annual Report", doc.Title)
	require.Len(t, doc.Pages, 3)
	assert.Equal(t, domain.Page{Number: 1, Text: "Annual Report\n\nIntro text.\n"}, doc.Pages[0])
	assert.Equal(t, 2, doc.Pages[1].Number)
	assert.Equal(t, 4, doc.Pages[2].Number, "blank pages keep their numbering gap")
	assert.Contains(t, doc.Content, "Fourth page.")
	assert.Equal(t, "pdf", doc.Metadata["format"])
	assert.Equal(t, 3, doc.Metadata["page_count"])
}

func TestNormalise_RunnerError(t *testing.T) {
	runner := &mockRunner{err: errors.New("Syntax Error: Couldn't find trailer dictionary")}

	result, err := NewWithRunner(runner).Normalise(context.Background(), &domain.RawDocument{
		URI:     "broken.pdf",
		Content: []byte("not a pdf"),
	})
	assert.ErrorIs(t, err, domain.ErrUnsupportedDocument)
	assert.Contains(t, err.Error(), "pdftotext failed")
	assert.Nil(t, result)
}

func TestNormalise_ToolMissing(t *testing.T) {
	n := &Normaliser{
		runner: &mockRunner{},
		lookup: func() error { return ErrPDFToolNotFound },
	}

	_, err := n.Normalise(context.Background(), &domain.RawDocument{URI: "a.pdf"})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.ErrorIs(t, err, ErrPDFToolNotFound)
	assert.Contains(t, err.Error(), "brew install poppler")
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		uri      string
		expected string
	}{
		{"first line as title", "Document Title\n\nSome content here.", "/doc.pdf", "Document Title"},
		{"skip empty lines", "\n\n\n   Actual Title  \nContent", "/doc.pdf", "Actual Title"},
		{"fallback to filename", "", "/path/to/my_document.pdf", "my document"},
		{"skip very long first line", string(make([]byte, 250)) + "\nShort Title\nContent", "/doc.pdf", "Short Title"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, extractTitle(tc.content, tc.uri))
		})
	}
}

func TestInstallInstructions(t *testing.T) {
	instructions := InstallInstructions()
	assert.Contains(t, instructions, "pdftotext")
	assert.Contains(t, instructions, "brew install poppler")
	assert.Contains(t, instructions, "apt install poppler-utils")
}

func TestNormalise_Integration(t *testing.T) {
	if err := CheckAvailable(); err != nil {
		t.Skip("pdftotext not available")
	}

	_, err := New().Normalise(context.Background(), &domain.RawDocument{URI: "junk.pdf", Content: []byte("junk")})
	assert.ErrorIs(t, err, domain.ErrUnsupportedDocument)
}
