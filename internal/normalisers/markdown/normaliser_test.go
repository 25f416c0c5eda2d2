package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/voxqa/internal/core/domain"
	"github.com/custodia-labs/voxqa/internal/core/ports/driven"
)

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = (*Normaliser)(nil)
}

func TestSupportedMIMETypes(t *testing.T) {
	n := New()
	assert.Contains(t, n.SupportedMIMETypes(), "text/markdown")
	assert.Equal(t, 50, n.Priority())
}

func TestNormalise_KeepsSourceText(t *testing.T) {
	source := "# Sample Country\n\nThe capital is **Testville**.\r\n\n- rivers\n- lakes\n"
	raw := &domain.RawDocument{
		URI:      "docs/country.md",
		MIMEType: "text/markdown",
		Content:  []byte(source),
		Metadata: map[string]any{"origin": "upload"},
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)

	doc := result.Document
	assert.Equal(t, "country.md", doc.Source)
	assert.Equal(t, "Sample Country", doc.Title)
	assert.Equal(t, "# Sample Country\n\nThe capital is **Testville**.\n\n- rivers\n- lakes\n", doc.Content)
	assert.Equal(t, "markdown", doc.Metadata["format"])
	assert.Equal(t, "text/markdown", doc.Metadata["mime_type"])
	assert.Equal(t, "upload", doc.Metadata["origin"])
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		file     string
		expected string
	}{
		{"h1", "# Title\nbody", "a.md", "Title"},
		{"first heading of any level", "intro\n\n## Setup Guide ##\n# Later", "a.md", "Setup Guide"},
		{"inline markup removed", "# The `voxqa` **CLI**", "a.md", "The voxqa CLI"},
		{"front matter", "---\ntitle: \"Release Notes\"\n---\n# Other", "a.md", "Release Notes"},
		{"hash without space is not a heading", "#hashtag\ntext", "my_notes-v2.md", "my notes v2"},
		{"empty", "", "readme.markdown", "readme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractTitle(tt.text, tt.file))
		})
	}
}

func TestNormalise_Errors(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = New().Normalise(context.Background(), &domain.RawDocument{URI: "bad.md", Content: []byte{0xc3, 0x28}})
	assert.ErrorIs(t, err, domain.ErrUnsupportedDocument)
}
