package plaintext

import (
	"context"
	"strings"
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
	assert.ElementsMatch(t, []string{"text/plain", "text/csv"}, New().SupportedMIMETypes())
	assert.Equal(t, 5, New().Priority())
}

func TestNormalise_Success(t *testing.T) {
	raw := &domain.RawDocument{
		URI:      "/uploads/country_facts.txt",
		MIMEType: "text/plain",
		Content:  []byte("The capital of Sample Country is Testville."),
		Metadata: map[string]any{"uploaded_by": "cli"},
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)

	doc := result.Document
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "country_facts.txt", doc.Source)
	assert.Equal(t, "country facts", doc.Title)
	assert.Equal(t, "The capital of Sample Country is Testville.", doc.Content)
	assert.Empty(t, doc.Pages)
	assert.Equal(t, "text/plain", doc.Metadata["mime_type"])
	assert.Equal(t, "cli", doc.Metadata["uploaded_by"])
	assert.NotContains(t, raw.Metadata, "mime_type", "input metadata is not mutated")
}

func TestNormalise_CSVKeptVerbatim(t *testing.T) {
	csv := "city,country\nTestville,Sample Country\n"
	result, err := New().Normalise(context.Background(), &domain.RawDocument{
		URI:      "cities.csv",
		MIMEType: "text/csv",
		Content:  []byte(csv),
	})
	require.NoError(t, err)
	assert.Equal(t, csv, result.Document.Content)
}

func TestNormalise_TitleFromMetadata(t *testing.T) {
	result, err := New().Normalise(context.Background(), &domain.RawDocument{
		URI:      "x.txt",
		Content:  []byte("body"),
		Metadata: map[string]any{"title": "Quarterly Notes"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Quarterly Notes", result.Document.Title)
}

func TestNormalise_Errors(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = New().Normalise(context.Background(), &domain.RawDocument{
		URI:     "binary.txt",
		Content: []byte{0xff, 0xfe, 0x00, 0x41},
	})
	assert.ErrorIs(t, err, domain.ErrUnsupportedDocument)
	assert.Contains(t, err.Error(), "binary.txt")
}

func TestNormalise_StripsBOMAndKeepsUnicode(t *testing.T) {
	text := "Größe: 東京 · ok"
	result, err := New().Normalise(context.Background(), &domain.RawDocument{
		URI:     "u.txt",
		Content: append([]byte{0xEF, 0xBB, 0xBF}, text...),
	})
	require.NoError(t, err)
	assert.Equal(t, text, result.Document.Content)
}

func TestNormalise_EmptyContent(t *testing.T) {
	result, err := New().Normalise(context.Background(), &domain.RawDocument{URI: "empty.txt"})
	require.NoError(t, err)
	assert.Empty(t, result.Document.Content)
	assert.Nil(t, result.Document.PageTexts())
}

func TestNormalise_LargeContent(t *testing.T) {
	big := strings.Repeat("line of text\n", 100000)
	result, err := New().Normalise(context.Background(), &domain.RawDocument{URI: "big.txt", Content: []byte(big)})
	require.NoError(t, err)
	assert.Len(t, result.Document.Content, len(big))
}
