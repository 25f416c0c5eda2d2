package domain

import (
	"path/filepath"
	"strings"
)

// RawDocument represents a named blob handed to ingestion.
// It is the input to normalisation.
type RawDocument struct {
	// URI is the document name or path.
	URI string

	// MIMEType is the content type (e.g., "application/pdf").
	// Empty means detect from the URI extension.
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// Metadata contains caller-supplied key-value pairs.
	Metadata map[string]any
}

// Name returns the base name of the document URI.
func (r *RawDocument) Name() string {
	return filepath.Base(r.URI)
}

var mimeTypes = map[string]string{
	".txt":      "text/plain",
	".text":     "text/plain",
	".csv":      "text/csv",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".pdf":      "application/pdf",
}

// DetectMIMEType maps a file name to a MIME type by extension.
// Returns an empty string for unknown extensions.
func DetectMIMEType(name string) string {
	return mimeTypes[strings.ToLower(filepath.Ext(name))]
}
