// Package normalisers turns uploaded files into page-structured documents.
//
// Each sub-package handles a family of MIME types:
//
//   - plaintext: .txt and .csv
//   - markdown: .md and .markdown
//   - pdf: .pdf through pdftotext
//
// The Registry picks the highest-priority normaliser for a document's MIME
// type; RegisterDefaults wires the built-in ones.
package normalisers
