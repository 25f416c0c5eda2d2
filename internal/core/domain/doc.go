// Package domain defines the core business entities for voxqa.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawDocument: Named bytes handed to ingestion
//   - Document: A normalised document, one text per page
//   - Chunk: A retrievable unit cut from a document page
//   - IndexEntry: A chunk together with its embedding
//   - Answer: Generated text and the chunks it was conditioned on
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
