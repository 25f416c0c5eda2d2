// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Normaliser: Transforms raw documents into page-structured text
//   - NormaliserRegistry: Selects the normaliser for a document kind
//   - PostProcessor: Splits documents into chunks
//   - EmbeddingService: Turns text into vectors
//   - VectorIndex: Append-only exact similarity index with persistence
//   - ConfigStore: Application configuration
//   - PromptStore: Generation prompt templates
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Generates answers. Without it, ingestion and status still work
//     and queries fail with domain.ErrNotReady.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
