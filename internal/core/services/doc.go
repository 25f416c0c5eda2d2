// Package services implements the driving port interfaces.
//
// Session is the question-answering pipeline: it owns the vector index
// handle, the Retriever and the AnswerChain, and serialises ingestion.
// SettingsService reads and writes user configuration.
//
// Services depend only on domain and port types; adapters are injected.
package services
