// Package ai provides abstractions for the AI services used by inkwell.
//
// Two interfaces cover the pipeline's provider calls:
//
//   - Embedder: generates vector embeddings from text
//   - Summarizer: produces a short description from retrieved passages
//
// Provider aggregates both for convenient initialization. The core pipeline
// depends only on these abstractions; concrete implementations live in
// ai/openai (OpenAI-compatible APIs via langchaingo) and ai/mock
// (deterministic test doubles).
//
// Public constructors in ai/openai return interface types to prevent
// coupling to implementation details; mock constructors return concrete
// types so tests can inject behavior and make assertions.
package ai
