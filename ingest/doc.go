// Package ingest orchestrates content ingestion: admission checks,
// extraction, collection naming, chunking, concurrent embedding, idempotent
// indexing, and retrieval-grounded summarization with a templated fallback.
//
// A request moves through Validating, Extracting, Naming, Indexing, and
// Summarizing. Failures in the first four stages abort the request and
// leave no visible collection. A failure while summarizing is absorbed:
// the result still reports success, carrying a deterministic fallback
// description instead.
package ingest
