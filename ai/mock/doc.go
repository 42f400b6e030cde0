// Package mock provides deterministic test doubles for the ai interfaces.
// Embedding vectors are derived from an FNV hash of the input text, so the
// same text always embeds to the same vector without any network calls.
package mock
