// Package core contains the domain model for inkwell: collections of
// embedded passages, the chunks they are built from, source typing,
// collection naming, and domain validation rules.
//
// The package has no dependencies on storage or AI providers; everything
// here is plain data and pure functions.
package core
