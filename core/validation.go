// Copyright 2026 Inkwell Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "fmt"

// ValidateCollection validates a Collection according to domain rules.
//
// Validation rules:
//   - Id must not be empty
//   - SourceType must be valid
//
// NOT validated (populated later in the pipeline):
//   - Summary (filled after summarization)
//   - ChunkCount (filled after indexing)
func ValidateCollection(col *Collection) error {
	if col == nil {
		return fmt.Errorf("%w: collection is nil", ErrInvalidCollection)
	}

	if col.Id == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCollection, ErrEmptyCollectionId)
	}

	if err := ValidateSourceType(col.SourceType); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCollection, err)
	}

	return nil
}

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Collection must not be empty
//   - Text must not be empty
//   - Seq must be >= 0
//
// NOT validated (populated by the embedding stage):
//   - Vector (can be empty until embedded)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Collection == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyCollectionId)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyChunkText)
	}

	if chunk.Seq < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrNegativeSequence)
	}

	return nil
}

// ValidateSourceType validates that a SourceType has a valid value.
func ValidateSourceType(st SourceType) error {
	if st != SourceTypePDF && st != SourceTypeText && st != SourceTypeWebsite {
		return fmt.Errorf("%w: value %d", ErrInvalidSourceType, st)
	}
	return nil
}
