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

package ingest

import "fmt"

// Rejection reasons reported by the admission policy.
const (
	ReasonFileTooLarge = "file_too_large"
	ReasonTextTooLong  = "text_too_long"
	ReasonTextTooShort = "text_too_short"
	ReasonEmptyInput   = "empty_input"
)

// ValidationError reports input rejected before any extraction or provider
// call. It maps to a client error at the transport boundary.
type ValidationError struct {
	Reason  string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(reason, format string, args ...any) *ValidationError {
	return &ValidationError{
		Reason:  reason,
		Message: fmt.Sprintf(format, args...),
	}
}

// IndexingError reports a failure while embedding or upserting a
// collection's chunks. The collection is not usable when this is returned;
// any partially written chunks are invisible because the manifest is only
// written after a fully acknowledged batch.
type IndexingError struct {
	Collection string
	Err        error
}

func (e *IndexingError) Error() string {
	return fmt.Sprintf("indexing %s: %v", e.Collection, e.Err)
}

func (e *IndexingError) Unwrap() error {
	return e.Err
}
