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


package extract

import (
	"errors"
	"fmt"
)

// ErrInvalidURL indicates a website URL that is not a well-formed absolute
// http(s) URL. It is returned before any network fetch is attempted.
var ErrInvalidURL = errors.New("invalid website url")

// Kind classifies an extraction failure.
type Kind int

const (
	// ParseError indicates a source payload that could not be decoded
	// (e.g. an unparseable PDF).
	ParseError Kind = iota + 1
	// FetchError indicates a website that could not be retrieved:
	// unreachable hosts, non-2xx responses, and timeouts.
	FetchError
)

// String returns the stable machine-usable reason for the kind.
func (k Kind) String() string {
	switch k {
	case ParseError:
		return "parse_error"
	case FetchError:
		return "fetch_error"
	default:
		return "extraction_error"
	}
}

// Error is a typed extraction failure carrying the failure kind and the
// source it occurred on.
type Error struct {
	Kind   Kind
	Source string // filename or URL, for diagnostics
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extraction failed (%s) for %s: %v", e.Kind, e.Source, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func parseError(source string, err error) *Error {
	return &Error{Kind: ParseError, Source: source, Err: err}
}

func fetchError(source string, err error) *Error {
	return &Error{Kind: FetchError, Source: source, Err: err}
}
