// Copyright 2025 The Rivaas Authors
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

package route

import (
	"errors"
	"fmt"
)

// Static errors for pattern parsing and table construction.
var (
	// ErrEmptyPattern indicates an empty pattern string.
	ErrEmptyPattern = errors.New("pattern is empty")

	// ErrNoLeadingSlash indicates a pattern that does not begin with "/".
	ErrNoLeadingSlash = errors.New("pattern must begin with '/'")

	// ErrInvalidPlaceholder indicates malformed braces or a placeholder
	// whose name is not a valid identifier.
	ErrInvalidPlaceholder = errors.New("invalid placeholder")

	// ErrDuplicatePlaceholder indicates the same placeholder name used
	// twice within one pattern.
	ErrDuplicatePlaceholder = errors.New("duplicate placeholder name")

	// ErrEmptyMethod indicates a table entry registered without an HTTP method.
	ErrEmptyMethod = errors.New("entry method is empty")
)

// ParseError reports a pattern that could not be parsed.
//
// Use [errors.Is] with the sentinel errors above to classify the failure:
//
//	_, err := route.ParsePattern("/a/{id}/{id}")
//	if errors.Is(err, route.ErrDuplicatePlaceholder) { ... }
type ParseError struct {
	Pattern string // The offending pattern text
	Segment string // The offending component, if any
	Err     error  // One of the sentinel parse errors
}

// Error returns a formatted error message.
func (e *ParseError) Error() string {
	if e.Segment != "" {
		return fmt.Sprintf("parsing pattern %q: segment %q: %v", e.Pattern, e.Segment, e.Err)
	}

	return fmt.Sprintf("parsing pattern %q: %v", e.Pattern, e.Err)
}

// Unwrap returns the underlying sentinel error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ConflictError reports two same-method patterns whose segment-kind
// sequences are identical, making them indistinguishable at match time.
// The conflict is detected when the table is built, never at request time.
type ConflictError struct {
	Method string  // HTTP method both patterns are registered for
	First  Pattern // The pattern registered first
	Second Pattern // The conflicting pattern
}

// Error returns a formatted error message naming both patterns.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("route conflict: %s %s is indistinguishable from %s %s",
		e.Method, e.Second, e.Method, e.First)
}
