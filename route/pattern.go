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
	"fmt"
	"strings"
	"unicode"
)

// Kind identifies what a pattern segment matches.
type Kind uint8

const (
	// KindLiteral matches a request segment byte-for-byte, case-sensitively.
	KindLiteral Kind = iota

	// KindPlaceholder matches any single non-empty request segment and
	// captures it under the placeholder name.
	KindPlaceholder
)

// String returns the string representation of the segment kind.
func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindPlaceholder:
		return "placeholder"
	default:
		return "unknown"
	}
}

// Segment is one `/`-delimited component of a route pattern.
// For a literal segment, Value holds the exact text to match.
// For a placeholder segment, Value holds the capture name.
type Segment struct {
	Kind  Kind
	Value string
}

// Pattern is a parsed route pattern: an ordered sequence of segments.
//
// The root pattern "/" parses to zero segments. "/a" and "/a/" are distinct
// patterns with distinct segment counts; no trailing-slash normalization is
// applied anywhere in this package.
//
// Patterns are immutable after parsing and safe for concurrent use.
type Pattern struct {
	segments []Segment
}

// ParsePattern parses a route pattern string such as "/users/{id}/posts".
//
// The pattern is split on "/". A component of the form "{name}" becomes a
// placeholder, where name must be a non-empty Go-style identifier; any other
// component becomes a literal. Placeholder names must be unique within one
// pattern.
//
// Errors are wrapped in [*ParseError] and match one of the sentinels
// [ErrEmptyPattern], [ErrNoLeadingSlash], [ErrInvalidPlaceholder], or
// [ErrDuplicatePlaceholder].
//
// The parser performs no percent-decoding; see [Table.Match] for the decoding
// policy applied to captured values.
func ParsePattern(pattern string) (Pattern, error) {
	if pattern == "" {
		return Pattern{}, &ParseError{Pattern: pattern, Err: ErrEmptyPattern}
	}
	if pattern[0] != '/' {
		return Pattern{}, &ParseError{Pattern: pattern, Err: ErrNoLeadingSlash}
	}

	// Root pattern: zero segments.
	if pattern == "/" {
		return Pattern{}, nil
	}

	components := strings.Split(pattern[1:], "/")
	segments := make([]Segment, 0, len(components))
	seen := make(map[string]struct{}, len(components))

	for _, component := range components {
		open := strings.HasPrefix(component, "{")
		closed := strings.HasSuffix(component, "}")

		switch {
		case open && closed:
			name := component[1 : len(component)-1]
			if !isIdentifier(name) {
				return Pattern{}, &ParseError{
					Pattern: pattern,
					Segment: component,
					Err:     ErrInvalidPlaceholder,
				}
			}
			if _, dup := seen[name]; dup {
				return Pattern{}, &ParseError{
					Pattern: pattern,
					Segment: component,
					Err:     ErrDuplicatePlaceholder,
				}
			}
			seen[name] = struct{}{}
			segments = append(segments, Segment{Kind: KindPlaceholder, Value: name})

		case open || closed || strings.ContainsAny(component, "{}"):
			// Half-open braces or braces embedded in a literal are always
			// author mistakes; reject them instead of matching literally.
			return Pattern{}, &ParseError{
				Pattern: pattern,
				Segment: component,
				Err:     ErrInvalidPlaceholder,
			}

		default:
			segments = append(segments, Segment{Kind: KindLiteral, Value: component})
		}
	}

	return Pattern{segments: segments}, nil
}

// MustParsePattern is like [ParsePattern] but panics on error.
// It simplifies static pattern tables in tests and examples.
func MustParsePattern(pattern string) Pattern {
	p, err := ParsePattern(pattern)
	if err != nil {
		panic(fmt.Sprintf("route: %v", err))
	}

	return p
}

// String re-serializes the pattern. The result of parsing the returned
// string is equal to the original pattern.
func (p Pattern) String() string {
	if len(p.segments) == 0 {
		return "/"
	}

	var b strings.Builder
	for _, s := range p.segments {
		b.WriteByte('/')
		if s.Kind == KindPlaceholder {
			b.WriteByte('{')
			b.WriteString(s.Value)
			b.WriteByte('}')
		} else {
			b.WriteString(s.Value)
		}
	}

	return b.String()
}

// Segments returns a copy of the pattern's segment sequence.
func (p Pattern) Segments() []Segment {
	out := make([]Segment, len(p.segments))
	copy(out, p.segments)

	return out
}

// Placeholders returns the placeholder names in declaration order.
func (p Pattern) Placeholders() []string {
	var names []string
	for _, s := range p.segments {
		if s.Kind == KindPlaceholder {
			names = append(names, s.Value)
		}
	}

	return names
}

// Placeholders encode as 0xFF 0xFF in signatures and a literal 0xFF byte
// escapes to 0xFF 0x00, so no literal text can collide with the
// placeholder marker and the encoding stays injective.
const (
	sigPlaceholder = "\xff\xff"
	sigEscape      = "\xff\x00"
)

// signature returns the pattern with placeholder names erased. Two
// same-method patterns with equal signatures match exactly the same set of
// paths, so they cannot be told apart at match time and are rejected by
// Build. Placeholders sort after any escaped literal byte, which gives the
// literal-first candidate order used during matching.
func (p Pattern) signature() string {
	var b strings.Builder
	for _, s := range p.segments {
		b.WriteByte('/')
		if s.Kind == KindPlaceholder {
			b.WriteString(sigPlaceholder)
		} else {
			b.WriteString(strings.ReplaceAll(s.Value, "\xff", sigEscape))
		}
	}

	return b.String()
}

// isIdentifier reports whether name is a non-empty identifier:
// a letter or underscore followed by letters, digits, or underscores.
func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}

		return false
	}

	return true
}
