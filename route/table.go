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
	"net/url"
	"slices"
	"sort"
	"strings"
)

// Param is one captured path value.
type Param struct {
	Name  string
	Value string
}

// Params holds the captures of a single match, in placeholder declaration
// order. Params values are created per request and must not be retained
// past the request's lifetime.
type Params []Param

// Get returns the capture for name. The second return value reports
// whether the name was captured at all.
func (ps Params) Get(name string) (string, bool) {
	for _, p := range ps {
		if p.Name == name {
			return p.Value, true
		}
	}

	return "", false
}

// Entry is one route registration handed to [Build]: an HTTP method, a
// pattern string, and an opaque handler payload carried through to the
// match result.
type Entry[H any] struct {
	Method  string
	Pattern string
	Handler H
}

// Match is the result of a successful table lookup: the pattern that
// matched, its handler payload, and the captured path values.
type Match[H any] struct {
	Pattern Pattern
	Handler H
	Params  Params
}

// compiled is one route inside a built table.
type compiled[H any] struct {
	pattern  Pattern
	segments []Segment // cached; avoids a copy per match attempt
	handler  H
}

// Table is an immutable routing table. It is built once with [Build] and is
// safe for concurrent use by any number of goroutines without locking;
// nothing is ever mutated after Build returns.
type Table[H any] struct {
	byMethod map[string][]compiled[H]
}

// Build compiles entries into a [Table].
//
// Entries are grouped by method. Two same-method patterns that differ only
// in placeholder names match exactly the same paths and can never be told
// apart by the matcher, so Build rejects them with a [*ConflictError] naming
// both patterns. Malformed patterns are
// rejected with a [*ParseError]. A failed Build leaves no usable table;
// callers are expected to treat any error as fatal at startup.
//
// Within a method, candidates are ordered literal-first position-wise, so
// "/user/me" takes precedence over "/user/{id}" for a literal request path.
// Combined with the conflict check this makes matching fully deterministic.
func Build[H any](entries []Entry[H]) (*Table[H], error) {
	t := &Table[H]{byMethod: make(map[string][]compiled[H])}
	signatures := make(map[string]Pattern)

	for _, e := range entries {
		if e.Method == "" {
			return nil, ErrEmptyMethod
		}
		method := strings.ToUpper(e.Method)

		pattern, err := ParsePattern(e.Pattern)
		if err != nil {
			return nil, err
		}

		key := method + " " + pattern.signature()
		if first, exists := signatures[key]; exists {
			return nil, &ConflictError{Method: method, First: first, Second: pattern}
		}
		signatures[key] = pattern

		t.byMethod[method] = append(t.byMethod[method], compiled[H]{
			pattern:  pattern,
			segments: pattern.segments,
			handler:  e.Handler,
		})
	}

	// Literal-first candidate order: shorter patterns first, then by
	// signature, which sorts a literal before a placeholder at the first
	// differing segment. Signatures are unique per method, so the order
	// is total and matching is deterministic.
	for method := range t.byMethod {
		bucket := t.byMethod[method]
		sort.Slice(bucket, func(i, j int) bool {
			if len(bucket[i].segments) != len(bucket[j].segments) {
				return len(bucket[i].segments) < len(bucket[j].segments)
			}

			return bucket[i].pattern.signature() < bucket[j].pattern.signature()
		})
	}

	return t, nil
}

// Match looks up the route for (method, path) and returns its match result.
//
// The path is compared segment by segment, left to right: literals must
// match exactly (case-sensitive, no normalization), placeholders match any
// single non-empty segment. "/a" and "/a/" have different segment counts and
// never match the same pattern. The second return value is false when no
// same-method route matches; callers treat that as "not found", not an error.
//
// Matching operates on the raw (still escaped) path so that an encoded "/"
// inside a segment cannot change segmentation. Captured values are
// percent-decoded after capture, before they reach any conversion.
func (t *Table[H]) Match(method, path string) (Match[H], bool) {
	candidates := t.byMethod[strings.ToUpper(method)]
	if len(candidates) == 0 {
		return Match[H]{}, false
	}

	segs, ok := splitPath(path)
	if !ok {
		return Match[H]{}, false
	}

	for i := range candidates {
		c := &candidates[i]
		if len(c.segments) != len(segs) {
			continue
		}
		params, matched := matchSegments(c.segments, segs)
		if matched {
			return Match[H]{Pattern: c.pattern, Handler: c.handler, Params: params}, true
		}
	}

	return Match[H]{}, false
}

// Allowed returns the methods, sorted, for which some route fully matches
// path. It is used to decide HEAD fallback; an empty result means no route
// matches the path under any method.
func (t *Table[H]) Allowed(path string) []string {
	segs, ok := splitPath(path)
	if !ok {
		return nil
	}

	var methods []string
	for method, candidates := range t.byMethod {
		for i := range candidates {
			if len(candidates[i].segments) != len(segs) {
				continue
			}
			if _, matched := matchSegments(candidates[i].segments, segs); matched {
				methods = append(methods, method)
				break
			}
		}
	}
	slices.Sort(methods)

	return methods
}

// matchSegments compares pattern segments against request segments and
// collects captures. Both slices must have equal length.
func matchSegments(pattern []Segment, request []string) (Params, bool) {
	var params Params
	for i, s := range pattern {
		switch s.Kind {
		case KindLiteral:
			if request[i] != s.Value {
				return nil, false
			}
		case KindPlaceholder:
			if request[i] == "" {
				return nil, false
			}
			params = append(params, Param{Name: s.Value, Value: decodeSegment(request[i])})
		}
	}

	return params, true
}

// splitPath splits a request path into segments using the same rules as
// pattern parsing: a leading "/" is required, "/" itself has zero segments,
// and empty components (as in "/a//b" or a trailing slash) are preserved.
func splitPath(path string) ([]string, bool) {
	if path == "" || path[0] != '/' {
		return nil, false
	}
	if path == "/" {
		return nil, true
	}

	return strings.Split(path[1:], "/"), true
}

// decodeSegment percent-decodes a captured segment. A malformed escape
// leaves the raw text in place rather than failing the match; conversion of
// the capture will surface the problem with field context.
func decodeSegment(s string) string {
	if !strings.ContainsRune(s, '%') {
		return s
	}
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return s
	}

	return decoded
}
