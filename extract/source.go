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

package extract

import (
	"io"
	"net/http"
	"net/url"

	"rivaas.dev/dispatch/route"
)

// Source is the per-request view extraction reads from: path captures, query
// parameters, headers, and a single-consumer body.
//
// Everything except the body is immutable. The body may be read exactly once
// via [Source.Body]; every later read fails with [ErrBodyConsumed]. A Source
// belongs to one request and one goroutine; it is not safe for concurrent
// use and must not be retained after the request completes.
//
// All lookups distinguish "key present with empty value" from "key absent".
// A query string "?q=" reports HasQuery("q") = true with value "", while
// "?other=x" reports HasQuery("q") = false. Required-field checks depend on
// this distinction.
type Source struct {
	params   route.Params
	query    url.Values
	header   http.Header
	body     io.ReadCloser
	consumed bool
}

// NewSource builds a Source from a request and its path captures. The query
// string is parsed once, up front; a malformed query string yields an empty
// query view rather than an error, matching net/http's own Query behavior.
func NewSource(r *http.Request, params route.Params) *Source {
	return &Source{
		params: params,
		query:  r.URL.Query(),
		header: r.Header,
		body:   r.Body,
	}
}

// Path returns the capture for name and whether it exists.
func (s *Source) Path(name string) (string, bool) {
	return s.params.Get(name)
}

// Query returns the first query value for key.
func (s *Source) Query(key string) string {
	return s.query.Get(key)
}

// HasQuery reports whether key is present in the query string, even with an
// empty value.
func (s *Source) HasQuery(key string) bool {
	return s.query.Has(key)
}

// Header returns the first header value for key. Lookup is case-insensitive
// via canonical MIME header form.
func (s *Source) Header(key string) string {
	return s.header.Get(key)
}

// HasHeader reports whether the header is present, even with an empty value.
func (s *Source) HasHeader(key string) bool {
	_, ok := s.header[http.CanonicalHeaderKey(key)]
	return ok
}

// ContentType returns the request's Content-Type header.
func (s *Source) ContentType() string {
	return s.header.Get("Content-Type")
}

// Body reads and returns the entire request body, closing the underlying
// stream. The body is yielded exactly once per request; any second call
// fails with an error wrapping [ErrBodyConsumed], regardless of whether the
// first read succeeded.
func (s *Source) Body() ([]byte, error) {
	if s.consumed {
		return nil, ErrBodyConsumed
	}
	s.consumed = true

	if s.body == nil {
		return nil, ErrBodyNil
	}
	defer s.body.Close()

	data, err := io.ReadAll(s.body)
	if err != nil {
		return nil, err
	}

	return data, nil
}

// BodyConsumed reports whether the body has already been yielded.
func (s *Source) BodyConsumed() bool {
	return s.consumed
}
