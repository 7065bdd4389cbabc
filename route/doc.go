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

// Package route parses path patterns and matches request paths against an
// immutable routing table.
//
// A pattern is a "/"-separated sequence of segments. A segment is either a
// literal, matched byte for byte, or a placeholder like {id}, which matches
// exactly one non-empty path segment and captures its value:
//
//	p, err := route.ParsePattern("/users/{id}/posts/{post}")
//
// Tables are built once and never mutated, so lookups need no locking:
//
//	table, err := route.Build([]route.Entry[http.Handler]{
//	    {Method: "GET", Pattern: "/users/{id}", Handler: showUser},
//	    {Method: "GET", Pattern: "/users/me", Handler: showSelf},
//	})
//
// When a literal and a placeholder both cover a path, the literal wins:
// "GET /users/me" above dispatches to showSelf. Same-method patterns that
// are indistinguishable by shape, such as "/users/{id}" and "/users/{name}",
// are rejected at build time with a [*ConflictError] rather than resolved by
// registration order.
//
// Matching never normalizes paths. Trailing slashes are significant, and
// captures are percent-decoded only after segmentation, so an encoded "/"
// cannot change which route matches.
package route
