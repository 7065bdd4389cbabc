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

// Package extract turns raw request data into typed values driven by struct
// tags.
//
// An input struct declares where each field comes from:
//
//	type UpdateUser struct {
//	    ID      int       `path:"id"`
//	    Dry     *bool     `query:"dry_run"`
//	    Trace   string    `header:"X-Request-Id"`
//	    Payload UserPatch `body:"json"`
//	}
//
// [Compile] (or the generic [For]) turns the type into an immutable [*Spec]
// once, at startup; malformed declarations such as two body fields or an
// unconvertible field type fail there instead of at request time.
// [Spec.Extract] then fills a value from a per-request [Source], running
// fields in declaration order and stopping at the first failure.
//
// Value fields are required: an absent key fails with [ReasonMissing].
// Pointer fields are optional and stay nil when the key is absent. The body
// is a single-consumer stream; the one declared body field reads it whole
// and decodes it as json, form, yaml, toml, msgpack, or proto.
//
// Every runtime failure is a [*Error] carrying the field name, its origin,
// and a stable reason code, which the dispatch layer maps onto structured
// 400 responses.
package extract
