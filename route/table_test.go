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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTable(t *testing.T, entries ...Entry[string]) *Table[string] {
	t.Helper()

	table, err := Build(entries)
	require.NoError(t, err)

	return table
}

func TestTableMatch(t *testing.T) {
	t.Parallel()

	table := buildTable(t,
		Entry[string]{Method: "GET", Pattern: "/", Handler: "root"},
		Entry[string]{Method: "GET", Pattern: "/users", Handler: "list"},
		Entry[string]{Method: "GET", Pattern: "/users/{id}", Handler: "show"},
		Entry[string]{Method: "GET", Pattern: "/users/{id}/posts/{post}", Handler: "post"},
		Entry[string]{Method: "POST", Pattern: "/users", Handler: "create"},
	)

	tests := []struct {
		name       string
		method     string
		path       string
		want       string
		wantParams Params
		wantMiss   bool
	}{
		{
			name:   "root",
			method: "GET",
			path:   "/",
			want:   "root",
		},
		{
			name:   "literal",
			method: "GET",
			path:   "/users",
			want:   "list",
		},
		{
			name:       "single capture",
			method:     "GET",
			path:       "/users/42",
			want:       "show",
			wantParams: Params{{Name: "id", Value: "42"}},
		},
		{
			name:   "two captures",
			method: "GET",
			path:   "/users/42/posts/7",
			want:   "post",
			wantParams: Params{
				{Name: "id", Value: "42"},
				{Name: "post", Value: "7"},
			},
		},
		{
			name:   "method selects handler",
			method: "POST",
			path:   "/users",
			want:   "create",
		},
		{
			name:     "unknown path",
			method:   "GET",
			path:     "/teams",
			wantMiss: true,
		},
		{
			name:     "unknown method",
			method:   "DELETE",
			path:     "/users",
			wantMiss: true,
		},
		{
			name:     "trailing slash is a different path",
			method:   "GET",
			path:     "/users/",
			wantMiss: true,
		},
		{
			name:     "placeholder refuses empty segment",
			method:   "GET",
			path:     "/users//posts/7",
			wantMiss: true,
		},
		{
			name:     "too many segments",
			method:   "GET",
			path:     "/users/42/posts",
			wantMiss: true,
		},
		{
			name:     "path without leading slash",
			method:   "GET",
			path:     "users",
			wantMiss: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m, ok := table.Match(tt.method, tt.path)
			if tt.wantMiss {
				assert.False(t, ok)

				return
			}

			require.True(t, ok)
			assert.Equal(t, tt.want, m.Handler)
			assert.Equal(t, tt.wantParams, m.Params)
		})
	}
}

func TestTableMatchLiteralBeatsPlaceholder(t *testing.T) {
	t.Parallel()

	// Registration order must not matter: the placeholder route is
	// registered first, yet the literal still wins.
	table := buildTable(t,
		Entry[string]{Method: "GET", Pattern: "/users/{id}", Handler: "show"},
		Entry[string]{Method: "GET", Pattern: "/users/me", Handler: "self"},
	)

	m, ok := table.Match("GET", "/users/me")
	require.True(t, ok)
	assert.Equal(t, "self", m.Handler)
	assert.Empty(t, m.Params)

	m, ok = table.Match("GET", "/users/other")
	require.True(t, ok)
	assert.Equal(t, "show", m.Handler)
	assert.Equal(t, Params{{Name: "id", Value: "other"}}, m.Params)
}

func TestTableMatchDecodesCaptures(t *testing.T) {
	t.Parallel()

	table := buildTable(t,
		Entry[string]{Method: "GET", Pattern: "/files/{name}", Handler: "file"},
	)

	// Matching itself sees the escaped text; the capture is decoded after.
	m, ok := table.Match("GET", "/files/a%2Fb%20c")
	require.True(t, ok)
	assert.Equal(t, Params{{Name: "name", Value: "a/b c"}}, m.Params)

	// A bad escape is kept verbatim rather than failing the match.
	m, ok = table.Match("GET", "/files/bad%zz")
	require.True(t, ok)
	assert.Equal(t, Params{{Name: "name", Value: "bad%zz"}}, m.Params)
}

func TestTableMatchLiteralsAreCaseSensitive(t *testing.T) {
	t.Parallel()

	table := buildTable(t,
		Entry[string]{Method: "GET", Pattern: "/Users", Handler: "upper"},
	)

	_, ok := table.Match("GET", "/users")
	assert.False(t, ok)

	m, ok := table.Match("GET", "/Users")
	require.True(t, ok)
	assert.Equal(t, "upper", m.Handler)
}

func TestTableMatchMethodIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	table := buildTable(t,
		Entry[string]{Method: "get", Pattern: "/users", Handler: "list"},
	)

	m, ok := table.Match("GET", "/users")
	require.True(t, ok)
	assert.Equal(t, "list", m.Handler)
}

func TestBuildRejectsConflicts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		entries []Entry[string]
	}{
		{
			name: "identical patterns",
			entries: []Entry[string]{
				{Method: "GET", Pattern: "/users/{id}", Handler: "a"},
				{Method: "GET", Pattern: "/users/{id}", Handler: "b"},
			},
		},
		{
			name: "placeholder names do not disambiguate",
			entries: []Entry[string]{
				{Method: "GET", Pattern: "/users/{id}", Handler: "a"},
				{Method: "GET", Pattern: "/users/{name}", Handler: "b"},
			},
		},
		{
			name: "same shape different literals still conflict only when equal",
			entries: []Entry[string]{
				{Method: "GET", Pattern: "/users", Handler: "a"},
				{Method: "get", Pattern: "/users", Handler: "b"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Build(tt.entries)
			require.Error(t, err)

			var conflict *ConflictError
			require.ErrorAs(t, err, &conflict)
			assert.Equal(t, "GET", conflict.Method)
			assert.Contains(t, conflict.Error(), conflict.First.String())
			assert.Contains(t, conflict.Error(), conflict.Second.String())
		})
	}
}

func TestBuildAllowsNearMisses(t *testing.T) {
	t.Parallel()

	// Same shape under different methods, and different shapes under the
	// same method, are all fine.
	_, err := Build([]Entry[string]{
		{Method: "GET", Pattern: "/users/{id}", Handler: "a"},
		{Method: "PUT", Pattern: "/users/{id}", Handler: "b"},
		{Method: "GET", Pattern: "/users/{id}/posts", Handler: "c"},
		{Method: "GET", Pattern: "/teams/me", Handler: "d"},
		{Method: "GET", Pattern: "/teams/{id}", Handler: "e"},
		{Method: "GET", Pattern: "/users", Handler: "f"},
		{Method: "GET", Pattern: "/teams", Handler: "g"},
	})
	require.NoError(t, err)
}

func TestBuildDistinguishesHighByteLiterals(t *testing.T) {
	t.Parallel()

	// A literal containing 0xFF is still a literal, not an ambiguity
	// against a placeholder at the same position.
	table, err := Build([]Entry[string]{
		{Method: "GET", Pattern: "/\xff", Handler: "literal"},
		{Method: "GET", Pattern: "/{id}", Handler: "placeholder"},
	})
	require.NoError(t, err)

	m, ok := table.Match("GET", "/\xff")
	require.True(t, ok)
	assert.Equal(t, "literal", m.Handler)

	m, ok = table.Match("GET", "/other")
	require.True(t, ok)
	assert.Equal(t, "placeholder", m.Handler)
}

func TestBuildPropagatesParseErrors(t *testing.T) {
	t.Parallel()

	_, err := Build([]Entry[string]{
		{Method: "GET", Pattern: "users", Handler: "a"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoLeadingSlash)
}

func TestBuildRejectsEmptyMethod(t *testing.T) {
	t.Parallel()

	_, err := Build([]Entry[string]{
		{Method: "", Pattern: "/users", Handler: "a"},
	})
	assert.ErrorIs(t, err, ErrEmptyMethod)
}

func TestTableAllowed(t *testing.T) {
	t.Parallel()

	table := buildTable(t,
		Entry[string]{Method: "GET", Pattern: "/users/{id}", Handler: "show"},
		Entry[string]{Method: "PUT", Pattern: "/users/{id}", Handler: "update"},
		Entry[string]{Method: "DELETE", Pattern: "/users/{id}", Handler: "remove"},
		Entry[string]{Method: "POST", Pattern: "/users", Handler: "create"},
	)

	assert.Equal(t, []string{"DELETE", "GET", "PUT"}, table.Allowed("/users/42"))
	assert.Equal(t, []string{"POST"}, table.Allowed("/users"))
	assert.Empty(t, table.Allowed("/teams"))
}

func TestParamsGet(t *testing.T) {
	t.Parallel()

	ps := Params{{Name: "id", Value: "42"}}

	v, ok := ps.Get("id")
	assert.True(t, ok)
	assert.Equal(t, "42", v)

	_, ok = ps.Get("missing")
	assert.False(t, ok)
}
