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
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/dispatch/route"
)

func TestSourcePath(t *testing.T) {
	t.Parallel()

	src := NewSource(httptest.NewRequest("GET", "/users/42", nil),
		route.Params{{Name: "id", Value: "42"}})

	v, ok := src.Path("id")
	assert.True(t, ok)
	assert.Equal(t, "42", v)

	_, ok = src.Path("missing")
	assert.False(t, ok)
}

func TestSourceQueryPresence(t *testing.T) {
	t.Parallel()

	src := NewSource(httptest.NewRequest("GET", "/search?q=&page=2", nil), nil)

	// Present with empty value is still present.
	assert.True(t, src.HasQuery("q"))
	assert.Equal(t, "", src.Query("q"))

	assert.True(t, src.HasQuery("page"))
	assert.Equal(t, "2", src.Query("page"))

	assert.False(t, src.HasQuery("missing"))
	assert.Equal(t, "", src.Query("missing"))
}

func TestSourceHeaderPresence(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Request-Id", "abc")
	r.Header.Set("X-Empty", "")
	r.Header.Set("Content-Type", "application/json")
	src := NewSource(r, nil)

	// Case-insensitive lookup.
	assert.Equal(t, "abc", src.Header("x-request-id"))
	assert.True(t, src.HasHeader("X-REQUEST-ID"))

	assert.True(t, src.HasHeader("X-Empty"))
	assert.Equal(t, "", src.Header("X-Empty"))

	assert.False(t, src.HasHeader("X-Missing"))
	assert.Equal(t, "application/json", src.ContentType())
}

func TestSourceBodySingleConsumer(t *testing.T) {
	t.Parallel()

	src := NewSource(httptest.NewRequest("POST", "/", strings.NewReader("payload")), nil)
	assert.False(t, src.BodyConsumed())

	data, err := src.Body()
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)
	assert.True(t, src.BodyConsumed())

	_, err = src.Body()
	assert.ErrorIs(t, err, ErrBodyConsumed)

	// Still consumed on the third try.
	_, err = src.Body()
	assert.ErrorIs(t, err, ErrBodyConsumed)
}

func TestSourceNilBody(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/", nil)
	r.Body = nil
	src := NewSource(r, nil)

	_, err := src.Body()
	assert.ErrorIs(t, err, ErrBodyNil)

	// The failed read still counts as consumption.
	_, err = src.Body()
	assert.ErrorIs(t, err, ErrBodyConsumed)
}
