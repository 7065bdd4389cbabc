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

package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProblemDetailMarshalJSON(t *testing.T) {
	t.Parallel()

	t.Run("extensions are inlined", func(t *testing.T) {
		t.Parallel()

		p := ProblemDetail{
			Type:   "https://errors.example.com/missing",
			Title:  "Bad Request",
			Status: 400,
			Detail: "required value for field \"id\" is absent",
			Extensions: map[string]any{
				"code":   "missing",
				"errors": map[string]string{"field": "id", "source": "path"},
			},
		}

		data, err := json.Marshal(p)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"type": "https://errors.example.com/missing",
			"title": "Bad Request",
			"status": 400,
			"detail": "required value for field \"id\" is absent",
			"code": "missing",
			"errors": {"field": "id", "source": "path"}
		}`, string(data))
	})

	t.Run("reserved members cannot be shadowed", func(t *testing.T) {
		t.Parallel()

		p := ProblemDetail{
			Type:       "about:blank",
			Title:      "Bad Request",
			Status:     400,
			Extensions: map[string]any{"status": 200, "title": "spoofed"},
		}

		data, err := json.Marshal(p)
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"about:blank","title":"Bad Request","status":400}`, string(data))
	})

	t.Run("empty optional members are omitted", func(t *testing.T) {
		t.Parallel()

		data, err := json.Marshal(ProblemDetail{Type: "about:blank", Title: "Not Found", Status: 404})
		require.NoError(t, err)
		assert.NotContains(t, string(data), "detail")
		assert.NotContains(t, string(data), "instance")
	})
}

func TestWithProblemBaseURL(t *testing.T) {
	t.Parallel()

	ok := func(_ context.Context, _ *http.Request, _ struct{}) (*Response, error) {
		return nil, nil
	}
	svc, err := New([]RouteDef{Route("GET", "/x", ok)},
		WithProblemBaseURL("https://errors.example.com"))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	svc.ServeHTTP(rec, httptest.NewRequest("GET", "/missing", nil))

	p := decodeProblem(t, rec)
	assert.Equal(t, "https://errors.example.com/not_found", p["type"])
	assert.Equal(t, "not_found", p["code"])
}

func TestProblemTypeDefaultsToCode(t *testing.T) {
	t.Parallel()

	ok := func(_ context.Context, _ *http.Request, _ struct{}) (*Response, error) {
		return nil, nil
	}
	svc, err := New([]RouteDef{Route("GET", "/x", ok)})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	svc.ServeHTTP(rec, httptest.NewRequest("GET", "/missing", nil))

	p := decodeProblem(t, rec)
	assert.Equal(t, "not_found", p["type"])
}
