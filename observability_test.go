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
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingObserver captures the lifecycle calls the service makes.
type recordingObserver struct {
	mu       sync.Mutex
	calls    []string
	patterns []string
	statuses []int
	sizes    []int64
	exclude  string
}

func (o *recordingObserver) OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, "start")
	if o.exclude != "" && req.URL.Path == o.exclude {
		return ctx, nil
	}

	return ctx, &struct{}{}
}

func (o *recordingObserver) WrapResponseWriter(w http.ResponseWriter, _ any) http.ResponseWriter {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, "wrap")

	return w
}

func (o *recordingObserver) OnRequestEnd(_ context.Context, _ any, writer http.ResponseWriter, routePattern string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, "end")
	o.patterns = append(o.patterns, routePattern)
	if info, ok := writer.(ResponseInfo); ok {
		o.statuses = append(o.statuses, info.StatusCode())
		o.sizes = append(o.sizes, info.Size())
	}
}

func TestServiceObservabilityLifecycle(t *testing.T) {
	t.Parallel()

	show := func(_ context.Context, _ *http.Request, in showUserInput) (*Response, error) {
		return Text(http.StatusOK, "user"), nil
	}
	obs := &recordingObserver{exclude: "/healthz"}
	svc, err := New([]RouteDef{Route("GET", "/users/{id}", show)},
		WithObservability(obs))
	require.NoError(t, err)

	t.Run("matched request reports the pattern", func(t *testing.T) {
		rec := httptest.NewRecorder()
		svc.ServeHTTP(rec, httptest.NewRequest("GET", "/users/42", nil))

		assert.Equal(t, []string{"start", "wrap", "end"}, obs.calls)
		assert.Equal(t, []string{"/users/{id}"}, obs.patterns)
		assert.Equal(t, []int{http.StatusOK}, obs.statuses)
		assert.Equal(t, []int64{int64(len("user"))}, obs.sizes)
	})

	t.Run("unmatched request reports the sentinel", func(t *testing.T) {
		rec := httptest.NewRecorder()
		svc.ServeHTTP(rec, httptest.NewRequest("GET", "/missing", nil))

		assert.Equal(t, "_not_found", obs.patterns[len(obs.patterns)-1])
		assert.Equal(t, http.StatusNotFound, obs.statuses[len(obs.statuses)-1])
	})

	t.Run("writer handed to OnRequestEnd carries response info", func(t *testing.T) {
		rec := httptest.NewRecorder()
		svc.ServeHTTP(rec, httptest.NewRequest("GET", "/users/7", nil))

		// statuses/sizes only grow when the writer asserted to
		// ResponseInfo, so equal lengths prove the assertion held.
		assert.Len(t, obs.statuses, len(obs.patterns))
		assert.Len(t, obs.sizes, len(obs.patterns))
	})

	t.Run("nil state skips wrap and end", func(t *testing.T) {
		before := len(obs.patterns)

		rec := httptest.NewRecorder()
		svc.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

		assert.Len(t, obs.patterns, before)
		assert.Equal(t, "start", obs.calls[len(obs.calls)-1])
	})
}

func TestServiceObservabilityImplicitHead(t *testing.T) {
	t.Parallel()

	brew := func(_ context.Context, _ *http.Request, _ struct{}) (*Response, error) {
		return Text(http.StatusTeapot, "short and stout"), nil
	}
	obs := &recordingObserver{}
	svc, err := New([]RouteDef{Route("GET", "/pot", brew)},
		WithObservability(obs))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	svc.ServeHTTP(rec, httptest.NewRequest("HEAD", "/pot", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Empty(t, rec.Body.String())

	// The recorder sees the real status through the body-suppressing
	// wrapper and a size of zero, matching the bytes actually sent.
	require.Equal(t, []int{http.StatusTeapot}, obs.statuses)
	assert.Equal(t, []int64{0}, obs.sizes)
	assert.Equal(t, []string{"/pot"}, obs.patterns)
}

func TestResponseWriterCapture(t *testing.T) {
	t.Parallel()

	t.Run("explicit status and size", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		rw := &responseWriter{ResponseWriter: rec}

		rw.WriteHeader(http.StatusTeapot)
		n, err := rw.Write([]byte("short and stout"))
		require.NoError(t, err)

		assert.Equal(t, 15, n)
		assert.Equal(t, http.StatusTeapot, rw.StatusCode())
		assert.Equal(t, int64(15), rw.Size())
	})

	t.Run("implicit status defaults to 200", func(t *testing.T) {
		t.Parallel()

		rw := &responseWriter{ResponseWriter: httptest.NewRecorder()}
		_, err := rw.Write([]byte("x"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rw.StatusCode())
	})

	t.Run("duplicate WriteHeader is swallowed", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		rw := &responseWriter{ResponseWriter: rec}
		rw.WriteHeader(http.StatusAccepted)
		rw.WriteHeader(http.StatusConflict)
		assert.Equal(t, http.StatusAccepted, rec.Code)
	})

	t.Run("hijack without support", func(t *testing.T) {
		t.Parallel()

		rw := &responseWriter{ResponseWriter: httptest.NewRecorder()}
		_, _, err := rw.Hijack()
		assert.ErrorIs(t, err, ErrResponseWriterNotHijacker)
	})
}

func TestHeadWriterSuppressesBody(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	hw := &headWriter{ResponseWriter: rec}

	hw.Header().Set("Content-Type", "text/plain")
	hw.WriteHeader(http.StatusOK)
	n, err := hw.Write([]byte(strings.Repeat("a", 64)))
	require.NoError(t, err)

	assert.Equal(t, 64, n)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Empty(t, rec.Body.String())
}
