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
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
)

// ObservabilityRecorder provides lifecycle hooks around request dispatch.
// Implementations typically combine metrics, distributed tracing, and
// access logging; rivaas.dev/dispatch/telemetry ships one built on
// OpenTelemetry.
//
// Lifecycle:
//  1. The service calls OnRequestStart(ctx, req) before matching and uses
//     the enriched context for the rest of the request, so trace
//     propagation works even for excluded requests.
//  2. If the returned state is non-nil, the service wraps the writer with
//     a status/size-capturing writer and passes it to WrapResponseWriter;
//     a nil state excludes the request from recording.
//  3. After the response is written the service calls OnRequestEnd with the
//     matched route pattern (for example "/users/{id}"), or the sentinel
//     "_not_found" when no route matched. Implementations should key
//     metrics on the pattern, never the raw path, to bound cardinality.
//
// All methods must be safe for concurrent use.
type ObservabilityRecorder interface {
	// OnRequestStart is called before route matching. It returns an
	// enriched context and an opaque state token; return a nil state to
	// exclude the request from recording.
	OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any)

	// WrapResponseWriter may layer additional wrapping onto the writer,
	// or return it unchanged. The writer it receives already implements
	// [ResponseInfo]; any wrapper should preserve that. Called only when
	// state is non-nil.
	WrapResponseWriter(w http.ResponseWriter, state any) http.ResponseWriter

	// OnRequestEnd is called after the response is written, only when
	// state is non-nil. Implementations extract status and size by
	// asserting writer to [ResponseInfo].
	OnRequestEnd(ctx context.Context, state any, writer http.ResponseWriter, routePattern string)
}

// ResponseInfo is implemented by response writers that track response
// metadata, letting OnRequestEnd read the status and body size.
type ResponseInfo interface {
	StatusCode() int
	Size() int64
}

// notFoundPattern is the route pattern sentinel reported to observability
// when no route matches.
const notFoundPattern = "_not_found"

// ErrResponseWriterNotHijacker is returned when Hijack is called on a
// wrapped writer whose underlying writer does not support hijacking.
var ErrResponseWriterNotHijacker = errors.New("underlying ResponseWriter does not implement http.Hijacker")

// responseWriter wraps http.ResponseWriter to capture status code and size
// and to swallow duplicate WriteHeader calls.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int64
	written    bool
}

// WriteHeader captures the status code and prevents duplicate calls.
func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.ResponseWriter.WriteHeader(code)
		rw.written = true
	}
}

// Write captures the response size.
func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.written = true
	}
	if rw.statusCode == 0 {
		rw.statusCode = http.StatusOK
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += int64(n)

	return n, err
}

// StatusCode returns the HTTP status code, defaulting to 200.
func (rw *responseWriter) StatusCode() int {
	if rw.statusCode == 0 {
		return http.StatusOK
	}

	return rw.statusCode
}

// Size returns the response body size in bytes.
func (rw *responseWriter) Size() int64 {
	return rw.size
}

var _ ResponseInfo = (*responseWriter)(nil)

// Hijack implements http.Hijacker when the underlying writer supports it.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := rw.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}

	return nil, nil, ErrResponseWriterNotHijacker
}

// Flush implements http.Flusher when the underlying writer supports it.
func (rw *responseWriter) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// headWriter suppresses the response body for implicit HEAD requests served
// by a GET route. Headers and status pass through; body writes report
// success without sending anything.
type headWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (hw *headWriter) WriteHeader(code int) {
	if !hw.wroteHeader {
		hw.wroteHeader = true
		hw.ResponseWriter.WriteHeader(code)
	}
}

func (hw *headWriter) Write(b []byte) (int, error) {
	if !hw.wroteHeader {
		hw.WriteHeader(http.StatusOK)
	}

	return len(b), nil
}

// StatusCode delegates to the wrapped writer so observability sees the real
// status even though the head wrapper sits outermost.
func (hw *headWriter) StatusCode() int {
	if info, ok := hw.ResponseWriter.(ResponseInfo); ok {
		return info.StatusCode()
	}

	return http.StatusOK
}

// Size reports the bytes that reached the wire, which for a suppressed
// body is whatever the wrapped writer saw: zero.
func (hw *headWriter) Size() int64 {
	if info, ok := hw.ResponseWriter.(ResponseInfo); ok {
		return info.Size()
	}

	return 0
}

var _ ResponseInfo = (*headWriter)(nil)
