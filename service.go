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
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"sync"

	"rivaas.dev/dispatch/route"
)

// Service matches requests against its route table, drives extraction,
// invokes handlers, and maps every failure mode onto a problem response.
//
// A Service is immutable after [New] and safe for concurrent use. It
// implements http.Handler.
type Service struct {
	table          *route.Table[invoker]
	logger         *slog.Logger
	discipline     Discipline
	observability  ObservabilityRecorder
	problemBaseURL string
	enableH2C      bool
	serverTimeouts *serverTimeouts

	serverMu sync.Mutex
	server   *http.Server
}

// New builds a Service from route declarations.
//
// Every pattern is parsed, every input type's extraction spec is compiled,
// and the routing table is checked for ambiguity here; any failure aborts
// construction with a *route.ParseError, *route.ConflictError, or
// *extract.SpecError. A service that constructs successfully can no longer
// fail for declaration reasons at request time.
//
// Example:
//
//	svc, err := dispatch.New([]dispatch.RouteDef{
//	    dispatch.Route("POST", "/login", login),
//	    dispatch.Route("GET", "/users/{id}", showUser),
//	}, dispatch.WithLogger(slog.Default()))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	http.ListenAndServe(":8080", svc)
func New(routes []RouteDef, opts ...Option) (*Service, error) {
	table, err := buildTable(routes)
	if err != nil {
		return nil, err
	}

	s := &Service{
		table:      table,
		logger:     noopLogger,
		discipline: Sync,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// MustNew is like [New] but panics on error. Route declarations are static
// program structure, so failing loudly at startup is usually what you want.
func MustNew(routes []RouteDef, opts ...Option) *Service {
	s, err := New(routes, opts...)
	if err != nil {
		panic(fmt.Sprintf("dispatch: %v", err))
	}

	return s
}

// ServeHTTP classifies the request, extracts the handler input, runs the
// handler under the configured discipline, and writes the outcome.
//
// Matching operates on the escaped path so encoded separators cannot change
// segmentation. A HEAD request with no HEAD route is served by the GET
// route for the same path with the response body suppressed. No match at
// all yields a 404 problem response without invoking any handler.
func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var obsState any

	if s.observability != nil {
		var enrichedCtx context.Context
		enrichedCtx, obsState = s.observability.OnRequestStart(ctx, r)
		if enrichedCtx != ctx {
			ctx = enrichedCtx
			r = r.WithContext(ctx)
		}
	}

	if s.observability != nil && obsState != nil {
		// The service-owned wrapper guarantees OnRequestEnd a ResponseInfo
		// writer; the recorder may layer its own on top.
		w = s.observability.WrapResponseWriter(&responseWriter{ResponseWriter: w}, obsState)
	}

	path := r.URL.EscapedPath()

	m, ok := s.table.Match(r.Method, path)
	if !ok && r.Method == http.MethodHead {
		// Implicit HEAD: serve the GET route with the body suppressed.
		if m, ok = s.table.Match(http.MethodGet, path); ok {
			w = &headWriter{ResponseWriter: w}
		}
	}
	if !ok {
		s.handleNotFound(w, r)
		if obsState != nil {
			s.observability.OnRequestEnd(ctx, obsState, w, notFoundPattern)
		}

		return
	}

	pattern := m.Pattern.String()
	s.dispatch(w, r, m.Handler, m.Params, pattern)

	if obsState != nil {
		s.observability.OnRequestEnd(ctx, obsState, w, pattern)
	}
}

// dispatch runs the invoker under the configured discipline and writes the
// outcome. Nothing a handler does, panics included, escapes past here.
func (s *Service) dispatch(w http.ResponseWriter, r *http.Request, inv invoker, params route.Params, pattern string) {
	switch s.discipline {
	case Async:
		s.dispatchAsync(w, r, inv, params, pattern)
	default:
		outcome := s.run(r, inv, params, pattern)
		s.writeOutcome(w, r, outcome)
	}
}

// dispatchAsync runs the invoker in its own goroutine and waits on either
// completion or request-context cancellation. After cancellation nothing is
// written; the abandoned goroutine keeps running until the handler honors
// its context and returns.
func (s *Service) dispatchAsync(w http.ResponseWriter, r *http.Request, inv invoker, params route.Params, pattern string) {
	done := make(chan outcome, 1)

	go func() {
		done <- s.run(r, inv, params, pattern)
	}()

	select {
	case out := <-done:
		s.writeOutcome(w, r, out)
	case <-r.Context().Done():
		s.logger.DebugContext(r.Context(), "request canceled before handler completion",
			slog.String("route", pattern),
			slog.String("method", r.Method),
		)
	}
}

// outcome is the result of one protected handler invocation.
type outcome struct {
	resp *Response
	err  error
}

// run executes the invoker behind the panic boundary. A panicking handler
// is logged with its stack and converted into an internal error outcome, so
// one bad request can never take the process down or leak into another
// request.
func (s *Service) run(r *http.Request, inv invoker, params route.Params, pattern string) (out outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.ErrorContext(r.Context(), "handler panic recovered",
				slog.String("route", pattern),
				slog.String("method", r.Method),
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())),
			)
			out = outcome{err: errPanic}
		}
	}()

	resp, err := inv(r, params)

	return outcome{resp: resp, err: err}
}

// errPanic is the opaque error written for recovered panics. The panic
// value itself stays in the log.
var errPanic = &internalError{}

type internalError struct{}

func (*internalError) Error() string   { return "internal server error" }
func (*internalError) HTTPStatus() int { return http.StatusInternalServerError }
func (*internalError) Code() string    { return "internal" }

// writeOutcome maps the invocation result onto the wire.
func (s *Service) writeOutcome(w http.ResponseWriter, r *http.Request, out outcome) {
	if out.err != nil {
		p := s.problemFromError(r, out.err)
		if p.Status >= http.StatusInternalServerError {
			s.logger.ErrorContext(r.Context(), "handler failed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Any("error", out.err),
			)
		}
		s.writeProblem(w, p)

		return
	}

	if out.resp == nil {
		NoContent().write(w)

		return
	}

	out.resp.write(w)
}

// handleNotFound writes the 404 problem response. Not-found is an expected
// outcome, not an error, so it is not logged. When the path exists under
// other methods they are listed in the allowed_methods extension.
func (s *Service) handleNotFound(w http.ResponseWriter, r *http.Request) {
	detail := fmt.Sprintf("no route matches %s %s", r.Method, r.URL.Path)
	p := s.newProblem(r, http.StatusNotFound, "not_found", detail)
	if methods := s.table.Allowed(r.URL.EscapedPath()); len(methods) > 0 {
		p.Extensions["allowed_methods"] = methods
	}
	s.writeProblem(w, p)
}
