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

	"rivaas.dev/dispatch/extract"
	"rivaas.dev/dispatch/route"
)

// HandlerFunc is a typed request handler. It receives the request context,
// the original request (its body is already owned by extraction when the
// input declares a body field), and the extracted input value.
//
// Returning an error produces a problem response; the status is taken from
// the error's HTTPStatus method when it has one, otherwise 500. Returning
// (nil, nil) produces 204 No Content.
type HandlerFunc[T any] func(ctx context.Context, r *http.Request, in T) (*Response, error)

// RouteDef is one route registration: a method, a pattern, and a typed
// handler with its input type erased. Build it with [Route] and pass it to
// [New].
type RouteDef struct {
	method  string
	pattern string
	build   func() (invoker, error)
}

// invoker runs extraction and the handler for one request. The returned
// error is either a *extract.Error (client-caused, never reached the
// handler) or whatever the handler returned.
type invoker func(r *http.Request, params route.Params) (*Response, error)

// Route declares a route with a typed input. The input type's extraction
// spec is compiled when the service is built, so a malformed declaration
// fails [New], not the first request.
//
// Example:
//
//	type Login struct {
//	    Creds Credentials `body:"json"`
//	}
//
//	routes := []dispatch.RouteDef{
//	    dispatch.Route("POST", "/login", loginHandler),
//	    dispatch.Route("GET", "/users/{id}", showUserHandler),
//	}
//	svc, err := dispatch.New(routes)
func Route[T any](method, pattern string, h HandlerFunc[T]) RouteDef {
	return RouteDef{
		method:  method,
		pattern: pattern,
		build: func() (invoker, error) {
			if h == nil {
				return nil, ErrNilHandler
			}

			spec, err := extract.For[T]()
			if err != nil {
				return nil, err
			}

			return func(r *http.Request, params route.Params) (*Response, error) {
				var in T
				src := extract.NewSource(r, params)
				if err := spec.Extract(&in, src); err != nil {
					return nil, err
				}

				return h(r.Context(), r, in)
			}, nil
		},
	}
}

// buildTable compiles every route's extraction spec and assembles the
// routing table. Any parse, conflict, or spec error aborts construction.
func buildTable(routes []RouteDef) (*route.Table[invoker], error) {
	entries := make([]route.Entry[invoker], 0, len(routes))
	for _, def := range routes {
		inv, err := def.build()
		if err != nil {
			return nil, err
		}
		entries = append(entries, route.Entry[invoker]{
			Method:  def.method,
			Pattern: def.pattern,
			Handler: inv,
		})
	}

	return route.Build(entries)
}
