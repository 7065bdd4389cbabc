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

// Package dispatch matches HTTP requests to declared routes, extracts
// strongly typed inputs, and invokes handlers behind a hard error boundary.
//
// A route pairs a method and path pattern with a handler whose input type
// declares, through struct tags, where each field comes from:
//
//	type ShowUser struct {
//	    ID    int     `path:"id"`
//	    Limit *int    `query:"limit"`
//	    Trace string  `header:"X-Request-Id"`
//	}
//
//	func showUser(ctx context.Context, r *http.Request, in ShowUser) (*dispatch.Response, error) {
//	    user, err := store.Find(ctx, in.ID)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return dispatch.JSON(http.StatusOK, user)
//	}
//
//	svc, err := dispatch.New([]dispatch.RouteDef{
//	    dispatch.Route("GET", "/users/{id}", showUser),
//	})
//
// Everything that can be wrong with a declaration, from a malformed pattern
// to two routes a request could never tell apart to an input struct with
// two body fields, fails [New] before the service accepts a single request.
// At request time the failure modes are fixed: no matching route is a 404,
// a client value that will not extract is a 400 naming the field and
// reason, a handler error or panic is a 500 (or the status the error itself
// declares). Every failure response is an RFC 9457 problem document.
//
// Handlers run synchronously by default; [WithDiscipline] ([Async]) moves
// each invocation to its own goroutine with cancellation-aware result
// delivery. [WithObservability] hooks metrics, tracing, and access logging
// into the request lifecycle; see rivaas.dev/dispatch/telemetry.
package dispatch
