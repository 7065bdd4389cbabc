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
	"encoding/json"
	"net/http"
)

// Response is what a handler hands back to the transport layer: a status
// code, optional headers, and body bytes. The service writes it unchanged.
// A nil *Response with a nil error is written as 204 No Content.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// JSON builds a response with a JSON-encoded body.
//
// Its signature matches the handler return shape so the common case is a
// single statement:
//
//	func show(ctx context.Context, r *http.Request, in ShowUser) (*dispatch.Response, error) {
//	    user, err := store.Find(ctx, in.ID)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return dispatch.JSON(http.StatusOK, user)
//	}
func JSON(status int, v any) (*Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	h := make(http.Header, 1)
	h.Set("Content-Type", "application/json; charset=utf-8")

	return &Response{Status: status, Header: h, Body: body}, nil
}

// Text builds a plain-text response.
func Text(status int, text string) *Response {
	h := make(http.Header, 1)
	h.Set("Content-Type", "text/plain; charset=utf-8")

	return &Response{Status: status, Header: h, Body: []byte(text)}
}

// NoContent builds an empty 204 response.
func NoContent() *Response {
	return &Response{Status: http.StatusNoContent}
}

// write flushes the response to the wire. A zero status defaults to 200.
func (resp *Response) write(w http.ResponseWriter) {
	for key, values := range resp.Header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}

	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	if len(resp.Body) > 0 {
		_, _ = w.Write(resp.Body)
	}
}
