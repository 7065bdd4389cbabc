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
	"errors"
	"net/http"
)

// problemContentType is the media type of every error response the service
// writes. It is stable for the lifetime of the process.
const problemContentType = "application/problem+json; charset=utf-8"

// ProblemDetail is an RFC 9457 problem detail, the wire shape of every
// failure response the service produces.
//
// The service fills the extension member "code" with a stable reason code
// (for example "missing", "type_mismatch", "not_found", "internal") and,
// for extraction failures, the members "field" and "source".
type ProblemDetail struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail,omitempty"`
	Instance   string         `json:"instance,omitempty"`
	Extensions map[string]any `json:"-"` // Marshaled inline
}

// MarshalJSON merges extension members into the main JSON object while
// protecting the reserved RFC 9457 field names.
func (p ProblemDetail) MarshalJSON() ([]byte, error) {
	m := map[string]any{
		"type":   p.Type,
		"title":  p.Title,
		"status": p.Status,
	}
	if p.Detail != "" {
		m["detail"] = p.Detail
	}
	if p.Instance != "" {
		m["instance"] = p.Instance
	}
	for k, v := range p.Extensions {
		if k != "type" && k != "title" && k != "status" && k != "detail" && k != "instance" {
			m[k] = v
		}
	}

	return json.Marshal(m)
}

// problemFromError builds the problem detail for a failed request. The
// status comes from the error's HTTPStatus if it declares one, the type URI
// from its Code, and structured Details land inline as extensions.
func (s *Service) problemFromError(r *http.Request, err error) ProblemDetail {
	status := http.StatusInternalServerError
	var typed ErrorType
	if errors.As(err, &typed) {
		status = typed.HTTPStatus()
	}

	code := "internal"
	var coded ErrorCode
	if errors.As(err, &coded) {
		code = coded.Code()
	}

	p := s.newProblem(r, status, code, err.Error())

	var detailed ErrorDetails
	if errors.As(err, &detailed) {
		p.Extensions["errors"] = detailed.Details()
	}

	return p
}

// newProblem assembles a problem detail with the service's type base URL.
func (s *Service) newProblem(r *http.Request, status int, code, detail string) ProblemDetail {
	problemType := code
	if s.problemBaseURL != "" {
		problemType = s.problemBaseURL + "/" + code
	}

	return ProblemDetail{
		Type:       problemType,
		Title:      http.StatusText(status),
		Status:     status,
		Detail:     detail,
		Instance:   r.URL.Path,
		Extensions: map[string]any{"code": code},
	}
}

// writeProblem serializes a problem detail onto the wire. Serialization of
// our own types cannot fail; if it somehow does, the bare status line still
// goes out.
func (s *Service) writeProblem(w http.ResponseWriter, p ProblemDetail) {
	body, err := json.Marshal(p)
	if err != nil {
		w.WriteHeader(p.Status)
		return
	}

	w.Header().Set("Content-Type", problemContentType)
	w.WriteHeader(p.Status)
	_, _ = w.Write(body)
}
