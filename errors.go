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

import "errors"

// Static errors for service construction.
var (
	ErrNilHandler = errors.New("route handler is nil")
)

// ErrorType is implemented by errors that declare their own HTTP status.
// Handler errors implementing it control the response status; everything
// else maps to 500.
type ErrorType interface {
	HTTPStatus() int
}

// ErrorCode is implemented by errors that carry a stable machine-readable
// code, used as the problem type slug on the wire.
type ErrorCode interface {
	Code() string
}

// ErrorDetails is implemented by errors that carry structured detail for
// the response body, such as the failing field of an extraction error.
type ErrorDetails interface {
	Details() any
}
