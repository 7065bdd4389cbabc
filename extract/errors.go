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
	"errors"
	"fmt"
	"reflect"
)

// Origin identifies where a field's value is taken from.
type Origin int

const (
	// OriginUnknown is an unspecified origin.
	OriginUnknown Origin = iota

	// OriginPath represents captured path segments.
	OriginPath

	// OriginQuery represents URL query parameters.
	OriginQuery

	// OriginHeader represents HTTP headers.
	OriginHeader

	// OriginBody represents the request body.
	OriginBody
)

// String returns the string representation of the origin.
func (o Origin) String() string {
	switch o {
	case OriginPath:
		return "path"
	case OriginQuery:
		return "query"
	case OriginHeader:
		return "header"
	case OriginBody:
		return "body"
	default:
		return "unknown"
	}
}

// Reason classifies why extraction of a field failed.
type Reason int

const (
	// ReasonMissing means a required key was absent from its origin.
	ReasonMissing Reason = iota

	// ReasonTypeMismatch means the raw value could not be converted to the
	// field's type.
	ReasonTypeMismatch

	// ReasonBodyDecode means the body was present but could not be decoded
	// in the declared format.
	ReasonBodyDecode

	// ReasonBodyConsumed means the body had already been read earlier in
	// the same request.
	ReasonBodyConsumed
)

// String returns the stable reason code used on the wire.
func (r Reason) String() string {
	switch r {
	case ReasonMissing:
		return "missing"
	case ReasonTypeMismatch:
		return "type_mismatch"
	case ReasonBodyDecode:
		return "body_decode"
	case ReasonBodyConsumed:
		return "body_consumed"
	default:
		return "unknown"
	}
}

// Static errors for extraction operations.
var (
	ErrBodyConsumed     = errors.New("request body already consumed")
	ErrBodyNil          = errors.New("request body is nil")
	ErrNotStruct        = errors.New("input type must be a struct")
	ErrUnknownFormat    = errors.New("unknown body format")
	ErrMultipleBodies   = errors.New("multiple body fields declared")
	ErrConflictingTags  = errors.New("field declares more than one origin tag")
	ErrUnsupportedType  = errors.New("unsupported field type")
	ErrNotProtoMessage  = errors.New("proto body field must be a pointer to a proto.Message")
	ErrInvalidBoolValue = errors.New("invalid boolean value")
)

// Error is a runtime extraction failure with field-level context. It always
// refers to the first field that failed; extraction is fail-fast and later
// fields are never attempted.
//
// Use [errors.As] to inspect it:
//
//	var exErr *extract.Error
//	if errors.As(err, &exErr) {
//	    fmt.Printf("field %s (%s): %s\n", exErr.Field, exErr.Source, exErr.Reason)
//	}
type Error struct {
	Field  string       // Declared field name, as it appears in the tag
	Source Origin       // Where the value was taken from
	Reason Reason       // Stable failure classification
	Value  string       // The raw value that failed conversion, if any
	Type   reflect.Type // Target Go type
	Err    error        // Underlying error
}

// Error returns a formatted message naming the field, origin, and reason.
func (e *Error) Error() string {
	msg := fmt.Sprintf("extracting field %q (%s): %s", e.Field, e.Source, e.Reason)
	if e.Reason == ReasonTypeMismatch && e.Type != nil {
		msg = fmt.Sprintf("%s: cannot convert %q to %s", msg, e.Value, e.Type)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Unwrap returns the underlying error for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus implements the errors.ErrorType convention. Every extraction
// failure is the client's fault.
func (e *Error) HTTPStatus() int {
	return 400 // Bad Request
}

// Code implements the errors.ErrorCode convention.
func (e *Error) Code() string {
	return e.Reason.String()
}

// Details implements the errors.ErrorDetails convention. The returned map
// uses the wire field names carried in problem responses.
func (e *Error) Details() any {
	return map[string]string{
		"field":  e.Field,
		"source": e.Source.String(),
	}
}

// SpecError is a build-time failure compiling an input struct type. It is
// fatal: a service whose specs do not compile never starts.
type SpecError struct {
	Type  reflect.Type // The input struct type
	Field string       // Offending struct field name, if field-level
	Err   error
}

// Error returns a formatted message naming the type and field.
func (e *SpecError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("compiling %s: field %s: %v", e.Type, e.Field, e.Err)
	}

	return fmt.Sprintf("compiling %s: %v", e.Type, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As compatibility.
func (e *SpecError) Unwrap() error {
	return e.Err
}
