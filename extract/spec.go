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
	"sync"
)

// Tag name constants for struct tags recognized by Compile.
const (
	TagPath   = "path"   // Captured path segment
	TagQuery  = "query"  // URL query parameter
	TagHeader = "header" // HTTP header
	TagBody   = "body"   // Request body; the tag value names the format
)

// fieldSpec is one compiled extraction step.
type fieldSpec struct {
	index    int
	name     string // lookup key, or the Go field name for body fields
	origin   Origin
	format   Format // set only for body fields
	optional bool   // pointer fields tolerate absence
	typ      reflect.Type
}

// Spec is a compiled extraction plan for one input struct type. Specs are
// immutable and safe for concurrent use; compile once, extract many times.
type Spec struct {
	typ    reflect.Type
	fields []fieldSpec
}

// specCache holds compiled specs keyed by input type. Types are finite in
// a program, so the cache never needs eviction.
var specCache sync.Map // reflect.Type -> *Spec

// Compile builds the extraction plan for a struct type.
//
// Each exported field may carry at most one of the tags `path`, `query`,
// `header`, or `body`; untagged fields are left untouched by extraction.
// Pointer fields are optional: an absent key leaves them nil instead of
// failing with a missing-field error.
//
// The `body` tag value names the decoding format: json, form, yaml, toml,
// msgpack, or proto. At most one field per struct may consume the body;
// declaring two is rejected here rather than left to fail on the second
// read at request time.
//
// All rejections are returned as a [*SpecError] wrapping one of
// [ErrNotStruct], [ErrConflictingTags], [ErrUnknownFormat],
// [ErrMultipleBodies], [ErrUnsupportedType], or [ErrNotProtoMessage].
func Compile(t reflect.Type) (*Spec, error) {
	if cached, ok := specCache.Load(t); ok {
		return cached.(*Spec), nil
	}

	if t.Kind() != reflect.Struct {
		return nil, &SpecError{Type: t, Err: ErrNotStruct}
	}

	spec := &Spec{typ: t}
	bodySeen := false

	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}

		fs, tagged, err := compileField(sf, i)
		if err != nil {
			return nil, &SpecError{Type: t, Field: sf.Name, Err: err}
		}
		if !tagged {
			continue
		}

		if fs.origin == OriginBody {
			if bodySeen {
				return nil, &SpecError{Type: t, Field: sf.Name, Err: ErrMultipleBodies}
			}
			bodySeen = true
		}

		spec.fields = append(spec.fields, fs)
	}

	actual, _ := specCache.LoadOrStore(t, spec)

	return actual.(*Spec), nil
}

// For compiles (or fetches the cached) spec for T.
//
// Example:
//
//	type ShowUser struct {
//	    ID    int    `path:"id"`
//	    Trace string `header:"X-Request-Id"`
//	}
//
//	spec, err := extract.For[ShowUser]()
func For[T any]() (*Spec, error) {
	return Compile(reflect.TypeOf((*T)(nil)).Elem())
}

// compileField interprets a single struct field's tags.
func compileField(sf reflect.StructField, index int) (fieldSpec, bool, error) {
	fs := fieldSpec{index: index, typ: sf.Type, optional: sf.Type.Kind() == reflect.Ptr}

	tagged := 0
	for _, candidate := range [...]struct {
		tag    string
		origin Origin
	}{
		{TagPath, OriginPath},
		{TagQuery, OriginQuery},
		{TagHeader, OriginHeader},
		{TagBody, OriginBody},
	} {
		value, ok := sf.Tag.Lookup(candidate.tag)
		if !ok {
			continue
		}
		tagged++
		fs.origin = candidate.origin
		fs.name = value
	}

	switch {
	case tagged == 0:
		return fieldSpec{}, false, nil
	case tagged > 1:
		return fieldSpec{}, false, ErrConflictingTags
	}

	if fs.name == "" {
		return fieldSpec{}, false, fmt.Errorf("%w: empty tag value", ErrUnsupportedType)
	}

	if fs.origin == OriginBody {
		format, err := parseFormat(fs.name)
		if err != nil {
			return fieldSpec{}, false, err
		}
		fs.format = format
		fs.name = sf.Name
		if err := validBodyTarget(format, sf.Type); err != nil {
			return fieldSpec{}, false, err
		}

		return fs, true, nil
	}

	if !convertible(sf.Type) {
		return fieldSpec{}, false, fmt.Errorf("%w: %s", ErrUnsupportedType, sf.Type)
	}

	return fs, true, nil
}

// Type returns the input struct type this spec was compiled for.
func (s *Spec) Type() reflect.Type {
	return s.typ
}

// ConsumesBody reports whether the spec declares a body field.
func (s *Spec) ConsumesBody() bool {
	for _, fs := range s.fields {
		if fs.origin == OriginBody {
			return true
		}
	}

	return false
}

// Extract fills dst, which must be a non-nil pointer to the compiled struct
// type, from src. Fields are extracted in declaration order and the first
// failure stops the run; on failure dst is partially filled and must be
// discarded. The returned failure is always a [*Error].
//
// Only the body field touches the request stream. Everything else reads the
// already-parsed request view and cannot consume the body.
func (s *Spec) Extract(dst any, src *Source) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Type() != s.typ {
		return fmt.Errorf("extract: dst must be a non-nil *%s", s.typ)
	}
	elem := v.Elem()

	for _, fs := range s.fields {
		if err := s.extractField(elem, fs, src); err != nil {
			return err
		}
	}

	return nil
}

func (s *Spec) extractField(elem reflect.Value, fs fieldSpec, src *Source) error {
	if fs.origin == OriginBody {
		return s.extractBody(elem, fs, src)
	}

	var value string
	var present bool
	switch fs.origin {
	case OriginPath:
		value, present = src.Path(fs.name)
	case OriginQuery:
		if present = src.HasQuery(fs.name); present {
			value = src.Query(fs.name)
		}
	case OriginHeader:
		if present = src.HasHeader(fs.name); present {
			value = src.Header(fs.name)
		}
	}

	if !present {
		if fs.optional {
			return nil
		}

		return &Error{Field: fs.name, Source: fs.origin, Reason: ReasonMissing, Type: fs.typ}
	}

	if err := setValue(elem.Field(fs.index), value); err != nil {
		return &Error{
			Field:  fs.name,
			Source: fs.origin,
			Reason: ReasonTypeMismatch,
			Value:  value,
			Type:   fs.typ,
			Err:    err,
		}
	}

	return nil
}

func (s *Spec) extractBody(elem reflect.Value, fs fieldSpec, src *Source) error {
	data, err := src.Body()
	if err != nil {
		switch {
		case errors.Is(err, ErrBodyConsumed):
			return &Error{Field: fs.name, Source: OriginBody, Reason: ReasonBodyConsumed, Err: err}
		case errors.Is(err, ErrBodyNil):
			if fs.optional {
				return nil
			}

			return &Error{Field: fs.name, Source: OriginBody, Reason: ReasonMissing, Err: err}
		default:
			return &Error{Field: fs.name, Source: OriginBody, Reason: ReasonBodyDecode, Err: err}
		}
	}

	if len(data) == 0 {
		if fs.optional {
			return nil
		}

		return &Error{Field: fs.name, Source: OriginBody, Reason: ReasonMissing}
	}

	if err := decodeBody(fs.format, data, elem.Field(fs.index)); err != nil {
		return &Error{
			Field:  fs.name,
			Source: OriginBody,
			Reason: ReasonBodyDecode,
			Type:   fs.typ,
			Err:    err,
		}
	}

	return nil
}
