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
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"

	"github.com/BurntSushi/toml"
	"github.com/vmihailenco/msgpack/v5"
	"google.golang.org/protobuf/proto"
	"gopkg.in/yaml.v3"
)

// Format names a body decoding format.
type Format string

// Supported body formats, matching the accepted `body:"..."` tag values.
const (
	FormatJSON    Format = "json"
	FormatForm    Format = "form"
	FormatYAML    Format = "yaml"
	FormatTOML    Format = "toml"
	FormatMsgPack Format = "msgpack"
	FormatProto   Format = "proto"
)

// parseFormat validates a body tag value.
func parseFormat(tag string) (Format, error) {
	switch Format(tag) {
	case FormatJSON, FormatForm, FormatYAML, FormatTOML, FormatMsgPack, FormatProto:
		return Format(tag), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, tag)
	}
}

var protoMessageType = reflect.TypeOf((*proto.Message)(nil)).Elem()

// decodeBody decodes data into field according to format. The field has
// already been shape-checked at spec compile time; errors here mean the
// payload itself is bad.
func decodeBody(format Format, data []byte, field reflect.Value) error {
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		return dec.Decode(field.Addr().Interface())

	case FormatForm:
		values, err := url.ParseQuery(string(data))
		if err != nil {
			return fmt.Errorf("malformed form body: %w", err)
		}
		return decodeForm(values, field)

	case FormatYAML:
		return yaml.Unmarshal(data, field.Addr().Interface())

	case FormatTOML:
		return toml.Unmarshal(data, field.Addr().Interface())

	case FormatMsgPack:
		return msgpack.Unmarshal(data, field.Addr().Interface())

	case FormatProto:
		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}
		msg, ok := field.Interface().(proto.Message)
		if !ok {
			return ErrNotProtoMessage
		}
		return proto.Unmarshal(data, msg)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// decodeForm fills a struct from urlencoded key/value pairs. Keys come from
// each field's `form` tag, defaulting to the field name. Absent keys leave
// the field at its zero value; optionality is expressed with pointer fields,
// exactly as for query and header extraction.
func decodeForm(values url.Values, field reflect.Value) error {
	t := field.Type()
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}

		key := sf.Tag.Get("form")
		if key == "-" {
			continue
		}
		if key == "" {
			key = sf.Name
		}

		if !values.Has(key) {
			continue
		}
		if err := setValue(field.Field(i), values.Get(key)); err != nil {
			return fmt.Errorf("form key %q: %w", key, err)
		}
	}

	return nil
}

// validBodyTarget checks at compile time that t can serve as the target of
// the given format.
func validBodyTarget(format Format, t reflect.Type) error {
	switch format {
	case FormatProto:
		if t.Kind() != reflect.Ptr || !t.Implements(protoMessageType) {
			return ErrNotProtoMessage
		}

	case FormatForm:
		if t.Kind() != reflect.Struct {
			return fmt.Errorf("%w: form body requires a struct, got %s", ErrUnsupportedType, t)
		}
		for i := range t.NumField() {
			sf := t.Field(i)
			if !sf.IsExported() || sf.Tag.Get("form") == "-" {
				continue
			}
			if !convertible(sf.Type) {
				return fmt.Errorf("%w: form field %s has type %s", ErrUnsupportedType, sf.Name, sf.Type)
			}
		}
	}

	// JSON, YAML, TOML, and MsgPack targets are validated by their
	// decoders; any addressable value is acceptable at compile time.
	return nil
}
