// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package jsonvalue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/tailscale/hujson"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/jsonbind/pkg/errors"
)

// Encode serializes v as JSON.
func (v Value) Encode() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// EncodeIndent serializes v as indented JSON.
func (v Value) EncodeIndent(prefix, indent string) ([]byte, error) {
	return json.MarshalIndent(v.Interface(), prefix, indent)
}

// Decode parses a JSON document.
func Decode(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Value{}, errors.NewConversionError("invalid JSON document", err)
	}
	if dec.More() {
		return Value{}, errors.NewConversionError("invalid JSON document", fmt.Errorf("trailing data after value"))
	}
	return New(raw)
}

// MustParse parses a JSON string and panics on error. Intended for tests.
func MustParse(s string) Value {
	v, err := Decode([]byte(s))
	if err != nil {
		panic(fmt.Sprintf("jsonvalue.MustParse: failed to parse JSON: %v", err))
	}
	return v
}

// DecodeHuJSON parses a JSON document that may contain comments and
// trailing commas.
func DecodeHuJSON(data []byte) (Value, error) {
	ast, err := hujson.Parse(data)
	if err != nil {
		return Value{}, errors.NewConversionError("invalid HuJSON document", err)
	}
	ast.Standardize()
	return Decode(ast.Pack())
}

// DecodePath parses only the subtree of a JSON document found at a gjson
// path, without materializing the rest of the document. The boolean is
// false when the path does not exist.
func DecodePath(data []byte, path string) (Value, bool, error) {
	if path == "" {
		v, err := Decode(data)
		return v, err == nil, err
	}
	if !gjson.ValidBytes(data) {
		return Value{}, false, errors.NewConversionError("invalid JSON document", nil)
	}
	res := gjson.GetBytes(data, path)
	if !res.Exists() {
		return Value{}, false, nil
	}
	v, err := Decode([]byte(res.Raw))
	if err != nil {
		return Value{}, false, err
	}
	return v, true, nil
}

// DecodeYAML parses a YAML document into a Value.
func DecodeYAML(data []byte) (Value, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Value{}, errors.NewConversionError("invalid YAML document", err)
	}
	return New(normalize(raw))
}

// DecodeTOML parses a TOML document into an object Value.
func DecodeTOML(data []byte) (Value, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Value{}, errors.NewConversionError("invalid TOML document", err)
	}
	return New(normalize(raw))
}

// normalize turns YAML and TOML date and time values into strings:
// timestamps as RFC 3339, local dates and times in their TOML form.
func normalize(raw any) any {
	switch x := raw.(type) {
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case toml.LocalDate:
		return x.String()
	case toml.LocalTime:
		return x.String()
	case toml.LocalDateTime:
		return x.String()
	case []any:
		for i, e := range x {
			x[i] = normalize(e)
		}
	case map[string]any:
		for k, e := range x {
			x[k] = normalize(e)
		}
	}
	return raw
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return v.Encode()
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Decode(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (v Value) MarshalYAML() (any, error) {
	return v.Interface(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*v = Null()
		return nil
	}
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := New(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
