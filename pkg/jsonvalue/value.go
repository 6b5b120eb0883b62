// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package jsonvalue provides an immutable JSON document model.
//
// A Value is one of null, bool, number, string, array or object. Values are
// never mutated in place: every update returns a new root that shares the
// untouched parts of the old one. Paths are dotted strings ("data.uuid");
// the empty path addresses the value itself.
package jsonvalue

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/stacklok/jsonbind/pkg/errors"
)

// Kind identifies which case of the JSON union a Value holds.
type Kind int

// Value kinds. The zero Value is null.
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the lower-case JSON name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a JSON value.
type Value struct {
	kind   Kind
	b      bool
	n      float64
	s      string
	array  []Value
	object map[string]Value
}

// Null returns the JSON null value.
func Null() Value { return Value{} }

// Bool returns a JSON boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a JSON number.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// String returns a JSON string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Array returns a JSON array holding a copy of elems.
func Array(elems ...Value) Value {
	return Value{kind: KindArray, array: slices.Clone(elems)}
}

// Object returns a JSON object holding a copy of fields.
func Object(fields map[string]Value) Value {
	if fields == nil {
		return Value{kind: KindObject, object: map[string]Value{}}
	}
	return Value{kind: KindObject, object: maps.Clone(fields)}
}

// EmptyObject returns {}.
func EmptyObject() Value { return Object(nil) }

// New converts a dynamically typed Go value into a Value.
//
// Accepted inputs are nil, bools, strings, every Go numeric type, slices and
// arrays of accepted values, and maps with string keys. Anything else fails
// with a conversion error naming the offending Go type.
func New(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	case float64:
		return Number(x), nil
	case float32:
		return Number(float64(x)), nil
	case int:
		return Number(float64(x)), nil
	case int64:
		return Number(float64(x)), nil
	case []any:
		elems := make([]Value, 0, len(x))
		for i, e := range x {
			ev, err := New(e)
			if err != nil {
				return Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			elems = append(elems, ev)
		}
		return Value{kind: KindArray, array: elems}, nil
	case map[string]any:
		fields := make(map[string]Value, len(x))
		for k, e := range x {
			ev, err := New(e)
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", k, err)
			}
			fields[k] = ev
		}
		return Value{kind: KindObject, object: fields}, nil
	}
	return newReflect(reflect.ValueOf(v))
}

func newReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(float64(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Number(float64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return Number(rv.Float()), nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}
		return New(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Null(), nil
		}
		elems := make([]Value, 0, rv.Len())
		for i := range rv.Len() {
			ev, err := New(rv.Index(i).Interface())
			if err != nil {
				return Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			elems = append(elems, ev)
		}
		return Value{kind: KindArray, array: elems}, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		if rv.IsNil() {
			return Null(), nil
		}
		fields := make(map[string]Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key().String()
			ev, err := New(iter.Value().Interface())
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", k, err)
			}
			fields[k] = ev
		}
		return Value{kind: KindObject, object: fields}, nil
	}
	return Value{}, typeConversionError(rv)
}

func typeConversionError(rv reflect.Value) error {
	name := "<invalid>"
	if rv.IsValid() {
		name = rv.Type().String()
	}
	return errors.NewConversionError(fmt.Sprintf("cannot represent Go type %s as JSON", name), nil)
}

// MustNew is New that panics on error. Intended for tests and literals.
func MustNew(v any) Value {
	val, err := New(v)
	if err != nil {
		panic(fmt.Sprintf("jsonvalue.MustNew: %v", err))
	}
	return val
}

// Kind returns the kind of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsNumber returns the number held by v.
func (v Value) AsNumber() (float64, bool) { return v.n, v.kind == KindNumber }

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsArray returns a copy of the elements held by v.
func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return slices.Clone(v.array), true
}

// AsObject returns a copy of the fields held by v.
func (v Value) AsObject() (map[string]Value, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return maps.Clone(v.object), true
}

// Len returns the number of elements or fields, and zero for scalars.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.array)
	case KindObject:
		return len(v.object)
	default:
		return 0
	}
}

// Keys returns the sorted field names of an object.
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	return slices.Sorted(maps.Keys(v.object))
}

// Interface returns v as plain Go values: nil, bool, float64, string,
// []any or map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindArray:
		out := make([]any, len(v.array))
		for i, e := range v.array {
			out[i] = e.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.object))
		for k, e := range v.object {
			out[k] = e.Interface()
		}
		return out
	default:
		return nil
	}
}

// Equal reports whether v and other are structurally equal.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindNumber:
		return v.n == other.n
	case KindString:
		return v.s == other.s
	case KindArray:
		return slices.EqualFunc(v.array, other.array, Value.Equal)
	case KindObject:
		return maps.EqualFunc(v.object, other.object, Value.Equal)
	}
	return false
}

// String renders v as compact JSON with sorted object keys. It is meant for
// diagnostics; use Encode for interchange.
func (v Value) String() string {
	var sb strings.Builder
	v.write(&sb)
	return sb.String()
}

func (v Value) write(sb *strings.Builder) {
	switch v.kind {
	case KindNull:
		sb.WriteString("null")
	case KindBool:
		sb.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		sb.WriteString(strconv.FormatFloat(v.n, 'g', -1, 64))
	case KindString:
		sb.WriteString(strconv.Quote(v.s))
	case KindArray:
		sb.WriteByte('[')
		for i, e := range v.array {
			if i > 0 {
				sb.WriteByte(',')
			}
			e.write(sb)
		}
		sb.WriteByte(']')
	case KindObject:
		sb.WriteByte('{')
		for i, k := range v.Keys() {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.Quote(k))
			sb.WriteByte(':')
			v.object[k].write(sb)
		}
		sb.WriteByte('}')
	}
}
