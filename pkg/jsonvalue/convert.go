// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package jsonvalue

import (
	"encoding"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/stacklok/jsonbind/pkg/errors"
)

var (
	valueType           = reflect.TypeFor[Value]()
	timeType            = reflect.TypeFor[time.Time]()
	jsonUnmarshalerType = reflect.TypeFor[json.Unmarshaler]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// As decodes v into a Go value of type V.
//
// Numbers decode into every numeric kind (integers must be whole and in
// range), booleans also accept the numbers 0 and 1, strings decode into
// time.Time as RFC 3339 and into encoding.TextUnmarshaler types. Null
// decodes into nil pointers, slices, maps and interfaces only.
func As[V any](v Value) (V, error) {
	var out V
	if err := decodeInto(v, reflect.ValueOf(&out).Elem()); err != nil {
		return out, err
	}
	return out, nil
}

// From encodes an arbitrary Go value the way encoding/json would.
func From(v any) (Value, error) {
	switch x := v.(type) {
	case Value:
		return x, nil
	case nil:
		return Null(), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return Value{}, errors.NewConversionError(fmt.Sprintf("cannot encode %T as JSON", v), err)
	}
	return Decode(data)
}

func conversionError(v Value, t reflect.Type, cause error) error {
	return errors.NewConversionError(fmt.Sprintf("cannot decode JSON %s as %s", v.kind, t), cause)
}

func decodeInto(v Value, dst reflect.Value) error {
	t := dst.Type()
	if t == valueType {
		dst.Set(reflect.ValueOf(v))
		return nil
	}

	if t.Kind() == reflect.Pointer {
		if v.IsNull() {
			dst.SetZero()
			return nil
		}
		elem := reflect.New(t.Elem())
		if err := decodeInto(v, elem.Elem()); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	}

	if t == timeType {
		s, ok := v.AsString()
		if !ok {
			return conversionError(v, t, nil)
		}
		ts, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return conversionError(v, t, err)
		}
		dst.Set(reflect.ValueOf(ts))
		return nil
	}

	if reflect.PointerTo(t).Implements(jsonUnmarshalerType) {
		data, err := v.Encode()
		if err != nil {
			return conversionError(v, t, err)
		}
		if err := dst.Addr().Interface().(json.Unmarshaler).UnmarshalJSON(data); err != nil {
			return conversionError(v, t, err)
		}
		return nil
	}

	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		s, ok := v.AsString()
		if !ok {
			return conversionError(v, t, nil)
		}
		if err := dst.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
			return conversionError(v, t, err)
		}
		return nil
	}

	switch t.Kind() {
	case reflect.Interface:
		if v.IsNull() {
			dst.SetZero()
			return nil
		}
		raw := reflect.ValueOf(v.Interface())
		if !raw.Type().AssignableTo(t) {
			return conversionError(v, t, nil)
		}
		dst.Set(raw)
		return nil
	case reflect.String:
		s, ok := v.AsString()
		if !ok {
			return conversionError(v, t, nil)
		}
		dst.SetString(s)
		return nil
	case reflect.Bool:
		return decodeBool(v, dst)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := v.AsNumber()
		if !ok || n != math.Trunc(n) || n < math.MinInt64 || n >= 0x1p63 || dst.OverflowInt(int64(n)) {
			return conversionError(v, t, nil)
		}
		dst.SetInt(int64(n))
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := v.AsNumber()
		if !ok || n < 0 || n != math.Trunc(n) || n >= 0x1p64 || dst.OverflowUint(uint64(n)) {
			return conversionError(v, t, nil)
		}
		dst.SetUint(uint64(n))
		return nil
	case reflect.Float32, reflect.Float64:
		n, ok := v.AsNumber()
		if !ok || dst.OverflowFloat(n) {
			return conversionError(v, t, nil)
		}
		dst.SetFloat(n)
		return nil
	case reflect.Slice:
		if v.IsNull() {
			dst.SetZero()
			return nil
		}
		if v.kind != KindArray {
			return conversionError(v, t, nil)
		}
		out := reflect.MakeSlice(t, len(v.array), len(v.array))
		for i, e := range v.array {
			if err := decodeInto(e, out.Index(i)); err != nil {
				return fmt.Errorf("index %d: %w", i, err)
			}
		}
		dst.Set(out)
		return nil
	case reflect.Map:
		if v.IsNull() {
			dst.SetZero()
			return nil
		}
		if v.kind != KindObject || t.Key().Kind() != reflect.String {
			return conversionError(v, t, nil)
		}
		out := reflect.MakeMapWithSize(t, len(v.object))
		for k, e := range v.object {
			elem := reflect.New(t.Elem()).Elem()
			if err := decodeInto(e, elem); err != nil {
				return fmt.Errorf("key %q: %w", k, err)
			}
			out.SetMapIndex(reflect.ValueOf(k).Convert(t.Key()), elem)
		}
		dst.Set(out)
		return nil
	case reflect.Struct:
		if v.kind != KindObject {
			return conversionError(v, t, nil)
		}
		return decodeStruct(v, dst)
	}
	return conversionError(v, t, nil)
}

func decodeBool(v Value, dst reflect.Value) error {
	if b, ok := v.AsBool(); ok {
		dst.SetBool(b)
		return nil
	}
	if n, ok := v.AsNumber(); ok && (n == 0 || n == 1) {
		dst.SetBool(n == 1)
		return nil
	}
	return conversionError(v, dst.Type(), nil)
}

// decodeStruct fills a struct from a JSON object, matching fields by their
// json tag the same way encoding/json does.
func decodeStruct(v Value, dst reflect.Value) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  dst.Addr().Interface(),
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
			mapstructure.TextUnmarshallerHookFunc(),
		),
	})
	if err != nil {
		return conversionError(v, dst.Type(), err)
	}
	if err := decoder.Decode(v.Interface()); err != nil {
		return conversionError(v, dst.Type(), err)
	}
	return nil
}
