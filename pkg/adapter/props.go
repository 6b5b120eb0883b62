// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package adapter

import (
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// NewInstance returns a new T. Pointer types get a pointer to a zero value;
// every other type gets its zero value.
func NewInstance[T any]() T {
	var zero T
	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Pointer {
		return reflect.New(t.Elem()).Interface().(T)
	}
	return zero
}

// Property reads the field called name from obj, which must be a struct or
// a pointer to one. name matches the Go field name or its json tag.
func Property(obj any, name string) (any, error) {
	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, fmt.Errorf("%w: %q of nil %T", ErrUnknownProperty, name, obj)
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %q of non-struct %T", ErrUnknownProperty, name, obj)
	}
	if f := v.FieldByName(name); f.IsValid() && f.CanInterface() {
		return f.Interface(), nil
	}
	t := v.Type()
	for i := range t.NumField() {
		sf := t.Field(i)
		tag, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if tag == name && sf.IsExported() {
			return v.Field(i).Interface(), nil
		}
	}
	return nil, fmt.Errorf("%w: %q of %T", ErrUnknownProperty, name, obj)
}

// Properties reads several fields from obj.
func Properties(obj any, names []string) (map[string]any, error) {
	out := make(map[string]any, len(names))
	for _, name := range names {
		v, err := Property(obj, name)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

// SetProperties writes values onto the fields of obj, which must be a
// pointer to a struct. Values are converted with weak typing, so a JSON
// number may fill an int field and a string may fill a uuid.UUID.
func SetProperties(obj any, values map[string]any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           obj,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
			mapstructure.TextUnmarshallerHookFunc(),
		),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotStorable, err)
	}
	return decoder.Decode(values)
}

// equalValues compares primary-key values loosely: every numeric type
// compares as float64 and text-marshalable values compare by their text.
func equalValues(a, b any) bool {
	return reflect.DeepEqual(normalize(a), normalize(b))
}

// MatchProperties reports whether the fields of obj equal keyValues.
func MatchProperties(obj any, keyValues map[string]any) bool {
	for name, want := range keyValues {
		got, err := Property(obj, name)
		if err != nil || !equalValues(got, want) {
			return false
		}
	}
	return true
}

// CanonicalKey renders primary-key values, in order, as a stable string.
func CanonicalKey(values ...any) (string, error) {
	normalized := make([]any, len(values))
	for i, v := range values {
		normalized[i] = normalize(v)
	}
	data, err := json.Marshal(normalized)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotStorable, err)
	}
	return string(data), nil
}

// StorageKey renders the fields of obj named by primaryKeys as a canonical
// key.
func StorageKey(obj any, primaryKeys []string) (string, error) {
	if len(primaryKeys) == 0 {
		return "", fmt.Errorf("%w: %T has no primary keys", ErrNotStorable, obj)
	}
	props, err := Properties(obj, primaryKeys)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotStorable, err)
	}
	values := make([]any, 0, len(primaryKeys))
	for _, name := range primaryKeys {
		values = append(values, props[name])
	}
	return CanonicalKey(values...)
}

// LookupKey renders keyValues as a canonical key when they name exactly
// primaryKeys.
func LookupKey(keyValues map[string]any, primaryKeys []string) (string, bool) {
	if len(primaryKeys) == 0 || len(keyValues) != len(primaryKeys) {
		return "", false
	}
	values := make([]any, 0, len(primaryKeys))
	for _, name := range primaryKeys {
		v, ok := keyValues[name]
		if !ok {
			return "", false
		}
		values = append(values, v)
	}
	key, err := CanonicalKey(values...)
	if err != nil {
		return "", false
	}
	return key, true
}

func normalize(v any) any {
	if v == nil {
		return nil
	}
	if tm, ok := v.(encoding.TextMarshaler); ok {
		if text, err := tm.MarshalText(); err == nil {
			return string(text)
		}
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return normalize(rv.Elem().Interface())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.String:
		return rv.String()
	}
	return v
}
