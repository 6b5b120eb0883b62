// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package mapper

import (
	"fmt"
	"reflect"

	"github.com/stacklok/jsonbind/pkg/errors"
	"github.com/stacklok/jsonbind/pkg/jsonvalue"
	"github.com/stacklok/jsonbind/pkg/keys"
)

// Field maps a scalar field at key.
//
// Reading JSON, the value is decoded with jsonvalue.As: a null only decodes
// into pointer, slice, map or interface fields. Writing JSON, the field is
// encoded with jsonvalue.From and nil pointers become null.
func Field[K keys.Key, V any](p *Payload[K], field *V, key K) {
	if !p.Allows(key) {
		return
	}
	switch p.direction {
	case DirectionFromJSON:
		node, ok := keys.Resolve(p.json, key)
		if !ok {
			p.Fail(absentKeyError(key))
			return
		}
		v, err := jsonvalue.As[V](node)
		if err != nil {
			p.Fail(errors.NewConversionError(fmt.Sprintf("cannot map key %q", key.KeyPath()), err))
			return
		}
		*field = v
	case DirectionToJSON:
		v, err := jsonvalue.From(*field)
		if err != nil {
			p.Fail(errors.NewConversionError(fmt.Sprintf("cannot write key %q", key.KeyPath()), err))
			return
		}
		p.json = write(p.json, key, v)
	}
}

// Transformed maps a field at key through tr.
func Transformed[K keys.Key, V any](p *Payload[K], field *V, key K, tr Transform[V]) {
	if !p.Allows(key) {
		return
	}
	switch p.direction {
	case DirectionFromJSON:
		node, ok := keys.Resolve(p.json, key)
		if !ok {
			p.Fail(absentKeyError(key))
			return
		}
		v, err := tr.FromJSON(node)
		if err != nil {
			p.Fail(errors.NewUserMappingError(fmt.Sprintf("transform of key %q failed", key.KeyPath()), err))
			return
		}
		*field = v
	case DirectionToJSON:
		v, err := tr.ToJSON(*field)
		if err != nil {
			p.Fail(errors.NewUserMappingError(fmt.Sprintf("transform of key %q failed", key.KeyPath()), err))
			return
		}
		p.json = write(p.json, key, v)
	}
}

// Object maps a single related object at the binding's key through the
// binding's mapping, inside the transaction of p.
//
// A JSON null clears the field when the binding's policy is nullable and is
// a shape error otherwise. An array is a shape error.
func Object[K keys.Key, T any, NK keys.Key](p *Payload[K], field *T, b Binding[K, T, NK]) {
	if !p.Allows(b.Key) {
		return
	}
	nested, err := b.nestedKeys(p.keys)
	if err != nil {
		p.Fail(err)
		return
	}

	switch p.direction {
	case DirectionFromJSON:
		node, ok := keys.Resolve(p.json, b.Key)
		if !ok {
			p.Fail(absentKeyError(b.Key))
			return
		}
		if node.IsNull() {
			if !b.Policy.Nullable {
				p.Fail(errors.NewShapeError(fmt.Sprintf("null for non-nullable object at %q", b.Key.KeyPath()), nil))
				return
			}
			var zero T
			*field = zero
			return
		}
		if node.Kind() == jsonvalue.KindArray {
			p.Fail(errors.NewShapeError(fmt.Sprintf("expected a single object at %q, found an array", b.Key.KeyPath()), nil))
			return
		}
		obj, err := mapObject(p.ctx, p.mapper, node, b.Mapping, nil, nested, p)
		if err != nil {
			p.Fail(err)
			return
		}
		*field = obj
	case DirectionToJSON:
		if isNil(*field) {
			p.json = write(p.json, b.Key, jsonvalue.Null())
			return
		}
		v, err := objectToJSON(p.ctx, p.mapper, *field, b.Mapping, nested, p)
		if err != nil {
			p.Fail(err)
			return
		}
		p.json = write(p.json, b.Key, v)
	}
}

func isNil[T any](v T) bool {
	rv := reflect.ValueOf(&v).Elem()
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
