// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package mapper

import (
	"github.com/stacklok/jsonbind/pkg/adapter"
	"github.com/stacklok/jsonbind/pkg/jsonvalue"
	"github.com/stacklok/jsonbind/pkg/keys"
)

// Mapping describes how objects of type T map to JSON. T is normally a
// pointer type; Map mutates the object through it.
type Mapping[T any, K keys.Key] interface {
	// Adapter returns the adapter that creates, fetches and stores T.
	Adapter() adapter.Adapter[T]

	// PrimaryKeys lists the keys that identify an existing object. With no
	// primary keys every mapping pass creates a new object.
	PrimaryKeys() []PrimaryKey

	// Map lists the fields of object. It runs once per object and direction.
	Map(object T, payload *Payload[K]) error
}

// PrimaryKey ties an object property to a value in the JSON.
type PrimaryKey struct {
	// Property is the Go field (or json tag) holding the key.
	Property string

	// Key addresses the value relative to the object's JSON node. A nil Key
	// uses the node itself, which lets a bare id reference a related object.
	Key keys.Key

	// Transform converts the JSON value into the stored property value.
	// When nil the plain Go form of the JSON value is used.
	Transform func(jsonvalue.Value) (any, error)
}

// Transform converts a field value to and from JSON.
type Transform[V any] interface {
	FromJSON(jsonvalue.Value) (V, error)
	ToJSON(V) (jsonvalue.Value, error)
}

// TransformFunc builds a Transform from two functions.
type TransformFunc[V any] struct {
	Decode func(jsonvalue.Value) (V, error)
	Encode func(V) (jsonvalue.Value, error)
}

// FromJSON calls Decode.
func (f TransformFunc[V]) FromJSON(v jsonvalue.Value) (V, error) {
	return f.Decode(v)
}

// ToJSON calls Encode.
func (f TransformFunc[V]) ToJSON(v V) (jsonvalue.Value, error) {
	return f.Encode(v)
}
