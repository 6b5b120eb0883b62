// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package jsonvalue

import (
	"maps"
	"strings"
)

// PathSeparator separates the segments of a key path.
const PathSeparator = "."

// SplitPath splits a dotted key path into segments. The empty path has no
// segments.
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, PathSeparator)
}

// JoinPath joins segments into a dotted key path, skipping empty segments.
func JoinPath(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, PathSeparator)
}

// Get resolves a dotted path against v.
//
// The boolean is false when the path does not resolve, which is distinct
// from resolving to null. Applied to an array, the remaining path is
// resolved against every element and the results that resolved are
// returned as a new array; a lookup through an array never fails.
func (v Value) Get(path string) (Value, bool) {
	return v.lookup(SplitPath(path))
}

func (v Value) lookup(segments []string) (Value, bool) {
	if len(segments) == 0 {
		return v, true
	}
	switch v.kind {
	case KindObject:
		child, ok := v.object[segments[0]]
		if !ok {
			return Value{}, false
		}
		return child.lookup(segments[1:])
	case KindArray:
		out := make([]Value, 0, len(v.array))
		for _, e := range v.array {
			if r, ok := e.lookup(segments); ok {
				out = append(out, r)
			}
		}
		return Value{kind: KindArray, array: out}, true
	default:
		return Value{}, false
	}
}

// Has reports whether path resolves against v.
func (v Value) Has(path string) bool {
	_, ok := v.Get(path)
	return ok
}

// Set returns a copy of v with the value at path replaced by nv.
//
// Every segment but the last must already resolve to an object; otherwise
// v is returned unchanged. The empty path replaces the whole value.
func (v Value) Set(path string, nv Value) Value {
	return v.set(SplitPath(path), nv, false)
}

// Upsert is Set that creates missing or non-object intermediate segments
// as empty objects.
func (v Value) Upsert(path string, nv Value) Value {
	return v.set(SplitPath(path), nv, true)
}

func (v Value) set(segments []string, nv Value, create bool) Value {
	if len(segments) == 0 {
		return nv
	}
	if v.kind != KindObject {
		if !create {
			return v
		}
		v = EmptyObject()
	}
	head := segments[0]
	if len(segments) == 1 {
		return v.with(head, nv)
	}
	child, ok := v.object[head]
	if !ok {
		if !create {
			return v
		}
		child = EmptyObject()
	}
	if child.kind != KindObject && !create {
		return v
	}
	return v.with(head, child.set(segments[1:], nv, create))
}

func (v Value) with(key string, nv Value) Value {
	fields := make(map[string]Value, len(v.object)+1)
	maps.Copy(fields, v.object)
	fields[key] = nv
	return Value{kind: KindObject, object: fields}
}

// Delete returns a copy of v without the field at path. Paths that do not
// resolve to an object field leave v unchanged.
func (v Value) Delete(path string) Value {
	segments := SplitPath(path)
	if len(segments) == 0 {
		return v
	}
	return v.del(segments)
}

func (v Value) del(segments []string) Value {
	if v.kind != KindObject {
		return v
	}
	child, ok := v.object[segments[0]]
	if !ok {
		return v
	}
	if len(segments) > 1 {
		return v.with(segments[0], child.del(segments[1:]))
	}
	fields := maps.Clone(v.object)
	delete(fields, segments[0])
	return Value{kind: KindObject, object: fields}
}

// Merge returns a copy of v with the fields of other added, other winning on
// conflicts. Non-object operands return other.
func (v Value) Merge(other Value) Value {
	if v.kind != KindObject || other.kind != KindObject {
		return other
	}
	fields := maps.Clone(v.object)
	maps.Copy(fields, other.object)
	return Value{kind: KindObject, object: fields}
}
