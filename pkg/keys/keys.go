// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package keys models the keys a mapping reads and writes, and the
// allowlists that restrict which of them a mapping pass may touch.
//
// A key is anything with a dotted KeyPath. Keys compare by path, so domain
// key types are free to carry extra data such as the nested keys a
// relation should be mapped with.
package keys

import (
	"github.com/stacklok/jsonbind/pkg/jsonvalue"
)

// Key addresses a value inside a JSON document.
type Key interface {
	KeyPath() string
}

// Nester is implemented by keys of relational fields. NestedKeys returns the
// allowlist to apply to the related object's mapping, or nil when the
// related mapping is unrestricted.
type Nester interface {
	NestedKeys() Erased
}

// NestedKeys returns the nested restriction declared by k, or nil.
func NestedKeys(k Key) Erased {
	if n, ok := k.(Nester); ok {
		return n.NestedKeys()
	}
	return nil
}

// Root addresses the current JSON node itself.
type Root struct{}

// KeyPath returns the empty path.
func (Root) KeyPath() string { return "" }

// String is a plain dotted path.
type String string

// KeyPath returns s.
func (s String) KeyPath() string { return string(s) }

// Rooted addresses the current JSON node while keeping the nested
// restriction of the wrapped key.
type Rooted[K Key] struct {
	Key K
}

// KeyPath returns the empty path.
func (Rooted[K]) KeyPath() string { return "" }

// NestedKeys returns the restriction of the wrapped key.
func (r Rooted[K]) NestedKeys() Erased {
	return NestedKeys(r.Key)
}

// Any hides the concrete type of a key.
type Any struct {
	base Key
}

// NewAny wraps k.
func NewAny(k Key) Any {
	if a, ok := k.(Any); ok {
		return a
	}
	return Any{base: k}
}

// Base returns the wrapped key.
func (a Any) Base() Key { return a.base }

// KeyPath returns the path of the wrapped key.
func (a Any) KeyPath() string {
	if a.base == nil {
		return ""
	}
	return a.base.KeyPath()
}

// NestedKeys returns the restriction of the wrapped key.
func (a Any) NestedKeys() Erased {
	if a.base == nil {
		return nil
	}
	return NestedKeys(a.base)
}

// IsRoot reports whether k addresses the current node.
func IsRoot(k Key) bool {
	return k.KeyPath() == ""
}

// Resolve looks k up in doc. Root keys resolve to doc itself.
func Resolve(doc jsonvalue.Value, k Key) (jsonvalue.Value, bool) {
	if IsRoot(k) {
		return doc, true
	}
	return doc.Get(k.KeyPath())
}
