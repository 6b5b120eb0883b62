// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package mapper

import (
	"github.com/stacklok/jsonbind/pkg/keys"
)

// Binding links a relational field's key to the mapping of the related
// objects. Collections also carry an update policy.
type Binding[K keys.Key, T any, NK keys.Key] struct {
	Key     K
	Mapping Mapping[T, NK]
	Policy  UpdatePolicy[T]
}

// Bind returns a binding with the default policy.
func Bind[K keys.Key, T any, NK keys.Key](key K, m Mapping[T, NK]) Binding[K, T, NK] {
	return Binding[K, T, NK]{Key: key, Mapping: m, Policy: DefaultPolicy[T]()}
}

// BindCollection returns a binding with policy.
func BindCollection[K keys.Key, T any, NK keys.Key](key K, m Mapping[T, NK], policy UpdatePolicy[T]) Binding[K, T, NK] {
	return Binding[K, T, NK]{Key: key, Mapping: m, Policy: policy}
}

type keyLookup[K keys.Key] interface {
	Get(key K) (K, bool)
}

// nestedKeys returns the allowlist for the related mapping. A matching key
// in allowed carrying its own nested restriction wins over the binding key.
func (b Binding[K, T, NK]) nestedKeys(allowed keys.Provider[K]) (keys.Provider[NK], error) {
	restriction := keys.NestedKeys(b.Key)
	if lookup, ok := allowed.(keyLookup[K]); ok {
		if member, found := lookup.Get(b.Key); found {
			if nested := keys.NestedKeys(member); nested != nil {
				restriction = nested
			}
		}
	}
	return keys.Narrow[NK](restriction)
}
