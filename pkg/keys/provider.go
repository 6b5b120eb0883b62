// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package keys

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/stacklok/jsonbind/pkg/errors"
)

// Provider answers whether a key may be mapped in the current pass.
// Answers must not change during a pass.
type Provider[K Key] interface {
	Contains(key K) bool
}

// AllKeys allows every key.
type AllKeys[K Key] struct{}

// All returns a provider that allows every key of type K.
func All[K Key]() AllKeys[K] { return AllKeys[K]{} }

// Contains always returns true.
func (AllKeys[K]) Contains(K) bool { return true }

// String implements fmt.Stringer.
func (AllKeys[K]) String() string { return "all keys" }

// SetKeys allows exactly the keys it was built from, compared by path.
type SetKeys[K Key] struct {
	keys map[string]K
}

// NewSet returns a provider allowing exactly keys.
func NewSet[K Key](keys ...K) SetKeys[K] {
	s := SetKeys[K]{keys: make(map[string]K, len(keys))}
	for _, k := range keys {
		if _, ok := s.keys[k.KeyPath()]; !ok {
			s.keys[k.KeyPath()] = k
		}
	}
	return s
}

// Contains reports whether a key with the same path was given to NewSet.
func (s SetKeys[K]) Contains(key K) bool {
	_, ok := s.keys[key.KeyPath()]
	return ok
}

// Get returns the member with the same path as key. Members may carry
// nested restrictions the probe key does not.
func (s SetKeys[K]) Get(key K) (K, bool) {
	k, ok := s.keys[key.KeyPath()]
	return k, ok
}

// Len returns the number of keys in the set.
func (s SetKeys[K]) Len() int { return len(s.keys) }

// Paths returns the sorted paths of the keys in the set.
func (s SetKeys[K]) Paths() []string {
	paths := make([]string, 0, len(s.keys))
	for p := range s.keys {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// String implements fmt.Stringer.
func (s SetKeys[K]) String() string {
	return "[" + strings.Join(s.Paths(), ", ") + "]"
}

// Erased is a provider whose key type has been hidden. It is what relational
// keys hand to the mapping of the related object.
type Erased interface {
	// ContainsKey reports whether k is allowed. Keys of another type than
	// the one the provider was built for are never allowed.
	ContainsKey(k Key) bool
	// KeyType is the key type the provider was built for, or nil when the
	// provider allows every key of every type.
	KeyType() reflect.Type
}

type erased[K Key] struct {
	provider Provider[K]
}

func (e erased[K]) ContainsKey(k Key) bool {
	if a, ok := k.(Any); ok {
		k = a.Base()
	}
	typed, ok := k.(K)
	return ok && e.provider.Contains(typed)
}

func (erased[K]) KeyType() reflect.Type { return reflect.TypeFor[K]() }

func (e erased[K]) String() string { return fmt.Sprint(e.provider) }

type unrestricted struct{}

func (unrestricted) ContainsKey(Key) bool  { return true }
func (unrestricted) KeyType() reflect.Type { return nil }
func (unrestricted) String() string        { return "all keys" }

// Unrestricted is the explicit "all keys" restriction.
var Unrestricted Erased = unrestricted{}

// Erase hides the key type of p.
func Erase[K Key](p Provider[K]) Erased {
	if _, ok := p.(AllKeys[K]); ok {
		return Unrestricted
	}
	return erased[K]{provider: p}
}

// Nested is shorthand for Erase(NewSet(keys...)). Without keys the related
// mapping is unrestricted.
func Nested[K Key](keys ...K) Erased {
	if len(keys) == 0 {
		return nil
	}
	return Erase[K](NewSet(keys...))
}

// Narrow recovers a typed provider from an erased one. A nil restriction and
// Unrestricted both yield AllKeys. A restriction built for another key type
// is a shape error.
func Narrow[K Key](e Erased) (Provider[K], error) {
	switch x := e.(type) {
	case nil:
		return AllKeys[K]{}, nil
	case unrestricted:
		return AllKeys[K]{}, nil
	case erased[K]:
		return x.provider, nil
	}
	return nil, errors.NewShapeError(
		fmt.Sprintf("nested keys of type %s cannot restrict keys of type %s", e.KeyType(), reflect.TypeFor[K]()), nil)
}

// Convert adapts a provider for keys of type K into one for keys of type
// K2. Keys of type K2 that are not also of type K are never allowed.
func Convert[K, K2 Key](p Provider[K]) Provider[K2] {
	if direct, ok := any(p).(Provider[K2]); ok {
		return direct
	}
	if _, ok := p.(AllKeys[K]); ok {
		return AllKeys[K2]{}
	}
	return converted[K, K2]{provider: p}
}

type converted[K, K2 Key] struct {
	provider Provider[K]
}

func (c converted[K, K2]) Contains(key K2) bool {
	typed, ok := any(key).(K)
	return ok && c.provider.Contains(typed)
}
