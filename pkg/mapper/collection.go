// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package mapper

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/stacklok/jsonbind/pkg/errors"
	"github.com/stacklok/jsonbind/pkg/keys"
)

// Collection maps a collection of related objects at the binding's key,
// merging them into field according to the binding's policy.
//
// Elements keep the order of the JSON array. Writing JSON, the collection
// becomes an array.
func Collection[K keys.Key, T any, NK keys.Key](p *Payload[K], field *[]T, b Binding[K, T, NK]) {
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
		if err := reconcile(p, field, b, nested); err != nil {
			p.Fail(err)
		}
	case DirectionToJSON:
		v, err := collectionToJSON(p, *field, b.Mapping, nested)
		if err != nil {
			p.Fail(err)
			return
		}
		p.json = write(p.json, b.Key, v)
	}
}

func reconcile[K keys.Key, T any, NK keys.Key](
	p *Payload[K], field *[]T, b Binding[K, T, NK], nested keys.Provider[NK],
) error {
	policy := b.Policy
	path := b.Key.KeyPath()

	node, ok := keys.Resolve(p.json, b.Key)
	if !ok {
		return absentKeyError(b.Key)
	}

	if node.IsNull() {
		if !policy.Nullable {
			return errors.NewPolicyViolationError(fmt.Sprintf("null for non-nullable collection at %q", path), nil)
		}
		if policy.Insertion == Append {
			return nil
		}
		orphans := *field
		*field = nil
		return deleteOrphans(p, b, orphans)
	}

	elems, ok := node.AsArray()
	if !ok {
		return errors.NewShapeError(fmt.Sprintf("expected an array at %q, found %s", path, node.Kind()), nil)
	}

	existing := *field
	mapped := make([]T, 0, len(elems))
	for _, elem := range elems {
		obj, err := mapObject(p.ctx, p.mapper, elem, b.Mapping, nil, nested, p)
		if err != nil {
			return err
		}
		if policy.Unique {
			if containsObject(mapped, obj) || (policy.Insertion == Append && containsObject(existing, obj)) {
				continue
			}
		}
		mapped = append(mapped, obj)
	}

	if policy.Insertion == Append {
		*field = append(slices.Clone(existing), mapped...)
		return nil
	}

	var orphans []T
	for _, obj := range existing {
		if !containsObject(mapped, obj) {
			orphans = append(orphans, obj)
		}
	}
	*field = mapped
	return deleteOrphans(p, b, orphans)
}

func deleteOrphans[K keys.Key, T any, NK keys.Key](p *Payload[K], b Binding[K, T, NK], orphans []T) error {
	if b.Policy.Delete == nil || len(orphans) == 0 {
		return nil
	}
	a := b.Mapping.Adapter()
	for _, obj := range b.Policy.Delete(orphans) {
		if err := a.Delete(p.ctx, obj); err != nil {
			return errors.NewStorageError(fmt.Sprintf("adapter %s failed to delete %T", a.Tag(), obj), err)
		}
		p.mapper.logger.Debug("deleted orphan", "adapter", a.Tag(), "key", b.Key.KeyPath())
	}
	return nil
}

// Equaler is implemented by objects with a notion of equality other than
// identity, usually equality of primary keys.
type Equaler[T any] interface {
	Equal(other T) bool
}

func objectsEqual[T any](a, b T) bool {
	if eq, ok := any(a).(Equaler[T]); ok {
		return eq.Equal(b)
	}
	if !reflect.TypeFor[T]().Comparable() {
		return false
	}
	return any(a) == any(b)
}

func containsObject[T any](list []T, obj T) bool {
	return slices.ContainsFunc(list, func(o T) bool {
		return objectsEqual(o, obj)
	})
}
