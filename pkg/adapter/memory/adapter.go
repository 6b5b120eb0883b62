// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"reflect"
	"slices"

	"github.com/stacklok/jsonbind/pkg/adapter"
)

// Adapter stores objects of type T in one collection of a Store.
type Adapter[T any] struct {
	store       *Store
	collection  string
	primaryKeys []string
	factory     func() T
}

var _ adapter.Adapter[*struct{}] = (*Adapter[*struct{}])(nil)

// AdapterOption configures an Adapter.
type AdapterOption[T any] func(*Adapter[T])

// WithPrimaryKeys names the fields that identify a stored object. Saving an
// object whose primary key matches a stored one replaces it.
func WithPrimaryKeys[T any](names ...string) AdapterOption[T] {
	return func(a *Adapter[T]) {
		a.primaryKeys = names
	}
}

// WithFactory sets the function used by Create.
func WithFactory[T any](fn func() T) AdapterOption[T] {
	return func(a *Adapter[T]) {
		a.factory = fn
	}
}

// NewAdapter returns an adapter for the named collection of store.
func NewAdapter[T any](store *Store, collection string, opts ...AdapterOption[T]) *Adapter[T] {
	a := &Adapter[T]{
		store:      store,
		collection: collection,
		factory:    adapter.NewInstance[T],
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Store returns the backing store.
func (a *Adapter[T]) Store() *Store { return a.store }

// Tag returns the tag of the backing store.
func (a *Adapter[T]) Tag() string { return a.store.Tag() }

// InTransaction reports whether the backing store has an open transaction.
func (a *Adapter[T]) InTransaction() bool { return a.store.InTransaction() }

// MappingWillBegin opens a transaction on the backing store.
func (a *Adapter[T]) MappingWillBegin(ctx context.Context) error {
	return a.store.Begin(ctx)
}

// MappingDidEnd commits the open transaction.
func (a *Adapter[T]) MappingDidEnd(ctx context.Context) error {
	return a.store.Commit(ctx)
}

// MappingErrored rolls the open transaction back.
func (a *Adapter[T]) MappingErrored(ctx context.Context, err error) {
	a.store.logger.Debug("rolling back after mapping error", "tag", a.store.Tag(), "error", err)
	a.store.Rollback(ctx)
}

// Create returns a new, unsaved instance.
func (a *Adapter[T]) Create(_ context.Context) (T, error) {
	return a.factory(), nil
}

// Fetch returns the stored objects whose fields equal keyValues.
func (a *Adapter[T]) Fetch(_ context.Context, keyValues map[string]any) ([]T, error) {
	var found []T
	for _, o := range a.store.objects(a.collection) {
		obj, ok := o.(T)
		if ok && adapter.MatchProperties(obj, keyValues) {
			found = append(found, obj)
		}
	}
	return found, nil
}

// Save adds objects to the collection, replacing stored objects that are
// the same instance or share the primary key.
func (a *Adapter[T]) Save(_ context.Context, objects ...T) error {
	keys := make([]map[string]any, len(objects))
	for i, obj := range objects {
		if len(a.primaryKeys) == 0 {
			continue
		}
		kv, err := adapter.Properties(obj, a.primaryKeys)
		if err != nil {
			return err
		}
		keys[i] = kv
	}

	a.store.update(a.collection, func(stored []any) []any {
		for i, obj := range objects {
			idx := slices.IndexFunc(stored, func(o any) bool {
				return a.matches(o, obj, keys[i])
			})
			if idx >= 0 {
				stored[idx] = obj
				continue
			}
			stored = append(stored, obj)
		}
		return stored
	})
	return nil
}

// Delete removes object from the collection.
func (a *Adapter[T]) Delete(_ context.Context, object T) error {
	var kv map[string]any
	if len(a.primaryKeys) > 0 {
		var err error
		if kv, err = adapter.Properties(object, a.primaryKeys); err != nil {
			return err
		}
	}
	a.store.update(a.collection, func(stored []any) []any {
		return slices.DeleteFunc(stored, func(o any) bool {
			return a.matches(o, object, kv)
		})
	})
	return nil
}

// All returns every stored object in insertion order.
func (a *Adapter[T]) All() []T {
	var all []T
	for _, o := range a.store.objects(a.collection) {
		if obj, ok := o.(T); ok {
			all = append(all, obj)
		}
	}
	return all
}

// Count returns the number of stored objects.
func (a *Adapter[T]) Count() int {
	return len(a.All())
}

func (*Adapter[T]) matches(stored any, obj T, keyValues map[string]any) bool {
	if samePointer(stored, obj) {
		return true
	}
	if keyValues == nil {
		return false
	}
	typed, ok := stored.(T)
	return ok && adapter.MatchProperties(typed, keyValues)
}

func samePointer(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Kind() != reflect.Pointer || vb.Kind() != reflect.Pointer || va.Type() != vb.Type() {
		return false
	}
	return va.Pointer() == vb.Pointer()
}
