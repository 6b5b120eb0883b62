// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/stacklok/jsonbind/pkg/adapter"
)

// Adapter stores objects of type T under one kind of a Store.
type Adapter[T any] struct {
	store       *Store
	kind        string
	primaryKeys []string
	factory     func() T
}

var _ adapter.Adapter[*struct{}] = (*Adapter[*struct{}])(nil)

// NewAdapter returns an adapter for kind. At least one primary key is
// required to save objects.
func NewAdapter[T any](store *Store, kind string, primaryKeys ...string) *Adapter[T] {
	return &Adapter[T]{
		store:       store,
		kind:        kind,
		primaryKeys: primaryKeys,
		factory:     adapter.NewInstance[T],
	}
}

// Tag returns the tag of the Store.
func (a *Adapter[T]) Tag() string { return a.store.Tag() }

// InTransaction reports whether the Store has an open transaction.
func (a *Adapter[T]) InTransaction() bool { return a.store.InTransaction() }

// MappingWillBegin opens a transaction.
func (a *Adapter[T]) MappingWillBegin(ctx context.Context) error { return a.store.Begin(ctx) }

// MappingDidEnd executes the queued writes.
func (a *Adapter[T]) MappingDidEnd(ctx context.Context) error { return a.store.Commit(ctx) }

// MappingErrored discards the queued writes.
func (a *Adapter[T]) MappingErrored(ctx context.Context, err error) {
	a.store.logger.Debug("discarding transaction after mapping error", "tag", a.store.Tag(), "error", err)
	a.store.Rollback(ctx)
}

// Create returns a new, unsaved instance.
func (a *Adapter[T]) Create(_ context.Context) (T, error) {
	return a.factory(), nil
}

// Fetch returns the objects whose fields equal keyValues.
func (a *Adapter[T]) Fetch(ctx context.Context, keyValues map[string]any) ([]T, error) {
	if pk, ok := a.lookupKey(keyValues); ok {
		obj, found, err := a.load(ctx, pk)
		if err != nil || !found {
			return nil, err
		}
		return []T{obj}, nil
	}

	all, err := a.All(ctx)
	if err != nil {
		return nil, err
	}
	var found []T
	for _, obj := range all {
		if adapter.MatchProperties(obj, keyValues) {
			found = append(found, obj)
		}
	}
	return found, nil
}

// Save writes objects.
func (a *Adapter[T]) Save(ctx context.Context, objects ...T) error {
	for _, obj := range objects {
		pk, err := a.keyOf(obj)
		if err != nil {
			return err
		}
		data, err := json.Marshal(obj)
		if err != nil {
			return fmt.Errorf("%w: %v", adapter.ErrNotStorable, err)
		}
		body := string(data)
		if err := a.store.write(ctx, a.kind, pk, &body); err != nil {
			return fmt.Errorf("saving %s %s: %w", a.kind, pk, err)
		}
		a.store.remember(a.store.objectKey(a.kind, pk), obj)
	}
	return nil
}

// Delete removes object.
func (a *Adapter[T]) Delete(ctx context.Context, object T) error {
	pk, err := a.keyOf(object)
	if err != nil {
		return err
	}
	if err := a.store.write(ctx, a.kind, pk, nil); err != nil {
		return fmt.Errorf("deleting %s %s: %w", a.kind, pk, err)
	}
	a.store.forget(a.store.objectKey(a.kind, pk))
	return nil
}

// All returns every stored object of the kind, ordered by primary key.
func (a *Adapter[T]) All(ctx context.Context) ([]T, error) {
	pks, err := a.store.members(ctx, a.kind)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", a.kind, err)
	}
	slices.Sort(pks)

	out := make([]T, 0, len(pks))
	for _, pk := range pks {
		obj, found, err := a.load(ctx, pk)
		if err != nil {
			return nil, err
		}
		if found {
			out = append(out, obj)
		}
	}
	return out, nil
}

func (a *Adapter[T]) load(ctx context.Context, pk string) (T, bool, error) {
	var zero T
	key := a.store.objectKey(a.kind, pk)
	if cached, ok := a.store.lookup(key); ok {
		if obj, ok := cached.(T); ok {
			return obj, true, nil
		}
	}

	body, found, err := a.store.read(ctx, a.kind, pk)
	if err != nil {
		return zero, false, fmt.Errorf("fetching %s %s: %w", a.kind, pk, err)
	}
	if !found {
		return zero, false, nil
	}

	obj := a.factory()
	if err := json.Unmarshal([]byte(body), &obj); err != nil {
		return zero, false, fmt.Errorf("decoding %s %s: %w", a.kind, pk, err)
	}
	a.store.remember(key, obj)
	return obj, true, nil
}

func (a *Adapter[T]) lookupKey(keyValues map[string]any) (string, bool) {
	return adapter.LookupKey(keyValues, a.primaryKeys)
}

func (a *Adapter[T]) keyOf(obj T) (string, error) {
	return adapter.StorageKey(obj, a.primaryKeys)
}
