// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stacklok/jsonbind/pkg/adapter"
)

// Adapter stores objects of type T under one kind of a DB. Objects are
// identified by the fields named as primary keys and stored as their JSON
// encoding.
type Adapter[T any] struct {
	db          *DB
	kind        string
	primaryKeys []string
	factory     func() T
}

var _ adapter.Adapter[*struct{}] = (*Adapter[*struct{}])(nil)

// NewAdapter returns an adapter for kind. At least one primary key is
// required to save objects.
func NewAdapter[T any](db *DB, kind string, primaryKeys ...string) *Adapter[T] {
	return &Adapter[T]{
		db:          db,
		kind:        kind,
		primaryKeys: primaryKeys,
		factory:     adapter.NewInstance[T],
	}
}

// Tag returns the tag of the DB.
func (a *Adapter[T]) Tag() string { return a.db.Tag() }

// InTransaction reports whether the DB has an open transaction.
func (a *Adapter[T]) InTransaction() bool { return a.db.InTransaction() }

// MappingWillBegin opens a transaction.
func (a *Adapter[T]) MappingWillBegin(ctx context.Context) error { return a.db.Begin(ctx) }

// MappingDidEnd commits the open transaction.
func (a *Adapter[T]) MappingDidEnd(ctx context.Context) error { return a.db.Commit(ctx) }

// MappingErrored rolls the open transaction back.
func (a *Adapter[T]) MappingErrored(ctx context.Context, err error) {
	a.db.logger.Debug("rolling back after mapping error", "tag", a.db.Tag(), "error", err)
	a.db.Rollback(ctx)
}

// Create returns a new, unsaved instance.
func (a *Adapter[T]) Create(_ context.Context) (T, error) {
	return a.factory(), nil
}

// Fetch returns the objects whose fields equal keyValues. A lookup by
// exactly the primary keys is a single row read; anything else scans the
// kind.
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

// Save upserts objects.
func (a *Adapter[T]) Save(ctx context.Context, objects ...T) error {
	q := a.db.conn()
	for _, obj := range objects {
		pk, err := a.keyOf(obj)
		if err != nil {
			return err
		}
		body, err := json.Marshal(obj)
		if err != nil {
			return fmt.Errorf("%w: %v", adapter.ErrNotStorable, err)
		}
		_, err = q.ExecContext(ctx, `
			INSERT INTO objects (kind, pk, body) VALUES (?, ?, ?)
			ON CONFLICT (kind, pk) DO UPDATE SET
				body = excluded.body,
				updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')`,
			a.kind, pk, string(body),
		)
		if err != nil {
			return fmt.Errorf("saving %s %s: %w", a.kind, pk, err)
		}
		a.db.remember(a.kind, pk, obj)
	}
	return nil
}

// Delete removes object. Deleting an object that was never saved is not an
// error.
func (a *Adapter[T]) Delete(ctx context.Context, object T) error {
	pk, err := a.keyOf(object)
	if err != nil {
		return err
	}
	if _, err := a.db.conn().ExecContext(ctx,
		`DELETE FROM objects WHERE kind = ? AND pk = ?`, a.kind, pk); err != nil {
		return fmt.Errorf("deleting %s %s: %w", a.kind, pk, err)
	}
	a.db.forget(a.kind, pk)
	return nil
}

// All returns every stored object of the kind, ordered by primary key.
func (a *Adapter[T]) All(ctx context.Context) ([]T, error) {
	rows, err := a.db.conn().QueryContext(ctx,
		`SELECT pk, body FROM objects WHERE kind = ? ORDER BY pk`, a.kind)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", a.kind, err)
	}
	defer func() { _ = rows.Close() }()

	var out []T
	for rows.Next() {
		var pk, body string
		if err := rows.Scan(&pk, &body); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", a.kind, err)
		}
		obj, err := a.decode(pk, body)
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing %s: %w", a.kind, err)
	}
	return out, nil
}

// Count returns the number of stored objects of the kind.
func (a *Adapter[T]) Count(ctx context.Context) (int, error) {
	var n int
	if err := a.db.conn().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM objects WHERE kind = ?`, a.kind).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", a.kind, err)
	}
	return n, nil
}

func (a *Adapter[T]) load(ctx context.Context, pk string) (T, bool, error) {
	var zero T
	if cached, ok := a.db.lookup(a.kind, pk); ok {
		if obj, ok := cached.(T); ok {
			return obj, true, nil
		}
	}

	var body string
	err := a.db.conn().QueryRowContext(ctx,
		`SELECT body FROM objects WHERE kind = ? AND pk = ?`, a.kind, pk).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("fetching %s %s: %w", a.kind, pk, err)
	}
	obj, err := a.decode(pk, body)
	if err != nil {
		return zero, false, err
	}
	return obj, true, nil
}

// decode returns the cached instance for pk or decodes body into a new one.
func (a *Adapter[T]) decode(pk, body string) (T, error) {
	if cached, ok := a.db.lookup(a.kind, pk); ok {
		if obj, ok := cached.(T); ok {
			return obj, nil
		}
	}
	obj := a.factory()
	if err := json.Unmarshal([]byte(body), &obj); err != nil {
		var zero T
		return zero, fmt.Errorf("decoding %s %s: %w", a.kind, pk, err)
	}
	a.db.remember(a.kind, pk, obj)
	return obj, nil
}

func (a *Adapter[T]) lookupKey(keyValues map[string]any) (string, bool) {
	return adapter.LookupKey(keyValues, a.primaryKeys)
}

func (a *Adapter[T]) keyOf(obj T) (string, error) {
	return adapter.StorageKey(obj, a.primaryKeys)
}
