// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/jsonbind/pkg/adapter"
)

type gadget struct {
	ID   int
	Name string
}

func newTestStore() *Store {
	return NewStore(WithLogger(slog.New(slog.DiscardHandler)))
}

func TestNewStore(t *testing.T) {
	t.Parallel()

	a, b := newTestStore(), newTestStore()
	assert.True(t, strings.HasPrefix(a.Tag(), TagPrefix+":"))
	assert.NotEqual(t, a.Tag(), b.Tag(), "stores are independent transaction scopes")
	assert.Equal(t, "fixed", NewStore(WithTag("fixed")).Tag())
}

func TestAdapter_SaveFetchDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore()
	gadgets := NewAdapter(store, "gadgets", WithPrimaryKeys[*gadget]("ID"))

	one, two := &gadget{ID: 1, Name: "one"}, &gadget{ID: 2, Name: "two"}
	require.NoError(t, gadgets.Save(ctx, one, two))
	assert.Equal(t, 2, gadgets.Count())

	found, err := gadgets.Fetch(ctx, map[string]any{"ID": 2.0})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Same(t, two, found[0])

	replacement := &gadget{ID: 1, Name: "uno"}
	require.NoError(t, gadgets.Save(ctx, replacement))
	assert.Equal(t, 2, gadgets.Count(), "same primary key replaces")
	assert.Same(t, replacement, gadgets.All()[0])

	require.NoError(t, gadgets.Save(ctx, two))
	assert.Equal(t, 2, gadgets.Count(), "same instance replaces")

	require.NoError(t, gadgets.Delete(ctx, &gadget{ID: 2}))
	assert.Equal(t, []*gadget{replacement}, gadgets.All())
	assert.Equal(t, []string{"gadgets"}, store.Collections())
}

func TestAdapter_WithoutPrimaryKeys(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gadgets := NewAdapter[*gadget](newTestStore(), "gadgets")

	a, b := &gadget{ID: 1}, &gadget{ID: 1}
	require.NoError(t, gadgets.Save(ctx, a, b, a))
	assert.Equal(t, 2, gadgets.Count(), "identity decides without primary keys")

	require.NoError(t, gadgets.Delete(ctx, a))
	assert.Equal(t, []*gadget{b}, gadgets.All())
}

func TestAdapter_Create(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore()

	g, err := NewAdapter[*gadget](store, "gadgets").Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, &gadget{}, g)

	g, err = NewAdapter(store, "gadgets", WithFactory(func() *gadget { return &gadget{Name: "new"} })).Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", g.Name)
	assert.Zero(t, store.Len("gadgets"), "Create does not store")
}

func TestStore_Transactions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore()
	gadgets := NewAdapter(store, "gadgets", WithPrimaryKeys[*gadget]("ID"))
	require.NoError(t, gadgets.Save(ctx, &gadget{ID: 1}))

	require.NoError(t, gadgets.MappingWillBegin(ctx))
	assert.True(t, gadgets.InTransaction())
	require.NoError(t, gadgets.Save(ctx, &gadget{ID: 2}))
	require.NoError(t, gadgets.MappingDidEnd(ctx))
	assert.False(t, gadgets.InTransaction())
	assert.Equal(t, 2, gadgets.Count())

	require.NoError(t, gadgets.MappingWillBegin(ctx))
	require.NoError(t, gadgets.Save(ctx, &gadget{ID: 3}))
	require.NoError(t, gadgets.Delete(ctx, &gadget{ID: 1}))
	gadgets.MappingErrored(ctx, assert.AnError)
	assert.False(t, gadgets.InTransaction())
	assert.Equal(t, 2, gadgets.Count())
	found, err := gadgets.Fetch(ctx, map[string]any{"ID": 1})
	require.NoError(t, err)
	assert.Len(t, found, 1, "rollback restores deleted objects")

	assert.Equal(t, Stats{Begins: 2, Commits: 1, Rollbacks: 1}, store.Stats())

	require.ErrorIs(t, gadgets.MappingDidEnd(ctx), adapter.ErrNoTransaction)
	gadgets.MappingErrored(ctx, assert.AnError)
	assert.Equal(t, 1, store.Stats().Rollbacks, "rollback without a transaction is ignored")
}

func TestStore_SharedAcrossAdapters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore()
	first := NewAdapter[*gadget](store, "first")
	second := NewAdapter[*gadget](store, "second")

	assert.Equal(t, first.Tag(), second.Tag())

	require.NoError(t, first.MappingWillBegin(ctx))
	assert.True(t, second.InTransaction())
	require.NoError(t, first.Save(ctx, &gadget{ID: 1}))
	require.NoError(t, second.Save(ctx, &gadget{ID: 2}))
	second.MappingErrored(ctx, assert.AnError)

	assert.Zero(t, first.Count())
	assert.Zero(t, second.Count())
	assert.Same(t, store, first.Store())
}

func TestStore_SerializesTransactions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore()
	require.NoError(t, store.Begin(ctx))

	var wg sync.WaitGroup
	started := make(chan struct{})
	done := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		close(started)
		assert.NoError(t, store.Begin(ctx))
		close(done)
		assert.NoError(t, store.Commit(ctx))
	}()

	<-started
	select {
	case <-done:
		t.Fatal("second transaction began while the first was open")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, store.Commit(ctx))
	wg.Wait()
	assert.Equal(t, 2, store.Stats().Commits)
}
