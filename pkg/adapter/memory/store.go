// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package memory provides a transactional in-memory adapter.
//
// A Store holds named collections of objects. Adapters created on the same
// Store share its tag and its transaction: a rollback restores the
// membership of every collection to what it was when the transaction began.
// Field values of objects changed during the transaction are not restored.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/stacklok/jsonbind/pkg/adapter"
	"github.com/stacklok/jsonbind/pkg/logger"
)

// TagPrefix prefixes the tag of every Store.
const TagPrefix = "memory"

// Stats counts the transaction brackets a Store has seen.
type Stats struct {
	Begins    int
	Commits   int
	Rollbacks int
}

// Store is an in-memory object store.
//
// A transaction holds an exclusive lock on the Store from MappingWillBegin
// until MappingDidEnd or MappingErrored, so concurrent mapping passes are
// serialized.
type Store struct {
	// txMu is held for the duration of a transaction.
	txMu sync.Mutex

	mu          sync.Mutex
	tag         string
	collections map[string][]any
	// snapshot is the collection membership at the start of the open
	// transaction; nil when no transaction is open.
	snapshot map[string][]any
	stats    Stats
	logger   *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for transaction events.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = l
	}
}

// WithTag overrides the generated tag.
func WithTag(tag string) StoreOption {
	return func(s *Store) {
		s.tag = tag
	}
}

// NewStore creates an empty Store with a unique tag.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		tag:         fmt.Sprintf("%s:%s", TagPrefix, uuid.NewString()),
		collections: make(map[string][]any),
		logger:      logger.Get(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tag returns the transaction scope shared by the Store's adapters.
func (s *Store) Tag() string { return s.tag }

// InTransaction reports whether a transaction is open.
func (s *Store) InTransaction() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot != nil
}

// Stats returns a copy of the transaction counters.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Len returns the number of objects in a collection.
func (s *Store) Len(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.collections[collection])
}

// Begin opens a transaction, waiting for any other transaction to finish.
func (s *Store) Begin(_ context.Context) error {
	s.txMu.Lock()

	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make(map[string][]any, len(s.collections))
	for name, objects := range s.collections {
		snapshot[name] = slices.Clone(objects)
	}
	s.snapshot = snapshot
	s.stats.Begins++
	s.logger.Debug("memory transaction started", "tag", s.tag)
	return nil
}

// Commit closes the open transaction, keeping its changes.
func (s *Store) Commit(_ context.Context) error {
	s.mu.Lock()
	if s.snapshot == nil {
		s.mu.Unlock()
		return adapter.ErrNoTransaction
	}
	s.snapshot = nil
	s.stats.Commits++
	s.logger.Debug("memory transaction committed", "tag", s.tag)
	s.mu.Unlock()

	s.txMu.Unlock()
	return nil
}

// Rollback closes the open transaction, restoring collection membership.
func (s *Store) Rollback(_ context.Context) {
	s.mu.Lock()
	if s.snapshot == nil {
		s.mu.Unlock()
		return
	}
	s.collections = s.snapshot
	s.snapshot = nil
	s.stats.Rollbacks++
	s.logger.Debug("memory transaction rolled back", "tag", s.tag)
	s.mu.Unlock()

	s.txMu.Unlock()
}

func (s *Store) objects(collection string) []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.collections[collection])
}

func (s *Store) update(collection string, fn func([]any) []any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collection] = fn(s.collections[collection])
}

// Collections returns the names of the non-empty collections.
func (s *Store) Collections() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.collections))
	for _, name := range slices.Sorted(maps.Keys(s.collections)) {
		if len(s.collections[name]) > 0 {
			names = append(names, name)
		}
	}
	return names
}
