// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package adapter

import (
	"context"
)

// NopTag is the tag of every Nop adapter.
const NopTag = "nop"

// Nop is an adapter for objects that are never persisted. Fetch never finds
// anything and the transaction hooks do nothing.
type Nop[T any] struct {
	// New builds instances. When nil, NewInstance is used.
	New func() T
}

var _ Adapter[*struct{}] = (*Nop[*struct{}])(nil)

// Tag returns NopTag.
func (*Nop[T]) Tag() string { return NopTag }

// InTransaction always returns false.
func (*Nop[T]) InTransaction() bool { return false }

// MappingWillBegin is a no-op that always succeeds.
func (*Nop[T]) MappingWillBegin(_ context.Context) error { return nil }

// MappingDidEnd is a no-op that always succeeds.
func (*Nop[T]) MappingDidEnd(_ context.Context) error { return nil }

// MappingErrored is a no-op.
func (*Nop[T]) MappingErrored(_ context.Context, _ error) {}

// Create returns a new instance.
func (n *Nop[T]) Create(_ context.Context) (T, error) {
	if n.New != nil {
		return n.New(), nil
	}
	return NewInstance[T](), nil
}

// Fetch always returns an empty result.
func (*Nop[T]) Fetch(_ context.Context, _ map[string]any) ([]T, error) {
	return nil, nil
}

// Save is a no-op that always succeeds.
func (*Nop[T]) Save(_ context.Context, _ ...T) error { return nil }

// Delete is a no-op that always succeeds.
func (*Nop[T]) Delete(_ context.Context, _ T) error { return nil }
