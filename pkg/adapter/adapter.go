// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package adapter defines the persistence contract consumed by the mapper
// and helpers shared by its implementations.
//
// An adapter stores objects of exactly one Go type. Several adapters may sit
// on top of one store (one per object type); they must then report the same
// Tag, because the mapper treats adapters with the same tag as one
// transaction scope and only the outermost mapping of a tag opens and closes
// the transaction.
//
// The mapper drives an adapter from a single goroutine. Implementations that
// may be shared by concurrent mapping passes must serialize transactions
// themselves.
package adapter

//go:generate mockgen -destination=mocks/mock_adapter.go -package=mocks -source=adapter.go Adapter

import (
	"context"
)

// Adapter persists objects of type T.
type Adapter[T any] interface {
	// Tag identifies the transaction scope of the adapter.
	Tag() string

	// InTransaction reports whether a transaction of this scope is open.
	InTransaction() bool

	// MappingWillBegin opens a transaction.
	MappingWillBegin(ctx context.Context) error

	// MappingDidEnd commits the open transaction.
	MappingDidEnd(ctx context.Context) error

	// MappingErrored rolls the open transaction back. err is the failure
	// that aborted the mapping.
	MappingErrored(ctx context.Context, err error)

	// Create returns a new, unsaved instance.
	Create(ctx context.Context) (T, error)

	// Fetch returns the stored instances whose properties equal keyValues.
	Fetch(ctx context.Context, keyValues map[string]any) ([]T, error)

	// Save stores objects, replacing stored instances with the same primary key.
	Save(ctx context.Context, objects ...T) error

	// Delete removes object.
	Delete(ctx context.Context, object T) error
}
