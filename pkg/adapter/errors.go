// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package adapter

import "errors"

var (
	// ErrTransactionActive is returned when a transaction is opened twice.
	ErrTransactionActive = errors.New("transaction already in progress")

	// ErrNoTransaction is returned when there is no transaction to close.
	ErrNoTransaction = errors.New("no transaction in progress")

	// ErrNotStorable is returned when an object cannot be stored by an adapter.
	ErrNotStorable = errors.New("object is not storable")

	// ErrUnknownProperty is returned when a primary key names a missing field.
	ErrUnknownProperty = errors.New("unknown property")
)
