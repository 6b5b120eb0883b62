// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package mapper

// InsertionMode decides how mapped objects merge into a collection field.
type InsertionMode int

const (
	// Append adds the mapped objects after the existing contents.
	Append InsertionMode = iota
	// Replace swaps the existing contents for the mapped objects.
	Replace
)

// String implements fmt.Stringer.
func (m InsertionMode) String() string {
	if m == Append {
		return "append"
	}
	return "replace"
}

// UpdatePolicy governs how a JSON array updates a collection field.
//
//	insertion  nullable  JSON   outcome
//	append     any       array  mapped objects appended
//	append     true      null   field unchanged
//	replace    any       array  field replaced by the mapped objects
//	replace    true      null   field cleared, old contents are orphans
//	any        false     null   policy violation
type UpdatePolicy[T any] struct {
	Insertion InsertionMode

	// Delete receives the objects a Replace dropped from the field and
	// returns the ones to delete through the collection's adapter. Ignored
	// for Append.
	Delete func(orphans []T) []T

	// Unique drops mapped objects equal to an earlier mapped object and, for
	// Append, to an object already in the field.
	Unique bool

	// Nullable accepts JSON null for the collection.
	Nullable bool
}

// DefaultPolicy replaces without deleting, keeps objects unique and
// accepts null.
func DefaultPolicy[T any]() UpdatePolicy[T] {
	return UpdatePolicy[T]{Insertion: Replace, Unique: true, Nullable: true}
}

// AppendPolicy returns an Append policy.
func AppendPolicy[T any](unique, nullable bool) UpdatePolicy[T] {
	return UpdatePolicy[T]{Insertion: Append, Unique: unique, Nullable: nullable}
}

// ReplacePolicy returns a Replace policy. deleteFn may be nil.
func ReplacePolicy[T any](deleteFn func([]T) []T, unique, nullable bool) UpdatePolicy[T] {
	return UpdatePolicy[T]{Insertion: Replace, Delete: deleteFn, Unique: unique, Nullable: nullable}
}

// DeleteAll deletes every orphan.
func DeleteAll[T any](orphans []T) []T {
	return orphans
}
