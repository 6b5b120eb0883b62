// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package errors defines the error kinds reported by a mapping pass.
//
// Every failure surfaced by the mapper is an *Error whose Type tells the
// caller which kind of failure occurred. The human readable reason lives in
// Message and the underlying failure, if any, in Cause.
package errors

import (
	"errors"
	"fmt"
)

// Error types
const (
	// ErrShape is returned when the JSON at an expected path is absent or has the wrong kind
	ErrShape = "shape"

	// ErrConversion is returned when a JSON value cannot be decoded to the target type
	ErrConversion = "conversion"

	// ErrPrimaryKey is returned when a primary key cannot be resolved from the JSON
	ErrPrimaryKey = "primary_key"

	// ErrAdapterTransaction is returned when an adapter transaction hook fails
	ErrAdapterTransaction = "adapter_transaction"

	// ErrPolicyViolation is returned when a collection update policy rejects the JSON
	ErrPolicyViolation = "policy_violation"

	// ErrUserMapping is returned when a field-binding procedure or a transform fails
	ErrUserMapping = "user_mapping"

	// ErrStorage is returned when an adapter fails to create, fetch, save or delete objects
	ErrStorage = "storage"
)

// Error represents a failed mapping pass
type Error struct {
	// Type is the error type
	Type string

	// Message is the error message
	Message string

	// Cause is the underlying error
	Cause error
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same type.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// NewError creates a new error
func NewError(errorType, message string, cause error) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NewShapeError creates a new shape error
func NewShapeError(message string, cause error) *Error {
	return NewError(ErrShape, message, cause)
}

// NewConversionError creates a new conversion error
func NewConversionError(message string, cause error) *Error {
	return NewError(ErrConversion, message, cause)
}

// NewPrimaryKeyError creates a new primary key error
func NewPrimaryKeyError(message string, cause error) *Error {
	return NewError(ErrPrimaryKey, message, cause)
}

// NewAdapterTransactionError creates a new adapter transaction error
func NewAdapterTransactionError(message string, cause error) *Error {
	return NewError(ErrAdapterTransaction, message, cause)
}

// NewPolicyViolationError creates a new policy violation error
func NewPolicyViolationError(message string, cause error) *Error {
	return NewError(ErrPolicyViolation, message, cause)
}

// NewUserMappingError creates a new user mapping error
func NewUserMappingError(message string, cause error) *Error {
	return NewError(ErrUserMapping, message, cause)
}

// NewStorageError creates a new storage error
func NewStorageError(message string, cause error) *Error {
	return NewError(ErrStorage, message, cause)
}

// As returns the outermost *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func isType(err error, errorType string) bool {
	e, ok := As(err)
	return ok && e.Type == errorType
}

// IsShape checks if the error is a shape error
func IsShape(err error) bool {
	return isType(err, ErrShape)
}

// IsConversion checks if the error is a conversion error
func IsConversion(err error) bool {
	return isType(err, ErrConversion)
}

// IsPrimaryKey checks if the error is a primary key error
func IsPrimaryKey(err error) bool {
	return isType(err, ErrPrimaryKey)
}

// IsAdapterTransaction checks if the error is an adapter transaction error
func IsAdapterTransaction(err error) bool {
	return isType(err, ErrAdapterTransaction)
}

// IsPolicyViolation checks if the error is a policy violation error
func IsPolicyViolation(err error) bool {
	return isType(err, ErrPolicyViolation)
}

// IsUserMapping checks if the error is a user mapping error
func IsUserMapping(err error) bool {
	return isType(err, ErrUserMapping)
}

// IsStorage checks if the error is a storage error
func IsStorage(err error) bool {
	return isType(err, ErrStorage)
}
