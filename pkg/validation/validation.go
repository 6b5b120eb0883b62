// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package validation provides functions for validating user-supplied key
// paths.
package validation

import (
	"fmt"
	"strings"

	"github.com/stacklok/jsonbind/pkg/jsonvalue"
)

// maxKeyPathLength bounds key paths supplied on the command line.
const maxKeyPathLength = 1024

// ValidateKeyPath validates a dotted key path: it must be non-empty, have no
// empty segments, and contain no null bytes or whitespace-only segments.
func ValidateKeyPath(path string) error {
	if path == "" {
		return fmt.Errorf("key path cannot be empty")
	}

	if len(path) > maxKeyPathLength {
		return fmt.Errorf("key path exceeds maximum length of %d bytes", maxKeyPathLength)
	}

	// Check for null bytes explicitly
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("key path cannot contain null bytes")
	}

	for i, segment := range jsonvalue.SplitPath(path) {
		if segment == "" {
			return fmt.Errorf("key path %q has an empty segment at position %d", path, i)
		}
		if strings.TrimSpace(segment) == "" {
			return fmt.Errorf("key path %q has a blank segment at position %d", path, i)
		}
	}

	return nil
}
