// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package fileutils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicWriteFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		perm os.FileMode
	}{
		{"config", []byte("adapter:\n  type: sqlite\n"), 0o600},
		{"empty", []byte{}, 0o600},
		{"large", []byte(strings.Repeat("x", 10000)), 0o644},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), tt.name+".yaml")

			require.NoError(t, AtomicWriteFile(path, tt.data, tt.perm))

			content, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.data, content)

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, tt.perm, info.Mode().Perm())
		})
	}
}

func TestAtomicWriteFile_ReplacesAndCleansUp(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	require.NoError(t, AtomicWriteFile(path, []byte("a much longer first version\n"), 0o600))
	require.NoError(t, AtomicWriteFile(path, []byte("short\n"), 0o600))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "short\n", string(content))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "config.yaml", entries[0].Name())
}

func TestAtomicWriteFile_MissingDirectory(t *testing.T) {
	t.Parallel()

	err := AtomicWriteFile(filepath.Join(t.TempDir(), "missing", "config.yaml"), []byte("x"), 0o600)
	assert.ErrorContains(t, err, "failed to create temp file")
}
