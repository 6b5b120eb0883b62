// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package jsonvalue

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/jsonbind/pkg/errors"
)

type address struct {
	Street string    `json:"street"`
	Number int       `json:"number"`
	Since  time.Time `json:"since"`
}

func TestAs(t *testing.T) {
	t.Parallel()

	s, err := As[string](String("x"))
	require.NoError(t, err)
	assert.Equal(t, "x", s)

	n, err := As[int](Number(42))
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	f, err := As[float64](Number(0.25))
	require.NoError(t, err)
	assert.InDelta(t, 0.25, f, 0)

	b, err := As[bool](Number(1))
	require.NoError(t, err)
	assert.True(t, b)

	b, err = As[bool](Bool(false))
	require.NoError(t, err)
	assert.False(t, b)

	p, err := As[*string](Null())
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = As[*string](String("set"))
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "set", *p)

	ts, err := As[time.Time](String("2020-01-02T03:04:05Z"))
	require.NoError(t, err)
	assert.True(t, ts.Equal(time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)))

	id, err := As[uuid.UUID](String("6ba7b810-9dad-11d1-80b4-00c04fd430c8"))
	require.NoError(t, err)
	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", id.String())

	list, err := As[[]int](MustParse(`[1, 2, 3]`))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, list)

	m, err := As[map[string]string](MustParse(`{"a": "b"}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "b"}, m)

	raw, err := As[any](MustParse(`{"a": [1]}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": []any{1.0}}, raw)

	v, err := As[Value](MustParse(`[null]`))
	require.NoError(t, err)
	assert.True(t, MustParse(`[null]`).Equal(v))

	addr, err := As[address](MustParse(`{"street": "Main", "number": 7, "since": "2019-05-06T00:00:00Z"}`))
	require.NoError(t, err)
	assert.Equal(t, "Main", addr.Street)
	assert.Equal(t, 7, addr.Number)
	assert.Equal(t, 2019, addr.Since.Year())
}

func TestAs_ConversionErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fn   func() error
	}{
		{"string from number", func() error { _, err := As[string](Number(1)); return err }},
		{"int from fraction", func() error { _, err := As[int](Number(1.5)); return err }},
		{"int8 overflow", func() error { _, err := As[int8](Number(300)); return err }},
		{"uint from negative", func() error { _, err := As[uint](Number(-1)); return err }},
		{"int64 at 2^63", func() error { _, err := As[int64](MustParse(`9223372036854775808`)); return err }},
		{"int64 below -2^63", func() error { _, err := As[int64](Number(-0x1p64)); return err }},
		{"uint64 at 2^64", func() error { _, err := As[uint64](MustParse(`18446744073709551616`)); return err }},
		{"bool from 2", func() error { _, err := As[bool](Number(2)); return err }},
		{"int from null", func() error { _, err := As[int](Null()); return err }},
		{"time from garbage", func() error { _, err := As[time.Time](String("yesterday")); return err }},
		{"slice from object", func() error { _, err := As[[]int](EmptyObject()); return err }},
		{"struct from string", func() error { _, err := As[address](String("x")); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.fn()
			require.Error(t, err)
			assert.True(t, errors.IsConversion(err), "got %v", err)
		})
	}
}

func TestAs_IntegerBounds(t *testing.T) {
	t.Parallel()

	n, err := As[int64](Number(-0x1p63))
	require.NoError(t, err)
	assert.Equal(t, int64(math.MinInt64), n)

	u, err := As[uint64](Number(0x1p63))
	require.NoError(t, err)
	assert.Equal(t, uint64(1)<<63, u)
}

func TestFrom(t *testing.T) {
	t.Parallel()

	got, err := From(address{Street: "Main", Number: 7, Since: time.Date(2019, 5, 6, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.True(t, MustParse(`{"street": "Main", "number": 7, "since": "2019-05-06T00:00:00Z"}`).Equal(got))

	got, err = From((*string)(nil))
	require.NoError(t, err)
	assert.True(t, got.IsNull())

	got, err = From(nil)
	require.NoError(t, err)
	assert.True(t, got.IsNull())

	_, err = From(make(chan int))
	require.Error(t, err)
	assert.True(t, errors.IsConversion(err))
}
