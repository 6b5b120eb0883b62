// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package mapper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/jsonbind/pkg/errors"
	"github.com/stacklok/jsonbind/pkg/jsonvalue"
	"github.com/stacklok/jsonbind/pkg/keys"
)

func TestOutermost(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mp := New()

	root := newPayload[keys.String](ctx, mp, jsonvalue.Null(), nil, nil, DirectionFromJSON, "a", nil)
	other := newPayload[keys.Root](ctx, mp, jsonvalue.Null(), nil, nil, DirectionFromJSON, "b", root)
	same := newPayload[keys.String](ctx, mp, jsonvalue.Null(), nil, nil, DirectionFromJSON, "a", other)

	assert.True(t, outermost(root))
	assert.True(t, outermost(other))
	assert.False(t, outermost(same))
	assert.Same(t, other, same.Parent())
	assert.Nil(t, root.Parent())
}

func TestDirection_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "fromJSON", DirectionFromJSON.String())
	assert.Equal(t, "toJSON", DirectionToJSON.String())
}

func TestPayload_FailKeepsFirstError(t *testing.T) {
	t.Parallel()
	p := newPayload[keys.String](context.Background(), New(), jsonvalue.Null(), nil, nil, DirectionToJSON, "a", nil)

	first := errors.NewShapeError("first", nil)
	p.Fail(first)
	p.Fail(errors.NewConversionError("second", nil))
	p.Fail(nil)

	assert.Same(t, first, p.Err())
	assert.False(t, p.Allows(keys.String("x")))
}

func TestWrite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		key  keys.Key
		v    string
		want string
	}{
		{name: "nested path", doc: `{}`, key: keys.String("a.b"), v: `1`, want: `{"a": {"b": 1}}`},
		{name: "root merges objects", doc: `{"a": 1}`, key: keys.Root{}, v: `{"b": 2}`, want: `{"a": 1, "b": 2}`},
		{name: "root replaces non-objects", doc: `{"a": 1}`, key: keys.Root{}, v: `[1]`, want: `[1]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := write(jsonvalue.MustParse(tt.doc), tt.key, jsonvalue.MustParse(tt.v))
			assert.True(t, jsonvalue.MustParse(tt.want).Equal(got), "got %s", got)
		})
	}
}

type petKey string

func (k petKey) KeyPath() string { return string(k) }

type ownerKey struct{}

func (ownerKey) KeyPath() string { return "owner" }

func (ownerKey) NestedKeys() keys.Erased { return keys.Nested(keys.String("name")) }

func TestBinding_NestedKeys(t *testing.T) {
	t.Parallel()

	b := Binding[keys.String, *struct{}, petKey]{Key: keys.String("pets")}
	allowed, err := b.nestedKeys(keys.All[keys.String]())
	require.NoError(t, err)
	assert.True(t, allowed.Contains(petKey("anything")))

	mismatched := Binding[ownerKey, *struct{}, petKey]{Key: ownerKey{}}
	_, err = mismatched.nestedKeys(keys.All[ownerKey]())
	require.Error(t, err)
	assert.True(t, errors.IsShape(err))
}
