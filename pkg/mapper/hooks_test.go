// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package mapper_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/jsonbind/pkg/adapter"
	"github.com/stacklok/jsonbind/pkg/adapter/mocks"
	bindErrors "github.com/stacklok/jsonbind/pkg/errors"
	"github.com/stacklok/jsonbind/pkg/jsonvalue"
	"github.com/stacklok/jsonbind/pkg/keys"
	"github.com/stacklok/jsonbind/pkg/mapper"
)

type widget struct {
	ID    string
	Label string
}

type widgetMapping struct {
	adapter     adapter.Adapter[*widget]
	primaryKeys []mapper.PrimaryKey
	err         error
}

func (m *widgetMapping) Adapter() adapter.Adapter[*widget] { return m.adapter }

func (m *widgetMapping) PrimaryKeys() []mapper.PrimaryKey { return m.primaryKeys }

func (m *widgetMapping) Map(w *widget, p *mapper.Payload[keys.String]) error {
	mapper.Field(p, &w.Label, keys.String("label"))
	return m.err
}

func TestMap_AdapterHooks(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("connection refused")

	tests := []struct {
		name    string
		mapErr  error
		setup   func(a *mocks.MockAdapter[*widget])
		check   func(error) bool
		message string
	}{
		{
			name: "begin failure never creates",
			setup: func(a *mocks.MockAdapter[*widget]) {
				a.EXPECT().MappingWillBegin(gomock.Any()).Return(cause)
			},
			check:   bindErrors.IsAdapterTransaction,
			message: "errored during transaction begin for adapter mock",
		},
		{
			name: "end failure",
			setup: func(a *mocks.MockAdapter[*widget]) {
				a.EXPECT().Create(gomock.Any()).Return(&widget{}, nil)
				a.EXPECT().MappingWillBegin(gomock.Any()).Return(nil)
				a.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
				a.EXPECT().MappingDidEnd(gomock.Any()).Return(cause)
			},
			check:   bindErrors.IsAdapterTransaction,
			message: "errored during transaction end for adapter mock",
		},
		{
			name: "save failure rolls back",
			setup: func(a *mocks.MockAdapter[*widget]) {
				a.EXPECT().Create(gomock.Any()).Return(&widget{}, nil)
				a.EXPECT().MappingWillBegin(gomock.Any()).Return(nil)
				a.EXPECT().Save(gomock.Any(), gomock.Any()).Return(cause)
				a.EXPECT().MappingErrored(gomock.Any(), gomock.Any()).Times(1)
			},
			check:   bindErrors.IsStorage,
			message: "adapter mock failed to save",
		},
		{
			name:   "mapping error skips save and rolls back once",
			mapErr: cause,
			setup: func(a *mocks.MockAdapter[*widget]) {
				a.EXPECT().Create(gomock.Any()).Return(&widget{}, nil)
				a.EXPECT().MappingWillBegin(gomock.Any()).Return(nil)
				a.EXPECT().MappingErrored(gomock.Any(), gomock.Any()).Times(1)
			},
			check:   bindErrors.IsUserMapping,
			message: "mapping *mapper_test.widget failed",
		},
		{
			name: "create failure rolls back",
			setup: func(a *mocks.MockAdapter[*widget]) {
				gomock.InOrder(
					a.EXPECT().MappingWillBegin(gomock.Any()).Return(nil),
					a.EXPECT().Create(gomock.Any()).Return(nil, cause),
					a.EXPECT().MappingErrored(gomock.Any(), gomock.Any()).Times(1),
				)
			},
			check:   bindErrors.IsStorage,
			message: "failed to create object",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			a := mocks.NewMockAdapter[*widget](ctrl)
			a.EXPECT().Tag().Return("mock").AnyTimes()
			tt.setup(a)

			var m mapper.Mapping[*widget, keys.String] = &widgetMapping{adapter: a, err: tt.mapErr}
			_, err := mapper.Map(context.Background(), mapper.New(), jsonvalue.MustParse(`{"label": "x"}`), m, nil)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
			assert.ErrorContains(t, err, tt.message)
			assert.ErrorIs(t, err, cause)
		})
	}
}

func TestMap_PrimaryKeyLookup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		pk       mapper.PrimaryKey
		doc      string
		fetchArg map[string]any
	}{
		{
			name:     "keyed lookup",
			pk:       mapper.PrimaryKey{Property: "ID", Key: keys.String("id")},
			doc:      `{"id": "w1", "label": "x"}`,
			fetchArg: map[string]any{"ID": "w1"},
		},
		{
			name: "transformed lookup",
			pk: mapper.PrimaryKey{Property: "ID", Key: keys.String("id"), Transform: func(v jsonvalue.Value) (any, error) {
				n, _ := v.AsNumber()
				return fmt.Sprintf("w%d", int(n)), nil
			}},
			doc:      `{"id": 7, "label": "x"}`,
			fetchArg: map[string]any{"ID": "w7"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			a := mocks.NewMockAdapter[*widget](ctrl)
			stored := &widget{ID: tt.fetchArg["ID"].(string)}

			a.EXPECT().Tag().Return("mock").AnyTimes()
			gomock.InOrder(
				a.EXPECT().MappingWillBegin(gomock.Any()).Return(nil),
				a.EXPECT().Fetch(gomock.Any(), tt.fetchArg).Return([]*widget{stored}, nil),
				a.EXPECT().Save(gomock.Any(), stored).Return(nil),
				a.EXPECT().MappingDidEnd(gomock.Any()).Return(nil),
			)

			var m mapper.Mapping[*widget, keys.String] = &widgetMapping{adapter: a, primaryKeys: []mapper.PrimaryKey{tt.pk}}
			got, err := mapper.Map(context.Background(), mapper.New(), jsonvalue.MustParse(tt.doc), m, nil)
			require.NoError(t, err)
			assert.Same(t, stored, got)
			assert.Equal(t, "x", got.Label)
		})
	}
}

func TestMap_PrimaryKeyTransformFailure(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	a := mocks.NewMockAdapter[*widget](ctrl)
	a.EXPECT().Tag().Return("mock").AnyTimes()

	cause := fmt.Errorf("not an id")
	var m mapper.Mapping[*widget, keys.String] = &widgetMapping{adapter: a, primaryKeys: []mapper.PrimaryKey{{
		Property:  "ID",
		Key:       keys.String("id"),
		Transform: func(jsonvalue.Value) (any, error) { return nil, cause },
	}}}

	_, err := mapper.Map(context.Background(), mapper.New(), jsonvalue.MustParse(`{"id": 1}`), m, nil)
	require.Error(t, err)
	assert.True(t, bindErrors.IsPrimaryKey(err))
	assert.ErrorIs(t, err, cause)
}

func TestToJSON_NopAdapter(t *testing.T) {
	t.Parallel()
	var m mapper.Mapping[*widget, keys.String] = &widgetMapping{adapter: &adapter.Nop[*widget]{}}

	out, err := mapper.ToJSON(context.Background(), mapper.New(), &widget{Label: "hello"}, m, nil)
	require.NoError(t, err)
	assert.True(t, out.Equal(jsonvalue.MustParse(`{"label": "hello"}`)), "got %s", out)
}
