// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package mapper

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/stacklok/jsonbind/pkg/adapter"
	"github.com/stacklok/jsonbind/pkg/errors"
	"github.com/stacklok/jsonbind/pkg/jsonvalue"
	"github.com/stacklok/jsonbind/pkg/keys"
)

// mapObject maps node onto existing, or onto a fetched or created object
// when existing is nil. The lookup runs inside the transaction so that
// concurrent passes on one store cannot both create the same object.
func mapObject[T any, K keys.Key](
	ctx context.Context,
	mp *Mapper,
	node jsonvalue.Value,
	m Mapping[T, K],
	existing *T,
	allowed keys.Provider[K],
	parent Parent,
) (T, error) {
	a := m.Adapter()

	var obj T
	var pkValues map[string]any
	if existing != nil {
		obj = *existing
	} else {
		var err error
		if pkValues, err = primaryKeyValues(node, m.PrimaryKeys(), obj); err != nil {
			return obj, err
		}
	}

	ctx, span := mp.startSpan(ctx, "mapper.Map", DirectionFromJSON, a.Tag(), obj)
	p := newPayload(ctx, mp, node, obj, allowed, DirectionFromJSON, a.Tag(), parent)

	err := start(p, a)
	if err == nil {
		if existing == nil {
			fetched, ferr := fetchOrCreate(ctx, mp, pkValues, m)
			if ferr != nil {
				p.Fail(ferr)
			}
			obj = fetched
			p.object = obj
		}
		if p.err == nil {
			execute(p, m, obj)
		}
		err = complete(p, a, []T{obj}, true)
	}
	endSpan(span, err)
	if err != nil {
		return obj, err
	}

	mp.objects.Add(ctx, 1, metric.WithAttributes(attribute.String("jsonbind.direction", DirectionFromJSON.String())))
	return obj, nil
}

// objectToJSON writes object into a new JSON object.
func objectToJSON[T any, K keys.Key](
	ctx context.Context,
	mp *Mapper,
	object T,
	m Mapping[T, K],
	allowed keys.Provider[K],
	parent Parent,
) (jsonvalue.Value, error) {
	a := m.Adapter()

	ctx, span := mp.startSpan(ctx, "mapper.ToJSON", DirectionToJSON, a.Tag(), object)
	p := newPayload(ctx, mp, jsonvalue.EmptyObject(), object, allowed, DirectionToJSON, a.Tag(), parent)

	err := start(p, a)
	if err == nil {
		execute(p, m, object)
		err = complete[T](p, a, nil, false)
	}
	endSpan(span, err)
	if err != nil {
		return jsonvalue.Value{}, err
	}

	mp.objects.Add(ctx, 1, metric.WithAttributes(attribute.String("jsonbind.direction", DirectionToJSON.String())))
	return p.json, nil
}

// collectionToJSON writes objects as a JSON array, each under parent.
func collectionToJSON[T any, K keys.Key, PK keys.Key](
	parent *Payload[PK],
	objects []T,
	m Mapping[T, K],
	allowed keys.Provider[K],
) (jsonvalue.Value, error) {
	elems := make([]jsonvalue.Value, 0, len(objects))
	for _, obj := range objects {
		v, err := objectToJSON(parent.ctx, parent.mapper, obj, m, allowed, parent)
		if err != nil {
			return jsonvalue.Value{}, err
		}
		elems = append(elems, v)
	}
	return jsonvalue.Array(elems...), nil
}

// fetchOrCreate returns the stored object with the primary-key values, or
// a new object with its primary-key fields already set.
func fetchOrCreate[T any, K keys.Key](ctx context.Context, mp *Mapper, values map[string]any, m Mapping[T, K]) (T, error) {
	a := m.Adapter()
	var zero T

	if len(m.PrimaryKeys()) == 0 {
		obj, err := a.Create(ctx)
		if err != nil {
			return zero, errors.NewStorageError(fmt.Sprintf("adapter %s failed to create object", a.Tag()), err)
		}
		return obj, nil
	}

	found, err := a.Fetch(ctx, values)
	if err != nil {
		return zero, errors.NewStorageError(fmt.Sprintf("adapter %s failed to fetch %T", a.Tag(), zero), err)
	}
	if len(found) > 0 {
		mp.logger.Debug("reusing stored object", "adapter", a.Tag(), "keys", values)
		return found[0], nil
	}

	obj, err := a.Create(ctx)
	if err != nil {
		return zero, errors.NewStorageError(fmt.Sprintf("adapter %s failed to create %T", a.Tag(), zero), err)
	}
	if err := adapter.SetProperties(obj, values); err != nil {
		return zero, errors.NewPrimaryKeyError(fmt.Sprintf("cannot set primary key on new %T", obj), err)
	}
	mp.logger.Debug("created object", "adapter", a.Tag(), "keys", values)
	return obj, nil
}

func primaryKeyValues(node jsonvalue.Value, pks []PrimaryKey, object any) (map[string]any, error) {
	values := make(map[string]any, len(pks))
	for _, pk := range pks {
		v := node
		if pk.Key != nil {
			var ok bool
			if v, ok = keys.Resolve(node, pk.Key); !ok {
				return nil, errors.NewPrimaryKeyError(fmt.Sprintf(
					"primary key %s of %T does not exist in JSON at %q", pk.Property, object, pk.Key.KeyPath()), nil)
			}
		}
		if v.IsNull() {
			return nil, errors.NewPrimaryKeyError(fmt.Sprintf("primary key %s of %T is null", pk.Property, object), nil)
		}
		if pk.Transform == nil {
			values[pk.Property] = v.Interface()
			continue
		}
		converted, err := pk.Transform(v)
		if err != nil {
			return nil, errors.NewPrimaryKeyError(fmt.Sprintf("primary key %s of %T failed to transform", pk.Property, object), err)
		}
		values[pk.Property] = converted
	}
	return values, nil
}

// start opens a transaction unless an ancestor shares the adapter tag, in
// which case the ancestor's transaction is joined. A transaction held by
// anyone else is never joined: MappingWillBegin waits for it instead.
func start[T any, K keys.Key](p *Payload[K], a adapter.Adapter[T]) error {
	if !outermost(p) {
		p.mapper.logger.Debug("joining open transaction", "adapter", a.Tag())
		return nil
	}
	if err := a.MappingWillBegin(p.ctx); err != nil {
		return errors.NewAdapterTransactionError(fmt.Sprintf("errored during transaction begin for adapter %s", a.Tag()), err)
	}
	p.mapper.logger.Debug("transaction started", "adapter", a.Tag(), "direction", p.direction.String())
	return nil
}

// execute runs the field procedure, recording its error on the payload.
func execute[T any, K keys.Key](p *Payload[K], m Mapping[T, K], object T) {
	err := m.Map(object, p)
	if err == nil {
		return
	}
	if _, ok := errors.As(err); ok {
		p.Fail(err)
		return
	}
	p.Fail(errors.NewUserMappingError(fmt.Sprintf("mapping %T failed", object), err))
}

// complete saves objects when save is set and the payload has no error,
// then ends or rolls back the transaction if p is the outermost payload of
// its adapter tag.
func complete[T any, K keys.Key](p *Payload[K], a adapter.Adapter[T], objects []T, save bool) error {
	if p.err == nil && save && len(objects) > 0 {
		if err := a.Save(p.ctx, objects...); err != nil {
			p.Fail(errors.NewStorageError(fmt.Sprintf("adapter %s failed to save", a.Tag()), err))
		}
	}

	last := outermost(p)
	if p.err != nil {
		if last {
			p.mapper.logger.Debug("rolling back transaction", "adapter", a.Tag(), "error", p.err)
			a.MappingErrored(p.ctx, p.err)
		}
		return p.err
	}

	if !last {
		p.mapper.logger.Debug("deferring transaction end to ancestor", "adapter", a.Tag())
		return nil
	}
	if err := a.MappingDidEnd(p.ctx); err != nil {
		return errors.NewAdapterTransactionError(fmt.Sprintf("errored during transaction end for adapter %s", a.Tag()), err)
	}
	p.mapper.logger.Debug("transaction ended", "adapter", a.Tag())
	return nil
}

func absentKeyError(k keys.Key) error {
	return errors.NewShapeError(fmt.Sprintf("key %q is absent", k.KeyPath()), nil)
}

// write stores v at k in doc. Writing an object at the root merges it into
// doc.
func write(doc jsonvalue.Value, k keys.Key, v jsonvalue.Value) jsonvalue.Value {
	if keys.IsRoot(k) {
		if doc.Kind() == jsonvalue.KindObject && v.Kind() == jsonvalue.KindObject {
			return doc.Merge(v)
		}
		return v
	}
	return doc.Upsert(k.KeyPath(), v)
}
