// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package mapper

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/jsonbind/pkg/errors"
	"github.com/stacklok/jsonbind/pkg/jsonvalue"
	"github.com/stacklok/jsonbind/pkg/keys"
	"github.com/stacklok/jsonbind/pkg/logger"
)

const instrumentationName = "github.com/stacklok/jsonbind/pkg/mapper"

// Mapper runs mapping passes. It holds only logging and telemetry handles
// and is safe to share.
type Mapper struct {
	logger  *slog.Logger
	tracer  trace.Tracer
	objects metric.Int64Counter
	failed  metric.Int64Counter

	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Mapper) {
		m.logger = l
	}
}

// WithTracerProvider sets the provider of the tracer that records one span
// per mapped object.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(m *Mapper) {
		m.tracerProvider = tp
	}
}

// WithMeterProvider sets the provider of the mapped-object and error counters.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(m *Mapper) {
		m.meterProvider = mp
	}
}

// New creates a Mapper. Without options it logs through the process logger
// and reports to the global OpenTelemetry providers.
func New(opts ...Option) *Mapper {
	m := &Mapper{
		logger:         logger.Get(),
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.tracer = m.tracerProvider.Tracer(instrumentationName)
	meter := m.meterProvider.Meter(instrumentationName)

	var err error
	m.objects, err = meter.Int64Counter("jsonbind.mapper.objects",
		metric.WithDescription("Objects mapped"),
		metric.WithUnit("{object}"))
	if err != nil {
		m.logger.Warn("failed to create objects counter", "error", err)
		m.objects, _ = noop.NewMeterProvider().Meter(instrumentationName).Int64Counter("jsonbind.mapper.objects")
	}
	m.failed, err = meter.Int64Counter("jsonbind.mapper.errors",
		metric.WithDescription("Failed mapping passes"),
		metric.WithUnit("{pass}"))
	if err != nil {
		m.logger.Warn("failed to create errors counter", "error", err)
		m.failed, _ = noop.NewMeterProvider().Meter(instrumentationName).Int64Counter("jsonbind.mapper.errors")
	}
	return m
}

func orDefault(mp *Mapper) *Mapper {
	if mp == nil {
		return New()
	}
	return mp
}

func (m *Mapper) startSpan(ctx context.Context, name string, direction Direction, tag string, object any) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("jsonbind.direction", direction.String()),
		attribute.String("jsonbind.adapter_tag", tag),
		attribute.String("jsonbind.object_type", fmt.Sprintf("%T", object)),
	))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (m *Mapper) recordFailure(ctx context.Context, direction Direction, err error) {
	kind := "unknown"
	if e, ok := errors.As(err); ok {
		kind = e.Type
	}
	m.failed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("jsonbind.direction", direction.String()),
		attribute.String("jsonbind.error_type", kind),
	))
}

// Map maps doc onto an object fetched by primary key or newly created.
// A nil keyedBy allows every key.
func Map[T any, K keys.Key](
	ctx context.Context, mp *Mapper, doc jsonvalue.Value, m Mapping[T, K], keyedBy keys.Provider[K],
) (T, error) {
	mp = orDefault(mp)
	obj, err := mapObject(ctx, mp, doc, m, nil, keyedBy, nil)
	if err != nil {
		mp.recordFailure(ctx, DirectionFromJSON, err)
	}
	return obj, err
}

// MapInto maps doc onto object, skipping the primary-key lookup.
func MapInto[T any, K keys.Key](
	ctx context.Context, mp *Mapper, doc jsonvalue.Value, object T, m Mapping[T, K], keyedBy keys.Provider[K],
) (T, error) {
	mp = orDefault(mp)
	obj, err := mapObject(ctx, mp, doc, m, &object, keyedBy, nil)
	if err != nil {
		mp.recordFailure(ctx, DirectionFromJSON, err)
	}
	return obj, err
}

// MapBinding maps the node of doc at the binding's key path.
func MapBinding[T any, K keys.Key, BK keys.Key](
	ctx context.Context, mp *Mapper, doc jsonvalue.Value, b Binding[BK, T, K], keyedBy keys.Provider[K],
) (T, error) {
	mp = orDefault(mp)
	var zero T
	node, ok := keys.Resolve(doc, b.Key)
	if !ok {
		err := absentKeyError(b.Key)
		mp.recordFailure(ctx, DirectionFromJSON, err)
		return zero, err
	}
	if node.IsNull() {
		err := errors.NewShapeError(fmt.Sprintf("expected an object at %q, found null", b.Key.KeyPath()), nil)
		mp.recordFailure(ctx, DirectionFromJSON, err)
		return zero, err
	}
	return Map(ctx, mp, node, b.Mapping, keyedBy)
}

// MapCollection maps every element of the array at the binding's key path,
// applying the binding's policy to an initially empty collection. All
// elements share one transaction.
func MapCollection[T any, K keys.Key, BK keys.Key](
	ctx context.Context, mp *Mapper, doc jsonvalue.Value, b Binding[BK, T, K], keyedBy keys.Provider[K],
) ([]T, error) {
	mp = orDefault(mp)
	if keyedBy == nil {
		keyedBy = keys.All[K]()
	}
	a := b.Mapping.Adapter()

	var out []T
	ctx, span := mp.startSpan(ctx, "mapper.MapCollection", DirectionFromJSON, a.Tag(), out)
	root := newPayload[BK](ctx, mp, doc, &out, keys.NewSet(b.Key), DirectionFromJSON, a.Tag(), nil)

	err := start(root, a)
	if err == nil {
		if rerr := reconcile(root, &out, b, keyedBy); rerr != nil {
			root.Fail(rerr)
		}
		err = complete(root, a, out, true)
	}
	endSpan(span, err)
	if err != nil {
		mp.recordFailure(ctx, DirectionFromJSON, err)
		return nil, err
	}
	return out, nil
}

// ToJSON writes object into a new JSON object.
func ToJSON[T any, K keys.Key](
	ctx context.Context, mp *Mapper, object T, m Mapping[T, K], keyedBy keys.Provider[K],
) (jsonvalue.Value, error) {
	mp = orDefault(mp)
	out, err := objectToJSON(ctx, mp, object, m, keyedBy, nil)
	if err != nil {
		mp.recordFailure(ctx, DirectionToJSON, err)
	}
	return out, err
}

// CollectionToJSON writes objects into a JSON array inside one transaction.
func CollectionToJSON[T any, K keys.Key](
	ctx context.Context, mp *Mapper, objects []T, m Mapping[T, K], keyedBy keys.Provider[K],
) (jsonvalue.Value, error) {
	mp = orDefault(mp)
	a := m.Adapter()

	ctx, span := mp.startSpan(ctx, "mapper.CollectionToJSON", DirectionToJSON, a.Tag(), objects)
	root := newPayload[keys.Root](ctx, mp, jsonvalue.Array(), objects, keys.All[keys.Root](), DirectionToJSON, a.Tag(), nil)

	err := start(root, a)
	if err == nil {
		out, cerr := collectionToJSON(root, objects, m, keyedBy)
		if cerr != nil {
			root.Fail(cerr)
		}
		root.json = out
		err = complete[T](root, a, nil, false)
	}
	endSpan(span, err)
	if err != nil {
		mp.recordFailure(ctx, DirectionToJSON, err)
		return jsonvalue.Value{}, err
	}
	return root.json, nil
}
