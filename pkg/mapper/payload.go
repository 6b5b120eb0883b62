// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package mapper

import (
	"context"

	"github.com/stacklok/jsonbind/pkg/jsonvalue"
	"github.com/stacklok/jsonbind/pkg/keys"
)

// Direction is the direction of a mapping pass.
type Direction int

const (
	// DirectionFromJSON reads JSON into objects.
	DirectionFromJSON Direction = iota
	// DirectionToJSON writes objects into JSON.
	DirectionToJSON
)

// String implements fmt.Stringer.
func (d Direction) String() string {
	if d == DirectionFromJSON {
		return "fromJSON"
	}
	return "toJSON"
}

// Parent is the part of a payload visible to the payloads of related
// objects, whatever their key type.
type Parent interface {
	AdapterTag() string
	Err() error
	Parent() Parent
}

// Payload is the state of mapping one object.
type Payload[K keys.Key] struct {
	ctx        context.Context
	mapper     *Mapper
	json       jsonvalue.Value
	object     any
	keys       keys.Provider[K]
	direction  Direction
	err        error
	adapterTag string
	parent     Parent
}

var _ Parent = (*Payload[keys.Root])(nil)

func newPayload[K keys.Key](
	ctx context.Context,
	mp *Mapper,
	doc jsonvalue.Value,
	object any,
	allowed keys.Provider[K],
	direction Direction,
	adapterTag string,
	parent Parent,
) *Payload[K] {
	if allowed == nil {
		allowed = keys.All[K]()
	}
	return &Payload[K]{
		ctx:        ctx,
		mapper:     mp,
		json:       doc,
		object:     object,
		keys:       allowed,
		direction:  direction,
		adapterTag: adapterTag,
		parent:     parent,
	}
}

// Context returns the context of the mapping pass.
func (p *Payload[K]) Context() context.Context { return p.ctx }

// JSON returns the JSON node of the object. Writing JSON, it holds what has
// been written so far.
func (p *Payload[K]) JSON() jsonvalue.Value { return p.json }

// SetJSON replaces the JSON node. Useful for writing JSON a field function
// cannot express.
func (p *Payload[K]) SetJSON(v jsonvalue.Value) { p.json = v }

// Object returns the object being mapped.
func (p *Payload[K]) Object() any { return p.object }

// Keys returns the allowlist of the pass.
func (p *Payload[K]) Keys() keys.Provider[K] { return p.keys }

// Direction returns the direction of the pass.
func (p *Payload[K]) Direction() Direction { return p.direction }

// Err returns the recorded error.
func (p *Payload[K]) Err() error { return p.err }

// Fail records err unless an error is already recorded.
func (p *Payload[K]) Fail(err error) {
	if p.err == nil && err != nil {
		p.err = err
	}
}

// AdapterTag returns the tag of the adapter of the object.
func (p *Payload[K]) AdapterTag() string { return p.adapterTag }

// Parent returns the payload of the object this one is related from, or nil.
func (p *Payload[K]) Parent() Parent { return p.parent }

// Allows reports whether field functions for key will run.
func (p *Payload[K]) Allows(key K) bool {
	return p.err == nil && p.keys.Contains(key)
}

// outermost reports whether no ancestor of p shares its adapter tag.
func outermost(p Parent) bool {
	tag := p.AdapterTag()
	for ancestor := p.Parent(); ancestor != nil; ancestor = ancestor.Parent() {
		if ancestor.AdapterTag() == tag {
			return false
		}
	}
	return true
}
