// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package inject

import (
	"reflect"
)

// Layer maps types to the instances one tag occurrence introduced.
type Layer struct {
	Tag    string
	values map[reflect.Type]any
	// construction order, used for reverse-order destruction
	order []any
}

func NewLayer(tag string) *Layer {
	return &Layer{Tag: tag, values: make(map[reflect.Type]any)}
}

// Provide registers an externally created value under its own type and
// under each of the given (usually interface) types.
func (l *Layer) Provide(val any, as ...reflect.Type) {
	l.values[reflect.TypeOf(val)] = val
	for _, t := range as {
		l.values[t] = val
	}
	l.order = append(l.order, val)
}

func (l *Layer) Get(t reflect.Type) (any, bool) {
	val, ok := l.values[t]
	return val, ok
}

func (l *Layer) Len() int {
	return len(l.order)
}

// Values returns the layer's instances in construction order.
func (l *Layer) Values() []any {
	return append([]any(nil), l.order...)
}

// Destroy runs the destroy hooks in reverse construction order.
func (l *Layer) Destroy() {
	for i := len(l.order) - 1; i >= 0; i-- {
		if d, ok := l.order[i].(Destroyer); ok {
			d.OnDestroy()
		}
	}
	l.order = nil
	l.values = map[reflect.Type]any{}
}

// Scope is a stack of layers. Lookups go innermost to outermost. Push
// returns a new scope, so a scope held by an ancestor never sees its
// descendants' layers.
type Scope struct {
	layers []*Layer
}

func NewScope(layers ...*Layer) *Scope {
	return &Scope{layers: layers}
}

func (s *Scope) Push(l *Layer) *Scope {
	if s == nil {
		return &Scope{layers: []*Layer{l}}
	}
	layers := make([]*Layer, len(s.layers), len(s.layers)+1)
	copy(layers, s.layers)
	return &Scope{layers: append(layers, l)}
}

func (s *Scope) Depth() int {
	if s == nil {
		return 0
	}
	return len(s.layers)
}

func (s *Scope) Lookup(t reflect.Type) (any, bool) {
	if s == nil {
		return nil, false
	}
	for i := len(s.layers) - 1; i >= 0; i-- {
		if val, ok := s.layers[i].Get(t); ok {
			return val, true
		}
	}
	return nil, false
}

// Get looks up a value by its static type, e.g. Get[*Canvas](scope) or
// Get[Host](scope) for an interface.
func Get[T any](s *Scope) (T, bool) {
	var zero T
	val, ok := s.Lookup(reflect.TypeFor[T]())
	if !ok {
		return zero, false
	}
	rtn, ok := val.(T)
	return rtn, ok
}
