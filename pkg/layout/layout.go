// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// Package layout implements the two-pass layout protocol. ComputeRecommendedSize
// runs children before parents and sizes a container from its children;
// Layout runs parents before children and places each child inside the
// container's content rectangle.
package layout

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/wavetermdev/guiml/pkg/geom"
	"github.com/wavetermdev/guiml/pkg/props"
	"github.com/wavetermdev/guiml/pkg/utilds"
)

// Box is a laid out component as its parent's layout sees it.
type Box interface {
	Width() float64
	Height() float64
	Position() geom.Rect
	SetPosition(pos geom.Rect)
}

type Container interface {
	Box
	// ContentPosition is the area children are placed in.
	ContentPosition() geom.Rect
	// WrapSize is the space between the position and the content area.
	WrapSize() geom.Rect
	// SizeFixed containers keep their position in the recommended-size pass.
	SizeFixed() bool
	// LayoutProps returns the container's record of the layout's Props type.
	LayoutProps() any
}

type Child interface {
	Box
	// ChildProps returns the child's record of its parent layout's ChildProps type.
	ChildProps() any
}

type Strategy interface {
	ComputeRecommendedSize(c Container, children []Child) error
	Layout(c Container, children []Child) error
}

// Kind registers a strategy under the name used by the "layout" property.
// Props are the fields the layout adds to the container, ChildProps the
// fields it adds to each child.
type Kind struct {
	Name       string
	Props      reflect.Type
	ChildProps reflect.Type
	New        func() Strategy
}

func MakeKind[P any, C any](name string, newFn func() Strategy) Kind {
	return Kind{Name: name, Props: reflect.TypeFor[P](), ChildProps: reflect.TypeFor[C](), New: newFn}
}

type Registry struct {
	kinds  map[string]Kind
	frozen bool
}

func MakeRegistry() *Registry {
	return &Registry{kinds: make(map[string]Kind)}
}

// DefaultRegistry holds stack, align, grid and hflow.
func DefaultRegistry() *Registry {
	r := MakeRegistry()
	for _, kind := range []Kind{StackKind, AlignKind, GridKind, HFlowKind} {
		if err := r.Register(kind); err != nil {
			panic(err)
		}
	}
	return r
}

func (r *Registry) Register(kind Kind) error {
	if r.frozen {
		return utilds.SubErrorf(utilds.CodeRegistry, kind.Name, "layout registry is frozen")
	}
	if kind.Name == "" || kind.New == nil {
		return utilds.Errorf(utilds.CodeRegistry, "layout kind needs a name and a constructor")
	}
	if _, ok := r.kinds[kind.Name]; ok {
		return utilds.SubErrorf(utilds.CodeRegistry, kind.Name, "layout %q already registered", kind.Name)
	}
	for _, t := range []reflect.Type{kind.Props, kind.ChildProps} {
		if _, err := props.SchemaOf(t); err != nil {
			return utilds.MakeSubCodedError(utilds.CodeRegistry, kind.Name, err)
		}
	}
	r.kinds[kind.Name] = kind
	return nil
}

func (r *Registry) Freeze() {
	r.frozen = true
}

func (r *Registry) Get(name string) (Kind, bool) {
	kind, ok := r.kinds[name]
	return kind, ok
}

func (r *Registry) Names() []string {
	rtn := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		rtn = append(rtn, name)
	}
	sort.Strings(rtn)
	return rtn
}

// propsAs returns v as *T, or a record holding T's defaults.
func propsAs[T any](v any) *T {
	if p, ok := v.(*T); ok && p != nil {
		return p
	}
	schema, err := props.SchemaFor[T]()
	if err == nil {
		if rtn, err := schema.New(); err == nil {
			return rtn.(*T)
		}
	}
	return new(T)
}

func layoutErr(kind string, format string, args ...any) error {
	return utilds.SubErrorf(utilds.CodeLayout, kind, "%s layout: %s", kind, fmt.Sprintf(format, args...))
}

// recommend sets c's position to a w x h content size plus its wrap size,
// anchored at the origin; the parent's layout pass moves it into place.
func recommend(c Container, w float64, h float64) {
	wrap := c.WrapSize()
	c.SetPosition(geom.Rect{}.WithWidth(w + wrap.Left + wrap.Right).WithHeight(h + wrap.Top + wrap.Bottom))
}
