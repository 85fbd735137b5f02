// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"reflect"

	"github.com/emirpasic/gods/sets/linkedhashset"
	"github.com/wavetermdev/guiml/pkg/draw"
	"github.com/wavetermdev/guiml/pkg/geom"
	"github.com/wavetermdev/guiml/pkg/inject"
	"github.com/wavetermdev/guiml/pkg/observable"
)

// Component is implemented by embedding Of[P, D] in a struct:
//
//	type Button struct {
//		engine.Of[ButtonProps, ButtonDeps]
//	}
//
// P holds the tag's own properties, D its dependencies (pointer or
// interface fields, filled from the injectable scope once at construction).
type Component interface {
	base() *Base
	ownPropsType() reflect.Type
	setOwnProps(p any)
}

// optional component hooks

type Initer interface {
	OnInit() error
}

type Destroyer interface {
	OnDestroy()
}

type Drawer interface {
	OnDraw(s draw.Surface)
}

// PropsUpdater runs after every rebuild of the component's properties.
type PropsUpdater interface {
	OnPropsUpdated()
}

// Sizer reports an intrinsic size; components without one are as large as
// their position.
type Sizer interface {
	Width() float64
	Height() float64
}

type ContentPositioner interface {
	ContentPosition() geom.Rect
}

type WrapSizer interface {
	WrapSize() geom.Rect
}

type SizeFixer interface {
	SizeFixed() bool
}

type NoProps struct{}

type NoDeps struct{}

// Of carries the typed properties and dependencies of a component.
type Of[P any, D any] struct {
	Base
	Props *P
	Deps  D
}

func (o *Of[P, D]) ownPropsType() reflect.Type {
	return reflect.TypeFor[P]()
}

func (o *Of[P, D]) setOwnProps(p any) {
	o.Props = p.(*P)
}

// Base is the framework-managed part of every component.
type Base struct {
	tag      string
	id       string
	depth    int
	props    *Properties
	subs     observable.Group
	classes  *linkedhashset.Set
	scope    *inject.Scope
	engine   *Engine
	order    int
	realized bool
}

func (b *Base) base() *Base {
	return b
}

func (b *Base) Tag() string {
	return b.tag
}

// Id is the identity of the persisted node holding this component.
func (b *Base) Id() string {
	return b.id
}

// Depth is the number of component ancestors.
func (b *Base) Depth() int {
	return b.depth
}

func (b *Base) Properties() *Properties {
	return b.props
}

func (b *Base) Common() *CommonProps {
	if b.props == nil {
		return &CommonProps{}
	}
	return b.props.Common
}

func (b *Base) Position() geom.Rect {
	return b.Common().Position
}

func (b *Base) SetPosition(pos geom.Rect) {
	if b.props != nil {
		b.props.Common.Position = pos
	}
}

// Scope is the injectable scope visible to the component and its descendants.
func (b *Base) Scope() *inject.Scope {
	return b.scope
}

// Track ties a subscription to the component's lifetime.
func (b *Base) Track(sub observable.Subscription) observable.Subscription {
	return b.subs.Add(sub)
}

// AddClass adds a dynamic style class. It applies from the next frame on.
func (b *Base) AddClass(class string) {
	if b.classes == nil {
		b.classes = linkedhashset.New()
	}
	b.classes.Add(class)
}

func (b *Base) RemoveClass(class string) {
	if b.classes != nil {
		b.classes.Remove(class)
	}
}

func (b *Base) HasClass(class string) bool {
	return b.classes != nil && b.classes.Contains(class)
}

func (b *Base) SetClass(class string, on bool) {
	if on {
		b.AddClass(class)
	} else {
		b.RemoveClass(class)
	}
}

func (b *Base) dynamicClasses() []string {
	if b.classes == nil {
		return nil
	}
	rtn := make([]string, 0, b.classes.Size())
	for _, v := range b.classes.Values() {
		rtn = append(rtn, v.(string))
	}
	return rtn
}

// Update sets a property and writes it through a two-way binding when the
// property is bound.
func (b *Base) Update(name string, val any) error {
	if b.props == nil {
		return nil
	}
	return b.props.Set(name, val)
}

// GetAttr exposes properties to markup expressions ("self.text").
func (b *Base) GetAttr(name string) (any, bool) {
	if b.props == nil {
		return nil, false
	}
	return b.props.Get(name)
}

func (b *Base) SetAttr(name string, val any) (bool, error) {
	if b.props == nil || !b.props.Has(name) {
		return false, nil
	}
	return true, b.props.Set(name, val)
}

// Realized reports whether the component took part in the latest layout pass.
func (b *Base) Realized() bool {
	return b.realized
}

// Engine returns the engine the component lives in.
func (b *Base) Engine() *Engine {
	return b.engine
}
