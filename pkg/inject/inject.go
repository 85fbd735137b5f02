// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// Package inject builds per-tag service layers. An injectable (or component)
// declares what it needs through an exported Deps struct field; every
// exported field of Deps is filled with the nearest instance of the field's
// type found in the scope.
package inject

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/wavetermdev/guiml/pkg/panichandler"
	"github.com/wavetermdev/guiml/pkg/utilds"
)

const DepsFieldName = "Deps"

// Initer is run once, synchronously, after the dependencies are filled.
type Initer interface {
	OnInit() error
}

type Destroyer interface {
	OnDestroy()
}

// Descriptor describes one injectable type. Type must be a pointer type.
type Descriptor struct {
	Type     reflect.Type
	Provides []reflect.Type
	New      func() any
}

// Injectable makes a Descriptor for T. The instance is also registered
// under each of the provides types, which T must implement.
func Injectable[T any](newFn func() T, provides ...reflect.Type) Descriptor {
	return Descriptor{
		Type:     reflect.TypeFor[T](),
		Provides: provides,
		New:      func() any { return newFn() },
	}
}

func (d Descriptor) Name() string {
	return typeName(d.Type)
}

func (d Descriptor) Validate() error {
	if d.Type == nil || d.New == nil {
		return fmt.Errorf("injectable descriptor needs a type and a constructor")
	}
	if d.Type.Kind() != reflect.Pointer {
		return fmt.Errorf("injectable %s must be a pointer type", d.Name())
	}
	for _, t := range d.Provides {
		if t.Kind() != reflect.Interface || !d.Type.Implements(t) {
			return fmt.Errorf("injectable %s does not implement %s", d.Name(), typeName(t))
		}
	}
	if _, err := DepTypes(d.Type); err != nil {
		return err
	}
	return nil
}

type depField struct {
	index    []int
	typ      reflect.Type
	name     string
	optional bool
}

// DepTypes lists the dependency types a (pointer to) struct type declares.
func DepTypes(t reflect.Type) ([]reflect.Type, error) {
	fields, err := depFields(t)
	if err != nil {
		return nil, err
	}
	rtn := make([]reflect.Type, len(fields))
	for i, f := range fields {
		rtn[i] = f.typ
	}
	return rtn, nil
}

func depFields(t reflect.Type) ([]depField, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, nil
	}
	sf, ok := t.FieldByName(DepsFieldName)
	if !ok {
		return nil, nil
	}
	return depFieldsOf(sf.Type)
}

func depFieldsOf(t reflect.Type) ([]depField, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%s must be a struct, got %s", DepsFieldName, t)
	}
	var rtn []depField
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		if f.Type.Kind() != reflect.Pointer && f.Type.Kind() != reflect.Interface {
			return nil, fmt.Errorf("dependency %s.%s must be a pointer or interface, got %s", t.Name(), f.Name, f.Type)
		}
		rtn = append(rtn, depField{
			index:    f.Index,
			typ:      f.Type,
			name:     f.Name,
			optional: f.Tag.Get("inject") == "optional",
		})
	}
	return rtn, nil
}

// DepsOf returns the addressable Deps field of a pointer to struct.
func DepsOf(target any) (reflect.Value, bool) {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	fv := rv.Elem().FieldByName(DepsFieldName)
	if !fv.IsValid() || !fv.CanSet() {
		return reflect.Value{}, false
	}
	return fv, true
}

// Fill sets every field of target's Deps struct from scope. owner names
// the requester in errors.
func Fill(target any, scope *Scope, owner string) error {
	deps, ok := DepsOf(target)
	if !ok {
		return nil
	}
	return FillValue(deps, scope, owner)
}

// FillValue fills an addressable struct value whose fields are dependencies.
func FillValue(deps reflect.Value, scope *Scope, owner string) error {
	fields, err := depFieldsOf(deps.Type())
	if err != nil {
		return err
	}
	for _, f := range fields {
		val, ok := scope.Lookup(f.typ)
		if !ok {
			if f.optional {
				continue
			}
			return utilds.SubErrorf(utilds.CodeMissingDependency, owner,
				"%s: no %s in scope for dependency %s", owner, typeName(f.typ), f.name)
		}
		deps.FieldByIndex(f.index).Set(reflect.ValueOf(val))
	}
	return nil
}

const (
	unvisited = iota
	visiting
	visited
)

type dfsFrame struct {
	node int
	next int
}

// Order sorts descriptors so every injectable comes after the injectables
// (among descs) it depends on. Dependencies outside descs are ignored here
// and resolved from the enclosing scope. A cycle is a CodeCyclicDependency
// error.
func Order(tag string, descs []Descriptor) ([]Descriptor, error) {
	byType := make(map[reflect.Type]int)
	for i, d := range descs {
		if _, dup := byType[d.Type]; dup {
			return nil, utilds.SubErrorf(utilds.CodeRegistry, tag, "injectable %s registered twice for <%s>", d.Name(), tag)
		}
		byType[d.Type] = i
		for _, t := range d.Provides {
			byType[t] = i
		}
	}
	edges := make([][]int, len(descs))
	for i, d := range descs {
		depTypes, err := DepTypes(d.Type)
		if err != nil {
			return nil, err
		}
		for _, t := range depTypes {
			if j, ok := byType[t]; ok {
				edges[i] = append(edges[i], j)
			}
		}
	}

	state := make([]int, len(descs))
	rtn := make([]Descriptor, 0, len(descs))
	for start := range descs {
		if state[start] != unvisited {
			continue
		}
		stack := arraystack.New()
		stack.Push(&dfsFrame{node: start})
		state[start] = visiting
		for !stack.Empty() {
			top, _ := stack.Peek()
			frame := top.(*dfsFrame)
			if frame.next < len(edges[frame.node]) {
				child := edges[frame.node][frame.next]
				frame.next++
				switch state[child] {
				case visiting:
					return nil, cycleError(tag, descs, stack, child)
				case unvisited:
					state[child] = visiting
					stack.Push(&dfsFrame{node: child})
				}
				continue
			}
			stack.Pop()
			state[frame.node] = visited
			rtn = append(rtn, descs[frame.node])
		}
	}
	return rtn, nil
}

func cycleError(tag string, descs []Descriptor, stack *arraystack.Stack, back int) error {
	// arraystack values are top first
	var path []string
	for _, v := range stack.Values() {
		node := v.(*dfsFrame).node
		path = append([]string{descs[node].Name()}, path...)
		if node == back {
			break
		}
	}
	path = append(path, descs[back].Name())
	return utilds.SubErrorf(utilds.CodeCyclicDependency, tag, "cyclic dependency in <%s>: %s", tag, strings.Join(path, " -> "))
}

// Resolve constructs the injectables a tag introduces, in dependency order,
// and returns them as a new layer. Each one sees the layer under
// construction on top of scope. If anything fails the already constructed
// injectables are destroyed.
func Resolve(tag string, descs []Descriptor, scope *Scope) (*Layer, error) {
	ordered, err := Order(tag, descs)
	if err != nil {
		return nil, err
	}
	layer := NewLayer(tag)
	inner := scope.Push(layer)
	for _, d := range ordered {
		inst, err := construct(d, inner)
		if err != nil {
			layer.Destroy()
			return nil, fmt.Errorf("<%s> injectable %s: %w", tag, d.Name(), err)
		}
		layer.Provide(inst, d.Provides...)
	}
	return layer, nil
}

func construct(d Descriptor, scope *Scope) (rtn any, rtnErr error) {
	err := panichandler.Guard("inject:"+d.Name(), func() error {
		inst := d.New()
		if inst == nil || reflect.TypeOf(inst) != d.Type {
			return fmt.Errorf("constructor returned %T", inst)
		}
		if err := Fill(inst, scope, d.Name()); err != nil {
			return err
		}
		if initer, ok := inst.(Initer); ok {
			if err := initer.OnInit(); err != nil {
				return err
			}
		}
		rtn = inst
		return nil
	})
	return rtn, err
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t.Kind() == reflect.Pointer {
		return t.Elem().Name()
	}
	return t.Name()
}
