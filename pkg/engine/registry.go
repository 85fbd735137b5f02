// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/wavetermdev/guiml/pkg/inject"
	"github.com/wavetermdev/guiml/pkg/layout"
	"github.com/wavetermdev/guiml/pkg/markup"
	"github.com/wavetermdev/guiml/pkg/props"
	"github.com/wavetermdev/guiml/pkg/resource"
	"github.com/wavetermdev/guiml/pkg/utilds"
)

type ComponentOpts struct {
	Template resource.TemplateSource
	Style    resource.StyleSource
	Doc      string
}

// Descriptor binds a tag to its component type and resources.
type Descriptor struct {
	Tag       string
	New       func() Component
	Template  resource.TemplateSource
	Style     resource.StyleSource
	Doc       string
	PropsType reflect.Type
	DepsType  reflect.Type
}

// Registry is filled before the engine starts and frozen by NewEngine.
type Registry struct {
	components  map[string]*Descriptor
	layouts     *layout.Registry
	injectables *inject.Registry
	frozen      bool
}

// NewRegistry starts with the stack, align, grid and hflow layouts.
func NewRegistry() *Registry {
	return &Registry{
		components:  make(map[string]*Descriptor),
		layouts:     layout.DefaultRegistry(),
		injectables: inject.MakeRegistry(),
	}
}

func (r *Registry) Register(tag string, newFn func() Component, opts *ComponentOpts) error {
	if r.frozen {
		return utilds.SubErrorf(utilds.CodeRegistry, tag, "registry is frozen")
	}
	if tag == "" || newFn == nil {
		return utilds.Errorf(utilds.CodeRegistry, "component needs a tag and a constructor")
	}
	if _, ok := r.components[tag]; ok {
		return utilds.SubErrorf(utilds.CodeRegistry, tag, "component <%s> already registered", tag)
	}
	proto := newFn()
	if proto == nil {
		return utilds.SubErrorf(utilds.CodeRegistry, tag, "constructor for <%s> returned nil", tag)
	}
	desc := &Descriptor{Tag: tag, New: newFn, PropsType: proto.ownPropsType()}
	if _, err := props.SchemaOf(desc.PropsType); err != nil {
		return utilds.MakeSubCodedError(utilds.CodeRegistry, tag, err)
	}
	if deps, ok := inject.DepsOf(proto); ok {
		desc.DepsType = deps.Type()
		if _, err := inject.DepTypes(reflect.TypeOf(proto)); err != nil {
			return utilds.MakeSubCodedError(utilds.CodeRegistry, tag, err)
		}
	}
	if opts != nil {
		desc.Template = opts.Template
		desc.Style = opts.Style
		desc.Doc = opts.Doc
	}
	if idx, ok := desc.Template.(resource.Indexable); ok {
		idx.SetIndex(tag)
	}
	if idx, ok := desc.Style.(resource.Indexable); ok {
		idx.SetIndex(tag)
	}
	if raw, ok := desc.Template.(*resource.RawTemplate); ok {
		if err := checkTemplateRoot(tag, raw.Root()); err != nil {
			return err
		}
	}
	r.components[tag] = desc
	return nil
}

func checkTemplateRoot(tag string, root *markup.Node) error {
	if root == nil {
		return utilds.SubErrorf(utilds.CodeRegistry, tag, "empty template for <%s>", tag)
	}
	if root.Tag != tag {
		return utilds.SubErrorf(utilds.CodeRegistry, tag, "template root <%s> does not match <%s>", root.Tag, tag)
	}
	return nil
}

func (r *Registry) RegisterLayout(kind layout.Kind) error {
	if r.frozen {
		return utilds.SubErrorf(utilds.CodeRegistry, kind.Name, "registry is frozen")
	}
	return r.layouts.Register(kind)
}

// RegisterInjectable makes every occurrence of tag introduce an instance of
// the injectable to its subtree.
func (r *Registry) RegisterInjectable(tag string, d inject.Descriptor) error {
	if r.frozen {
		return utilds.SubErrorf(utilds.CodeRegistry, tag, "registry is frozen")
	}
	return r.injectables.Register(tag, d)
}

func (r *Registry) freeze() error {
	if r.frozen {
		return nil
	}
	r.frozen = true
	r.layouts.Freeze()
	return r.injectables.Freeze()
}

func (r *Registry) Get(tag string) (*Descriptor, bool) {
	desc, ok := r.components[tag]
	return desc, ok
}

func (r *Registry) Tags() []string {
	rtn := make([]string, 0, len(r.components))
	for tag := range r.components {
		rtn = append(rtn, tag)
	}
	sort.Strings(rtn)
	return rtn
}

func (r *Registry) Layouts() *layout.Registry {
	return r.layouts
}

func (r *Registry) Injectables(tag string) []inject.Descriptor {
	return r.injectables.For(tag)
}

// Describe lists the property fields a tag accepts, for "guiml describe".
func (r *Registry) Describe(tag string) ([]props.Field, error) {
	desc, ok := r.components[tag]
	if !ok {
		return nil, utilds.SubErrorf(utilds.CodeUnknownTag, tag, "unknown tag <%s>", tag)
	}
	var rtn []props.Field
	for _, t := range []reflect.Type{desc.PropsType, reflect.TypeFor[CommonProps]()} {
		schema, err := props.SchemaOf(t)
		if err != nil {
			return nil, err
		}
		rtn = append(rtn, schema.Fields...)
	}
	return rtn, nil
}

func (r *Registry) String() string {
	return fmt.Sprintf("engine.Registry(%d components, %d layouts)", len(r.components), len(r.layouts.Names()))
}
