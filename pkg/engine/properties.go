// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/wavetermdev/guiml/pkg/expr"
	"github.com/wavetermdev/guiml/pkg/geom"
	"github.com/wavetermdev/guiml/pkg/markup"
	"github.com/wavetermdev/guiml/pkg/props"
	"github.com/wavetermdev/guiml/pkg/style"
	"github.com/wavetermdev/guiml/pkg/transform"
	"github.com/wavetermdev/guiml/pkg/utilds"
)

// CommonProps apply to every component.
type CommonProps struct {
	// bounding box, set by the parent's layout
	Position        geom.Rect  `json:"position"`
	Layout          string     `json:"layout"`
	ZIndex          int        `json:"z_index"`
	DrawBoundingBox bool       `json:"draw_bounding_box"`
	BoundingBox     geom.Color `json:"bounding_box_color" default:"#ff0000"`
}

// Properties is rebuilt from style and attributes every frame. It is made
// of up to four records: common fields, the component's own fields, the
// fields of its layout, and the child fields of its parent's layout.
type Properties struct {
	Common  *CommonProps
	Own     any
	Layout  any
	Child   any
	Classes []string

	bindings map[string]*transform.Binding
}

func (p *Properties) parts() []any {
	rtn := make([]any, 0, 4)
	for _, part := range []any{p.Own, p.Common, p.Layout, p.Child} {
		if part != nil {
			rtn = append(rtn, part)
		}
	}
	return rtn
}

func partSchema(part any) *props.Schema {
	schema, err := props.SchemaOf(reflect.TypeOf(part))
	if err != nil {
		return nil
	}
	return schema
}

// Has reports whether any record has a property called name.
func (p *Properties) Has(name string) bool {
	for _, part := range p.parts() {
		if schema := partSchema(part); schema != nil && schema.Has(name) {
			return true
		}
	}
	return false
}

func (p *Properties) Get(name string) (any, bool) {
	for _, part := range p.parts() {
		schema := partSchema(part)
		if schema == nil {
			continue
		}
		f, ok := schema.Field(name)
		if !ok {
			continue
		}
		return reflect.ValueOf(part).Elem().FieldByIndex(f.Index).Interface(), true
	}
	return nil, false
}

// Set assigns a property and, if it is bound, writes the value back through
// the binding.
func (p *Properties) Set(name string, val any) error {
	for _, part := range p.parts() {
		schema := partSchema(part)
		if schema == nil || !schema.Has(name) {
			continue
		}
		if err := expr.SetAttr(part, name, val); err != nil {
			return utilds.MakeCodedError(utilds.CodeConversion, err)
		}
		if b, ok := p.bindings[name]; ok {
			return b.Set(val)
		}
		return nil
	}
	return fmt.Errorf("unknown property %q", name)
}

func (p *Properties) Bound(name string) bool {
	_, ok := p.bindings[name]
	return ok
}

// skipped attributes are consumed by the engine or the passes, not properties
func skipAttr(key string) bool {
	switch key {
	case markup.AttrClass, markup.AttrId, markup.AttrControl, markup.AttrPersistance:
		return true
	}
	return strings.HasPrefix(key, markup.PrefixClassCond) ||
		strings.HasPrefix(key, markup.PrefixPy) ||
		strings.HasPrefix(key, markup.PrefixBind) ||
		strings.HasPrefix(key, markup.PrefixClass)
}

// styleTarget returns what selectors match the node against.
func styleTarget(node *markup.Node, dynamic []string) (style.Target, error) {
	classes, err := transform.Classes(node)
	classes = append(classes, dynamic...)
	return style.Target{Tag: node.Tag, Classes: classes, Id: node.GetString(markup.AttrId)}, err
}

// collect merges style and attribute data for a node. Precedence, lowest
// first: the tag's own style, the global style, the style of the component
// whose template created the node, inline attributes.
func (e *Engine) collect(node *markup.Node, target style.Target) (map[string]any, map[string]*transform.Binding, error) {
	data := map[string]any{}
	var errs []error
	sheet, err := e.sheetFor(node.Tag)
	if err != nil {
		errs = append(errs, err)
	}
	data = style.MergeMaps(data, sheet.Collect(target))
	if e.global != nil {
		data = style.MergeMaps(data, e.global.Collect(target))
	}
	if node.Creator != "" && node.Creator != node.Tag {
		creator, err := e.sheetFor(node.Creator)
		if err != nil {
			errs = append(errs, err)
		}
		data = style.MergeMaps(data, creator.Collect(target))
	}
	var bindings map[string]*transform.Binding
	attrs := map[string]any{}
	for _, attr := range node.Attrs {
		if skipAttr(attr.Key) {
			continue
		}
		if b, ok := attr.Val.(*transform.Binding); ok {
			val, err := b.Get()
			if err != nil {
				errs = append(errs, fmt.Errorf("binding %s: %w", attr.Key, err))
				continue
			}
			if bindings == nil {
				bindings = make(map[string]*transform.Binding)
			}
			bindings[attr.Key] = b
			attrs[attr.Key] = val
			continue
		}
		attrs[attr.Key] = attr.Val
	}
	data = style.MergeMaps(data, attrs)
	return data, bindings, errors.Join(errs...)
}

// buildProperties structures data into the records for a component of
// ownType whose parent container uses parentLayout.
func (e *Engine) buildProperties(tag string, ownType reflect.Type, data map[string]any, parentLayout string) (*Properties, error) {
	rtn := &Properties{}
	common, err := props.Structure[CommonProps](data)
	if err != nil {
		return nil, err
	}
	rtn.Common = common
	if ownType != nil {
		schema, err := props.SchemaOf(ownType)
		if err != nil {
			return nil, err
		}
		if rtn.Own, err = schema.Structure(data); err != nil {
			return nil, err
		}
	}
	if common.Layout != "" {
		kind, ok := e.registry.layouts.Get(common.Layout)
		if !ok {
			return nil, utilds.SubErrorf(utilds.CodeLayout, tag, "<%s>: unknown layout %q", tag, common.Layout)
		}
		if rtn.Layout, err = structureType(kind.Props, data); err != nil {
			return nil, err
		}
	}
	if parentLayout != "" {
		if kind, ok := e.registry.layouts.Get(parentLayout); ok {
			if rtn.Child, err = structureType(kind.ChildProps, data); err != nil {
				return nil, err
			}
		}
	}
	return rtn, nil
}

func structureType(t reflect.Type, data map[string]any) (any, error) {
	schema, err := props.SchemaOf(t)
	if err != nil {
		return nil, err
	}
	return schema.Structure(data)
}
