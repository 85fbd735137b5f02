// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// Package transform rewrites markup trees before reconciliation. Every pass
// is idempotent: applying it to its own output changes nothing.
package transform

import (
	"errors"

	"github.com/wavetermdev/guiml/pkg/expr"
	"github.com/wavetermdev/guiml/pkg/markup"
)

// Templates gives the passes access to the registered component templates.
// ok is false for tags without a template.
type Templates interface {
	Template(tag string) (tmpl *markup.Node, changed bool, ok bool, err error)
	HasStyle(tag string) bool
}

// Context is what a pass knows about the node it is applied to.
type Context struct {
	// Self is the live component of the node (nil when the tag has none).
	Self      any
	Templates Templates
	Eval      *expr.Evaluator
}

func (ctx *Context) evaluator() *expr.Evaluator {
	if ctx == nil || ctx.Eval == nil {
		return expr.Default
	}
	return ctx.Eval
}

func (ctx *Context) template(tag string) (*markup.Node, bool, bool, error) {
	if ctx == nil || ctx.Templates == nil {
		return nil, false, false, nil
	}
	return ctx.Templates.Template(tag)
}

type Pass interface {
	Name() string
	// Apply rewrites node in place and reports whether it changed anything.
	Apply(node *markup.Node, ctx *Context) (bool, error)
}

type Pipeline struct {
	passes []Pass
}

func MakePipeline(passes ...Pass) *Pipeline {
	return &Pipeline{passes: passes}
}

// DefaultPipeline expands templates, then control flow, then text.
func DefaultPipeline() *Pipeline {
	return MakePipeline(TemplatePass{}, ControlPass{}, TextPass{})
}

func (p *Pipeline) Passes() []Pass {
	return p.passes
}

// Apply runs every pass once on node. A failing pass does not stop the
// later ones; the errors are joined.
func (p *Pipeline) Apply(node *markup.Node, ctx *Context) (bool, error) {
	changed := false
	var errs []error
	for _, pass := range p.passes {
		c, err := pass.Apply(node, ctx)
		if err != nil {
			errs = append(errs, err)
		}
		changed = changed || c
	}
	return changed, errors.Join(errs...)
}

// ApplyTree runs the pipeline over root and its descendants in pre-order,
// so children produced by a node's template and control flow are visited
// too. ctxFn supplies the context per node and may return nil.
func (p *Pipeline) ApplyTree(root *markup.Node, ctxFn func(node *markup.Node) *Context) (bool, error) {
	changed := false
	var errs []error
	var visit func(node *markup.Node)
	visit = func(node *markup.Node) {
		var ctx *Context
		if ctxFn != nil {
			ctx = ctxFn(node)
		}
		c, err := p.Apply(node, ctx)
		if err != nil {
			errs = append(errs, err)
		}
		changed = changed || c
		for _, child := range node.Children {
			visit(child)
		}
	}
	visit(root)
	return changed, errors.Join(errs...)
}
