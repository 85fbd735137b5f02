// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package transform

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wavetermdev/guiml/pkg/expr"
	"github.com/wavetermdev/guiml/pkg/markup"
	"github.com/wavetermdev/guiml/pkg/utilds"
)

// ControlPass evaluates the template content of a component against the
// component ("self"). Children carrying control="if ..." are kept only when
// the condition holds; control="for ..." repeats the child once per item.
// Below the component, attribute prefixes are resolved:
//
//	py_name="expr"     name = value of expr
//	on_name="expr"     on_name = value of expr (usually a callable)
//	bind_name="expr"   name = two-way *Binding
//	class_name="expr"  style class name while expr is truthy
//
// The component's own attributes are left alone; they belong to the scope
// that instantiated it.
type ControlPass struct{}

func (ControlPass) Name() string {
	return "control"
}

func (ControlPass) Apply(node *markup.Node, ctx *Context) (bool, error) {
	_, _, ok, err := ctx.template(node.Tag)
	if err != nil || !ok {
		return false, nil
	}
	ct := &controlTransformer{eval: ctx.evaluator()}
	scope := expr.NewScope(map[string]any{"self": ctx.Self})
	node.Children = ct.children(node, scope)
	return ct.changed, errors.Join(ct.errs...)
}

type controlTransformer struct {
	eval    *expr.Evaluator
	changed bool
	errs    []error
}

func (ct *controlTransformer) fail(node *markup.Node, err error) {
	ct.errs = append(ct.errs, fmt.Errorf("<%s>: %w", node.Tag, err))
}

func (ct *controlTransformer) children(node *markup.Node, scope *expr.Scope) []*markup.Node {
	if len(node.Children) == 0 {
		return node.Children
	}
	rtn := make([]*markup.Node, 0, len(node.Children))
	for _, child := range node.Children {
		ctrlVal, hasCtrl := child.Get(markup.AttrControl)
		if !hasCtrl {
			ct.transform(child, scope)
			rtn = append(rtn, child)
			continue
		}
		ct.changed = true
		child.Delete(markup.AttrControl)
		control, isStr := ctrlVal.(string)
		if !isStr {
			ct.fail(child, utilds.Errorf(utilds.CodeExpr, "control must be a string, got %T", ctrlVal))
			continue
		}
		control = strings.TrimSpace(control)
		switch {
		case control == "if" || strings.HasPrefix(control, "if "):
			show, err := ct.eval.EvalBool(strings.TrimPrefix(control, "if"), scope)
			if err != nil {
				ct.fail(child, err)
				continue
			}
			if show {
				ct.transform(child, scope)
				rtn = append(rtn, child)
			}
		case strings.HasPrefix(control, "for "):
			scopes, err := ct.eval.ForEach(control, scope)
			if err != nil {
				ct.fail(child, err)
				continue
			}
			for _, itemScope := range scopes {
				dup := child.DeepCopy()
				ct.transform(dup, itemScope)
				rtn = append(rtn, dup)
			}
		default:
			ct.fail(child, utilds.Errorf(utilds.CodeExpr, "unknown control %q", control))
		}
	}
	return rtn
}

func (ct *controlTransformer) transform(node *markup.Node, scope *expr.Scope) {
	ct.attributes(node, scope)
	node.Children = ct.children(node, scope)
}

func (ct *controlTransformer) attributes(node *markup.Node, scope *expr.Scope) {
	for _, key := range node.Keys() {
		val, _ := node.Get(key)
		src, isStr := val.(string)
		if !isStr {
			continue
		}
		switch {
		case strings.HasPrefix(key, markup.PrefixPy):
			ct.changed = true
			node.Delete(key)
			newVal, err := ct.eval.Eval(src, scope)
			if err != nil {
				ct.fail(node, fmt.Errorf("%s: %w", key, err))
				continue
			}
			node.Set(strings.TrimPrefix(key, markup.PrefixPy), newVal)
		case strings.HasPrefix(key, markup.PrefixOn):
			ct.changed = true
			newVal, err := ct.eval.Eval(src, scope)
			if err != nil {
				node.Delete(key)
				ct.fail(node, fmt.Errorf("%s: %w", key, err))
				continue
			}
			node.Set(key, newVal)
		case strings.HasPrefix(key, markup.PrefixBind):
			ct.changed = true
			node.Delete(key)
			if _, err := ct.eval.Compile(src); err != nil {
				ct.fail(node, fmt.Errorf("%s: %w", key, err))
				continue
			}
			node.Set(strings.TrimPrefix(key, markup.PrefixBind), NewBinding(ct.eval, src, scope))
		case strings.HasPrefix(key, markup.PrefixClass):
			ct.changed = true
			node.Delete(key)
			class := strings.TrimPrefix(key, markup.PrefixClass)
			node.Set(markup.PrefixClassCond+class, &ClassCondition{Class: class, Expr: src, eval: ct.eval, scope: scope})
		}
	}
}
