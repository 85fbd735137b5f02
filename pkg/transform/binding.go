// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package transform

import (
	"sort"
	"strings"

	"github.com/wavetermdev/guiml/pkg/expr"
	"github.com/wavetermdev/guiml/pkg/markup"
)

// Binding is a two-way connection between a property and an assignable
// expression in the scope that created the node.
type Binding struct {
	Expr  string
	eval  *expr.Evaluator
	scope *expr.Scope
}

func NewBinding(ev *expr.Evaluator, src string, scope *expr.Scope) *Binding {
	return &Binding{Expr: src, eval: ev, scope: scope}
}

func (b *Binding) Get() (any, error) {
	return b.eval.Eval(b.Expr, b.scope)
}

func (b *Binding) Set(val any) error {
	return b.eval.Assign(b.Expr, b.scope, val)
}

func (b *Binding) String() string {
	return "bind(" + b.Expr + ")"
}

// ClassCondition adds a style class while its expression is truthy.
type ClassCondition struct {
	Class string
	Expr  string
	eval  *expr.Evaluator
	scope *expr.Scope
}

func (c *ClassCondition) Active() (bool, error) {
	return c.eval.EvalBool(c.Expr, c.scope)
}

// Classes returns the node's static classes followed by the conditional
// classes that are currently active, without duplicates.
func Classes(node *markup.Node) ([]string, error) {
	var rtn []string
	seen := make(map[string]bool)
	for _, class := range node.Classes() {
		if !seen[class] {
			seen[class] = true
			rtn = append(rtn, class)
		}
	}
	var conds []*ClassCondition
	for _, attr := range node.Attrs {
		if !strings.HasPrefix(attr.Key, markup.PrefixClassCond) {
			continue
		}
		if cond, ok := attr.Val.(*ClassCondition); ok {
			conds = append(conds, cond)
		}
	}
	sort.SliceStable(conds, func(i, j int) bool { return conds[i].Class < conds[j].Class })
	for _, cond := range conds {
		active, err := cond.Active()
		if err != nil {
			return rtn, err
		}
		if active && !seen[cond.Class] {
			seen[cond.Class] = true
			rtn = append(rtn, cond.Class)
		}
	}
	return rtn, nil
}
