// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package expr

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

func (e *Evaluator) eval(node hclsyntax.Expression, scope *Scope) (any, error) {
	switch x := node.(type) {
	case *hclsyntax.LiteralValueExpr:
		return ctyToGo(x.Val)
	case *hclsyntax.ScopeTraversalExpr:
		return e.traverse(nil, x.Traversal, scope, true)
	case *hclsyntax.RelativeTraversalExpr:
		src, err := e.eval(x.Source, scope)
		if err != nil {
			return nil, err
		}
		return e.traverse(src, x.Traversal, scope, false)
	case *hclsyntax.ParenthesesExpr:
		return e.eval(x.Expression, scope)
	case *hclsyntax.TemplateWrapExpr:
		return e.eval(x.Wrapped, scope)
	case *hclsyntax.TemplateExpr:
		var sb strings.Builder
		for _, part := range x.Parts {
			val, err := e.eval(part, scope)
			if err != nil {
				return nil, err
			}
			if val != nil {
				sb.WriteString(fmt.Sprint(val))
			}
		}
		return sb.String(), nil
	case *hclsyntax.ConditionalExpr:
		cond, err := e.eval(x.Condition, scope)
		if err != nil {
			return nil, err
		}
		if Truthy(cond) {
			return e.eval(x.TrueResult, scope)
		}
		return e.eval(x.FalseResult, scope)
	case *hclsyntax.UnaryOpExpr:
		val, err := e.eval(x.Val, scope)
		if err != nil {
			return nil, err
		}
		return unaryOp(x.Op, val)
	case *hclsyntax.BinaryOpExpr:
		return e.evalBinary(x, scope)
	case *hclsyntax.IndexExpr:
		coll, err := e.eval(x.Collection, scope)
		if err != nil {
			return nil, err
		}
		key, err := e.eval(x.Key, scope)
		if err != nil {
			return nil, err
		}
		return Index(coll, key)
	case *hclsyntax.TupleConsExpr:
		rtn := make([]any, 0, len(x.Exprs))
		for _, item := range x.Exprs {
			val, err := e.eval(item, scope)
			if err != nil {
				return nil, err
			}
			rtn = append(rtn, val)
		}
		return rtn, nil
	case *hclsyntax.ObjectConsExpr:
		rtn := make(map[string]any, len(x.Items))
		for _, item := range x.Items {
			key := hcl.ExprAsKeyword(item.KeyExpr)
			if key == "" {
				keyVal, err := e.eval(item.KeyExpr, scope)
				if err != nil {
					return nil, err
				}
				key = fmt.Sprint(keyVal)
			}
			val, err := e.eval(item.ValueExpr, scope)
			if err != nil {
				return nil, err
			}
			rtn[key] = val
		}
		return rtn, nil
	case *hclsyntax.ObjectConsKeyExpr:
		return e.eval(x.Wrapped, scope)
	case *hclsyntax.FunctionCallExpr:
		return e.evalCall(x, scope)
	}
	return nil, fmt.Errorf("unsupported expression %T", node)
}

func (e *Evaluator) evalBinary(x *hclsyntax.BinaryOpExpr, scope *Scope) (any, error) {
	lhs, err := e.eval(x.LHS, scope)
	if err != nil {
		return nil, err
	}
	// short circuit
	switch x.Op {
	case hclsyntax.OpLogicalAnd:
		if !Truthy(lhs) {
			return false, nil
		}
		rhs, err := e.eval(x.RHS, scope)
		if err != nil {
			return nil, err
		}
		return Truthy(rhs), nil
	case hclsyntax.OpLogicalOr:
		if Truthy(lhs) {
			return true, nil
		}
		rhs, err := e.eval(x.RHS, scope)
		if err != nil {
			return nil, err
		}
		return Truthy(rhs), nil
	}
	rhs, err := e.eval(x.RHS, scope)
	if err != nil {
		return nil, err
	}
	return binaryOp(x.Op, lhs, rhs)
}

func (e *Evaluator) evalCall(x *hclsyntax.FunctionCallExpr, scope *Scope) (any, error) {
	args := make([]any, 0, len(x.Args))
	for _, argExpr := range x.Args {
		val, err := e.eval(argExpr, scope)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}
	if x.ExpandFinal && len(args) > 0 {
		last := args[len(args)-1]
		args = args[:len(args)-1]
		items, err := iterate(last)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			args = append(args, item.Value)
		}
	}
	// variables holding functions shadow builtins
	if fnVal, ok := scope.Lookup(x.Name); ok {
		return CallValue(fnVal, args...)
	}
	fn, ok := e.funcs[x.Name]
	if !ok {
		return nil, fmt.Errorf("unknown function %q", x.Name)
	}
	return fn(args...)
}

func (e *Evaluator) traverse(cur any, traversal hcl.Traversal, scope *Scope, absolute bool) (any, error) {
	for i, step := range traversal {
		var err error
		switch t := step.(type) {
		case hcl.TraverseRoot:
			if !absolute || i != 0 {
				return nil, fmt.Errorf("unexpected root traversal %q", t.Name)
			}
			val, ok := scope.Lookup(t.Name)
			if !ok {
				return nil, fmt.Errorf("unknown variable %q", t.Name)
			}
			cur = val
		case hcl.TraverseAttr:
			cur, err = GetAttr(cur, t.Name)
		case hcl.TraverseIndex:
			var key any
			key, err = ctyToGo(t.Key)
			if err == nil {
				cur, err = Index(cur, key)
			}
		default:
			return nil, fmt.Errorf("unsupported traversal %T", step)
		}
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

func (e *Evaluator) assign(node hclsyntax.Expression, scope *Scope, val any) error {
	var traversal hcl.Traversal
	var base any
	switch x := node.(type) {
	case *hclsyntax.ScopeTraversalExpr:
		traversal = x.Traversal
		if len(traversal) == 1 {
			scope.Set(traversal.RootName(), val)
			return nil
		}
		var err error
		base, err = e.traverse(nil, traversal[:len(traversal)-1], scope, true)
		if err != nil {
			return err
		}
	case *hclsyntax.RelativeTraversalExpr:
		src, err := e.eval(x.Source, scope)
		if err != nil {
			return err
		}
		traversal = x.Traversal
		base, err = e.traverse(src, traversal[:len(traversal)-1], scope, false)
		if err != nil {
			return err
		}
	case *hclsyntax.IndexExpr:
		coll, err := e.eval(x.Collection, scope)
		if err != nil {
			return err
		}
		key, err := e.eval(x.Key, scope)
		if err != nil {
			return err
		}
		return SetIndex(coll, key, val)
	case *hclsyntax.ParenthesesExpr:
		return e.assign(x.Expression, scope, val)
	default:
		return fmt.Errorf("cannot assign to %T", node)
	}
	switch last := traversal[len(traversal)-1].(type) {
	case hcl.TraverseAttr:
		return SetAttr(base, last.Name, val)
	case hcl.TraverseIndex:
		key, err := ctyToGo(last.Key)
		if err != nil {
			return err
		}
		return SetIndex(base, key, val)
	}
	return fmt.Errorf("cannot assign through %T", traversal[len(traversal)-1])
}

func ctyToGo(val cty.Value) (any, error) {
	if val.IsNull() {
		return nil, nil
	}
	if !val.IsKnown() {
		return nil, fmt.Errorf("unknown value")
	}
	ty := val.Type()
	switch {
	case ty.Equals(cty.String):
		return val.AsString(), nil
	case ty.Equals(cty.Bool):
		return val.True(), nil
	case ty.Equals(cty.Number):
		bf := val.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return int(i), nil
			}
		}
		f, _ := bf.Float64()
		return f, nil
	}
	return nil, fmt.Errorf("unsupported literal of type %s", ty.FriendlyName())
}
