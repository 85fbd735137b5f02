// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// Package expr evaluates the small expression language used in markup
// attributes (py_, on_, bind_, class_ and control). Expressions use HCL native
// syntax and are evaluated directly against live Go values: attribute access
// resolves struct fields, methods and map keys, and assignment writes back
// through the same path.
package expr

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/wavetermdev/guiml/pkg/panichandler"
	"github.com/wavetermdev/guiml/pkg/utilds"
)

const DefaultCacheSize = 1024

// Scope is a chain of variable maps; lookups walk from the innermost scope out.
type Scope struct {
	parent *Scope
	vars   map[string]any
}

func NewScope(vars map[string]any) *Scope {
	if vars == nil {
		vars = make(map[string]any)
	}
	return &Scope{vars: vars}
}

// Child returns a new scope nested in s.
func (s *Scope) Child(vars map[string]any) *Scope {
	if vars == nil {
		vars = make(map[string]any)
	}
	return &Scope{parent: s, vars: vars}
}

func (s *Scope) With(name string, val any) *Scope {
	return s.Child(map[string]any{name: val})
}

func (s *Scope) Lookup(name string) (any, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if val, ok := cur.vars[name]; ok {
			return val, true
		}
	}
	return nil, false
}

// Set assigns to the scope that defines name, or defines it in s.
func (s *Scope) Set(name string, val any) {
	for cur := s; cur != nil; cur = cur.parent {
		if _, ok := cur.vars[name]; ok {
			cur.vars[name] = val
			return
		}
	}
	s.vars[name] = val
}

// Names lists visible variable names, innermost first, without duplicates.
func (s *Scope) Names() []string {
	seen := make(map[string]bool)
	var rtn []string
	for cur := s; cur != nil; cur = cur.parent {
		for name := range cur.vars {
			if !seen[name] {
				seen[name] = true
				rtn = append(rtn, name)
			}
		}
	}
	return rtn
}

type Evaluator struct {
	cache *lru.Cache[string, hclsyntax.Expression]
	funcs map[string]Func
}

func NewEvaluator(cacheSize int) *Evaluator {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, hclsyntax.Expression](cacheSize)
	if err != nil {
		panic(err)
	}
	funcs := make(map[string]Func, len(builtins))
	for name, fn := range builtins {
		funcs[name] = fn
	}
	return &Evaluator{cache: cache, funcs: funcs}
}

// Default is shared by the transformation passes.
var Default = NewEvaluator(DefaultCacheSize)

// RegisterFunc adds or replaces a function callable from expressions.
func (e *Evaluator) RegisterFunc(name string, fn Func) {
	e.funcs[name] = fn
}

// Compile parses src, using the cache when possible.
func (e *Evaluator) Compile(src string) (hclsyntax.Expression, error) {
	src = strings.TrimSpace(src)
	if cached, ok := e.cache.Get(src); ok {
		return cached, nil
	}
	parsed, diags := hclsyntax.ParseExpression([]byte(src), "expr", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, utilds.Errorf(utilds.CodeExpr, "cannot parse %q: %s", src, diags.Error())
	}
	e.cache.Add(src, parsed)
	return parsed, nil
}

func (e *Evaluator) Eval(src string, scope *Scope) (rtn any, rtnErr error) {
	parsed, err := e.Compile(src)
	if err != nil {
		return nil, err
	}
	rtnErr = panichandler.Guard(fmt.Sprintf("expr %q", src), func() error {
		var evalErr error
		rtn, evalErr = e.eval(parsed, scope)
		return evalErr
	})
	if rtnErr != nil && utilds.GetErrorCode(rtnErr) == "" {
		rtnErr = utilds.Errorf(utilds.CodeExpr, "evaluating %q: %w", src, rtnErr)
	}
	return rtn, rtnErr
}

func (e *Evaluator) EvalBool(src string, scope *Scope) (bool, error) {
	val, err := e.Eval(src, scope)
	if err != nil {
		return false, err
	}
	return Truthy(val), nil
}

// Assign writes val to the place named by src, which must be a variable or a
// chain of attribute/index accesses.
func (e *Evaluator) Assign(src string, scope *Scope, val any) error {
	parsed, err := e.Compile(src)
	if err != nil {
		return err
	}
	return panichandler.Guard(fmt.Sprintf("assign %q", src), func() error {
		return e.assign(parsed, scope, val)
	})
}
