// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package expr

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/wavetermdev/guiml/pkg/utilds"
)

type iterItem struct {
	Key   any
	Value any
}

// iterate yields (index, item) for sequences, (key, value) in key order for
// maps and (i, i) for an integer count.
func iterate(val any) ([]iterItem, error) {
	if val == nil {
		return nil, nil
	}
	if n, ok := val.(int); ok {
		rtn := make([]iterItem, n)
		for i := 0; i < n; i++ {
			rtn[i] = iterItem{Key: i, Value: i}
		}
		return rtn, nil
	}
	if s, ok := val.(string); ok {
		var rtn []iterItem
		i := 0
		for _, r := range s {
			rtn = append(rtn, iterItem{Key: i, Value: string(r)})
			i++
		}
		return rtn, nil
	}
	rv := reflect.Indirect(reflect.ValueOf(val))
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		rtn := make([]iterItem, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			rtn[i] = iterItem{Key: i, Value: rv.Index(i).Interface()}
		}
		return rtn, nil
	case reflect.Map:
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})
		rtn := make([]iterItem, len(keys))
		for i, k := range keys {
			rtn[i] = iterItem{Key: k.Interface(), Value: rv.MapIndex(k).Interface()}
		}
		return rtn, nil
	}
	return nil, fmt.Errorf("cannot iterate over %T", val)
}

// ForClause is a parsed "for <names> in <expr>" control.
type ForClause struct {
	KeyName   string
	ValueName string
	Source    string
}

// ParseForClause accepts "for item in expr" and "for i, item in expr". The
// leading "for" is optional.
func ParseForClause(clause string) (*ForClause, error) {
	clause = strings.TrimSpace(clause)
	if rest, ok := strings.CutPrefix(clause, "for "); ok {
		clause = strings.TrimSpace(rest)
	}
	names, source, ok := strings.Cut(clause, " in ")
	if !ok {
		return nil, utilds.Errorf(utilds.CodeExpr, "invalid for clause %q: missing 'in'", clause)
	}
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, utilds.Errorf(utilds.CodeExpr, "invalid for clause %q: missing sequence", clause)
	}
	rtn := &ForClause{Source: source}
	parts := strings.Split(names, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
		if !hclsyntax.ValidIdentifier(parts[i]) {
			return nil, utilds.Errorf(utilds.CodeExpr, "invalid for clause %q: bad name %q", clause, parts[i])
		}
	}
	switch len(parts) {
	case 1:
		rtn.ValueName = parts[0]
	case 2:
		rtn.KeyName, rtn.ValueName = parts[0], parts[1]
	default:
		return nil, utilds.Errorf(utilds.CodeExpr, "invalid for clause %q: too many names", clause)
	}
	return rtn, nil
}

// ForEach evaluates a for clause and returns one child scope per item, each
// binding the loop names.
func (e *Evaluator) ForEach(clause string, scope *Scope) ([]*Scope, error) {
	fc, err := ParseForClause(clause)
	if err != nil {
		return nil, err
	}
	seq, err := e.Eval(fc.Source, scope)
	if err != nil {
		return nil, err
	}
	items, err := iterate(seq)
	if err != nil {
		return nil, utilds.Errorf(utilds.CodeExpr, "for clause %q: %w", clause, err)
	}
	rtn := make([]*Scope, len(items))
	for i, item := range items {
		vars := map[string]any{fc.ValueName: item.Value}
		if fc.KeyName != "" {
			vars[fc.KeyName] = item.Key
		}
		rtn[i] = scope.Child(vars)
	}
	return rtn, nil
}
