// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package expr

import (
	"fmt"
	"math"
	"reflect"

	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// Truthy: nil, false, zero numbers, empty strings and empty collections are false.
func Truthy(val any) bool {
	if val == nil {
		return false
	}
	switch x := val.(type) {
	case bool:
		return x
	case string:
		return x != ""
	}
	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	case reflect.Slice, reflect.Map, reflect.Array, reflect.String:
		return rv.Len() > 0
	case reflect.Bool:
		return rv.Bool()
	}
	if f, ok := toFloat(val); ok {
		return f != 0
	}
	return true
}

func isInt(val any) bool {
	if val == nil {
		return false
	}
	switch reflect.ValueOf(val).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func toInt(val any) (int, bool) {
	if val == nil {
		return 0, false
	}
	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) {
			return 0, false
		}
		return int(f), true
	}
	return 0, false
}

func toFloat(val any) (float64, bool) {
	if val == nil {
		return 0, false
	}
	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func unaryOp(op *hclsyntax.Operation, val any) (any, error) {
	switch op {
	case hclsyntax.OpLogicalNot:
		return !Truthy(val), nil
	case hclsyntax.OpNegate:
		if isInt(val) {
			n, _ := toInt(val)
			return -n, nil
		}
		if f, ok := toFloat(val); ok {
			return -f, nil
		}
		return nil, fmt.Errorf("cannot negate %T", val)
	}
	return nil, fmt.Errorf("unsupported unary operator")
}

func binaryOp(op *hclsyntax.Operation, lhs any, rhs any) (any, error) {
	switch op {
	case hclsyntax.OpEqual:
		return Equal(lhs, rhs), nil
	case hclsyntax.OpNotEqual:
		return !Equal(lhs, rhs), nil
	case hclsyntax.OpLessThan, hclsyntax.OpLessThanOrEqual, hclsyntax.OpGreaterThan, hclsyntax.OpGreaterThanOrEqual:
		cmp, err := compare(lhs, rhs)
		if err != nil {
			return nil, err
		}
		switch op {
		case hclsyntax.OpLessThan:
			return cmp < 0, nil
		case hclsyntax.OpLessThanOrEqual:
			return cmp <= 0, nil
		case hclsyntax.OpGreaterThan:
			return cmp > 0, nil
		default:
			return cmp >= 0, nil
		}
	case hclsyntax.OpAdd:
		ls, lok := lhs.(string)
		rs, rok := rhs.(string)
		if lok && rok {
			return ls + rs, nil
		}
		return arith(op, lhs, rhs)
	case hclsyntax.OpSubtract, hclsyntax.OpMultiply, hclsyntax.OpDivide, hclsyntax.OpModulo:
		return arith(op, lhs, rhs)
	}
	return nil, fmt.Errorf("unsupported binary operator")
}

func arith(op *hclsyntax.Operation, lhs any, rhs any) (any, error) {
	if isInt(lhs) && isInt(rhs) && op != hclsyntax.OpDivide {
		a, _ := toInt(lhs)
		b, _ := toInt(rhs)
		switch op {
		case hclsyntax.OpAdd:
			return a + b, nil
		case hclsyntax.OpSubtract:
			return a - b, nil
		case hclsyntax.OpMultiply:
			return a * b, nil
		case hclsyntax.OpModulo:
			if b == 0 {
				return nil, fmt.Errorf("modulo by zero")
			}
			return a % b, nil
		}
	}
	a, aok := toFloat(lhs)
	b, bok := toFloat(rhs)
	if !aok || !bok {
		return nil, fmt.Errorf("invalid operands %T and %T", lhs, rhs)
	}
	switch op {
	case hclsyntax.OpAdd:
		return a + b, nil
	case hclsyntax.OpSubtract:
		return a - b, nil
	case hclsyntax.OpMultiply:
		return a * b, nil
	case hclsyntax.OpDivide:
		if b == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return a / b, nil
	case hclsyntax.OpModulo:
		if b == 0 {
			return nil, fmt.Errorf("modulo by zero")
		}
		return math.Mod(a, b), nil
	}
	return nil, fmt.Errorf("unsupported arithmetic operator")
}

// Equal compares numbers by value and everything else with == when
// comparable, reflect.DeepEqual otherwise.
func Equal(lhs any, rhs any) bool {
	if a, ok := toFloat(lhs); ok {
		if b, ok := toFloat(rhs); ok {
			return a == b
		}
		return false
	}
	if lhs == nil || rhs == nil {
		return lhs == nil && rhs == nil
	}
	lt := reflect.TypeOf(lhs)
	if lt == reflect.TypeOf(rhs) && lt.Comparable() {
		return lhs == rhs
	}
	return reflect.DeepEqual(lhs, rhs)
}

func compare(lhs any, rhs any) (int, error) {
	if a, ok := toFloat(lhs); ok {
		if b, ok := toFloat(rhs); ok {
			switch {
			case a < b:
				return -1, nil
			case a > b:
				return 1, nil
			}
			return 0, nil
		}
	}
	ls, lok := lhs.(string)
	rs, rok := rhs.(string)
	if lok && rok {
		switch {
		case ls < rs:
			return -1, nil
		case ls > rs:
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("cannot compare %T and %T", lhs, rhs)
}
