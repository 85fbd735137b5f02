// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package expr

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

type Func func(args ...any) (any, error)

var builtins = map[string]Func{
	"len":     fnLen,
	"str":     fnStr,
	"int":     fnInt,
	"float":   fnFloat,
	"bool":    fnBool,
	"range":   fnRange,
	"upper":   fnUpper,
	"lower":   fnLower,
	"join":    fnJoin,
	"format":  fnFormat,
	"min":     fnMin,
	"max":     fnMax,
	"partial": fnPartial,
}

func argCount(name string, args []any, min int, max int) error {
	if len(args) < min || (max >= 0 && len(args) > max) {
		return fmt.Errorf("%s: wrong number of arguments (%d)", name, len(args))
	}
	return nil
}

func fnLen(args ...any) (any, error) {
	if err := argCount("len", args, 1, 1); err != nil {
		return nil, err
	}
	if args[0] == nil {
		return 0, nil
	}
	if s, ok := args[0].(string); ok {
		return len([]rune(s)), nil
	}
	rv := reflect.Indirect(reflect.ValueOf(args[0]))
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.String:
		return rv.Len(), nil
	}
	return nil, fmt.Errorf("len: unsupported type %T", args[0])
}

func fnStr(args ...any) (any, error) {
	if err := argCount("str", args, 1, 1); err != nil {
		return nil, err
	}
	if args[0] == nil {
		return "", nil
	}
	return fmt.Sprint(args[0]), nil
}

func fnInt(args ...any) (any, error) {
	if err := argCount("int", args, 1, 1); err != nil {
		return nil, err
	}
	if s, ok := args[0].(string); ok {
		return strconv.Atoi(strings.TrimSpace(s))
	}
	if f, ok := toFloat(args[0]); ok {
		return int(f), nil
	}
	if b, ok := args[0].(bool); ok {
		if b {
			return 1, nil
		}
		return 0, nil
	}
	return nil, fmt.Errorf("int: unsupported type %T", args[0])
}

func fnFloat(args ...any) (any, error) {
	if err := argCount("float", args, 1, 1); err != nil {
		return nil, err
	}
	if s, ok := args[0].(string); ok {
		return strconv.ParseFloat(strings.TrimSpace(s), 64)
	}
	if f, ok := toFloat(args[0]); ok {
		return f, nil
	}
	return nil, fmt.Errorf("float: unsupported type %T", args[0])
}

func fnBool(args ...any) (any, error) {
	if err := argCount("bool", args, 1, 1); err != nil {
		return nil, err
	}
	return Truthy(args[0]), nil
}

// range(stop) or range(start, stop)
func fnRange(args ...any) (any, error) {
	if err := argCount("range", args, 1, 2); err != nil {
		return nil, err
	}
	start, stop := 0, 0
	var ok bool
	if len(args) == 1 {
		stop, ok = toInt(args[0])
	} else {
		start, ok = toInt(args[0])
		if ok {
			stop, ok = toInt(args[1])
		}
	}
	if !ok {
		return nil, fmt.Errorf("range: arguments must be integers")
	}
	rtn := make([]int, 0)
	for i := start; i < stop; i++ {
		rtn = append(rtn, i)
	}
	return rtn, nil
}

func fnUpper(args ...any) (any, error) {
	if err := argCount("upper", args, 1, 1); err != nil {
		return nil, err
	}
	return strings.ToUpper(fmt.Sprint(args[0])), nil
}

func fnLower(args ...any) (any, error) {
	if err := argCount("lower", args, 1, 1); err != nil {
		return nil, err
	}
	return strings.ToLower(fmt.Sprint(args[0])), nil
}

func fnJoin(args ...any) (any, error) {
	if err := argCount("join", args, 2, 2); err != nil {
		return nil, err
	}
	items, err := iterate(args[0])
	if err != nil {
		return nil, err
	}
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = fmt.Sprint(item.Value)
	}
	return strings.Join(parts, fmt.Sprint(args[1])), nil
}

func fnFormat(args ...any) (any, error) {
	if err := argCount("format", args, 1, -1); err != nil {
		return nil, err
	}
	format, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("format: first argument must be a string")
	}
	return fmt.Sprintf(format, args[1:]...), nil
}

func fnMin(args ...any) (any, error) {
	return extremum("min", args, -1)
}

func fnMax(args ...any) (any, error) {
	return extremum("max", args, 1)
}

func extremum(name string, args []any, want int) (any, error) {
	if err := argCount(name, args, 1, -1); err != nil {
		return nil, err
	}
	best := args[0]
	for _, arg := range args[1:] {
		cmp, err := compare(arg, best)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if cmp == want {
			best = arg
		}
	}
	return best, nil
}

// partial(fn, args...) returns fn with args bound in front of later call arguments.
func fnPartial(args ...any) (any, error) {
	if err := argCount("partial", args, 1, -1); err != nil {
		return nil, err
	}
	fn := args[0]
	if fn == nil || reflect.TypeOf(fn).Kind() != reflect.Func {
		return nil, fmt.Errorf("partial: %T is not callable", fn)
	}
	bound := append([]any(nil), args[1:]...)
	return Func(func(callArgs ...any) (any, error) {
		all := append(append([]any(nil), bound...), callArgs...)
		return CallValue(fn, all...)
	}), nil
}

// CallValue calls fn with args converted to its parameter types and returns
// its first result (or nil). A trailing error result is returned as the error.
func CallValue(fn any, args ...any) (any, error) {
	out, err := Call(fn, args...)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

// Call invokes any Go function value through reflection. Surplus arguments
// are dropped so callbacks may ignore event details they do not need.
func Call(fn any, args ...any) ([]any, error) {
	if fn == nil {
		return nil, fmt.Errorf("call of nil function")
	}
	if f, ok := fn.(Func); ok {
		rtn, err := f(args...)
		return []any{rtn}, err
	}
	if f, ok := fn.(func(args ...any) (any, error)); ok {
		rtn, err := f(args...)
		return []any{rtn}, err
	}
	rv := reflect.ValueOf(fn)
	ft := rv.Type()
	if ft.Kind() != reflect.Func {
		return nil, fmt.Errorf("%T is not callable", fn)
	}
	numIn := ft.NumIn()
	var in []reflect.Value
	if ft.IsVariadic() {
		fixed := numIn - 1
		if len(args) < fixed {
			return nil, fmt.Errorf("not enough arguments: want at least %d, got %d", fixed, len(args))
		}
		for i, arg := range args {
			var pt reflect.Type
			if i < fixed {
				pt = ft.In(i)
			} else {
				pt = ft.In(fixed).Elem()
			}
			av, err := convertTo(arg, pt)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i, err)
			}
			in = append(in, av)
		}
	} else {
		if len(args) < numIn {
			return nil, fmt.Errorf("not enough arguments: want %d, got %d", numIn, len(args))
		}
		for i := 0; i < numIn; i++ {
			av, err := convertTo(args[i], ft.In(i))
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i, err)
			}
			in = append(in, av)
		}
	}
	out := rv.Call(in)
	rtn := make([]any, 0, len(out))
	for i, o := range out {
		if i == len(out)-1 && o.Type() == errorType {
			if !o.IsNil() {
				return rtn, o.Interface().(error)
			}
			continue
		}
		rtn = append(rtn, o.Interface())
	}
	return rtn, nil
}
