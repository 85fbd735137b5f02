// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package expr

import (
	"fmt"
	"reflect"
	"strings"
)

// AttrGetter lets a value expose attributes beyond its own fields and methods.
// It is consulted after the value's fields and methods.
type AttrGetter interface {
	GetAttr(name string) (any, bool)
}

// AttrSetter is consulted by SetAttr when no field or Set<Name> method matches.
type AttrSetter interface {
	SetAttr(name string, val any) (bool, error)
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// NameMatches reports whether the markup name (snake_case) refers to the Go identifier.
func NameMatches(goIdent string, name string) bool {
	return strings.EqualFold(goIdent, strings.ReplaceAll(name, "_", ""))
}

func jsonName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" || tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	return name
}

// findField returns the index path of the exported field referred to by name.
// json tags win over identifier matching.
func findField(t reflect.Type, name string) ([]int, bool) {
	fields := reflect.VisibleFields(t)
	for _, f := range fields {
		if f.IsExported() && !f.Anonymous && jsonName(f) == name {
			return f.Index, true
		}
	}
	for _, f := range fields {
		if f.IsExported() && !f.Anonymous && NameMatches(f.Name, name) {
			return f.Index, true
		}
	}
	return nil, false
}

func findMethod(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if NameMatches(m.Name, name) {
			return v.Method(i), true
		}
	}
	return reflect.Value{}, false
}

// fieldByIndex is reflect.Value.FieldByIndex that reports nil embedded pointers.
func fieldByIndex(v reflect.Value, index []int) (reflect.Value, bool) {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}, false
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v, true
}

// callGetter calls a zero-argument method and returns its first result. A
// trailing non-nil error result is returned as the error.
func callGetter(m reflect.Value) (any, error) {
	out := m.Call(nil)
	if len(out) > 1 && out[len(out)-1].Type() == errorType && !out[len(out)-1].IsNil() {
		return nil, out[len(out)-1].Interface().(error)
	}
	return out[0].Interface(), nil
}

func isGetter(m reflect.Value) bool {
	mt := m.Type()
	if mt.NumIn() != 0 || mt.NumOut() == 0 {
		return false
	}
	return !(mt.NumOut() == 1 && mt.Out(0) == errorType)
}

// GetAttr resolves name on val. Lookup order: map key, struct field (json
// tag, then identifier), method, AttrGetter. A method taking no arguments and
// returning a value is called and its result returned; any other method is
// returned as a bound function value.
func GetAttr(val any, name string) (any, error) {
	if val == nil {
		return nil, fmt.Errorf("cannot get attribute %q of nil", name)
	}
	rv := reflect.ValueOf(val)
	if rv.Kind() == reflect.Map {
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("cannot get attribute %q of %T", name, val)
		}
		item := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !item.IsValid() {
			return nil, fmt.Errorf("key %q not found", name)
		}
		return item.Interface(), nil
	}
	sv := rv
	for sv.Kind() == reflect.Pointer || sv.Kind() == reflect.Interface {
		if sv.IsNil() {
			return nil, fmt.Errorf("cannot get attribute %q of nil %T", name, val)
		}
		sv = sv.Elem()
	}
	if sv.Kind() == reflect.Struct {
		if index, ok := findField(sv.Type(), name); ok {
			if fv, ok := fieldByIndex(sv, index); ok {
				return fv.Interface(), nil
			}
		}
	}
	if m, ok := findMethod(rv, name); ok {
		if isGetter(m) {
			return callGetter(m)
		}
		return m.Interface(), nil
	}
	if getter, ok := val.(AttrGetter); ok {
		if rtn, ok := getter.GetAttr(name); ok {
			return rtn, nil
		}
	}
	return nil, fmt.Errorf("%T has no attribute %q", val, name)
}

// SetAttr assigns to a field (through a pointer), a Set<Name> method, a map
// key or an AttrSetter, in that order.
func SetAttr(target any, name string, val any) error {
	if target == nil {
		return fmt.Errorf("cannot set attribute %q of nil", name)
	}
	rv := reflect.ValueOf(target)
	if rv.Kind() == reflect.Map {
		key := reflect.ValueOf(name).Convert(rv.Type().Key())
		item, err := convertTo(val, rv.Type().Elem())
		if err != nil {
			return fmt.Errorf("setting key %q: %w", name, err)
		}
		rv.SetMapIndex(key, item)
		return nil
	}
	if m, ok := findMethod(rv, "set_"+name); ok && m.Type().NumIn() == 1 {
		arg, err := convertTo(val, m.Type().In(0))
		if err != nil {
			return fmt.Errorf("setting %q: %w", name, err)
		}
		out := m.Call([]reflect.Value{arg})
		if len(out) > 0 && out[len(out)-1].Type() == errorType && !out[len(out)-1].IsNil() {
			return out[len(out)-1].Interface().(error)
		}
		return nil
	}
	if setter, ok := target.(AttrSetter); ok {
		handled, err := setter.SetAttr(name, val)
		if err != nil || handled {
			return err
		}
	}
	if rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Elem().Kind() == reflect.Struct {
		sv := rv.Elem()
		if index, ok := findField(sv.Type(), name); ok {
			fv, ok := fieldByIndex(sv, index)
			if ok && fv.CanSet() {
				item, err := convertTo(val, fv.Type())
				if err != nil {
					return fmt.Errorf("setting %q: %w", name, err)
				}
				fv.Set(item)
				return nil
			}
		}
	}
	return fmt.Errorf("cannot set attribute %q of %T", name, target)
}

// Index supports slices, arrays, strings (by character) and maps.
func Index(coll any, key any) (any, error) {
	if coll == nil {
		return nil, fmt.Errorf("cannot index nil")
	}
	rv := reflect.Indirect(reflect.ValueOf(coll))
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		idx, err := sliceIndex(rv.Len(), key)
		if err != nil {
			return nil, err
		}
		return rv.Index(idx).Interface(), nil
	case reflect.String:
		runes := []rune(rv.String())
		idx, err := sliceIndex(len(runes), key)
		if err != nil {
			return nil, err
		}
		return string(runes[idx]), nil
	case reflect.Map:
		mk, err := convertTo(key, rv.Type().Key())
		if err != nil {
			return nil, err
		}
		item := rv.MapIndex(mk)
		if !item.IsValid() {
			return nil, fmt.Errorf("key %v not found", key)
		}
		return item.Interface(), nil
	}
	return nil, fmt.Errorf("cannot index %T", coll)
}

func SetIndex(coll any, key any, val any) error {
	if coll == nil {
		return fmt.Errorf("cannot index nil")
	}
	rv := reflect.ValueOf(coll)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		idx, err := sliceIndex(rv.Len(), key)
		if err != nil {
			return err
		}
		elem := rv.Index(idx)
		if !elem.CanSet() {
			return fmt.Errorf("cannot assign into %T", coll)
		}
		item, err := convertTo(val, elem.Type())
		if err != nil {
			return err
		}
		elem.Set(item)
		return nil
	case reflect.Map:
		mk, err := convertTo(key, rv.Type().Key())
		if err != nil {
			return err
		}
		item, err := convertTo(val, rv.Type().Elem())
		if err != nil {
			return err
		}
		rv.SetMapIndex(mk, item)
		return nil
	}
	return fmt.Errorf("cannot index %T", coll)
}

func sliceIndex(length int, key any) (int, error) {
	n, ok := toInt(key)
	if !ok {
		return 0, fmt.Errorf("invalid index %v", key)
	}
	if n < 0 {
		n += length
	}
	if n < 0 || n >= length {
		return 0, fmt.Errorf("index %v out of range [0:%d]", key, length)
	}
	return n, nil
}

// convertTo converts val for assignment into a value of type t.
func convertTo(val any, t reflect.Type) (reflect.Value, error) {
	if val == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(val)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if t.Kind() == reflect.Pointer && rv.Type().AssignableTo(t.Elem()) {
		ptr := reflect.New(t.Elem())
		ptr.Elem().Set(rv)
		return ptr, nil
	}
	if isNumberKind(rv.Kind()) && isNumberKind(t.Kind()) {
		return rv.Convert(t), nil
	}
	if rv.Kind() == reflect.String && t.Kind() == reflect.String {
		return rv.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", val, t)
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
