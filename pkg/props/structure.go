// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package props

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/wavetermdev/guiml/pkg/geom"
	"github.com/wavetermdev/guiml/pkg/utilds"
)

var rectType = reflect.TypeOf(geom.Rect{})
var colorType = reflect.TypeOf(geom.Color{})

func rectHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != rectType {
		return data, nil
	}
	switch x := data.(type) {
	case string:
		return geom.ParseRect(x)
	case int:
		return geom.Uniform(float64(x)), nil
	case float64:
		return geom.Uniform(x), nil
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = fmt.Sprint(item)
		}
		return geom.ParseRect(strings.Join(parts, " "))
	}
	return data, nil
}

func colorHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != colorType {
		return data, nil
	}
	switch x := data.(type) {
	case string:
		return geom.ParseColor(x)
	case []any:
		if len(x) != 3 && len(x) != 4 {
			return nil, fmt.Errorf("color list must have 3 or 4 components")
		}
		comps := []float64{0, 0, 0, 1}
		for i, item := range x {
			var f float64
			if err := decodeWeak(item, &f); err != nil {
				return nil, fmt.Errorf("color component %d: %w", i, err)
			}
			comps[i] = f
		}
		return geom.Color{Red: comps[0], Green: comps[1], Blue: comps[2], Alpha: comps[3]}, nil
	}
	return data, nil
}

func newDecoder(out any) (*mapstructure.Decoder, error) {
	dconfig := &mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
		Squash:           true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			rectHook,
			colorHook,
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(" "),
		),
	}
	return mapstructure.NewDecoder(dconfig)
}

func decodeWeak(input any, out any) error {
	decoder, err := newDecoder(out)
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

// New returns a pointer to a record with all defaults applied.
func (s *Schema) New() (any, error) {
	ptr := reflect.New(s.Type)
	if err := s.applyDefaults(ptr.Interface()); err != nil {
		return nil, err
	}
	return ptr.Interface(), nil
}

func (s *Schema) applyDefaults(out any) error {
	defaults := make(map[string]any)
	for _, f := range s.Fields {
		if f.HasDefault() {
			defaults[f.Name] = f.Default
		}
	}
	if len(defaults) == 0 {
		return nil
	}
	if err := decodeWeak(defaults, out); err != nil {
		return utilds.SubErrorf(utilds.CodeConversion, s.Type.Name(), "defaults of %s: %w", s.Type.Name(), err)
	}
	return nil
}

// Structure builds a new record from data. Keys the schema does not know are
// ignored, nil values keep the default.
func (s *Schema) Structure(data map[string]any) (any, error) {
	ptr := reflect.New(s.Type)
	if err := s.Fill(ptr.Interface(), data); err != nil {
		return nil, err
	}
	return ptr.Interface(), nil
}

// Fill applies defaults then data to out, a pointer to the schema's type.
// Values that already have the field's type are assigned as-is so pointers,
// callbacks and shared collections keep their identity.
func (s *Schema) Fill(out any, data map[string]any) error {
	ptr := reflect.ValueOf(out)
	if ptr.Kind() != reflect.Pointer || ptr.Elem().Type() != s.Type {
		return fmt.Errorf("fill: want *%s, got %T", s.Type, out)
	}
	if err := s.applyDefaults(out); err != nil {
		return err
	}
	elem := ptr.Elem()
	rest := make(map[string]any)
	for _, f := range s.Fields {
		val, ok := data[f.Name]
		if !ok || val == nil {
			if f.Required {
				return utilds.SubErrorf(utilds.CodeConversion, s.Type.Name(), "%s: missing required property %q", s.Type.Name(), f.Name)
			}
			continue
		}
		if reflect.TypeOf(val).AssignableTo(f.Type) {
			elem.FieldByIndex(f.Index).Set(reflect.ValueOf(val))
			continue
		}
		rest[f.Name] = val
	}
	if len(rest) == 0 {
		return nil
	}
	if err := decodeWeak(rest, out); err != nil {
		return utilds.SubErrorf(utilds.CodeConversion, s.Type.Name(), "%s: %w", s.Type.Name(), err)
	}
	return nil
}

func Structure[T any](data map[string]any) (*T, error) {
	schema, err := SchemaFor[T]()
	if err != nil {
		return nil, err
	}
	rtn := new(T)
	if err := schema.Fill(rtn, data); err != nil {
		return nil, err
	}
	return rtn, nil
}
