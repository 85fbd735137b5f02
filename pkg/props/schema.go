// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// Package props turns untyped style/attribute data into typed property
// records. Each record type gets a Schema (name, type, default, required)
// computed once; Structure fills a fresh record from defaults then data.
//
// Struct tags:
//
//	json:"font_size"      name used in markup and style files
//	default:"14"          default value, decoded like style data
//	guiml:"required"      data must provide the value
package props

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

type Field struct {
	Name     string
	GoName   string
	Type     reflect.Type
	Default  string
	Required bool
	Index    []int
}

func (f Field) HasDefault() bool {
	return f.Default != ""
}

type Schema struct {
	Type   reflect.Type
	Fields []Field
	byName map[string]int
}

var schemaCache sync.Map // reflect.Type -> *Schema

func SchemaFor[T any]() (*Schema, error) {
	return SchemaOf(reflect.TypeOf((*T)(nil)).Elem())
}

// SchemaOf accepts a struct type or a pointer to one.
func SchemaOf(t reflect.Type) (*Schema, error) {
	if t == nil {
		return nil, fmt.Errorf("nil props type")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if cached, ok := schemaCache.Load(t); ok {
		return cached.(*Schema), nil
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("props type %s is not a struct", t)
	}
	schema := &Schema{Type: t, byName: make(map[string]int)}
	for _, sf := range reflect.VisibleFields(t) {
		if !sf.IsExported() || sf.Anonymous {
			continue
		}
		name := fieldName(sf)
		if name == "-" {
			continue
		}
		if prev, ok := schema.byName[name]; ok {
			// shallower field wins, like Go's own promotion rules
			if len(schema.Fields[prev].Index) <= len(sf.Index) {
				continue
			}
			schema.Fields[prev] = makeField(name, sf)
			continue
		}
		schema.byName[name] = len(schema.Fields)
		schema.Fields = append(schema.Fields, makeField(name, sf))
	}
	actual, _ := schemaCache.LoadOrStore(t, schema)
	return actual.(*Schema), nil
}

func makeField(name string, sf reflect.StructField) Field {
	return Field{
		Name:     name,
		GoName:   sf.Name,
		Type:     sf.Type,
		Default:  sf.Tag.Get("default"),
		Required: hasOpt(sf.Tag.Get("guiml"), "required"),
		Index:    sf.Index,
	}
}

func fieldName(sf reflect.StructField) string {
	tag := sf.Tag.Get("json")
	name, _, _ := strings.Cut(tag, ",")
	if name != "" {
		return name
	}
	return strings.ToLower(sf.Name)
}

func hasOpt(tag string, opt string) bool {
	for _, part := range strings.Split(tag, ",") {
		if strings.TrimSpace(part) == opt {
			return true
		}
	}
	return false
}

func (s *Schema) Field(name string) (Field, bool) {
	idx, ok := s.byName[name]
	if !ok {
		return Field{}, false
	}
	return s.Fields[idx], true
}

func (s *Schema) Has(name string) bool {
	_, ok := s.byName[name]
	return ok
}

func (s *Schema) Names() []string {
	rtn := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		rtn[i] = f.Name
	}
	return rtn
}
