// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package resource

import (
	"errors"
	"fmt"

	"github.com/wavetermdev/guiml/pkg/markup"
	"github.com/wavetermdev/guiml/pkg/style"
)

// StyleSource yields a style sheet and whether it changed since the last Get.
type StyleSource interface {
	Get() (style.Sheet, bool, error)
}

// TemplateSource yields a template tree and whether it changed since the last Get.
// The returned tree must not be modified.
type TemplateSource interface {
	Get() (*markup.Node, bool, error)
}

// Indexable sources select a per-component section; the registry sets the
// index to the component tag when none was given.
type Indexable interface {
	SetIndex(index string)
}

type RawTemplate struct {
	node    *markup.Node
	changed bool
}

func NewRawTemplate(node *markup.Node) *RawTemplate {
	return &RawTemplate{node: node, changed: true}
}

func (h *RawTemplate) Root() *markup.Node {
	return h.node
}

func (h *RawTemplate) Get() (*markup.Node, bool, error) {
	changed := h.changed
	h.changed = false
	return h.node, changed, nil
}

type FileTemplate struct {
	loader  *LazyFileLoader[*markup.Node]
	index   string
	version int
}

func (h *FileTemplate) SetIndex(index string) {
	if h.index == "" {
		h.index = index
	}
}

// Get returns the file's root when it is the indexed tag, otherwise the
// root's direct child with that tag.
func (h *FileTemplate) Get() (*markup.Node, bool, error) {
	root := h.loader.Data()
	if root == nil {
		return nil, false, fmt.Errorf("template file %s not loaded", h.loader.Path())
	}
	changed := h.version != h.loader.Version()
	h.version = h.loader.Version()
	if h.index == "" || root.Tag == h.index {
		return root, changed, nil
	}
	node := root.Find(h.index)
	if node == nil {
		return nil, changed, fmt.Errorf("no template for %q in %s", h.index, h.loader.Path())
	}
	return node, changed, nil
}

type RawStyle struct {
	sheet   style.Sheet
	changed bool
}

func NewRawStyle(sheet style.Sheet) *RawStyle {
	return &RawStyle{sheet: sheet, changed: true}
}

// ParseRawStyle parses YAML style source compiled into the program.
func ParseRawStyle(src string) (*RawStyle, error) {
	data, err := parseStyleData([]byte(src))
	if err != nil {
		return nil, err
	}
	sheet, err := style.FromAny(data)
	if err != nil {
		return nil, err
	}
	return NewRawStyle(sheet), nil
}

func MustParseRawStyle(src string) *RawStyle {
	rtn, err := ParseRawStyle(src)
	if err != nil {
		panic(err)
	}
	return rtn
}

func (h *RawStyle) Get() (style.Sheet, bool, error) {
	changed := h.changed
	h.changed = false
	return h.sheet, changed, nil
}

type FileStyle struct {
	loader  *LazyFileLoader[map[string]any]
	index   string
	version int
	sheet   style.Sheet
}

func (h *FileStyle) SetIndex(index string) {
	if h.index == "" {
		h.index = index
	}
}

func (h *FileStyle) Get() (style.Sheet, bool, error) {
	if h.sheet != nil && h.version == h.loader.Version() {
		return h.sheet, false, nil
	}
	sheet, err := sheetFrom(h.loader.Data(), h.index)
	if err != nil {
		return nil, false, err
	}
	h.sheet = sheet
	h.version = h.loader.Version()
	return sheet, true, nil
}

func joinErrs(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}
