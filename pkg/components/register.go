// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// Package components is the base component library: application, window,
// div, button, text, raw_input and input, plus the window's injectables.
package components

import (
	_ "embed"
	"fmt"

	"github.com/wavetermdev/guiml/pkg/engine"
	"github.com/wavetermdev/guiml/pkg/inject"
	"github.com/wavetermdev/guiml/pkg/markup"
	"github.com/wavetermdev/guiml/pkg/resource"
)

const (
	TagApplication = "application"
	TagWindow      = "window"
	TagDiv         = "div"
	TagButton      = "button"
	TagText        = "text"
	TagRawInput    = "raw_input"
	TagInput       = "input"
)

//go:embed styles.yml
var defaultStyles string

type entry struct {
	tag   string
	newFn func() engine.Component
	doc   string
	tmpl  string
}

var entries = []entry{
	{tag: TagApplication, newFn: func() engine.Component { return &Application{} }, doc: "root of the tree"},
	{tag: TagWindow, newFn: func() engine.Component { return &Window{} }, doc: "host window; provides Canvas, MouseControl, TextControl and TextLayout"},
	{tag: TagDiv, newFn: func() engine.Component { return &Div{} }, doc: "box with margin, border, padding and background"},
	{tag: TagButton, newFn: func() engine.Component { return &Button{} }, doc: "clickable div"},
	{tag: TagText, newFn: func() engine.Component { return &Text{} }, doc: "selectable text"},
	{tag: TagRawInput, newFn: func() engine.Component { return &RawInput{} }, doc: "editable text, bind its text property"},
	{tag: TagInput, newFn: func() engine.Component { return &Input{} }, doc: "single line input that submits on enter", tmpl: inputTemplate},
}

// Register adds the base components and the window injectables to r.
func Register(r *engine.Registry) error {
	styles, err := resource.ParseRawStyle(defaultStyles)
	if err != nil {
		return fmt.Errorf("default styles: %w", err)
	}
	for _, e := range entries {
		opts := &engine.ComponentOpts{Style: styles, Doc: e.doc}
		if e.tmpl != "" {
			root, err := markup.ParseString(e.tmpl)
			if err != nil {
				return fmt.Errorf("<%s> template: %w", e.tag, err)
			}
			opts.Template = resource.NewRawTemplate(root)
		}
		if err := r.Register(e.tag, e.newFn, opts); err != nil {
			return err
		}
	}
	injectables := []inject.Descriptor{
		inject.Injectable(func() *Canvas { return &Canvas{} }),
		inject.Injectable(func() *MouseControl { return &MouseControl{} }),
		inject.Injectable(func() *TextControl { return &TextControl{} }),
		inject.Injectable(func() *TextLayout { return &TextLayout{} }),
	}
	for _, d := range injectables {
		if err := r.RegisterInjectable(TagWindow, d); err != nil {
			return err
		}
	}
	return nil
}
