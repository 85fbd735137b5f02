// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package components

import (
	"log"

	"github.com/wavetermdev/guiml/pkg/engine"
	"github.com/wavetermdev/guiml/pkg/expr"
)

const (
	ClassHover      = "hover"
	ClassMouseFocus = "mouse_focus"
)

// InteractiveProps are shared by every component reacting to the mouse.
type InteractiveProps struct {
	// called with (x, y, button) when the mouse is released inside
	OnClick any    `json:"on_click"`
	Cursor  string `json:"cursor"`
}

type UIDeps struct {
	Mouse *MouseControl
}

// pointer tracks hover and focus for a component and fires on_click.
type pointer struct {
	owner *engine.Base
	props func() *InteractiveProps
	mouse *MouseControl
	hover bool
}

func (p *pointer) start(owner *engine.Base, mouse *MouseControl, props func() *InteractiveProps) {
	p.owner = owner
	p.mouse = mouse
	p.props = props
	owner.Track(mouse.OnMouseMotion.Subscribe(p.onMotion))
	owner.Track(mouse.OnMouseRelease.Subscribe(p.onRelease))
}

func (p *pointer) stop() {
	if p.hover {
		p.exit()
	}
}

func (p *pointer) Hovered() bool {
	return p.hover
}

func (p *pointer) onMotion(ev MouseEvent) {
	inside := p.owner.Realized() && p.owner.Position().Contains(ev.X, ev.Y)
	if inside && !p.hover {
		p.enter()
	} else if !inside && p.hover {
		p.exit()
	}
}

func (p *pointer) enter() {
	p.hover = true
	p.owner.AddClass(ClassHover)
	p.mouse.FocusEnter(p)
}

func (p *pointer) exit() {
	p.hover = false
	p.owner.RemoveClass(ClassHover)
	p.mouse.FocusExit(p)
}

func (p *pointer) OnMouseFocus() {
	p.owner.AddClass(ClassMouseFocus)
	if cursor := p.props().Cursor; cursor != "" {
		p.mouse.SetCursor(cursor)
	}
}

func (p *pointer) OnMouseUnfocus() {
	p.owner.RemoveClass(ClassMouseFocus)
	p.mouse.SetCursor("")
}

func (p *pointer) onRelease(ev MouseEvent) {
	if !p.owner.Realized() || !p.owner.Position().Contains(ev.X, ev.Y) {
		return
	}
	if onClick := p.props().OnClick; onClick != nil {
		if _, err := expr.Call(onClick, ev.X, ev.Y, ev.Button); err != nil {
			log.Printf("[components] <%s> on_click: %v\n", p.owner.Tag(), err)
		}
	}
}
