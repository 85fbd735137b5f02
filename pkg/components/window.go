// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package components

import (
	"github.com/wavetermdev/guiml/pkg/engine"
	"github.com/wavetermdev/guiml/pkg/geom"
)

// Application is the root of every tree.
type Application struct {
	engine.Of[engine.NoProps, engine.NoDeps]
}

type WindowProps struct {
	// 0 follows the host's size
	Width      float64    `json:"width"`
	Height     float64    `json:"height"`
	Title      string     `json:"title"`
	Background geom.Color `json:"background" default:"#000000"`
}

type WindowDeps struct {
	Host   Host
	Clock  *engine.Clock
	Canvas *Canvas
	Mouse  *MouseControl
	Keys   *TextControl
}

// Window owns the host surface. It redraws on every clock tick and feeds
// host input to the window's MouseControl and TextControl.
type Window struct {
	engine.Of[WindowProps, WindowDeps]

	unbind   func()
	dragging bool
	redraws  int
}

func (w *Window) OnInit() error {
	w.Deps.Canvas.SetSurface(w.Deps.Host.Surface())
	w.Track(w.Deps.Clock.OnUpdate.Subscribe(w.onUpdate))
	w.Track(w.Deps.Mouse.OnCursorChange.Subscribe(w.Deps.Host.SetCursor))
	w.unbind = w.Deps.Host.Bind(w)
	return nil
}

func (w *Window) OnDestroy() {
	if w.unbind != nil {
		w.unbind()
		w.unbind = nil
	}
}

func (w *Window) size() (float64, float64) {
	width, height := w.Props.Width, w.Props.Height
	hostW, hostH := w.Deps.Host.Size()
	if width <= 0 {
		width = hostW
	}
	if height <= 0 {
		height = hostH
	}
	return width, height
}

func (w *Window) OnPropsUpdated() {
	width, height := w.size()
	w.SetPosition(geom.MakeRect(0, 0, height, width))
}

func (w *Window) SizeFixed() bool {
	return true
}

// Redraws counts the frames the window has drawn.
func (w *Window) Redraws() int {
	return w.redraws
}

func (w *Window) onUpdate(dt float64) {
	surface := w.Deps.Canvas.Surface()
	if surface == nil {
		return
	}
	surface.Clear(w.Props.Background)
	w.Deps.Canvas.Draw()
	w.Deps.Host.Present()
	w.redraws++
}

func (w *Window) MouseMotion(ev MouseEvent) {
	if w.dragging {
		w.Deps.Mouse.OnMouseDrag.Emit(ev)
		return
	}
	w.Deps.Mouse.OnMouseMotion.Emit(ev)
}

func (w *Window) MousePress(ev MouseEvent) {
	w.dragging = true
	w.Deps.Mouse.OnMousePress.Emit(ev)
}

func (w *Window) MouseRelease(ev MouseEvent) {
	w.dragging = false
	w.Deps.Mouse.OnMouseRelease.Emit(ev)
}

func (w *Window) MouseDrag(ev MouseEvent) {
	w.Deps.Mouse.OnMouseDrag.Emit(ev)
}

func (w *Window) MouseScroll(ev MouseEvent) {
	w.Deps.Mouse.OnMouseScroll.Emit(ev)
}

func (w *Window) Text(text string) {
	w.Deps.Keys.OnText.Emit(text)
}

func (w *Window) TextMotion(m Motion, selecting bool) {
	if selecting {
		w.Deps.Keys.OnTextMotionSelect.Emit(m)
		return
	}
	w.Deps.Keys.OnTextMotion.Emit(m)
}

// Resize applies to the dimensions the window's props leave open.
func (w *Window) Resize(width float64, height float64) {
	if w.Props.Width > 0 {
		width = w.Props.Width
	}
	if w.Props.Height > 0 {
		height = w.Props.Height
	}
	w.SetPosition(geom.MakeRect(0, 0, height, width))
}
