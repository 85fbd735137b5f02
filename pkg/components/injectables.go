// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package components

import (
	"github.com/emirpasic/gods/lists/arraylist"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/wavetermdev/guiml/pkg/draw"
	"github.com/wavetermdev/guiml/pkg/engine"
	"github.com/wavetermdev/guiml/pkg/observable"
	"github.com/wavetermdev/guiml/pkg/textlayout"
)

// Canvas is the surface of the enclosing window.
type Canvas struct {
	Deps struct {
		Engine *engine.Engine
	}

	OnSurfaceChange observable.Observable[draw.Surface]

	surface draw.Surface
}

func (c *Canvas) Surface() draw.Surface {
	return c.surface
}

func (c *Canvas) SetSurface(s draw.Surface) {
	c.surface = s
	c.OnSurfaceChange.Emit(s)
}

// Draw paints every realized component in z order.
func (c *Canvas) Draw() {
	if c.surface == nil {
		return
	}
	c.Deps.Engine.Draw(c.surface)
}

// Focusable components get told when they become the innermost hovered one.
type Focusable interface {
	OnMouseFocus()
	OnMouseUnfocus()
}

type MouseControl struct {
	OnMouseMotion  observable.Observable[MouseEvent]
	OnMousePress   observable.Observable[MouseEvent]
	OnMouseRelease observable.Observable[MouseEvent]
	OnMouseDrag    observable.Observable[MouseEvent]
	OnMouseScroll  observable.Observable[MouseEvent]
	OnCursorChange observable.Observable[string]

	// hovered components, innermost last
	hovered *arraylist.List
	cursor  string
}

func (mc *MouseControl) OnInit() error {
	mc.hovered = arraylist.New()
	return nil
}

func (mc *MouseControl) top() Focusable {
	if v, ok := mc.hovered.Get(mc.hovered.Size() - 1); ok {
		return v.(Focusable)
	}
	return nil
}

// Focused is the innermost hovered component, nil if none.
func (mc *MouseControl) Focused() Focusable {
	return mc.top()
}

func (mc *MouseControl) FocusEnter(f Focusable) {
	if mc.hovered.IndexOf(f) >= 0 {
		return
	}
	prev := mc.top()
	mc.hovered.Add(f)
	if prev != nil {
		prev.OnMouseUnfocus()
	}
	f.OnMouseFocus()
}

func (mc *MouseControl) FocusExit(f Focusable) {
	idx := mc.hovered.IndexOf(f)
	if idx < 0 {
		return
	}
	wasTop := idx == mc.hovered.Size()-1
	mc.hovered.Remove(idx)
	if !wasTop {
		return
	}
	f.OnMouseUnfocus()
	if next := mc.top(); next != nil {
		next.OnMouseFocus()
	}
}

func (mc *MouseControl) Cursor() string {
	return mc.cursor
}

// SetCursor changes the pointer shape, "" restores the default.
func (mc *MouseControl) SetCursor(cursor string) {
	if cursor == mc.cursor {
		return
	}
	mc.cursor = cursor
	mc.OnCursorChange.Emit(cursor)
}

// TextControl routes keyboard text to the one component holding text focus.
type TextControl struct {
	OnText             observable.Observable[string]
	OnTextMotion       observable.Observable[Motion]
	OnTextMotionSelect observable.Observable[Motion]
	// fires before focus moves, so the previous holder can let go
	OnNewTextFocus observable.Signal

	focus any
}

func (tc *TextControl) TakeTextFocus(owner any) {
	tc.OnNewTextFocus.Emit()
	tc.focus = owner
}

func (tc *TextControl) ReleaseTextFocus(owner any) {
	if tc.focus == owner {
		tc.focus = nil
	}
}

func (tc *TextControl) Focus() any {
	return tc.focus
}

const textLayoutCacheSize = 512

// TextLayout measures strings for the text components of a window.
type TextLayout struct {
	cache *lru.Cache[string, *textlayout.Layout]
}

func (tl *TextLayout) OnInit() error {
	cache, err := lru.New[string, *textlayout.Layout](textLayoutCacheSize)
	if err != nil {
		return err
	}
	tl.cache = cache
	return nil
}

func (tl *TextLayout) Layout(text string) *textlayout.Layout {
	if l, ok := tl.cache.Get(text); ok {
		return l
	}
	l := textlayout.Make(text)
	tl.cache.Add(text, l)
	return l
}

func (tl *TextLayout) OnDestroy() {
	tl.cache.Purge()
}
