// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package components

import (
	"fmt"
	"log"

	"github.com/wavetermdev/guiml/pkg/draw"
	"github.com/wavetermdev/guiml/pkg/engine"
	"github.com/wavetermdev/guiml/pkg/expr"
	"github.com/wavetermdev/guiml/pkg/geom"
	"github.com/wavetermdev/guiml/pkg/observable"
	"github.com/wavetermdev/guiml/pkg/textlayout"
)

type RawInputProps struct {
	TextProps
	// called with the new text after every edit
	OnText any `json:"on_text"`
	// called with typed text before it is inserted; returns the text to insert
	OnTextHook  any        `json:"on_text_hook"`
	CursorColor geom.Color `json:"cursor_color" default:"#ffffff"`
}

type RawInputDeps struct {
	Mouse  *MouseControl
	Layout *TextLayout
	Keys   *TextControl
}

// RawInput is editable text. Its text property must be bound by the parent
// for edits to survive the next frame.
type RawInput struct {
	engine.Of[RawInputProps, RawInputDeps]
	pointer
	textView

	// character offset, -1 without text focus
	cursor   int
	textSubs observable.Group
}

func (ri *RawInput) OnInit() error {
	ri.cursor = -1
	ri.pointer.start(&ri.Base, ri.Deps.Mouse, func() *InteractiveProps { return &ri.Props.InteractiveProps })
	ri.textView.init(&ri.Base, ri.Deps.Layout, func() *TextProps { return &ri.Props.TextProps })
	ri.Track(ri.Deps.Mouse.OnMousePress.Subscribe(ri.onMousePress))
	ri.Track(ri.Deps.Mouse.OnMouseDrag.Subscribe(ri.onMouseDrag))
	return nil
}

func (ri *RawInput) OnDestroy() {
	ri.releaseTextFocus()
	ri.stop()
}

func (ri *RawInput) text() string {
	return ri.Props.Text
}

func (ri *RawInput) setText(text string) {
	if err := ri.Update("text", text); err != nil {
		log.Printf("[components] raw_input text: %v\n", err)
	}
}

func (ri *RawInput) Cursor() int {
	return ri.cursor
}

func (ri *RawInput) HasTextFocus() bool {
	return ri.cursor >= 0
}

// setCursor moves the cursor; placing it takes the text focus.
func (ri *RawInput) setCursor(pos int) {
	if ri.cursor < 0 && pos >= 0 {
		ri.takeTextFocus()
	}
	ri.cursor = pos
}

func (ri *RawInput) takeTextFocus() {
	keys := ri.Deps.Keys
	keys.TakeTextFocus(ri)
	ri.textSubs.Add(keys.OnText.Subscribe(ri.onText))
	ri.textSubs.Add(keys.OnTextMotion.Subscribe(ri.onTextMotion))
	ri.textSubs.Add(keys.OnTextMotionSelect.Subscribe(ri.onTextMotionSelect))
	ri.textSubs.Add(keys.OnNewTextFocus.Subscribe(ri.releaseTextFocus))
}

func (ri *RawInput) releaseTextFocus() {
	if ri.cursor >= 0 {
		ri.Deps.Keys.ReleaseTextFocus(ri)
	}
	ri.textSubs.CancelAll()
	ri.cursor = -1
}

func (ri *RawInput) removeSelection() {
	start, end := ri.selection()
	text := ri.text()
	ri.setCursor(start)
	ri.setText(text[:textlayout.CharToByte(text, start)] + text[textlayout.CharToByte(text, end):])
	ri.clearSelection()
}

func (ri *RawInput) callHook(fn any, arg string) (any, error) {
	rtn, err := expr.CallValue(fn, arg)
	if err != nil {
		return nil, fmt.Errorf("<%s>: %w", ri.Tag(), err)
	}
	return rtn, nil
}

func (ri *RawInput) onText(text string) {
	if text == "" {
		return
	}
	if hook := ri.Props.OnTextHook; hook != nil {
		rtn, err := ri.callHook(hook, text)
		if err != nil {
			log.Printf("[components] on_text_hook: %v\n", err)
			return
		}
		text, _ = rtn.(string)
	}
	if text != "" {
		if ri.hasSelection() {
			ri.removeSelection()
		}
		cur := ri.text()
		at := textlayout.CharToByte(cur, ri.cursor)
		ri.setText(cur[:at] + text + cur[at:])
		ri.cursor += textlayout.CharLen(text)
	}
	if onText := ri.Props.OnText; onText != nil {
		if _, err := ri.callHook(onText, ri.text()); err != nil {
			log.Printf("[components] on_text: %v\n", err)
		}
	}
}

func (ri *RawInput) moveCursor(m Motion) {
	switch m {
	case MotionLeft:
		ri.cursor = max(ri.cursor-1, 0)
	case MotionRight:
		ri.cursor = min(ri.cursor+1, textlayout.CharLen(ri.text()))
	case MotionBeginningOfLine, MotionUp:
		ri.cursor = 0
	case MotionEndOfLine, MotionDown:
		ri.cursor = textlayout.CharLen(ri.text())
	}
}

func (ri *RawInput) onTextMotion(m Motion) {
	if ri.hasSelection() && (m == MotionBackspace || m == MotionDelete) {
		ri.removeSelection()
		return
	}
	ri.clearSelection()
	text := ri.text()
	at := textlayout.CharToByte(text, ri.cursor)
	switch m {
	case MotionBackspace:
		if ri.cursor > 0 {
			prev := textlayout.CharToByte(text, ri.cursor-1)
			ri.setText(text[:prev] + text[at:])
			ri.cursor--
		}
	case MotionDelete:
		if at < len(text) {
			next := textlayout.CharToByte(text, ri.cursor+1)
			ri.setText(text[:at] + text[next:])
		}
	default:
		ri.moveCursor(m)
	}
}

func (ri *RawInput) onTextMotionSelect(m Motion) {
	if ri.selStart < 0 {
		ri.selStart = ri.cursor
	}
	ri.moveCursor(m)
	ri.selEnd = ri.cursor
}

func (ri *RawInput) onMousePress(ev MouseEvent) {
	ri.mousePress(ev)
	if ri.lastClick >= 0 {
		ri.setCursor(ri.lastClick)
	}
}

func (ri *RawInput) onMouseDrag(ev MouseEvent) {
	ri.mouseDrag(ev)
	if ri.lastClick >= 0 {
		ri.setCursor(ri.lastClick)
	}
}

// Width leaves room for the cursor after the last character.
func (ri *RawInput) Width() float64 {
	return ri.measure().Width() + 1
}

func (ri *RawInput) Height() float64 {
	return ri.measure().Height()
}

func (ri *RawInput) OnDraw(s draw.Surface) {
	if ri.cursor >= 0 {
		text := ri.text()
		ri.cursor = min(ri.cursor, textlayout.CharLen(text))
		x, y := ri.measure().IndexToPos(textlayout.CharToByte(text, ri.cursor))
		pos := ri.Position()
		s.FillRect(geom.MakeRect(pos.Top+y, pos.Left+x, pos.Top+y+1, pos.Left+x+1), ri.Props.CursorColor)
	}
	ri.draw(s)
}

type InputProps struct {
	DivProps
	Text string `json:"text"`
	// called with the text when enter is pressed
	OnSubmit any `json:"on_submit"`
}

// Input wraps a raw_input and submits on enter. Without a bound text
// property it keeps the text itself.
type Input struct {
	engine.Of[InputProps, UIDeps]
	pointer

	text         string
	enterPressed bool
}

func (in *Input) OnInit() error {
	in.start(&in.Base, in.Deps.Mouse, func() *InteractiveProps { return &in.Props.InteractiveProps })
	return nil
}

func (in *Input) OnDestroy() {
	in.stop()
}

func (in *Input) Text() string {
	if in.Properties().Bound("text") {
		return in.Props.Text
	}
	return in.text
}

func (in *Input) SetText(text string) error {
	if in.Properties().Bound("text") {
		return in.Update("text", text)
	}
	in.text = text
	return nil
}

// OnTextHook swallows the newline that submits.
func (in *Input) OnTextHook(text string) string {
	if text == "\n" {
		in.enterPressed = true
		return ""
	}
	return text
}

func (in *Input) OnText(text string) {
	if !in.enterPressed {
		return
	}
	in.enterPressed = false
	if onSubmit := in.Props.OnSubmit; onSubmit != nil {
		if _, err := expr.Call(onSubmit, in.Text()); err != nil {
			log.Printf("[components] <%s> on_submit: %v\n", in.Tag(), err)
		}
	}
}

func (in *Input) WrapSize() geom.Rect {
	return in.Props.WrapSize()
}

func (in *Input) ContentPosition() geom.Rect {
	return in.Position().Inset(in.WrapSize())
}

func (in *Input) OnDraw(s draw.Surface) {
	in.Props.drawBox(s, in.Position())
}

const inputTemplate = `<input>
  <raw_input bind_text="self.text" on_text_hook="self.on_text_hook" on_text="self.on_text"/>
</input>`
