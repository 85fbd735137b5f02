// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package components

import (
	"strings"

	"github.com/wavetermdev/guiml/pkg/draw"
	"github.com/wavetermdev/guiml/pkg/engine"
	"github.com/wavetermdev/guiml/pkg/geom"
	"github.com/wavetermdev/guiml/pkg/markup"
	"github.com/wavetermdev/guiml/pkg/textlayout"
)

type TextProps struct {
	InteractiveProps
	Text string `json:"text"`
	// false stops mouse selection; the no_select class sets it too
	Selectable bool       `json:"selectable" default:"true"`
	Escaped    bool       `json:"escaped"`
	Color      geom.Color `json:"color" default:"#ffffff"`
	Background geom.Color `json:"background" default:"transparent"`
	Bold       bool       `json:"bold"`
	Underline  bool       `json:"underline"`
}

type TextDeps struct {
	Mouse  *MouseControl
	Layout *TextLayout
}

// textView is the measuring and selection part shared by text and raw_input.
// Selection bounds and the last click are character offsets, -1 when unset.
type textView struct {
	owner     *engine.Base
	props     func() *TextProps
	layout    *TextLayout
	selStart  int
	selEnd    int
	lastClick int
}

func (tv *textView) init(owner *engine.Base, layout *TextLayout, props func() *TextProps) {
	tv.owner = owner
	tv.layout = layout
	tv.props = props
	tv.clearSelection()
	tv.lastClick = -1
}

func (tv *textView) displayText() string {
	p := tv.props()
	if p.Escaped {
		return markup.Unescape(p.Text)
	}
	return p.Text
}

func (tv *textView) measure() *textlayout.Layout {
	return tv.layout.Layout(tv.displayText())
}

func (tv *textView) clearSelection() {
	tv.selStart = -1
	tv.selEnd = -1
}

func (tv *textView) hasSelection() bool {
	return tv.selStart >= 0 && tv.selEnd >= 0 && tv.selStart != tv.selEnd
}

func (tv *textView) selection() (int, int) {
	return min(tv.selStart, tv.selEnd), max(tv.selStart, tv.selEnd)
}

// SelectedText returns the selected characters, "" without a selection.
func (tv *textView) SelectedText() string {
	if !tv.hasSelection() {
		return ""
	}
	text := tv.displayText()
	start, end := tv.selection()
	return text[textlayout.CharToByte(text, start):textlayout.CharToByte(text, end)]
}

// charAt is the character offset under the window point (x, y).
func (tv *textView) charAt(x float64, y float64) (int, bool) {
	pos := tv.owner.Position()
	idx, inside := tv.measure().XYToIndex(x-pos.Left, y-pos.Top)
	return textlayout.ByteToChar(tv.displayText(), idx), inside
}

func (tv *textView) mousePress(ev MouseEvent) {
	if !tv.props().Selectable || !tv.owner.Realized() || !tv.owner.Position().Contains(ev.X, ev.Y) {
		tv.clearSelection()
		tv.lastClick = -1
		return
	}
	tv.lastClick, _ = tv.charAt(ev.X, ev.Y)
	tv.selStart = tv.lastClick
	tv.selEnd = -1
}

func (tv *textView) mouseDrag(ev MouseEvent) {
	if tv.lastClick < 0 {
		return
	}
	tv.lastClick, _ = tv.charAt(ev.X, ev.Y)
	tv.selEnd = tv.lastClick
}

// draw writes the text line by line, reversing the selected characters.
func (tv *textView) draw(s draw.Surface) {
	p := tv.props()
	pos := tv.owner.Position()
	style := draw.TextStyle{Color: p.Color, Background: p.Background, Bold: p.Bold, Underline: p.Underline}
	selStart, selEnd := -1, -1
	if tv.hasSelection() {
		selStart, selEnd = tv.selection()
	}
	char := 0
	for row, line := range strings.Split(tv.displayText(), "\n") {
		x := pos.Left
		var run strings.Builder
		runSelected := false
		flush := func() {
			if run.Len() == 0 {
				return
			}
			st := style
			st.Reverse = runSelected
			s.DrawText(x, pos.Top+float64(row), run.String(), st)
			x += textlayout.Make(run.String()).Width()
			run.Reset()
		}
		for _, r := range line {
			selected := char >= selStart && char < selEnd
			if selected != runSelected {
				flush()
				runSelected = selected
			}
			run.WriteRune(r)
			char++
		}
		flush()
		char++ // newline
	}
}

// Text shows a string and lets the user select parts of it.
type Text struct {
	engine.Of[TextProps, TextDeps]
	pointer
	textView
}

func (t *Text) OnInit() error {
	t.pointer.start(&t.Base, t.Deps.Mouse, func() *InteractiveProps { return &t.Props.InteractiveProps })
	t.textView.init(&t.Base, t.Deps.Layout, func() *TextProps { return t.Props })
	t.Track(t.Deps.Mouse.OnMousePress.Subscribe(t.mousePress))
	t.Track(t.Deps.Mouse.OnMouseDrag.Subscribe(t.mouseDrag))
	return nil
}

func (t *Text) OnDestroy() {
	t.stop()
}

func (t *Text) Width() float64 {
	return t.measure().Width()
}

func (t *Text) Height() float64 {
	return t.measure().Height()
}

func (t *Text) OnDraw(s draw.Surface) {
	t.draw(s)
}
