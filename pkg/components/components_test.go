// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package components

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wavetermdev/guiml/pkg/draw"
	"github.com/wavetermdev/guiml/pkg/engine"
	"github.com/wavetermdev/guiml/pkg/geom"
	"github.com/wavetermdev/guiml/pkg/inject"
	"github.com/wavetermdev/guiml/pkg/markup"
	"github.com/wavetermdev/guiml/pkg/resource"
)

type fakeHost struct {
	surface  *draw.Recorder
	cursor   string
	presents int
	sink     EventSink
}

func (h *fakeHost) Size() (float64, float64) {
	return h.surface.Size()
}

func (h *fakeHost) Surface() draw.Surface {
	return h.surface
}

func (h *fakeHost) SetCursor(cursor string) {
	h.cursor = cursor
}

func (h *fakeHost) Present() {
	h.presents++
}

func (h *fakeHost) Bind(sink EventSink) func() {
	h.sink = sink
	return func() { h.sink = nil }
}

type demo struct {
	engine.Of[engine.NoProps, engine.NoDeps]
	Value     string
	clicks    int
	submitted []string
}

func (d *demo) Click() {
	d.clicks++
}

func (d *demo) Submit(text string) {
	d.submitted = append(d.submitted, text)
}

const demoTemplate = `<demo>
  <button on_click="self.click"><text text="go"/></button>
  <input bind_text="self.value" on_submit="self.submit"/>
</demo>`

func newDemo(t *testing.T) (*engine.Engine, *fakeHost) {
	t.Helper()
	r := engine.NewRegistry()
	require.NoError(t, Register(r))
	require.NoError(t, r.Register("demo", func() engine.Component { return &demo{} }, &engine.ComponentOpts{
		Template: resource.NewRawTemplate(markup.MustParse(demoTemplate)),
		Style:    resource.MustParseRawStyle("demo:\n  layout: stack\n"),
	}))
	host := &fakeHost{surface: draw.MakeRecorder(80, 24)}
	globals := inject.NewLayer("")
	globals.Provide(host, reflect.TypeFor[Host]())
	e, err := engine.NewEngine(r, engine.Options{
		Root:    markup.MustParse(`<application><window><demo/></window></application>`),
		Globals: globals,
		Reload:  func() (bool, error) { return false, nil },
	})
	require.NoError(t, err)
	require.NoError(t, e.Frame(engine.DefaultTick))
	return e, host
}

func find[T engine.Component](t *testing.T, e *engine.Engine) T {
	t.Helper()
	comp, ok := engine.Find[T](e)
	require.True(t, ok, "%T not found", comp)
	return comp
}

func center(r geom.Rect) (float64, float64) {
	return r.Left + r.Width()/2, r.Top + r.Height()/2
}

func TestWindowFollowsHost(t *testing.T) {
	e, host := newDemo(t)
	win := find[*Window](t, e)
	assert.Equal(t, geom.MakeRect(0, 0, 24, 80), win.Position())
	assert.Equal(t, 1, win.Redraws())
	assert.Equal(t, 1, host.presents)
	assert.Same(t, win, host.sink)
	assert.Contains(t, host.surface.Texts(), "go")

	e.Shutdown()
	assert.Nil(t, host.sink)
}

func TestButtonClickAndHover(t *testing.T) {
	e, host := newDemo(t)
	d := find[*demo](t, e)
	btn := find[*Button](t, e)
	pos := btn.Position()
	require.True(t, pos.IsValid(), "button at %s", pos)

	x, y := center(pos)
	host.sink.MouseRelease(MouseEvent{X: x, Y: y, Button: ButtonLeft})
	assert.Equal(t, 1, d.clicks)
	host.sink.MouseRelease(MouseEvent{X: 79, Y: 23, Button: ButtonLeft})
	assert.Equal(t, 1, d.clicks)

	// on the border, away from the label
	host.sink.MouseMotion(MouseEvent{X: pos.Left + 0.2, Y: pos.Top + 0.2})
	assert.True(t, btn.Hovered())
	assert.True(t, btn.HasClass(ClassHover))
	assert.True(t, btn.HasClass(ClassMouseFocus))
	assert.Equal(t, "hand", host.cursor)

	host.sink.MouseMotion(MouseEvent{X: 79, Y: 23})
	assert.False(t, btn.Hovered())
	assert.False(t, btn.HasClass(ClassHover))
	assert.Equal(t, "", host.cursor)
}

func TestInputTypingAndSubmit(t *testing.T) {
	e, host := newDemo(t)
	d := find[*demo](t, e)
	ri := find[*RawInput](t, e)
	in := find[*Input](t, e)

	x, y := center(ri.Position())
	host.sink.MousePress(MouseEvent{X: x, Y: y, Button: ButtonLeft})
	host.sink.MouseRelease(MouseEvent{X: x, Y: y, Button: ButtonLeft})
	require.True(t, ri.HasTextFocus())

	host.sink.Text("h")
	host.sink.Text("ä")
	host.sink.Text("i")
	assert.Equal(t, "häi", d.Value)
	assert.Equal(t, "häi", in.Text())
	assert.Equal(t, 3, ri.Cursor())

	host.sink.TextMotion(MotionLeft, false)
	host.sink.TextMotion(MotionBackspace, false)
	assert.Equal(t, "hi", d.Value)
	assert.Equal(t, 1, ri.Cursor())

	host.sink.TextMotion(MotionEndOfLine, true)
	assert.Equal(t, "i", ri.SelectedText())
	host.sink.Text("o")
	assert.Equal(t, "ho", d.Value)

	host.sink.Text("\n")
	assert.Equal(t, []string{"ho"}, d.submitted)
	assert.Equal(t, "ho", d.Value)

	// the value survives the next frame through the binding
	require.NoError(t, e.Frame(engine.DefaultTick))
	assert.Equal(t, "ho", ri.Props.Text)
	assert.True(t, ri.HasTextFocus())
}

func TestTextFocusMovesBetweenInputs(t *testing.T) {
	keys := &TextControl{}
	a := &RawInput{cursor: -1}
	a.Deps.Keys = keys
	b := &RawInput{cursor: -1}
	b.Deps.Keys = keys

	a.setCursor(0)
	assert.Same(t, a, keys.Focus())
	b.setCursor(0)
	assert.Same(t, b, keys.Focus())
	assert.False(t, a.HasTextFocus())
	assert.Equal(t, 1, keys.OnText.Len())
	assert.Equal(t, 1, keys.OnNewTextFocus.Len())
}

func TestMouseFocusStack(t *testing.T) {
	focusLog = nil
	mc := &MouseControl{}
	require.NoError(t, mc.OnInit())
	outer := &recordingFocus{name: "outer"}
	inner := &recordingFocus{name: "inner"}

	mc.FocusEnter(outer)
	mc.FocusEnter(inner)
	assert.Equal(t, Focusable(inner), mc.Focused())
	mc.FocusExit(inner)
	assert.Equal(t, Focusable(outer), mc.Focused())
	mc.FocusExit(outer)
	assert.Nil(t, mc.Focused())
	assert.Equal(t, []string{"+outer", "-outer", "+inner", "-inner", "+outer", "-outer"}, focusLog)
}

var focusLog []string

type recordingFocus struct {
	name string
}

func (f *recordingFocus) OnMouseFocus() {
	focusLog = append(focusLog, "+"+f.name)
}

func (f *recordingFocus) OnMouseUnfocus() {
	focusLog = append(focusLog, "-"+f.name)
}

func TestDivWrapSize(t *testing.T) {
	p := &DivProps{
		Border:  Border{Width: 2},
		Margin:  geom.Uniform(1),
		Padding: geom.MakeRect(1, 2, 1, 2),
	}
	assert.Equal(t, geom.MakeRect(3, 4, 3, 4), p.WrapSize())

	rec := draw.MakeRecorder(20, 20)
	p.Background = geom.White
	p.drawBox(rec, geom.MakeRect(0, 0, 10, 10))
	require.Len(t, rec.Ops, 2)
	assert.Equal(t, geom.MakeRect(2, 2, 8, 8), rec.Ops[0].Rect)
	assert.Equal(t, "stroke", rec.Ops[1].Kind)
}
