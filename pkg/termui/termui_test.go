// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package termui

import (
	"reflect"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wavetermdev/guiml/pkg/components"
	"github.com/wavetermdev/guiml/pkg/draw"
	"github.com/wavetermdev/guiml/pkg/engine"
	"github.com/wavetermdev/guiml/pkg/geom"
	"github.com/wavetermdev/guiml/pkg/inject"
	"github.com/wavetermdev/guiml/pkg/markup"
)

func TestCellSurface(t *testing.T) {
	s := MakeCellSurface(10, 3)
	s.DrawText(1, 0, "hi 日本", draw.TextStyle{Color: geom.White})
	assert.Equal(t, " hi 日本", s.Text(0))

	s.StrokeRect(geom.MakeRect(1, 0, 3, 4), 1, geom.White)
	assert.Equal(t, "┌──┐", s.Text(1))
	assert.Equal(t, "└──┘", s.Text(2))

	s.FillRect(geom.MakeRect(0, 0, 1, 2), geom.Color{Red: 1, Alpha: 1})
	assert.Equal(t, geom.Color{Red: 1, Alpha: 1}, s.at(1, 0).bg)
	assert.Equal(t, geom.Color{}, s.at(2, 0).bg)

	s.Clear(geom.Black)
	assert.Equal(t, "", s.Text(0))
	assert.Equal(t, "", s.Text(5))
	w, h := s.Size()
	assert.Equal(t, 10.0, w)
	assert.Equal(t, 3.0, h)
}

type recordingSink struct {
	events []string
}

func (r *recordingSink) MouseMotion(ev components.MouseEvent)  { r.add("motion", ev) }
func (r *recordingSink) MousePress(ev components.MouseEvent)   { r.add("press", ev) }
func (r *recordingSink) MouseRelease(ev components.MouseEvent) { r.add("release", ev) }
func (r *recordingSink) MouseDrag(ev components.MouseEvent)    { r.add("drag", ev) }
func (r *recordingSink) MouseScroll(ev components.MouseEvent)  { r.add("scroll", ev) }
func (r *recordingSink) Text(text string)                      { r.events = append(r.events, "text:"+text) }
func (r *recordingSink) Resize(width float64, height float64)  { r.events = append(r.events, "resize") }

func (r *recordingSink) TextMotion(m components.Motion, selecting bool) {
	if selecting {
		r.events = append(r.events, "select:"+m.String())
		return
	}
	r.events = append(r.events, "motion:"+m.String())
}

func (r *recordingSink) add(kind string, ev components.MouseEvent) {
	r.events = append(r.events, kind)
}

func TestDispatch(t *testing.T) {
	sink := &recordingSink{}
	assert.True(t, dispatchKey(sink, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")}))
	assert.True(t, dispatchKey(sink, tea.KeyMsg{Type: tea.KeyEnter}))
	assert.True(t, dispatchKey(sink, tea.KeyMsg{Type: tea.KeyBackspace}))
	assert.True(t, dispatchKey(sink, tea.KeyMsg{Type: tea.KeyShiftLeft}))
	assert.False(t, dispatchKey(sink, tea.KeyMsg{Type: tea.KeyF5}))

	dispatchMouse(sink, tea.MouseMsg{X: 1, Y: 2, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	dispatchMouse(sink, tea.MouseMsg{X: 1, Y: 2, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	dispatchMouse(sink, tea.MouseMsg{X: 1, Y: 2, Action: tea.MouseActionMotion})
	dispatchMouse(sink, tea.MouseMsg{X: 1, Y: 2, Action: tea.MouseActionRelease})
	assert.Equal(t, []string{
		"text:a", "text:\n", "motion:backspace", "select:left",
		"press", "scroll", "motion", "release",
	}, sink.events)
}

func TestModelRunsFrames(t *testing.T) {
	r := engine.NewRegistry()
	require.NoError(t, components.Register(r))
	term := MakeTerminal(20, 4)
	globals := inject.NewLayer("")
	globals.Provide(term, reflect.TypeFor[components.Host]())
	e, err := engine.NewEngine(r, engine.Options{
		Root:    markup.MustParse(`<application><window><text text="hello"/></window></application>`),
		Globals: globals,
		Reload:  func() (bool, error) { return false, nil },
	})
	require.NoError(t, err)

	m := newModel(e, term, Options{})
	require.NotNil(t, m.Init())
	_, cmd := m.Update(tickMsg(time.Now()))
	assert.NotNil(t, cmd)
	require.NoError(t, m.frameErr)
	assert.Contains(t, m.View(), "hello")
	assert.NotNil(t, term.Sink())

	_, cmd = m.Update(tea.WindowSizeMsg{Width: 30, Height: 5})
	assert.Nil(t, cmd)
	w, _ := term.Size()
	assert.Equal(t, 30.0, w)

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())

	e.Shutdown()
	assert.Nil(t, term.Sink())
}
