// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// Package termui runs an engine inside a terminal. Frames are driven by a
// bubbletea tick on the program's event loop goroutine, which is also where
// keyboard and mouse input is dispatched to the bound window.
package termui

import (
	"os"

	"github.com/wavetermdev/guiml/pkg/components"
	"github.com/wavetermdev/guiml/pkg/draw"
	"golang.org/x/term"
)

const (
	DefaultWidth  = 80
	DefaultHeight = 24
)

// Terminal is the components.Host of a terminal program.
type Terminal struct {
	surface *CellSurface
	sink    components.EventSink
	cursor  string
	view    string
}

var _ components.Host = (*Terminal)(nil)

func MakeTerminal(width int, height int) *Terminal {
	return &Terminal{surface: MakeCellSurface(width, height)}
}

// StdoutSize reports the size of the controlling terminal, or the default
// size when stdout is not one.
func StdoutSize() (int, int) {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return DefaultWidth, DefaultHeight
	}
	width, height, err := term.GetSize(fd)
	if err != nil || width <= 0 || height <= 0 {
		return DefaultWidth, DefaultHeight
	}
	return width, height
}

func (t *Terminal) Size() (float64, float64) {
	return t.surface.Size()
}

func (t *Terminal) Surface() draw.Surface {
	return t.surface
}

func (t *Terminal) Cells() *CellSurface {
	return t.surface
}

// SetCursor records the requested pointer shape; terminals keep their own.
func (t *Terminal) SetCursor(cursor string) {
	t.cursor = cursor
}

func (t *Terminal) Cursor() string {
	return t.cursor
}

func (t *Terminal) Present() {
	t.view = t.surface.Render()
}

// View is the content of the latest Present.
func (t *Terminal) View() string {
	return t.view
}

func (t *Terminal) Bind(sink components.EventSink) func() {
	t.sink = sink
	return func() {
		if t.sink == sink {
			t.sink = nil
		}
	}
}

func (t *Terminal) Sink() components.EventSink {
	return t.sink
}

func (t *Terminal) resize(width int, height int) {
	t.surface.Resize(width, height)
	if t.sink != nil {
		t.sink.Resize(float64(width), float64(height))
	}
}
