// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package components

import (
	"github.com/wavetermdev/guiml/pkg/draw"
)

type MouseButton int

const (
	ButtonNone MouseButton = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
	ButtonWheelUp
	ButtonWheelDown
)

type Modifiers struct {
	Shift bool
	Ctrl  bool
	Alt   bool
}

// MouseEvent coordinates are relative to the window's top-left corner.
type MouseEvent struct {
	X      float64
	Y      float64
	DX     float64
	DY     float64
	Button MouseButton
	Mods   Modifiers
}

// Motion is a cursor movement or deletion key.
type Motion int

const (
	MotionLeft Motion = iota
	MotionRight
	MotionUp
	MotionDown
	MotionBeginningOfLine
	MotionEndOfLine
	MotionBackspace
	MotionDelete
)

var motionNames = map[Motion]string{
	MotionLeft:            "left",
	MotionRight:           "right",
	MotionUp:              "up",
	MotionDown:            "down",
	MotionBeginningOfLine: "home",
	MotionEndOfLine:       "end",
	MotionBackspace:       "backspace",
	MotionDelete:          "delete",
}

func (m Motion) String() string {
	if name, ok := motionNames[m]; ok {
		return name
	}
	return "unknown"
}

// EventSink receives input from the host, on the frame goroutine.
type EventSink interface {
	MouseMotion(ev MouseEvent)
	MousePress(ev MouseEvent)
	MouseRelease(ev MouseEvent)
	MouseDrag(ev MouseEvent)
	MouseScroll(ev MouseEvent)
	Text(text string)
	TextMotion(m Motion, selecting bool)
	Resize(width float64, height float64)
}

// Host is the windowing backend. It is provided in the outermost injectable
// layer and used by the window component.
type Host interface {
	Size() (float64, float64)
	Surface() draw.Surface
	SetCursor(cursor string)
	// Present shows what was drawn since the last call.
	Present()
	// Bind routes the host's input events to sink until the returned
	// function is called.
	Bind(sink EventSink) func()
}
