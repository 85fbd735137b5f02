// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package termui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/wavetermdev/guiml/pkg/components"
)

type keyMotion struct {
	motion    components.Motion
	selecting bool
}

var keyMotions = map[tea.KeyType]keyMotion{
	tea.KeyLeft:       {motion: components.MotionLeft},
	tea.KeyRight:      {motion: components.MotionRight},
	tea.KeyUp:         {motion: components.MotionUp},
	tea.KeyDown:       {motion: components.MotionDown},
	tea.KeyHome:       {motion: components.MotionBeginningOfLine},
	tea.KeyEnd:        {motion: components.MotionEndOfLine},
	tea.KeyCtrlA:      {motion: components.MotionBeginningOfLine},
	tea.KeyCtrlE:      {motion: components.MotionEndOfLine},
	tea.KeyBackspace:  {motion: components.MotionBackspace},
	tea.KeyDelete:     {motion: components.MotionDelete},
	tea.KeyShiftLeft:  {motion: components.MotionLeft, selecting: true},
	tea.KeyShiftRight: {motion: components.MotionRight, selecting: true},
	tea.KeyShiftUp:    {motion: components.MotionUp, selecting: true},
	tea.KeyShiftDown:  {motion: components.MotionDown, selecting: true},
	tea.KeyShiftHome:  {motion: components.MotionBeginningOfLine, selecting: true},
	tea.KeyShiftEnd:   {motion: components.MotionEndOfLine, selecting: true},
}

// dispatchKey sends a key to sink. It returns false for keys that mean
// nothing to the components.
func dispatchKey(sink components.EventSink, msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyRunes:
		sink.Text(string(msg.Runes))
		return true
	case tea.KeySpace:
		sink.Text(" ")
		return true
	case tea.KeyEnter:
		sink.Text("\n")
		return true
	case tea.KeyTab:
		sink.Text("\t")
		return true
	}
	if km, ok := keyMotions[msg.Type]; ok {
		sink.TextMotion(km.motion, km.selecting)
		return true
	}
	return false
}

var mouseButtons = map[tea.MouseButton]components.MouseButton{
	tea.MouseButtonNone:      components.ButtonNone,
	tea.MouseButtonLeft:      components.ButtonLeft,
	tea.MouseButtonMiddle:    components.ButtonMiddle,
	tea.MouseButtonRight:     components.ButtonRight,
	tea.MouseButtonWheelUp:   components.ButtonWheelUp,
	tea.MouseButtonWheelDown: components.ButtonWheelDown,
}

func dispatchMouse(sink components.EventSink, msg tea.MouseMsg) {
	ev := components.MouseEvent{
		X:      float64(msg.X),
		Y:      float64(msg.Y),
		Button: mouseButtons[msg.Button],
		Mods:   components.Modifiers{Shift: msg.Shift, Ctrl: msg.Ctrl, Alt: msg.Alt},
	}
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			ev.DY = -1
			sink.MouseScroll(ev)
		case tea.MouseButtonWheelDown:
			ev.DY = 1
			sink.MouseScroll(ev)
		default:
			sink.MousePress(ev)
		}
	case tea.MouseActionRelease:
		sink.MouseRelease(ev)
	case tea.MouseActionMotion:
		sink.MouseMotion(ev)
	}
}
