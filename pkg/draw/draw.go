// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// Package draw defines the drawing surface components paint on.
package draw

import (
	"fmt"

	"github.com/wavetermdev/guiml/pkg/geom"
)

type TextStyle struct {
	Color      geom.Color
	Background geom.Color
	FontSize   float64
	Bold       bool
	Underline  bool
	// swap foreground and background, used for selections and cursors
	Reverse bool
}

// Surface receives draw calls. Coordinates are in the host's units (cells
// for the terminal backend).
type Surface interface {
	Size() (float64, float64)
	Clear(c geom.Color)
	FillRect(r geom.Rect, c geom.Color)
	StrokeRect(r geom.Rect, width float64, c geom.Color)
	// DrawText draws text with its top-left corner at (x, y).
	DrawText(x float64, y float64, text string, style TextStyle)
}

type Op struct {
	Kind  string
	Rect  geom.Rect
	Color geom.Color
	Width float64
	X, Y  float64
	Text  string
	Style TextStyle
}

func (op Op) String() string {
	switch op.Kind {
	case "text":
		return fmt.Sprintf("text(%g,%g %q)", op.X, op.Y, op.Text)
	case "clear":
		return fmt.Sprintf("clear(%s)", op.Color.Hex())
	}
	return fmt.Sprintf("%s(%s %s)", op.Kind, op.Rect, op.Color.Hex())
}

// Recorder is a Surface that keeps every call, for tests and "guiml tree".
type Recorder struct {
	Width  float64
	Height float64
	Ops    []Op
}

func MakeRecorder(width float64, height float64) *Recorder {
	return &Recorder{Width: width, Height: height}
}

func (r *Recorder) Size() (float64, float64) {
	return r.Width, r.Height
}

func (r *Recorder) Clear(c geom.Color) {
	r.Ops = append(r.Ops, Op{Kind: "clear", Color: c})
}

func (r *Recorder) FillRect(rect geom.Rect, c geom.Color) {
	r.Ops = append(r.Ops, Op{Kind: "fill", Rect: rect, Color: c})
}

func (r *Recorder) StrokeRect(rect geom.Rect, width float64, c geom.Color) {
	r.Ops = append(r.Ops, Op{Kind: "stroke", Rect: rect, Width: width, Color: c})
}

func (r *Recorder) DrawText(x float64, y float64, text string, style TextStyle) {
	r.Ops = append(r.Ops, Op{Kind: "text", X: x, Y: y, Text: text, Style: style})
}

// Texts returns the strings drawn so far, in order.
func (r *Recorder) Texts() []string {
	var rtn []string
	for _, op := range r.Ops {
		if op.Kind == "text" {
			rtn = append(rtn, op.Text)
		}
	}
	return rtn
}

func (r *Recorder) Reset() {
	r.Ops = nil
}
