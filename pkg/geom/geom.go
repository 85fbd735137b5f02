// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// Package geom holds the value types shared by layout, style and drawing.
package geom

import "fmt"

type Rect struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Bottom float64 `json:"bottom"`
	Right  float64 `json:"right"`
}

func MakeRect(top, left, bottom, right float64) Rect {
	return Rect{Top: top, Left: left, Bottom: bottom, Right: right}
}

// Uniform returns a rect with all four edges set to v, used for margins and paddings.
func Uniform(v float64) Rect {
	return Rect{Top: v, Left: v, Bottom: v, Right: v}
}

func (r Rect) Width() float64 {
	return r.Right - r.Left
}

func (r Rect) Height() float64 {
	return r.Bottom - r.Top
}

// WithWidth keeps Left and moves Right.
func (r Rect) WithWidth(w float64) Rect {
	r.Right = r.Left + w
	return r
}

// WithHeight keeps Top and moves Bottom.
func (r Rect) WithHeight(h float64) Rect {
	r.Bottom = r.Top + h
	return r
}

// MoveTo translates the rect so its top-left corner is at (left, top), keeping its size.
func (r Rect) MoveTo(top, left float64) Rect {
	w, h := r.Width(), r.Height()
	return Rect{Top: top, Left: left, Bottom: top + h, Right: left + w}
}

// IsValid reports whether the rect has a strictly positive area.
func (r Rect) IsValid() bool {
	return r.Left < r.Right && r.Top < r.Bottom
}

func (r Rect) IsZero() bool {
	return r == Rect{}
}

// Contains is inclusive on all edges.
func (r Rect) Contains(x, y float64) bool {
	return r.Left <= x && x <= r.Right && r.Top <= y && y <= r.Bottom
}

// Inset shrinks r by the per-edge amounts in by.
func (r Rect) Inset(by Rect) Rect {
	return Rect{
		Top:    r.Top + by.Top,
		Left:   r.Left + by.Left,
		Bottom: r.Bottom - by.Bottom,
		Right:  r.Right - by.Right,
	}
}

// Add sums the edges of two rects, used to accumulate margin/border/padding.
func (r Rect) Add(o Rect) Rect {
	return Rect{Top: r.Top + o.Top, Left: r.Left + o.Left, Bottom: r.Bottom + o.Bottom, Right: r.Right + o.Right}
}

func (r Rect) String() string {
	return fmt.Sprintf("(top=%g left=%g bottom=%g right=%g)", r.Top, r.Left, r.Bottom, r.Right)
}

type Color struct {
	Red   float64 `json:"red"`
	Green float64 `json:"green"`
	Blue  float64 `json:"blue"`
	Alpha float64 `json:"alpha"`
}

var (
	Black       = Color{Alpha: 1}
	White       = Color{Red: 1, Green: 1, Blue: 1, Alpha: 1}
	Transparent = Color{}
)

func (c Color) IsTransparent() bool {
	return c.Alpha <= 0
}

// Hex renders the color as #rrggbb, dropping alpha.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", channel(c.Red), channel(c.Green), channel(c.Blue))
}

func channel(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 255
	}
	return int(v*255 + 0.5)
}

type Border struct {
	Width float64 `json:"width"`
	Color Color   `json:"color"`
}
