// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package components

import (
	"github.com/wavetermdev/guiml/pkg/draw"
	"github.com/wavetermdev/guiml/pkg/engine"
	"github.com/wavetermdev/guiml/pkg/geom"
)

type Border struct {
	Width float64    `json:"width"`
	Color geom.Color `json:"color"`
}

type DivProps struct {
	InteractiveProps
	Border     Border     `json:"border"`
	Margin     geom.Rect  `json:"margin"`
	Padding    geom.Rect  `json:"padding"`
	Background geom.Color `json:"background" default:"transparent"`
}

// WrapSize is what a box with these props adds around its content: margin,
// half the border, padding.
func (p *DivProps) WrapSize() geom.Rect {
	bw := p.Border.Width / 2
	return geom.Rect{
		Top:    p.Margin.Top + bw + p.Padding.Top,
		Left:   p.Margin.Left + bw + p.Padding.Left,
		Bottom: p.Margin.Bottom + bw + p.Padding.Bottom,
		Right:  p.Margin.Right + bw + p.Padding.Right,
	}
}

// drawBox fills the background and strokes the border of a box at pos.
func (p *DivProps) drawBox(s draw.Surface, pos geom.Rect) {
	bw := p.Border.Width / 2
	rect := geom.Rect{
		Top:    pos.Top + p.Margin.Top + bw,
		Left:   pos.Left + p.Margin.Left + bw,
		Bottom: pos.Bottom - p.Margin.Bottom - bw,
		Right:  pos.Right - p.Margin.Right - bw,
	}
	if p.Background.Alpha > 0 {
		s.FillRect(rect, p.Background)
	}
	if p.Border.Width > 0 {
		s.StrokeRect(rect, p.Border.Width, p.Border.Color)
	}
}

// Div is a box that lays out its children inside margin, border and padding.
type Div struct {
	engine.Of[DivProps, UIDeps]
	pointer
}

func (d *Div) OnInit() error {
	d.start(&d.Base, d.Deps.Mouse, func() *InteractiveProps { return &d.Props.InteractiveProps })
	return nil
}

func (d *Div) OnDestroy() {
	d.stop()
}

func (d *Div) WrapSize() geom.Rect {
	return d.Props.WrapSize()
}

func (d *Div) ContentPosition() geom.Rect {
	return d.Position().Inset(d.WrapSize())
}

func (d *Div) OnDraw(s draw.Surface) {
	d.Props.drawBox(s, d.Position())
}

// Button is a div styled for clicking.
type Button struct {
	Div
}
