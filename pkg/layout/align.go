// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package layout

import (
	"strings"

	"github.com/wavetermdev/guiml/pkg/geom"
)

var alignments = map[string]bool{
	"top left": true, "top": true, "top right": true,
	"left": true, "center": true, "right": true,
	"bottom left": true, "bottom": true, "bottom right": true,
}

type AlignProps struct{}

type AlignChildProps struct {
	Alignment string `json:"alignment" default:"center"`
	HStretch  bool   `json:"hstretch"`
	VStretch  bool   `json:"vstretch"`
}

var AlignKind = MakeKind[AlignProps, AlignChildProps]("align", func() Strategy { return &Align{} })

// Align places every child independently at one of nine positions.
type Align struct{}

func (a *Align) ComputeRecommendedSize(c Container, children []Child) error {
	if c.SizeFixed() {
		return nil
	}
	var width, height float64
	for _, child := range children {
		width = max(width, child.Width())
		height = max(height, child.Height())
	}
	recommend(c, width, height)
	return nil
}

func (a *Align) Layout(c Container, children []Child) error {
	content := c.ContentPosition()
	centerX := content.Left + content.Width()/2
	centerY := content.Top + content.Height()/2
	for _, child := range children {
		cp := propsAs[AlignChildProps](child.ChildProps())
		if !alignments[cp.Alignment] {
			return layoutErr("align", "unknown alignment %q", cp.Alignment)
		}
		w, h := child.Width(), child.Height()
		pos := geom.MakeRect(centerY-h/2, centerX-w/2, 0, 0)
		for _, part := range strings.Fields(cp.Alignment) {
			switch part {
			case "top":
				pos.Top = content.Top
			case "bottom":
				pos.Top = content.Bottom - h
			case "left":
				pos.Left = content.Left
			case "right":
				pos.Left = content.Right - w
			}
		}
		pos = pos.WithWidth(w).WithHeight(h)
		if cp.HStretch {
			pos.Left, pos.Right = content.Left, content.Right
		}
		if cp.VStretch {
			pos.Top, pos.Bottom = content.Top, content.Bottom
		}
		child.SetPosition(pos)
	}
	return nil
}
