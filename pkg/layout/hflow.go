// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package layout

import (
	"github.com/wavetermdev/guiml/pkg/geom"
)

type HFlowProps struct{}

type HFlowChildProps struct{}

var HFlowKind = MakeKind[HFlowProps, HFlowChildProps]("hflow", func() Strategy { return &HFlow{} })

// HFlow places children left to right and wraps to a new line when a child
// would cross the right edge of the content rectangle.
type HFlow struct{}

// ComputeRecommendedSize assumes a single line; the container's parent
// decides the final width.
func (f *HFlow) ComputeRecommendedSize(c Container, children []Child) error {
	if c.SizeFixed() {
		return nil
	}
	var width, height float64
	for _, child := range children {
		width += child.Width()
		height = max(height, child.Height())
	}
	recommend(c, width, height)
	return nil
}

func (f *HFlow) Layout(c Container, children []Child) error {
	content := c.ContentPosition()
	x, y := content.Left, content.Top
	lineHeight := 0.0
	for _, child := range children {
		w, h := child.Width(), child.Height()
		if x+w > content.Right && x > content.Left {
			x = content.Left
			y += lineHeight
			lineHeight = 0
		}
		child.SetPosition(geom.MakeRect(y, x, y+h, x+w))
		x += w
		lineHeight = max(lineHeight, h)
	}
	return nil
}
