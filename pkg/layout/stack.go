// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package layout

import (
	"github.com/wavetermdev/guiml/pkg/geom"
)

const (
	DirectionVertical   = "vertical"
	DirectionHorizontal = "horizontal"
)

type StackProps struct {
	Direction string `json:"direction" default:"vertical"`
}

type StackChildProps struct {
	// left, right, center or stretch when vertical; top, bottom, center or
	// stretch when horizontal
	Gravity string `json:"gravity" default:"center"`
	// share of the leftover main-axis space
	Stretch float64 `json:"stretch"`
}

var StackKind = MakeKind[StackProps, StackChildProps]("stack", func() Strategy { return &Stack{} })

// Stack places intrinsically sized children one after another.
type Stack struct{}

func stackDirection(c Container) (string, error) {
	dir := propsAs[StackProps](c.LayoutProps()).Direction
	if dir != DirectionVertical && dir != DirectionHorizontal {
		return "", layoutErr("stack", "invalid direction %q", dir)
	}
	return dir, nil
}

func (s *Stack) ComputeRecommendedSize(c Container, children []Child) error {
	dir, err := stackDirection(c)
	if err != nil {
		return err
	}
	if c.SizeFixed() {
		return nil
	}
	var width, height float64
	for _, child := range children {
		if dir == DirectionVertical {
			width = max(width, child.Width())
			height += child.Height()
		} else {
			width += child.Width()
			height = max(height, child.Height())
		}
	}
	recommend(c, width, height)
	return nil
}

func (s *Stack) Layout(c Container, children []Child) error {
	dir, err := stackDirection(c)
	if err != nil {
		return err
	}
	content := c.ContentPosition()
	vertical := dir == DirectionVertical

	mainSize := func(b Box) float64 {
		if vertical {
			return b.Height()
		}
		return b.Width()
	}
	used, totalStretch := 0.0, 0.0
	for _, child := range children {
		used += mainSize(child)
		totalStretch += max(propsAs[StackChildProps](child.ChildProps()).Stretch, 0)
	}
	free := content.Height() - used
	if !vertical {
		free = content.Width() - used
	}
	free = max(free, 0)

	centerX := content.Left + content.Width()/2
	centerY := content.Top + content.Height()/2
	next := content.Top
	if !vertical {
		next = content.Left
	}
	for _, child := range children {
		cp := propsAs[StackChildProps](child.ChildProps())
		size := mainSize(child)
		if cp.Stretch > 0 && totalStretch > 0 {
			size += cp.Stretch / totalStretch * free
		}
		var pos geom.Rect
		if vertical {
			pos.Top = next
			pos.Bottom = next + size
			switch cp.Gravity {
			case "left", "stretch":
				pos.Left = content.Left
			case "right":
				pos.Left = content.Right - child.Width()
			case "center":
				pos.Left = centerX - child.Width()/2
			default:
				return layoutErr("stack", "invalid gravity %q for vertical stack", cp.Gravity)
			}
			if cp.Gravity == "stretch" {
				pos.Right = content.Right
			} else {
				pos.Right = pos.Left + child.Width()
			}
		} else {
			pos.Left = next
			pos.Right = next + size
			switch cp.Gravity {
			case "top", "stretch":
				pos.Top = content.Top
			case "bottom":
				pos.Top = content.Bottom - child.Height()
			case "center":
				pos.Top = centerY - child.Height()/2
			default:
				return layoutErr("stack", "invalid gravity %q for horizontal stack", cp.Gravity)
			}
			if cp.Gravity == "stretch" {
				pos.Bottom = content.Bottom
			} else {
				pos.Bottom = pos.Top + child.Height()
			}
		}
		next += size
		child.SetPosition(pos)
	}
	return nil
}
