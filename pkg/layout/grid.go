// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package layout

import (
	"github.com/wavetermdev/guiml/pkg/geom"
)

type GridProps struct {
	Rows int `json:"rows" default:"1"`
	Cols int `json:"cols" default:"1"`
}

type GridChildProps struct {
	Row     int `json:"row"`
	RowSpan int `json:"rowspan" default:"1"`
	Col     int `json:"col"`
	ColSpan int `json:"colspan" default:"1"`
}

var GridKind = MakeKind[GridProps, GridChildProps]("grid", func() Strategy { return &Grid{} })

// Grid divides the content rectangle into rows x cols equal cells.
type Grid struct{}

func gridProps(c Container) (*GridProps, error) {
	gp := propsAs[GridProps](c.LayoutProps())
	if gp.Rows <= 0 || gp.Cols <= 0 {
		return nil, layoutErr("grid", "invalid grid size %dx%d", gp.Rows, gp.Cols)
	}
	return gp, nil
}

// ComputeRecommendedSize keeps a position that already has a size.
func (g *Grid) ComputeRecommendedSize(c Container, children []Child) error {
	gp, err := gridProps(c)
	if err != nil {
		return err
	}
	pos := c.Position()
	if c.SizeFixed() || (pos.Width() != 0 && pos.Height() != 0) {
		return nil
	}
	var cellW, cellH float64
	for _, child := range children {
		cp := propsAs[GridChildProps](child.ChildProps())
		cellW = max(cellW, child.Width()/float64(max(cp.ColSpan, 1)))
		cellH = max(cellH, child.Height()/float64(max(cp.RowSpan, 1)))
	}
	recommend(c, float64(gp.Cols)*cellW, float64(gp.Rows)*cellH)
	return nil
}

func (g *Grid) Layout(c Container, children []Child) error {
	gp, err := gridProps(c)
	if err != nil {
		return err
	}
	content := c.ContentPosition()
	if !content.IsValid() {
		return layoutErr("grid", "content rectangle %s is degenerate", content)
	}
	colPos := func(col int) float64 {
		return float64(col)*content.Width()/float64(gp.Cols) + content.Left
	}
	rowPos := func(row int) float64 {
		return float64(row)*content.Height()/float64(gp.Rows) + content.Top
	}
	for _, child := range children {
		cp := propsAs[GridChildProps](child.ChildProps())
		child.SetPosition(geom.MakeRect(
			rowPos(cp.Row),
			colPos(cp.Col),
			rowPos(cp.Row+cp.RowSpan),
			colPos(cp.Col+cp.ColSpan),
		))
	}
	return nil
}
