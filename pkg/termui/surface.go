// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package termui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/wavetermdev/guiml/pkg/draw"
	"github.com/wavetermdev/guiml/pkg/geom"
)

type cell struct {
	ch rune
	// 0 for the right half of a wide rune
	width     int
	fg        geom.Color
	bg        geom.Color
	bold      bool
	underline bool
	reverse   bool
}

func (c cell) sameStyle(o cell) bool {
	return c.fg == o.fg && c.bg == o.bg && c.bold == o.bold && c.underline == o.underline && c.reverse == o.reverse
}

func (c cell) style() lipgloss.Style {
	st := lipgloss.NewStyle()
	if c.fg.Alpha > 0 {
		st = st.Foreground(lipgloss.Color(c.fg.Hex()))
	}
	if c.bg.Alpha > 0 {
		st = st.Background(lipgloss.Color(c.bg.Hex()))
	}
	return st.Bold(c.bold).Underline(c.underline).Reverse(c.reverse)
}

// CellSurface is a draw.Surface over a grid of terminal cells. Coordinates
// are cell indexes; fractional values are rounded down.
type CellSurface struct {
	width  int
	height int
	cells  []cell
	blank  cell
}

func MakeCellSurface(width int, height int) *CellSurface {
	s := &CellSurface{}
	s.Resize(width, height)
	return s
}

func (s *CellSurface) Resize(width int, height int) {
	s.width = max(width, 0)
	s.height = max(height, 0)
	s.cells = make([]cell, s.width*s.height)
	s.Clear(s.blank.bg)
}

func (s *CellSurface) Size() (float64, float64) {
	return float64(s.width), float64(s.height)
}

func (s *CellSurface) at(x int, y int) *cell {
	if x < 0 || y < 0 || x >= s.width || y >= s.height {
		return nil
	}
	return &s.cells[y*s.width+x]
}

func (s *CellSurface) Clear(c geom.Color) {
	s.blank = cell{ch: ' ', width: 1, bg: c}
	for i := range s.cells {
		s.cells[i] = s.blank
	}
}

func toCell(v float64) int {
	return int(math.Floor(v))
}

// cellRange returns the cells a rect covers: [x0, x1) x [y0, y1).
func cellRange(r geom.Rect) (int, int, int, int) {
	return toCell(r.Left), toCell(r.Top), int(math.Ceil(r.Right)), int(math.Ceil(r.Bottom))
}

func (s *CellSurface) FillRect(r geom.Rect, c geom.Color) {
	if c.Alpha <= 0 {
		return
	}
	x0, y0, x1, y1 := cellRange(r)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if cl := s.at(x, y); cl != nil {
				cl.bg = c
			}
		}
	}
}

func (s *CellSurface) setRune(x int, y int, ch rune, fg geom.Color) {
	if cl := s.at(x, y); cl != nil {
		cl.ch = ch
		cl.width = 1
		cl.fg = fg
	}
}

// StrokeRect draws a box with line-drawing characters along the outermost
// cells of r. The width is ignored, terminal lines are one cell wide.
func (s *CellSurface) StrokeRect(r geom.Rect, width float64, c geom.Color) {
	x0, y0, x1, y1 := cellRange(r)
	x1--
	y1--
	if x1 < x0 || y1 < y0 {
		return
	}
	for x := x0 + 1; x < x1; x++ {
		s.setRune(x, y0, '─', c)
		s.setRune(x, y1, '─', c)
	}
	for y := y0 + 1; y < y1; y++ {
		s.setRune(x0, y, '│', c)
		s.setRune(x1, y, '│', c)
	}
	s.setRune(x0, y0, '┌', c)
	s.setRune(x1, y0, '┐', c)
	s.setRune(x0, y1, '└', c)
	s.setRune(x1, y1, '┘', c)
}

func (s *CellSurface) DrawText(x float64, y float64, text string, style draw.TextStyle) {
	cx, cy := toCell(x), toCell(y)
	for _, ch := range text {
		w := runewidth.RuneWidth(ch)
		if w == 0 {
			continue
		}
		if cl := s.at(cx, cy); cl != nil {
			cl.ch = ch
			cl.width = w
			cl.fg = style.Color
			if style.Background.Alpha > 0 {
				cl.bg = style.Background
			}
			cl.bold = style.Bold
			cl.underline = style.Underline
			cl.reverse = style.Reverse
			for i := 1; i < w; i++ {
				if rest := s.at(cx+i, cy); rest != nil {
					*rest = *cl
					rest.width = 0
				}
			}
		}
		cx += w
	}
}

// Text returns row y without styling, trailing blanks removed.
func (s *CellSurface) Text(y int) string {
	var sb strings.Builder
	for x := 0; x < s.width; x++ {
		if cl := s.at(x, y); cl != nil && cl.width > 0 {
			sb.WriteRune(cl.ch)
		}
	}
	return strings.TrimRight(sb.String(), " ")
}

// Render returns the grid as styled terminal lines.
func (s *CellSurface) Render() string {
	lines := make([]string, s.height)
	for y := 0; y < s.height; y++ {
		var line strings.Builder
		var run strings.Builder
		var runCell cell
		flush := func() {
			if run.Len() > 0 {
				line.WriteString(runCell.style().Render(run.String()))
				run.Reset()
			}
		}
		for x := 0; x < s.width; x++ {
			cl := s.cells[y*s.width+x]
			if cl.width == 0 {
				continue
			}
			if run.Len() > 0 && !cl.sameStyle(runCell) {
				flush()
			}
			runCell = cl
			run.WriteRune(cl.ch)
		}
		flush()
		lines[y] = line.String()
	}
	return strings.Join(lines, "\n")
}

func (s *CellSurface) String() string {
	return fmt.Sprintf("cells(%dx%d)", s.width, s.height)
}
