// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// Package textlayout measures text on a cell grid. Every rune occupies
// runewidth cells horizontally and every line one cell vertically.
package textlayout

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// fraction of a cell past which a hit counts for the following character
const TrailingThreshold = 0.6

type line struct {
	start int // byte offset of the line in the text
	text  string
	width float64
}

// Layout is an immutable measurement of one string.
type Layout struct {
	text  string
	lines []line
	cond  *runewidth.Condition
}

func Make(text string) *Layout {
	cond := runewidth.NewCondition()
	cond.EastAsianWidth = false
	l := &Layout{text: text, cond: cond}
	start := 0
	for _, s := range strings.Split(text, "\n") {
		l.lines = append(l.lines, line{start: start, text: s, width: float64(cond.StringWidth(s))})
		start += len(s) + 1
	}
	return l
}

func (l *Layout) Text() string {
	return l.text
}

func (l *Layout) Width() float64 {
	var w float64
	for _, ln := range l.lines {
		w = max(w, ln.width)
	}
	return w
}

func (l *Layout) Height() float64 {
	return float64(len(l.lines))
}

func (l *Layout) Lines() []string {
	rtn := make([]string, len(l.lines))
	for i, ln := range l.lines {
		rtn[i] = ln.text
	}
	return rtn
}

// IndexToPos returns the cell where the character starting at byte index
// begins. Indexes past the end map to the end of the last line.
func (l *Layout) IndexToPos(index int) (float64, float64) {
	for i, ln := range l.lines {
		if index > ln.start+len(ln.text) && i < len(l.lines)-1 {
			continue
		}
		rel := min(max(index-ln.start, 0), len(ln.text))
		return float64(l.cond.StringWidth(ln.text[:rel])), float64(i)
	}
	return 0, 0
}

// XYToIndex returns the byte index of the character at cell (x, y),
// relative to the layout's origin. A hit on the trailing part of a
// character yields the index after it. inside is false when the point is
// outside the text's extent; the index is then clamped to the nearest line.
func (l *Layout) XYToIndex(x float64, y float64) (index int, inside bool) {
	row := int(y)
	inside = y >= 0 && x >= 0 && row < len(l.lines)
	row = min(max(row, 0), len(l.lines)-1)
	ln := l.lines[row]
	if x >= ln.width {
		return ln.start + len(ln.text), inside && x < ln.width
	}
	col := 0.0
	for off, r := range ln.text {
		w := float64(l.cond.RuneWidth(r))
		if x < col+w {
			if w > 0 && (x-col)/w > TrailingThreshold {
				return ln.start + off + len(string(r)), inside
			}
			return ln.start + off, inside
		}
		col += w
	}
	return ln.start + len(ln.text), inside
}

// ByteToChar converts a byte offset into a character offset: the first
// character whose starting byte is at or after index.
func ByteToChar(s string, index int) int {
	i := 0
	for off := range s {
		if off >= index {
			return i
		}
		i++
	}
	return i
}

// CharToByte converts a character offset into the byte offset the
// character starts at, len(s) past the end.
func CharToByte(s string, index int) int {
	i := 0
	for off := range s {
		if i >= index {
			return off
		}
		i++
	}
	return len(s)
}

// CharLen is the number of characters in s.
func CharLen(s string) int {
	return ByteToChar(s, len(s))
}
