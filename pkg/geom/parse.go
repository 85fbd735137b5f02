// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package geom

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseRect accepts "v", "vertical horizontal" or "top left bottom right"
// (whitespace or comma separated).
func ParseRect(s string) (Rect, error) {
	fields := splitFields(s)
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Rect{}, fmt.Errorf("invalid rect component %q: %w", f, err)
		}
		vals[i] = v
	}
	switch len(vals) {
	case 1:
		return Uniform(vals[0]), nil
	case 2:
		return Rect{Top: vals[0], Bottom: vals[0], Left: vals[1], Right: vals[1]}, nil
	case 4:
		return Rect{Top: vals[0], Left: vals[1], Bottom: vals[2], Right: vals[3]}, nil
	}
	return Rect{}, fmt.Errorf("invalid rect %q: want 1, 2 or 4 values", s)
}

// ParseColor accepts #rgb, #rrggbb, #rrggbbaa and a few names.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "black":
		return Black, nil
	case "white":
		return White, nil
	case "transparent", "none":
		return Transparent, nil
	case "red":
		return Color{Red: 1, Alpha: 1}, nil
	case "green":
		return Color{Green: 1, Alpha: 1}, nil
	case "blue":
		return Color{Blue: 1, Alpha: 1}, nil
	}
	if !strings.HasPrefix(s, "#") {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	var comps [4]float64
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		comps[i] = float64(v) / 255
	}
	return Color{Red: comps[0], Green: comps[1], Blue: comps[2], Alpha: comps[3]}, nil
}

func splitFields(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
}
