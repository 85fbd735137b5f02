// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeLaw(t *testing.T) {
	a := map[string]any{"text": nil, "baa": false, "pad": []any{1}}
	assert.Equal(t, a, Merge(a, nil))
	assert.Equal(t, 1, Merge(nil, 1))

	got := Merge(a, map[string]any{"text": 1, "foo": true, "pad": []any{2, 3}})
	assert.Equal(t, map[string]any{"text": 1, "baa": false, "foo": true, "pad": []any{2, 3, 1}}, got)
	assert.Equal(t, []any{1}, a["pad"], "input must not be modified")

	assert.Equal(t, []any{"b", "a"}, Merge([]any{"a"}, []any{"b"}))
	assert.Equal(t, "b", Merge([]any{"a"}, "b"))
}

func TestMergeNested(t *testing.T) {
	a := map[string]any{"border": map[string]any{"width": 1, "color": "black"}}
	b := map[string]any{"border": map[string]any{"width": 2}}
	assert.Equal(t, map[string]any{"border": map[string]any{"width": 2, "color": "black"}}, Merge(a, b))
}

func TestSheetCollect(t *testing.T) {
	sheet, err := FromAny(map[string]any{
		"button":       map[string]any{"padding": 1, "color": "black"},
		".primary":     map[string]any{"color": "blue"},
		".wide":        map[string]any{"color": "green", "width": 10},
		"button.hover": map[string]any{"color": "red"},
		"$ok":          map[string]any{"width": 20},
		"text":         nil,
	})
	require.NoError(t, err)

	got := sheet.Collect(Target{Tag: "button", Classes: []string{"primary", "wide"}})
	assert.Equal(t, map[string]any{"padding": 1, "color": "blue", "width": 10}, got)

	got = sheet.Collect(Target{Tag: "button", Classes: []string{"hover", "primary"}, Id: "ok"})
	assert.Equal(t, map[string]any{"padding": 1, "color": "red", "width": 20}, got)

	assert.Empty(t, sheet.Collect(Target{Tag: "div"}))

	_, err = FromAny([]any{1})
	assert.Error(t, err)
	_, err = FromAny(map[string]any{"div": 3})
	assert.Error(t, err)
}
