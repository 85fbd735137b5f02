// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package markup

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTextAndTail(t *testing.T) {
	root, err := ParseString(`<div class="a b">hello<text/>world <button py_on_click="self.add"/></div>`)
	require.NoError(t, err)

	want := &Node{
		Tag:   "div",
		Attrs: []Attr{{Key: "class", Val: "a b"}},
		Text:  "hello",
		Children: []*Node{
			{Tag: "text", Tail: "world "},
			{Tag: "button", Attrs: []Attr{{Key: "py_on_click", Val: "self.add"}}},
		},
	}
	if diff := cmp.Diff(want, root); diff != "" {
		t.Errorf("parse mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"a", "b"}, root.Classes())
}

func TestParseErrors(t *testing.T) {
	_, err := ParseString(`<div><text></div>`)
	assert.Error(t, err)
	_, err = ParseString(`<div/><div/>`)
	assert.Error(t, err)
	_, err = ParseString(``)
	assert.Error(t, err)
	_, err = ParseString(`<div>`)
	assert.Error(t, err)
}

func TestAttrs(t *testing.T) {
	n := NewNode("div", Attr{Key: "a", Val: "1"})
	n.Set("b", 2)
	n.Set("a", "x")
	assert.Equal(t, []string{"a", "b"}, n.Keys())
	assert.Equal(t, "x", n.GetString("a"))
	assert.Equal(t, "", n.GetString("b"))
	assert.True(t, n.Delete("a"))
	assert.False(t, n.Delete("a"))
	assert.Equal(t, []string{"b"}, n.Keys())
}

func TestDeepCopyIsIndependent(t *testing.T) {
	root := MustParse(`<a><b x="1"><c/></b></a>`)
	cp := root.DeepCopy()
	cp.Children[0].Set("x", "2")
	cp.Children[0].Children = nil
	cp.Expanded = true

	assert.Equal(t, "1", root.Children[0].GetString("x"))
	assert.Len(t, root.Children[0].Children, 1)
	assert.False(t, root.Expanded)
}

func TestInsertChild(t *testing.T) {
	n := NewNode("div")
	n.InsertChild(0, NewNode("b"))
	n.InsertChild(0, NewNode("a"))
	n.InsertChild(10, NewNode("c"))
	var tags []string
	for _, c := range n.Children {
		tags = append(tags, c.Tag)
	}
	assert.Equal(t, []string{"a", "b", "c"}, tags)
	assert.Same(t, n.Children[1], n.Find("b"))
}

func TestEscapeRoundTrip(t *testing.T) {
	src := `a < b && "c" > 'd'`
	assert.Equal(t, "a &lt; b &amp;&amp; &quot;c&quot; &gt; &apos;d&apos;", Escape(src))
	assert.Equal(t, src, Unescape(Escape(src)))
	assert.Equal(t, "&lt;", Unescape("&amp;lt;"))
}
