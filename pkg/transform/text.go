// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package transform

import (
	"strings"

	"github.com/wavetermdev/guiml/pkg/markup"
)

// TextPass turns a node's free text and its children's tail text into
// <text> elements, one per whitespace separated word. Each word keeps a
// trailing space so a flow layout can place words side by side.
type TextPass struct{}

func (TextPass) Name() string {
	return "text"
}

func (TextPass) Apply(node *markup.Node, ctx *Context) (bool, error) {
	if node.Tag == markup.TextTag {
		return false, nil
	}
	changed := false
	for i := len(node.Children) - 1; i >= 0; i-- {
		child := node.Children[i]
		if child.Tail == "" {
			continue
		}
		changed = insertWords(node, child.Tail, i+1) || changed
		child.Tail = ""
	}
	if node.Text != "" {
		changed = insertWords(node, node.Text, 0) || changed
		node.Text = ""
	}
	return changed, nil
}

func insertWords(node *markup.Node, text string, pos int) bool {
	words := strings.Fields(text)
	for i, word := range words {
		node.InsertChild(pos+i, TextNode(word+" "))
	}
	return len(words) > 0
}

// TextNode makes a <text> element showing str.
func TextNode(str string) *markup.Node {
	return markup.NewNode(markup.TextTag, markup.Attr{Key: markup.TextTag, Val: str})
}
