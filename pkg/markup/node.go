// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package markup

import (
	"fmt"
	"strings"
)

// reserved attribute names
const (
	AttrClass       = "class"
	AttrId          = "id"
	AttrControl     = "control"
	AttrLayout      = "layout"
	AttrPersistance = "persistance_strategy"
)

// reserved attribute prefixes
const (
	PrefixPy    = "py_"
	PrefixOn    = "on_"
	PrefixBind  = "bind_"
	PrefixClass = "class_"

	// class_ conditions are renamed once evaluated so a second pass leaves them alone
	PrefixClassCond = "_expanded_class_"
)

const TextTag = "text"

type Attr struct {
	Key string
	Val any
}

// Node is one element of a markup tree. Text is the content before the first
// child, Tail the content between this node's end and the next sibling.
type Node struct {
	Tag      string
	Attrs    []Attr
	Children []*Node
	Text     string
	Tail     string

	// set once the tag's template has been inserted
	Expanded bool
	// tag whose template produced this node (its style applies)
	Creator string
}

func NewNode(tag string, attrs ...Attr) *Node {
	return &Node{Tag: tag, Attrs: attrs}
}

func (n *Node) Get(key string) (any, bool) {
	for _, attr := range n.Attrs {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return nil, false
}

// GetString returns "" for missing or non-string attributes.
func (n *Node) GetString(key string) string {
	val, ok := n.Get(key)
	if !ok {
		return ""
	}
	str, _ := val.(string)
	return str
}

// Set replaces an existing attribute in place or appends a new one.
func (n *Node) Set(key string, val any) {
	for i := range n.Attrs {
		if n.Attrs[i].Key == key {
			n.Attrs[i].Val = val
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Key: key, Val: val})
}

func (n *Node) Delete(key string) bool {
	for i := range n.Attrs {
		if n.Attrs[i].Key == key {
			n.Attrs = append(n.Attrs[:i], n.Attrs[i+1:]...)
			return true
		}
	}
	return false
}

func (n *Node) Keys() []string {
	keys := make([]string, len(n.Attrs))
	for i, attr := range n.Attrs {
		keys[i] = attr.Key
	}
	return keys
}

func (n *Node) Classes() []string {
	return strings.Fields(n.GetString(AttrClass))
}

func (n *Node) AppendChild(child *Node) {
	n.Children = append(n.Children, child)
}

// InsertChild inserts at pos (clamped to the child count).
func (n *Node) InsertChild(pos int, child *Node) {
	if pos < 0 {
		pos = 0
	}
	if pos >= len(n.Children) {
		n.Children = append(n.Children, child)
		return
	}
	n.Children = append(n.Children, nil)
	copy(n.Children[pos+1:], n.Children[pos:])
	n.Children[pos] = child
}

// Find returns the first direct child with the given tag.
func (n *Node) Find(tag string) *Node {
	for _, child := range n.Children {
		if child.Tag == tag {
			return child
		}
	}
	return nil
}

// DeepCopy copies the tree. Attribute values are shared.
func (n *Node) DeepCopy() *Node {
	if n == nil {
		return nil
	}
	rtn := &Node{
		Tag:      n.Tag,
		Text:     n.Text,
		Tail:     n.Tail,
		Expanded: n.Expanded,
		Creator:  n.Creator,
	}
	if len(n.Attrs) > 0 {
		rtn.Attrs = make([]Attr, len(n.Attrs))
		copy(rtn.Attrs, n.Attrs)
	}
	if len(n.Children) > 0 {
		rtn.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			rtn.Children[i] = child.DeepCopy()
		}
	}
	return rtn
}

// Walk visits n and its descendants in document order. Returning false skips the subtree.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(node *Node, depth int) bool, depth int) {
	if n == nil {
		return
	}
	if !fn(n, depth) {
		return
	}
	for _, child := range n.Children {
		child.walk(fn, depth+1)
	}
}

// String renders the tree back to markup. Non-string attribute values are
// rendered with %v and are not parseable.
func (n *Node) String() string {
	var sb strings.Builder
	n.write(&sb, 0)
	return sb.String()
}

func (n *Node) write(sb *strings.Builder, indent int) {
	pad := strings.Repeat("  ", indent)
	sb.WriteString(pad)
	sb.WriteString("<")
	sb.WriteString(n.Tag)
	for _, attr := range n.Attrs {
		if str, ok := attr.Val.(string); ok {
			sb.WriteString(fmt.Sprintf(" %s=\"%s\"", attr.Key, Escape(str)))
			continue
		}
		sb.WriteString(fmt.Sprintf(" %s={%T}", attr.Key, attr.Val))
	}
	if len(n.Children) == 0 && n.Text == "" {
		sb.WriteString("/>\n")
		return
	}
	sb.WriteString(">")
	if n.Text != "" {
		sb.WriteString(Escape(n.Text))
	}
	if len(n.Children) > 0 {
		sb.WriteString("\n")
		for _, child := range n.Children {
			child.write(sb, indent+1)
			if child.Tail != "" {
				sb.WriteString(pad + "  " + Escape(child.Tail) + "\n")
			}
		}
		sb.WriteString(pad)
	}
	sb.WriteString("</")
	sb.WriteString(n.Tag)
	sb.WriteString(">\n")
}
