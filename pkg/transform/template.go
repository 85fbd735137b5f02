// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package transform

import (
	"github.com/wavetermdev/guiml/pkg/markup"
	"github.com/wavetermdev/guiml/pkg/utilds"
)

// TemplatePass replaces a node's children with a copy of its tag's template.
// The node keeps its own attributes. Descendants of a tag that has a style
// are marked with that tag so the style applies to them.
type TemplatePass struct{}

func (TemplatePass) Name() string {
	return "template"
}

func (TemplatePass) Apply(node *markup.Node, ctx *Context) (bool, error) {
	tmpl, changed, ok, err := ctx.template(node.Tag)
	if err != nil {
		return false, utilds.MakeSubCodedError(utilds.CodeReload, node.Tag, err)
	}
	if !ok || tmpl == nil {
		return false, nil
	}
	if node.Expanded && !changed {
		return false, nil
	}
	if tmpl.Tag != node.Tag {
		return false, utilds.SubErrorf(utilds.CodeRegistry, node.Tag, "template root <%s> does not match <%s>", tmpl.Tag, node.Tag)
	}
	node.Children = nil
	node.Text = ""
	for _, child := range tmpl.Children {
		node.AppendChild(child.DeepCopy())
	}
	node.Expanded = true
	if ctx.Templates.HasStyle(node.Tag) {
		for _, child := range node.Children {
			child.Walk(func(n *markup.Node, _ int) bool {
				n.Creator = node.Tag
				return true
			})
		}
	}
	return true, nil
}
