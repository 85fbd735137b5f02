// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"github.com/google/uuid"
	"github.com/wavetermdev/guiml/pkg/inject"
	"github.com/wavetermdev/guiml/pkg/layout"
	"github.com/wavetermdev/guiml/pkg/markup"
)

const PersistPositional = "index"

// ChildKey identifies a child within its persistence group: the n-th
// occurrence of a tag among its siblings.
type ChildKey struct {
	Tag string
	Idx int
}

// Data is what survives between frames for a node with a registered tag.
type Data struct {
	Component Component
	// injectables the node introduced, nil if its tag has none
	Layer *inject.Layer
	// scope seen by the node's descendants
	Scope      *inject.Scope
	LayoutKind string
	Layout     layout.Strategy
}

// PersistedNode is one slot of the persistent tree. Nodes are matched to
// slots by (persistence strategy, ChildKey) every frame.
type PersistedNode struct {
	Id   string
	Tag  string
	Data *Data

	saved  map[string]map[ChildKey]*PersistedNode
	parent *PersistedNode
	// markup node of the current frame
	node *markup.Node
	// nearest component descendants, rebuilt every frame
	layoutChildren []*PersistedNode
	// set when the component could not be constructed
	failed    bool
	failedGen int
	failErr   error
}

func makePersistedNode(tag string, parent *PersistedNode) *PersistedNode {
	return &PersistedNode{Id: uuid.New().String(), Tag: tag, parent: parent}
}

// Node is the markup node the slot was rendered from in the latest frame.
func (pn *PersistedNode) Node() *markup.Node {
	return pn.node
}

func (pn *PersistedNode) Component() Component {
	if pn.Data == nil {
		return nil
	}
	return pn.Data.Component
}

// Children returns the saved child slots in key order of the latest frame.
func (pn *PersistedNode) Children() []*PersistedNode {
	if pn.node == nil {
		return nil
	}
	var rtn []*PersistedNode
	counts := make(map[string]map[string]int)
	for _, child := range pn.node.Children {
		strategy := persistStrategy(child)
		if counts[strategy] == nil {
			counts[strategy] = make(map[string]int)
		}
		key := ChildKey{Tag: child.Tag, Idx: counts[strategy][child.Tag]}
		counts[strategy][child.Tag]++
		if slot := pn.saved[strategy][key]; slot != nil {
			rtn = append(rtn, slot)
		}
	}
	return rtn
}

func (pn *PersistedNode) LayoutChildren() []*PersistedNode {
	return pn.layoutChildren
}

func persistStrategy(node *markup.Node) string {
	strategy := node.GetString(markup.AttrPersistance)
	if strategy == "" {
		return PersistPositional
	}
	return strategy
}
