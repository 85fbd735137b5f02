// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"github.com/emirpasic/gods/trees/binaryheap"
	"github.com/wavetermdev/guiml/pkg/draw"
	"github.com/wavetermdev/guiml/pkg/panichandler"
)

type drawItem struct {
	zIndex int
	depth  int
	order  int
	comp   Component
}

func compareDrawItems(a, b interface{}) int {
	x, y := a.(drawItem), b.(drawItem)
	switch {
	case x.zIndex != y.zIndex:
		return x.zIndex - y.zIndex
	case x.depth != y.depth:
		return x.depth - y.depth
	}
	return x.order - y.order
}

// DrawOrder returns the realized components of the latest frame in paint
// order: by z_index, then depth, then document order.
func (e *Engine) DrawOrder() []Component {
	heap := binaryheap.NewWith(compareDrawItems)
	for _, slot := range e.rendered {
		if slot.Data == nil {
			continue
		}
		b := slot.Data.Component.base()
		if !b.realized {
			continue
		}
		heap.Push(drawItem{zIndex: b.Common().ZIndex, depth: b.depth, order: b.order, comp: slot.Data.Component})
	}
	rtn := make([]Component, 0, heap.Size())
	for {
		v, ok := heap.Pop()
		if !ok {
			break
		}
		rtn = append(rtn, v.(drawItem).comp)
	}
	return rtn
}

// Draw paints the realized components onto s. A panicking OnDraw is logged
// and skipped.
func (e *Engine) Draw(s draw.Surface) {
	for _, comp := range e.DrawOrder() {
		b := comp.base()
		if d, ok := comp.(Drawer); ok {
			panichandler.Guard("ondraw:"+b.tag, func() error {
				d.OnDraw(s)
				return nil
			})
		}
		if common := b.Common(); common.DrawBoundingBox {
			s.StrokeRect(common.Position, 1, common.BoundingBox)
		}
	}
}
