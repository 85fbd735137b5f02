// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"errors"
	"fmt"

	"github.com/wavetermdev/guiml/pkg/geom"
	"github.com/wavetermdev/guiml/pkg/layout"
)

// layoutBox adapts a slot's component to the layout package's view of it.
type layoutBox struct {
	slot *PersistedNode
	comp Component
}

func makeLayoutBox(slot *PersistedNode) *layoutBox {
	return &layoutBox{slot: slot, comp: slot.Data.Component}
}

func (lb *layoutBox) Width() float64 {
	if s, ok := lb.comp.(Sizer); ok {
		return s.Width()
	}
	return lb.Position().Width()
}

func (lb *layoutBox) Height() float64 {
	if s, ok := lb.comp.(Sizer); ok {
		return s.Height()
	}
	return lb.Position().Height()
}

func (lb *layoutBox) Position() geom.Rect {
	return lb.comp.base().Position()
}

func (lb *layoutBox) SetPosition(pos geom.Rect) {
	lb.comp.base().SetPosition(pos)
}

func (lb *layoutBox) ContentPosition() geom.Rect {
	if cp, ok := lb.comp.(ContentPositioner); ok {
		return cp.ContentPosition()
	}
	return lb.Position()
}

func (lb *layoutBox) WrapSize() geom.Rect {
	if ws, ok := lb.comp.(WrapSizer); ok {
		return ws.WrapSize()
	}
	return geom.Rect{}
}

func (lb *layoutBox) SizeFixed() bool {
	if sf, ok := lb.comp.(SizeFixer); ok {
		return sf.SizeFixed()
	}
	return false
}

func (lb *layoutBox) LayoutProps() any {
	if p := lb.comp.base().props; p != nil {
		return p.Layout
	}
	return nil
}

func (lb *layoutBox) ChildProps() any {
	if p := lb.comp.base().props; p != nil {
		return p.Child
	}
	return nil
}

func liveLayoutChildren(slot *PersistedNode) ([]*PersistedNode, []layout.Child) {
	var slots []*PersistedNode
	var children []layout.Child
	for _, child := range slot.layoutChildren {
		if child.Data == nil || child.failed {
			continue
		}
		slots = append(slots, child)
		children = append(children, makeLayoutBox(child))
	}
	return slots, children
}

// layoutPass sizes every laid out subtree bottom up, then places it top down.
func (e *Engine) layoutPass() error {
	var errs []error
	for _, slot := range e.topLevel {
		if slot.Data == nil {
			continue
		}
		if err := e.computeSize(slot); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := e.place(slot); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (e *Engine) computeSize(slot *PersistedNode) error {
	slots, children := liveLayoutChildren(slot)
	for _, child := range slots {
		if err := e.computeSize(child); err != nil {
			return err
		}
	}
	strategy := slot.Data.Layout
	if strategy == nil {
		return nil
	}
	if err := strategy.ComputeRecommendedSize(makeLayoutBox(slot), children); err != nil {
		return fmt.Errorf("<%s> %s: %w", slot.Tag, slot.Id, err)
	}
	return nil
}

func (e *Engine) place(slot *PersistedNode) error {
	slot.Data.Component.base().realized = true
	slots, children := liveLayoutChildren(slot)
	if strategy := slot.Data.Layout; strategy != nil {
		if err := strategy.Layout(makeLayoutBox(slot), children); err != nil {
			return fmt.Errorf("<%s> %s: %w", slot.Tag, slot.Id, err)
		}
	}
	for _, child := range slots {
		if err := e.place(child); err != nil {
			return err
		}
	}
	return nil
}
