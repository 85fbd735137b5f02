// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"github.com/wavetermdev/guiml/pkg/observable"
)

const DefaultTick = 1.0 / 30

// Clock is provided to every component. OnUpdate fires with the frame's
// delta time once the frame's layout pass succeeded.
type Clock struct {
	OnUpdate observable.Observable[float64]

	frame   int
	elapsed float64
}

func (c *Clock) Frame() int {
	return c.frame
}

// Elapsed is the sum of the delta times of all completed frames.
func (c *Clock) Elapsed() float64 {
	return c.elapsed
}

func (c *Clock) tick(dt float64) {
	c.frame++
	c.elapsed += dt
	c.OnUpdate.Emit(dt)
}
