// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package observable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmitOrderAndCancel(t *testing.T) {
	var obs Observable[int]
	var got []int
	s1 := obs.Subscribe(func(v int) { got = append(got, v) })
	obs.Subscribe(func(v int) { got = append(got, v*10) })

	obs.Emit(1)
	s1.Cancel()
	s1.Cancel()
	obs.Emit(2)

	assert.Equal(t, []int{1, 10, 20}, got)
	assert.Equal(t, 1, obs.Len())
}

func TestCancelDuringEmit(t *testing.T) {
	var obs Observable[string]
	var second Subscription
	calls := 0
	obs.Subscribe(func(string) { second.Cancel() })
	second = obs.Subscribe(func(string) { calls++ })
	obs.Emit("x")
	assert.Equal(t, 0, calls)
}

func TestGroup(t *testing.T) {
	var sig Signal
	var g Group
	count := 0
	g.Add(sig.Subscribe(func() { count++ }))
	g.Add(sig.Subscribe(func() { count++ }))
	sig.Emit()
	g.CancelAll()
	sig.Emit()
	assert.Equal(t, 2, count)
	assert.Equal(t, 0, sig.Len())
	assert.Equal(t, 0, g.Len())
}
