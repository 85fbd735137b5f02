// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package textlayout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexRoundTrip(t *testing.T) {
	for _, s := range []string{"asdf", "as√ädfa", ""} {
		n := CharLen(s)
		for i := 0; i <= n; i++ {
			assert.Equal(t, i, ByteToChar(s, CharToByte(s, i)), "%q char %d", s, i)
		}
		for off := range s {
			assert.Equal(t, off, CharToByte(s, ByteToChar(s, off)), "%q byte %d", s, off)
		}
	}
	assert.Equal(t, 7, CharLen("as√ädfa"))
	assert.Equal(t, 2, CharToByte("as√ädfa", 2))
	assert.Equal(t, 5, CharToByte("as√ädfa", 3))
	assert.Equal(t, 3, ByteToChar("as√ädfa", 3))
	assert.Equal(t, 10, CharToByte("as√ädfa", 10))
}

func TestMeasure(t *testing.T) {
	l := Make("hello\nhi")
	assert.Equal(t, 5.0, l.Width())
	assert.Equal(t, 2.0, l.Height())
	assert.Equal(t, []string{"hello", "hi"}, l.Lines())

	wide := Make("日本")
	assert.Equal(t, 4.0, wide.Width())
}

func TestPositions(t *testing.T) {
	l := Make("abc\nde")
	x, y := l.IndexToPos(2)
	assert.Equal(t, 2.0, x)
	assert.Equal(t, 0.0, y)
	x, y = l.IndexToPos(5)
	assert.Equal(t, 1.0, x)
	assert.Equal(t, 1.0, y)
	x, y = l.IndexToPos(3)
	assert.Equal(t, 3.0, x)
	assert.Equal(t, 0.0, y)

	idx, inside := l.XYToIndex(1.2, 0)
	assert.Equal(t, 1, idx)
	assert.True(t, inside)
	idx, _ = l.XYToIndex(1.7, 0)
	assert.Equal(t, 2, idx)
	idx, _ = l.XYToIndex(0.5, 1.5)
	assert.Equal(t, 4, idx)
	idx, inside = l.XYToIndex(10, 0)
	assert.Equal(t, 3, idx)
	assert.False(t, inside)
	idx, inside = l.XYToIndex(0, 5)
	assert.Equal(t, 4, idx)
	assert.False(t, inside)
}
