// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package utilds

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodedErrorChain(t *testing.T) {
	base := SubErrorf(CodeCyclicDependency, "window", "cycle through %s", "Canvas")
	wrapped := fmt.Errorf("building scope: %w", base)

	assert.Equal(t, CodeCyclicDependency, GetErrorCode(wrapped))
	assert.Equal(t, "window", GetErrorSubCode(wrapped))
	assert.Equal(t, "cycle through Canvas", wrapped.(interface{ Unwrap() error }).Unwrap().Error())
	assert.Equal(t, "", GetErrorCode(errors.New("plain")))
}

func TestHasCodeJoined(t *testing.T) {
	joined := errors.Join(
		Errorf(CodeConversion, "bad field"),
		fmt.Errorf("frame: %w", Errorf(CodeLayout, "degenerate")),
	)
	assert.True(t, HasCode(joined, CodeConversion))
	assert.True(t, HasCode(joined, CodeLayout))
	assert.False(t, HasCode(joined, CodeCyclicDependency))
	assert.False(t, HasCode(nil, CodeLayout))
}

func TestIdList(t *testing.T) {
	var il IdList[string]
	a := il.Register("a")
	b := il.Register("b")
	assert.Equal(t, []string{"a", "b"}, il.GetList())
	assert.True(t, il.Unregister(a))
	assert.False(t, il.Unregister(a))
	assert.True(t, il.Has(b))
	assert.Equal(t, 1, il.Len())
}
