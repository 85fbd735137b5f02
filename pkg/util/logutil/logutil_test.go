// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package logutil

import (
	"bytes"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOncePrintfAndDebug(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)
	ResetOnce()

	assert.True(t, OncePrintf("k", "first\n"))
	assert.False(t, OncePrintf("k", "second\n"))
	assert.Contains(t, buf.String(), "first")
	assert.NotContains(t, buf.String(), "second")

	SetDebug(false)
	DevPrintf("hidden\n")
	SetDebug(true)
	defer SetDebug(false)
	DevPrintf("shown\n")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
