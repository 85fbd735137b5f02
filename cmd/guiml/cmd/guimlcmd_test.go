// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wavetermdev/guiml/pkg/config"
	"github.com/wavetermdev/guiml/pkg/termui"
)

func captureStdout(t *testing.T) *bytes.Buffer {
	var buf bytes.Buffer
	orig := WrappedStdout
	WrappedStdout = &buf
	t.Cleanup(func() { WrappedStdout = orig })
	return &buf
}

func writeApp(t *testing.T, markup string, style string) config.Config {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultMarkupFile), []byte(markup), 0644))
	cfg := config.Default()
	cfg.BaseDir = dir
	if style != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "style.yml"), []byte(style), 0644))
		cfg.StyleFile = "style.yml"
	}
	return cfg
}

func TestPrintTree(t *testing.T) {
	buf := captureStdout(t)
	cfg := writeApp(t,
		`<application><window><text text="hello" class="title"/></window></application>`,
		".title:\n  color: \"#ff0000\"\n")
	require.NoError(t, printTree(cfg, 20, 4, true))

	lines := strings.Split(buf.String(), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.True(t, strings.HasPrefix(lines[0], "<application>"))
	assert.True(t, strings.HasPrefix(lines[1], "  <window>"))
	assert.True(t, strings.HasPrefix(lines[2], "    <text>"))
	assert.Contains(t, lines[2], `class="title"`)
	assert.Contains(t, buf.String(), "hello")
}

func TestBuildAppReloadsMarkup(t *testing.T) {
	cfg := writeApp(t, `<application><window><text text="one"/></window></application>`, "")
	term := termui.MakeTerminal(20, 4)
	a, err := buildApp(cfg, term)
	require.NoError(t, err)
	defer a.close()
	require.NoError(t, a.engine.Frame(config.DefaultTick.Seconds()))
	assert.Equal(t, "one", strings.TrimSpace(term.Cells().Text(0)))

	path := filepath.Join(cfg.BaseDir, config.DefaultMarkupFile)
	require.NoError(t, os.WriteFile(path, []byte(`<application><window><text text="two"/></window></application>`), 0644))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))
	require.NoError(t, a.engine.Frame(config.DefaultTick.Seconds()))
	assert.Equal(t, "two", strings.TrimSpace(term.Cells().Text(0)))

	require.NoError(t, os.WriteFile(path, []byte(`<window/>`), 0644))
	later = later.Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))
	assert.Error(t, a.engine.Frame(config.DefaultTick.Seconds()))
}

func TestBuildAppMissingMarkup(t *testing.T) {
	cfg := config.Default()
	cfg.BaseDir = t.TempDir()
	_, err := buildApp(cfg, termui.MakeTerminal(20, 4))
	assert.Error(t, err)
}
