// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		val, ok := m[key]
		return val, ok
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(mapLookup(map[string]string{
		BaseDirEnvVar: "/tmp/app",
		StyleEnvVar:   "style.yml",
		TickEnvVar:    "0.5",
		WatchEnvVar:   "true",
		DebugEnvVar:   "1",
	}))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/app", cfg.BaseDir)
	assert.Equal(t, 500*time.Millisecond, cfg.Tick)
	assert.True(t, cfg.Watch)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "/tmp/app/app.xml", cfg.MarkupPath())
	assert.Equal(t, "/tmp/app/style.yml", cfg.StylePath())
	assert.NoError(t, cfg.Validate())

	cfg = Default()
	assert.Equal(t, "", cfg.StylePath())
	require.NoError(t, cfg.ApplyEnv(mapLookup(map[string]string{TickEnvVar: "20ms"})))
	assert.Equal(t, 20*time.Millisecond, cfg.Tick)

	assert.Error(t, cfg.ApplyEnv(mapLookup(map[string]string{WatchEnvVar: "maybe"})))
	assert.Error(t, cfg.ApplyEnv(mapLookup(map[string]string{TickEnvVar: "soon"})))
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "guiml.env")
	require.NoError(t, os.WriteFile(envFile, []byte("GUIML_MARKUP=demo.xml\nGUIML_ROOT_TAG=app\n"), 0644))
	t.Setenv(RootTagEnvVar, "main")

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "demo.xml", cfg.MarkupFile)
	// the real environment wins over the file
	assert.Equal(t, "main", cfg.RootTag)

	_, err = Load(filepath.Join(dir, "missing.env"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	cfg.Tick = 0
	assert.Error(t, cfg.Validate())
	cfg = Default()
	cfg.MarkupFile = ""
	assert.Error(t, cfg.Validate())
}
