// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package resource

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wavetermdev/guiml/pkg/utilds"
)

func writeFile(t *testing.T, path string, content string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

const testStyles = `
button:
  margin: 2
  class_list: [a]
window:
  div:
    margin: 1
`

const testTemplates = `<templates>
<button><div><text text="self.label"/></div></button>
<card><div/></card>
</templates>`

func TestStyleFileSections(t *testing.T) {
	dir := t.TempDir()
	mtime := time.Now().Add(-time.Hour)
	writeFile(t, filepath.Join(dir, "styles.yml"), testStyles, mtime)

	m := NewManager(dir, nil)
	whole, err := m.StyleFile("styles.yml", "")
	require.NoError(t, err)
	sheet, changed, err := whole.Get()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 2, sheet["button"]["margin"])

	section, err := m.StyleFile("styles.yml", "window")
	require.NoError(t, err)
	sheet, changed, err = section.Get()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, map[string]any{"margin": 1}, sheet["div"])

	_, changed, err = section.Get()
	require.NoError(t, err)
	assert.False(t, changed)

	missing, err := m.StyleFile("styles.yml", "nope")
	require.NoError(t, err)
	sheet, _, err = missing.Get()
	require.NoError(t, err)
	assert.Empty(t, sheet)
}

func TestTemplateFileIndex(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "templates.xml"), testTemplates, time.Now())

	m := NewManager(dir, nil)
	h, err := m.TemplateFile("templates.xml", "")
	require.NoError(t, err)
	h.SetIndex("card")
	node, changed, err := h.Get()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "card", node.Tag)

	h.SetIndex("button")
	node, _, err = h.Get()
	require.NoError(t, err)
	assert.Equal(t, "card", node.Tag, "index is only set once")

	h2, err := m.TemplateFile("templates.xml", "missing")
	require.NoError(t, err)
	_, _, err = h2.Get()
	assert.Error(t, err)

	root, err := m.TemplateFile("templates.xml", "templates")
	require.NoError(t, err)
	node, _, err = root.Get()
	require.NoError(t, err)
	assert.Len(t, node.Children, 2)
}

func TestReloadOnModify(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "styles.yml")
	mtime := time.Now().Add(-time.Hour)
	writeFile(t, path, "div:\n  margin: 1\n", mtime)

	m := NewManager(dir, nil)
	h, err := m.StyleFile(path, "")
	require.NoError(t, err)
	_, _, err = h.Get()
	require.NoError(t, err)

	changed, err := m.Reload()
	require.NoError(t, err)
	assert.False(t, changed)

	writeFile(t, path, "div:\n  margin: 5\n", mtime.Add(time.Minute))
	changed, err = m.Reload()
	require.NoError(t, err)
	assert.True(t, changed)

	sheet, changed, err := h.Get()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 5, sheet["div"]["margin"])
}

func TestReloadErrorsAreCoded(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "t.xml")
	writeFile(t, path, "<a/>", time.Now().Add(-time.Hour))

	m := NewManager(dir, nil)
	_, err := m.TemplateFile("t.xml", "")
	require.NoError(t, err)

	writeFile(t, path, "<a>", time.Now())
	_, err = m.Reload()
	require.Error(t, err)
	assert.True(t, utilds.HasCode(err, utilds.CodeReload))

	_, err = ReloadAll()
	assert.Error(t, err)
}

func TestSharedLoaderKinds(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "x.yml"), "a: {}\n", time.Now())
	m := NewManager(dir, map[string]string{"styles": "x.yml"})

	path, ok := m.Path("styles")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(m.BaseDir(), "x.yml"), path)

	_, err := m.StyleFile("x.yml", "")
	require.NoError(t, err)
	_, err = m.RawFile("x.yml")
	assert.Error(t, err)
}

func TestRawStyle(t *testing.T) {
	h := MustParseRawStyle("text:\n  color: '#fff'\n")
	sheet, changed, err := h.Get()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "#fff", sheet["text"]["color"])
	_, changed, _ = h.Get()
	assert.False(t, changed)

	_, err = ParseRawStyle("- a\n- b\n")
	assert.Error(t, err)
}

func TestWatcherMarksDirty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "styles.yml")
	mtime := time.Now().Add(-time.Hour)
	writeFile(t, path, "div:\n  margin: 1\n", mtime)

	w, err := NewWatcher()
	require.NoError(t, err)
	defer w.Close()
	var seen []string
	w.Changed.Subscribe(func(p string) { seen = append(seen, p) })

	m := NewManager(dir, nil)
	m.Watch(w)
	h, err := m.StyleFile(path, "")
	require.NoError(t, err)
	_, err = m.Reload()
	require.NoError(t, err)

	// without an event the file is not looked at, even though it changed
	writeFile(t, path, "div:\n  margin: 3\n", mtime.Add(time.Minute))
	changed, err := m.Reload()
	require.NoError(t, err)
	assert.False(t, changed)

	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Write})
	assert.Equal(t, []string{filepath.Clean(path)}, seen)
	changed, err = m.Reload()
	require.NoError(t, err)
	assert.True(t, changed)
	sheet, _, err := h.Get()
	require.NoError(t, err)
	assert.Equal(t, 3, sheet["div"]["margin"])

	w.handleEvent(fsnotify.Event{Name: filepath.Join(dir, "other.yml"), Op: fsnotify.Write})
	assert.Len(t, seen, 1)
}
