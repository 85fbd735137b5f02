// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package resource

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"weak"

	"github.com/wavetermdev/guiml/pkg/markup"
)

var managersLock sync.Mutex
var managers []weak.Pointer[Manager]

// Manager resolves resource files relative to a base directory and shares
// loaders between handles.
type Manager struct {
	baseDir string
	cache   *FileCache
	paths   map[string]string
	watcher *Watcher
}

// NewManager registers the manager with ReloadAll. Named paths are resolved
// against baseDir; missing files are logged, not fatal.
func NewManager(baseDir string, paths map[string]string) *Manager {
	absDir, err := filepath.Abs(baseDir)
	if err != nil {
		absDir = baseDir
	}
	m := &Manager{baseDir: absDir, cache: MakeFileCache(), paths: make(map[string]string)}
	for key, path := range paths {
		full := m.resolve(path)
		if _, err := os.Stat(full); err != nil {
			log.Printf("[resource] path %q (%s) does not exist\n", key, full)
		}
		m.paths[key] = full
	}
	managersLock.Lock()
	managers = append(managers, weak.Make(m))
	managersLock.Unlock()
	return m
}

func (m *Manager) BaseDir() string {
	return m.baseDir
}

func (m *Manager) resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(m.baseDir, path)
}

// Path returns a named path given at construction.
func (m *Manager) Path(key string) (string, bool) {
	path, ok := m.paths[key]
	return path, ok
}

func (m *Manager) StyleFile(path string, index string) (*FileStyle, error) {
	loader, err := m.cache.Get(m.resolve(path), func(p string) Loader { return NewStyleLoader(p) })
	if err != nil {
		return nil, err
	}
	sl, ok := loader.(*LazyFileLoader[map[string]any])
	if !ok {
		return nil, fmt.Errorf("%s already loaded as a different kind of file", path)
	}
	m.watch(sl)
	return &FileStyle{loader: sl, index: index}, nil
}

func (m *Manager) TemplateFile(path string, index string) (*FileTemplate, error) {
	ml, err := m.MarkupFile(path)
	if err != nil {
		return nil, err
	}
	return &FileTemplate{loader: ml, index: index}, nil
}

// MarkupFile returns the shared loader for a markup document.
func (m *Manager) MarkupFile(path string) (*LazyFileLoader[*markup.Node], error) {
	loader, err := m.cache.Get(m.resolve(path), func(p string) Loader { return NewMarkupLoader(p) })
	if err != nil {
		return nil, err
	}
	ml, ok := loader.(*LazyFileLoader[*markup.Node])
	if !ok {
		return nil, fmt.Errorf("%s already loaded as a different kind of file", path)
	}
	m.watch(ml)
	return ml, nil
}

func (m *Manager) RawFile(path string) (*LazyFileLoader[string], error) {
	loader, err := m.cache.Get(m.resolve(path), func(p string) Loader { return NewRawLoader(p) })
	if err != nil {
		return nil, err
	}
	rl, ok := loader.(*LazyFileLoader[string])
	if !ok {
		return nil, fmt.Errorf("%s already loaded as a different kind of file", path)
	}
	m.watch(rl)
	return rl, nil
}

// Template parses inline template source.
func (m *Manager) Template(src string) (*RawTemplate, error) {
	node, err := markup.ParseString(src)
	if err != nil {
		return nil, err
	}
	return NewRawTemplate(node), nil
}

func (m *Manager) Reload() (bool, error) {
	return m.cache.Reload()
}

func (m *Manager) watch(loader Loader) {
	if m.watcher != nil {
		m.watcher.add(m.cache, loader)
	}
}

// Watch switches the manager to fsnotify change detection: files are only
// re-read after the watcher saw an event for them.
func (m *Manager) Watch(w *Watcher) {
	m.watcher = w
	for _, loader := range m.cache.Loaders() {
		w.add(m.cache, loader)
	}
}

// ReloadAll reloads every live manager and reports whether anything changed.
func ReloadAll() (bool, error) {
	managersLock.Lock()
	live := managers[:0]
	var toReload []*Manager
	for _, ref := range managers {
		if m := ref.Value(); m != nil {
			live = append(live, ref)
			toReload = append(toReload, m)
		}
	}
	managers = live
	managersLock.Unlock()

	changed := false
	var errs []error
	for _, m := range toReload {
		c, err := m.Reload()
		if err != nil {
			errs = append(errs, err)
		}
		changed = changed || c
	}
	return changed, joinErrs(errs)
}
