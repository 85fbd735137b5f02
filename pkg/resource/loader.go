// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package resource

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wavetermdev/guiml/pkg/markup"
	"github.com/wavetermdev/guiml/pkg/style"
	"github.com/wavetermdev/guiml/pkg/utilds"
	"gopkg.in/yaml.v3"
)

// Loader is a file whose parsed contents are cached and reloaded when the
// file's modification time changes.
type Loader interface {
	Path() string
	// Reload re-reads the file if it changed and reports whether it did.
	Reload() (bool, error)
	// Version increases on every successful load.
	Version() int
	setWatched(watched bool)
	markDirty()
}

type LazyFileLoader[T any] struct {
	path     string
	readTime time.Time
	version  int
	data     T
	load     func(path string) (T, error)
	watched  atomic.Bool
	dirty    atomic.Bool
}

func NewLazyFileLoader[T any](path string, load func(path string) (T, error)) *LazyFileLoader[T] {
	return &LazyFileLoader[T]{path: path, load: load}
}

func (l *LazyFileLoader[T]) Path() string {
	return l.path
}

func (l *LazyFileLoader[T]) Version() int {
	return l.version
}

func (l *LazyFileLoader[T]) ReadTime() time.Time {
	return l.readTime
}

func (l *LazyFileLoader[T]) Data() T {
	return l.data
}

func (l *LazyFileLoader[T]) setWatched(watched bool) {
	l.watched.Store(watched)
	l.dirty.Store(true)
}

func (l *LazyFileLoader[T]) markDirty() {
	l.dirty.Store(true)
}

func (l *LazyFileLoader[T]) Reload() (bool, error) {
	if l.version > 0 && l.watched.Load() && !l.dirty.Load() {
		return false, nil
	}
	l.dirty.Store(false)
	finfo, err := os.Stat(l.path)
	if err != nil {
		return false, utilds.Errorf(utilds.CodeReload, "stat %s: %w", l.path, err)
	}
	if l.version > 0 && finfo.ModTime().Equal(l.readTime) {
		return false, nil
	}
	data, err := l.load(l.path)
	if err != nil {
		return false, utilds.Errorf(utilds.CodeReload, "loading %s: %w", l.path, err)
	}
	l.readTime = finfo.ModTime()
	l.data = data
	l.version++
	return true, nil
}

func loadRaw(path string) (string, error) {
	barr, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(barr), nil
}

// loadStyleData parses a YAML style file; an empty file yields an empty map.
func loadStyleData(path string) (map[string]any, error) {
	barr, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseStyleData(barr)
}

func parseStyleData(barr []byte) (map[string]any, error) {
	var data map[string]any
	if err := yaml.Unmarshal(barr, &data); err != nil {
		return nil, err
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}

func NewRawLoader(path string) *LazyFileLoader[string] {
	return NewLazyFileLoader(path, loadRaw)
}

func NewStyleLoader(path string) *LazyFileLoader[map[string]any] {
	return NewLazyFileLoader(path, loadStyleData)
}

func NewMarkupLoader(path string) *LazyFileLoader[*markup.Node] {
	return NewLazyFileLoader(path, markup.ParseFile)
}

// sheetFrom picks data[index] when index is set, else treats data as a sheet.
func sheetFrom(data map[string]any, index string) (style.Sheet, error) {
	if index == "" {
		return style.FromAny(data)
	}
	sub, ok := data[index]
	if !ok {
		return style.Sheet{}, nil
	}
	sheet, err := style.FromAny(sub)
	if err != nil {
		return nil, fmt.Errorf("style section %q: %w", index, err)
	}
	return sheet, nil
}

// FileCache shares one loader per path.
type FileCache struct {
	lock  sync.Mutex
	files map[string]Loader
	order []string
}

func MakeFileCache() *FileCache {
	return &FileCache{files: make(map[string]Loader)}
}

// Get returns the cached loader for path or creates one with newFn. The
// loader is loaded once on creation.
func (fc *FileCache) Get(path string, newFn func(path string) Loader) (Loader, error) {
	path = filepath.Clean(path)
	fc.lock.Lock()
	defer fc.lock.Unlock()
	if loader, ok := fc.files[path]; ok {
		return loader, nil
	}
	if newFn == nil {
		return nil, fmt.Errorf("unknown file %q, pass a loader constructor", path)
	}
	loader := newFn(path)
	if _, err := loader.Reload(); err != nil {
		return nil, err
	}
	fc.files[path] = loader
	fc.order = append(fc.order, path)
	return loader, nil
}

func (fc *FileCache) Loaders() []Loader {
	fc.lock.Lock()
	defer fc.lock.Unlock()
	rtn := make([]Loader, 0, len(fc.order))
	for _, path := range fc.order {
		rtn = append(rtn, fc.files[path])
	}
	return rtn
}

// Reload reloads every file, reporting whether any changed. All files are
// attempted even if some fail.
func (fc *FileCache) Reload() (bool, error) {
	changed := false
	var errs []error
	for _, loader := range fc.Loaders() {
		c, err := loader.Reload()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		changed = changed || c
	}
	return changed, joinErrs(errs)
}

func (fc *FileCache) markDirty(path string) bool {
	fc.lock.Lock()
	defer fc.lock.Unlock()
	loader, ok := fc.files[filepath.Clean(path)]
	if !ok {
		return false
	}
	loader.markDirty()
	return true
}
