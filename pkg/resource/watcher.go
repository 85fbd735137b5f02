// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package resource

import (
	"log"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/wavetermdev/guiml/pkg/observable"
	"github.com/wavetermdev/guiml/pkg/panichandler"
)

// Watcher marks loaders dirty when fsnotify reports a change to their file,
// so reloads skip the stat for untouched files. Directories are watched
// rather than files since editors replace files on save.
type Watcher struct {
	watcher *fsnotify.Watcher
	mutex   sync.Mutex
	dirs    map[string]bool
	caches  map[*FileCache]bool
	closed  bool

	// Changed fires (on the watcher goroutine) with the path of a modified resource.
	Changed observable.Observable[string]
}

func NewWatcher() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{watcher: fw, dirs: make(map[string]bool), caches: make(map[*FileCache]bool)}, nil
}

func (w *Watcher) add(cache *FileCache, loader Loader) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.closed {
		return
	}
	w.caches[cache] = true
	dir := filepath.Dir(loader.Path())
	if !w.dirs[dir] {
		if err := w.watcher.Add(dir); err != nil {
			log.Printf("[resource] failed to add path %s to watcher: %v\n", dir, err)
			return
		}
		w.dirs[dir] = true
	}
	loader.setWatched(true)
}

func (w *Watcher) Start() {
	log.Printf("[resource] starting file watcher\n")
	go func() {
		defer func() {
			panichandler.PanicHandlerNoError("resource:watcher", recover())
		}()
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				w.handleEvent(event)
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				log.Println("[resource] watcher error:", err)
			}
		}
	}()
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return
	}
	w.mutex.Lock()
	found := false
	for cache := range w.caches {
		if cache.markDirty(event.Name) {
			found = true
		}
	}
	w.mutex.Unlock()
	if found {
		w.Changed.Emit(filepath.Clean(event.Name))
	}
}

func (w *Watcher) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.watcher.Close()
}
