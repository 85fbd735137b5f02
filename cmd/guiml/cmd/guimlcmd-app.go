// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/wavetermdev/guiml/pkg/components"
	"github.com/wavetermdev/guiml/pkg/config"
	"github.com/wavetermdev/guiml/pkg/engine"
	"github.com/wavetermdev/guiml/pkg/inject"
	"github.com/wavetermdev/guiml/pkg/resource"
	"github.com/wavetermdev/guiml/pkg/termui"
	"github.com/wavetermdev/guiml/pkg/util/logutil"
)

type app struct {
	engine  *engine.Engine
	manager *resource.Manager
	watcher *resource.Watcher
}

// buildApp wires the markup file, the optional stylesheet and the base
// components into an engine drawing on term. The markup file is re-read when
// it changes and becomes the new root.
func buildApp(cfg config.Config, term *termui.Terminal) (*app, error) {
	paths := map[string]string{"markup": cfg.MarkupFile}
	if cfg.StyleFile != "" {
		paths["style"] = cfg.StyleFile
	}
	mgr := resource.NewManager(cfg.BaseDir, paths)
	rtn := &app{manager: mgr}
	if cfg.Watch {
		w, err := resource.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("creating watcher: %w", err)
		}
		w.Changed.Subscribe(func(path string) {
			logutil.DevPrintf("[guiml] resource changed: %s\n", path)
		})
		mgr.Watch(w)
		w.Start()
		rtn.watcher = w
	}
	markupFile, err := mgr.MarkupFile(cfg.MarkupFile)
	if err != nil {
		rtn.close()
		return nil, err
	}
	if _, err := markupFile.Reload(); err != nil {
		rtn.close()
		return nil, err
	}
	registry := engine.NewRegistry()
	if err := components.Register(registry); err != nil {
		rtn.close()
		return nil, err
	}
	globals := inject.NewLayer("")
	globals.Provide(term, reflect.TypeFor[components.Host]())
	opts := engine.Options{
		RootTag: cfg.RootTag,
		Root:    markupFile.Data(),
		Globals: globals,
	}
	if cfg.StyleFile != "" {
		sheet, err := mgr.StyleFile(cfg.StyleFile, "")
		if err != nil {
			rtn.close()
			return nil, err
		}
		opts.GlobalStyle = sheet
	}
	version := markupFile.Version()
	opts.Reload = func() (bool, error) {
		changed, err := mgr.Reload()
		if err != nil {
			return changed, err
		}
		if markupFile.Version() != version {
			version = markupFile.Version()
			if err := rtn.engine.SetRoot(markupFile.Data()); err != nil {
				return changed, err
			}
		}
		return changed, nil
	}
	e, err := engine.NewEngine(registry, opts)
	if err != nil {
		rtn.close()
		return nil, err
	}
	rtn.engine = e
	return rtn, nil
}

func (a *app) close() error {
	var errs []error
	if a.engine != nil {
		a.engine.Shutdown()
	}
	if a.watcher != nil {
		errs = append(errs, a.watcher.Close())
	}
	return errors.Join(errs...)
}
