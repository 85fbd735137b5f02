// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// Package config holds the settings of a guiml run. Values are layered:
// defaults, then an optional .env file, then GUIML_* environment variables,
// then command line flags (applied by the caller).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	BaseDirEnvVar = "GUIML_BASE_DIR"
	MarkupEnvVar  = "GUIML_MARKUP"
	StyleEnvVar   = "GUIML_STYLE"
	RootTagEnvVar = "GUIML_ROOT_TAG"
	TickEnvVar    = "GUIML_TICK"
	WatchEnvVar   = "GUIML_WATCH"
	DebugEnvVar   = "GUIML_DEBUG"
	LogFileEnvVar = "GUIML_LOG_FILE"
)

const DefaultEnvFile = ".env"
const DefaultMarkupFile = "app.xml"
const DefaultRootTag = "application"
const DefaultTick = time.Second / 30
const DefaultLogFile = "guiml.log"

type Config struct {
	BaseDir    string
	MarkupFile string
	// StyleFile is optional, "" means no global stylesheet
	StyleFile string
	RootTag   string
	Tick      time.Duration
	Watch     bool
	Debug     bool
	LogFile   string
}

func Default() Config {
	return Config{
		BaseDir:    ".",
		MarkupFile: DefaultMarkupFile,
		RootTag:    DefaultRootTag,
		Tick:       DefaultTick,
		LogFile:    DefaultLogFile,
	}
}

// Load builds a Config from the defaults, envFile and the process environment.
// A missing envFile is only an error when it is not the default one.
// Real environment variables win over values from the file.
func Load(envFile string) (Config, error) {
	cfg := Default()
	fileVals := map[string]string{}
	if envFile != "" {
		vals, err := godotenv.Read(envFile)
		if err != nil && !(errors.Is(err, fs.ErrNotExist) && envFile == DefaultEnvFile) {
			return cfg, fmt.Errorf("reading env file %s: %w", envFile, err)
		}
		if vals != nil {
			fileVals = vals
		}
	}
	lookup := func(key string) (string, bool) {
		if val, ok := os.LookupEnv(key); ok {
			return val, true
		}
		val, ok := fileVals[key]
		return val, ok
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from GUIML_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if val, ok := lookup(BaseDirEnvVar); ok && val != "" {
		c.BaseDir = val
	}
	if val, ok := lookup(MarkupEnvVar); ok && val != "" {
		c.MarkupFile = val
	}
	if val, ok := lookup(StyleEnvVar); ok {
		c.StyleFile = val
	}
	if val, ok := lookup(RootTagEnvVar); ok && val != "" {
		c.RootTag = val
	}
	if val, ok := lookup(LogFileEnvVar); ok {
		c.LogFile = val
	}
	if val, ok := lookup(TickEnvVar); ok && val != "" {
		tick, err := parseTick(val)
		if err != nil {
			return fmt.Errorf("%s: %w", TickEnvVar, err)
		}
		c.Tick = tick
	}
	var err error
	if c.Watch, err = lookupBool(lookup, WatchEnvVar, c.Watch); err != nil {
		return err
	}
	if c.Debug, err = lookupBool(lookup, DebugEnvVar, c.Debug); err != nil {
		return err
	}
	return nil
}

func lookupBool(lookup func(string) (string, bool), key string, def bool) (bool, error) {
	val, ok := lookup(key)
	if !ok || val == "" {
		return def, nil
	}
	rtn, err := strconv.ParseBool(val)
	if err != nil {
		return def, fmt.Errorf("%s: invalid boolean %q", key, val)
	}
	return rtn, nil
}

// parseTick accepts a Go duration ("50ms") or a plain number of seconds.
func parseTick(val string) (time.Duration, error) {
	if d, err := time.ParseDuration(val); err == nil {
		return d, nil
	}
	secs, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid tick %q", val)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

func (c Config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.BaseDir, path)
}

func (c Config) MarkupPath() string {
	return c.resolve(c.MarkupFile)
}

func (c Config) StylePath() string {
	return c.resolve(c.StyleFile)
}

func (c Config) Validate() error {
	if c.MarkupFile == "" {
		return errors.New("no markup file configured")
	}
	if c.RootTag == "" {
		return errors.New("no root tag configured")
	}
	if c.Tick <= 0 {
		return fmt.Errorf("tick must be positive, got %v", c.Tick)
	}
	return nil
}
