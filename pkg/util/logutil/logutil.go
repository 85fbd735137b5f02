// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package logutil

import (
	"log"
	"sync"
	"sync/atomic"
)

var debugMode atomic.Bool

var onceLock sync.Mutex
var onceKeys = make(map[string]bool)

func SetDebug(debug bool) {
	debugMode.Store(debug)
}

func IsDebug() bool {
	return debugMode.Load()
}

// DevPrintf logs using log.Printf only if running in debug mode
func DevPrintf(format string, v ...any) {
	if debugMode.Load() {
		log.Printf(format, v...)
	}
}

// OncePrintf logs the message the first time key is seen and returns true if it logged.
func OncePrintf(key string, format string, v ...any) bool {
	onceLock.Lock()
	seen := onceKeys[key]
	onceKeys[key] = true
	onceLock.Unlock()
	if seen {
		return false
	}
	log.Printf(format, v...)
	return true
}

// ResetOnce forgets all keys seen by OncePrintf (used by tests).
func ResetOnce() {
	onceLock.Lock()
	defer onceLock.Unlock()
	onceKeys = make(map[string]bool)
}
