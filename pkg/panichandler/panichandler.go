// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package panichandler

import (
	"fmt"
	"log"
	"runtime/debug"

	"github.com/wavetermdev/guiml/pkg/util/logutil"
)

// PanicError is a recovered panic. Value is the error itself when the panic
// value was an error, so errors.Is/As see through it.
type PanicError struct {
	Where string
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Where, e.Value)
}

func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// PanicHandlerNoError logs the panic without converting it
func PanicHandlerNoError(debugStr string, recoverVal any) {
	if recoverVal == nil {
		return
	}
	log.Printf("[panic] in %s: %v\n%s", debugStr, recoverVal, debug.Stack())
}

// PanicHandler returns a *PanicError if a panic occurred. The stack is only
// logged in debug mode since hook panics repeat every frame.
func PanicHandler(debugStr string, recoverVal any) error {
	if recoverVal == nil {
		return nil
	}
	perr := &PanicError{Where: debugStr, Value: recoverVal, Stack: debug.Stack()}
	log.Printf("[panic] in %s: %v\n", debugStr, recoverVal)
	logutil.DevPrintf("[panic] stack:\n%s", perr.Stack)
	return perr
}

// Guard runs fn and converts a panic inside it into an error.
func Guard(debugStr string, fn func() error) (rtnErr error) {
	defer func() {
		if panicErr := PanicHandler(debugStr, recover()); panicErr != nil {
			rtnErr = panicErr
		}
	}()
	return fn()
}
