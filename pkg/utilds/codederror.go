// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package utilds

import (
	"errors"
	"fmt"
)

// error codes used across the frame pipeline
const (
	CodeCyclicDependency  = "cyclicdep"
	CodeMissingDependency = "missingdep"
	CodeUnknownTag        = "unknowntag"
	CodeLayout            = "layout"
	CodeConversion        = "conversion"
	CodeExpr              = "expr"
	CodeReload            = "reload"
	CodeThread            = "thread"
	CodeRegistry          = "registry"
)

// CodedError wraps an error with a string code for categorization.
// The code can be extracted from anywhere in an error chain using GetErrorCode.
// SubCode carries the tag or type name the error is about.
type CodedError struct {
	Code    string
	SubCode string
	Err     error
}

func (e CodedError) Error() string {
	return e.Err.Error()
}

func (e CodedError) Unwrap() error {
	return e.Err
}

func MakeCodedError(code string, err error) CodedError {
	return CodedError{Code: code, Err: err}
}

func MakeSubCodedError(code string, subCode string, err error) CodedError {
	return CodedError{Code: code, SubCode: subCode, Err: err}
}

// GetErrorCode returns "" when no CodedError is in the chain.
func GetErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var coded CodedError
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ""
}

func GetErrorSubCode(err error) string {
	if err == nil {
		return ""
	}
	var coded CodedError
	if errors.As(err, &coded) {
		return coded.SubCode
	}
	return ""
}

// HasCode reports whether any error in the chain (including joined errors) carries code.
func HasCode(err error, code string) bool {
	if err == nil {
		return false
	}
	if coded, ok := err.(CodedError); ok && coded.Code == code {
		return true
	}
	switch x := err.(type) {
	case interface{ Unwrap() []error }:
		for _, inner := range x.Unwrap() {
			if HasCode(inner, code) {
				return true
			}
		}
		return false
	case interface{ Unwrap() error }:
		return HasCode(x.Unwrap(), code)
	}
	return false
}

func Errorf(code string, format string, args ...interface{}) error {
	return MakeCodedError(code, fmt.Errorf(format, args...))
}

func SubErrorf(code string, subCode string, format string, args ...interface{}) error {
	return MakeSubCodedError(code, subCode, fmt.Errorf(format, args...))
}
