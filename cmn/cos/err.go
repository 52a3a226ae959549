// Package cos provides common low-level types and utilities shared across
// the engine: error types, ID generation, and identity fingerprints.
/*
 * Copyright (c) 2024, asynciter authors.
 */
package cos

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrProgramming marks a violation of an invariant that must never happen at
// runtime absent a caller bug (double-set a source, double-fire a done
// callback, read after destroy on a type that forbids it). Unlike stream
// errors, these are not meant to be handled by `error` listeners: the engine
// panics with one in every build (not only under the debug tag), so a caller
// that recover()s can inspect it with IsErrProgramming.
type ErrProgramming struct {
	what string
}

func NewErrProgramming(format string, a ...any) *ErrProgramming {
	return &ErrProgramming{fmt.Sprintf(format, a...)}
}

func (e *ErrProgramming) Error() string { return "programming error: " + e.what }

func IsErrProgramming(err error) bool {
	_, ok := err.(*ErrProgramming)
	return ok
}

// Wrapf annotates err with additional context using pkg/errors, preserving
// the original error for errors.Cause/errors.Is callers further up the stack.
func Wrapf(err error, format string, a ...any) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, format, a...)
}
