// Copyright 2026 The Leon3jtag Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package leon3

import "errors"

// ErrTimeout is returned by WaitForCoreHalted when the deadline expires
// before the core halts.
var ErrTimeout = errors.New("leon3: timeout waiting for core to halt")

// ErrCoreInError is returned by Run when the core is in processor error
// mode; resuming execution from error mode is not meaningful.
var ErrCoreInError = errors.New("leon3: core is in error mode")

// ErrNotImplemented is returned by operations this driver does not yet
// implement; it names the operation so callers and logs can tell which.
type ErrNotImplemented struct {
	Op string
}

func (e *ErrNotImplemented) Error() string {
	return "leon3: " + e.Op + " not implemented"
}

// ResetHaltRequestNotSupportedError is returned by ResetAndHalt: the DSU3
// register set exposes no atomic reset-then-halt primitive, which is a
// different condition from an operation that is merely unimplemented.
type ResetHaltRequestNotSupportedError struct{}

func (e *ResetHaltRequestNotSupportedError) Error() string {
	return "leon3: combined reset-and-halt request is not supported"
}
