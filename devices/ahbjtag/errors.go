// Copyright 2026 The Leon3jtag Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ahbjtag

import (
	"errors"
	"fmt"
)

// ErrTimeout is returned when DONE was not observed before the
// per-transaction deadline elapsed. The bridge's internal open-transaction
// state is left intact so a subsequent call can retry or start fresh.
var ErrTimeout = errors.New("ahbjtag: timeout during AHB access")

// ErrOutOfBounds is returned when a requested access would read or write
// past the end of the 32-bit AHB address space. It is always detected and
// returned before any shift is issued.
var ErrOutOfBounds = errors.New("ahbjtag: out of bounds memory access")

// MemoryNotAlignedError reports that an address did not satisfy the
// natural alignment required for the requested access width.
type MemoryNotAlignedError struct {
	Address   uint32
	Alignment uint32
}

func (e *MemoryNotAlignedError) Error() string {
	return fmt.Sprintf("ahbjtag: address %#x is not aligned to %d bytes", e.Address, e.Alignment)
}

// InvalidDataLengthError reports that a byte-oriented buffer's length was
// not a multiple of the access width it must be transferred in.
type InvalidDataLengthError struct {
	Op               string
	RequiredMultiple int
}

func (e *InvalidDataLengthError) Error() string {
	return fmt.Sprintf("ahbjtag: %s requires a length that is a multiple of %d", e.Op, e.RequiredMultiple)
}
