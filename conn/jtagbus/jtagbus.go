// Copyright 2026 The Leon3jtag Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package jtagbus defines the transport a debug probe uses to shift bits
// into and out of a device's JTAG data registers.
//
// It is the lowest common denominator for any JTAG-based debug bridge: the
// concrete implementation (USB-JTAG adapter, FTDI bitbang, on-chip BSCAN)
// lives outside this module and is reached only through the Port interface
// below.
package jtagbus

import "fmt"

// Port is the single operation a JTAG probe must expose: shift bitLength
// bits of bitsIn into the JTAG data register at addr, MSB first, and return
// the bits that were shifted out while doing so.
//
// bitsIn and the returned slice are packed big-endian, left-padded to a
// whole number of bytes; bit 0 of the logical field is the least
// significant bit of the last byte. Implementations must be synchronous:
// WriteRegister does not return until the shift has completed on the wire.
type Port interface {
	WriteRegister(addr uint32, bitsIn []byte, bitLength uint) ([]byte, error)
}

// Error wraps a failure reported by the underlying probe transport.
//
// It lets callers distinguish transport failures (a broken USB link, a
// disconnected probe) from the protocol-level errors the bridge and DSU3
// layers produce on top of a working transport.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("jtagbus: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
