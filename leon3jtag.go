// Copyright 2026 The Leon3jtag Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package leon3jtag drives a LEON3 (SPARC V8) microprocessor over a JTAG
// link: it sequences the GRLIB AHBJTAG bridge into AMBA AHB bus
// transactions and, on top of that, drives the DSU3 debug support unit to
// halt, resume, and inspect one or more LEON3 cores.
//
// conn/jtagbus defines the opaque JTAG register-shift transport a real
// probe must implement.
//
// devices/ahbjtag sequences ADATA/DDATA shifts into byte/halfword/word/
// doubleword AHB memory accesses.
//
// devices/dsu3 reads and writes DSU3 control and per-core register-file
// registers through the bridge.
//
// devices/leon3 presents a halt/run/step/status façade over one core.
//
// Session, below, ties these together: a one-time plug-and-play scan
// resolves the DSU3 base address, after which a caller drives one or more
// devices/leon3.Core values through it until Detach.
package leon3jtag // import "github.com/leon3probe/leon3jtag"

import (
	"errors"
	"fmt"
	"time"

	"github.com/leon3probe/leon3jtag/conn/jtagbus"
	"github.com/leon3probe/leon3jtag/devices/ahbjtag"
	"github.com/leon3probe/leon3jtag/devices/dsu3"
	"github.com/leon3probe/leon3jtag/devices/leon3"
)

// DeviceID names a GRLIB plug-and-play vendor/device pair.
type DeviceID struct {
	Vendor uint16
	Device uint16
}

// GRLIB plug-and-play vendor and device identifiers this driver looks up.
const (
	VendorGaisler   = 0x01
	DeviceLEON3DSU3 = 0x004
)

// LEON3DSU is the plug-and-play device id of the DSU3 debug support unit,
// as GRLIB enumerates it.
var LEON3DSU = DeviceID{Vendor: VendorGaisler, Device: DeviceLEON3DSU3}

// AddressSpace is one memory window a plug-and-play record advertises.
type AddressSpace struct {
	Start uint32
}

// Record is a single plug-and-play table entry: a discovered device and
// the address space(s) it decodes. Only the first address space's start is
// consumed by this driver.
type Record struct {
	AddressSpaces []AddressSpace
}

// PlugAndPlayScanner resolves a GRLIB device id to its plug-and-play table
// entry, if present. Discovery of the on-chip plug-and-play region itself,
// walking the AHB/APB bridges to find the table, is out of this module's
// scope; only this lookup operation is consumed here.
type PlugAndPlayScanner interface {
	FindDevice(id DeviceID) (*Record, error)
}

// ErrDsu3NotFound is returned by Attach when the plug-and-play scan
// completes without error but reports no DSU3 entry.
var ErrDsu3NotFound = errors.New("leon3jtag: DSU3 not present in plug-and-play table")

// PlugAndPlayFailureError wraps a failure of the plug-and-play scan itself,
// as opposed to a clean "not found" result.
type PlugAndPlayFailureError struct {
	Err error
}

func (e *PlugAndPlayFailureError) Error() string {
	return fmt.Sprintf("leon3jtag: plug-and-play scan failed: %v", e.Err)
}

func (e *PlugAndPlayFailureError) Unwrap() error { return e.Err }

// Session is the lifecycle of a single debugger attach: one plug-and-play
// scan, one DSU3 base-address resolution, and the bridge/DSU3 layers built
// on top of it, torn down on Detach.
//
// Session is not safe for concurrent use: the bridge it owns is a
// single-owner, non-reentrant resource.
type Session struct {
	bridge *ahbjtag.Bridge
	dsu    *dsu3.Registers
	base   uint32
}

// Attach performs the plug-and-play scan for the DSU3 device, resolves its
// base address, and constructs the bridge and DSU3 register layers. adata
// and ddata are the JTAG register addresses a plug-and-play scan for the
// AHBJTAG bridge itself would yield; timeout is the per-word deadline
// every subsequent bridge access uses.
func Attach(port jtagbus.Port, scanner PlugAndPlayScanner, adata, ddata uint32, timeout time.Duration) (*Session, error) {
	rec, err := scanner.FindDevice(LEON3DSU)
	if err != nil {
		return nil, &PlugAndPlayFailureError{Err: err}
	}
	if rec == nil || len(rec.AddressSpaces) == 0 {
		return nil, ErrDsu3NotFound
	}
	bridge := ahbjtag.New(port, adata, ddata)
	base := rec.AddressSpaces[0].Start
	return &Session{
		bridge: bridge,
		dsu:    dsu3.New(bridge, base, timeout),
		base:   base,
	}, nil
}

// Detach releases the session. There is no hardware state this layer owns
// beyond what the caller already holds; Detach exists so a Session has a
// symmetric lifecycle bracket to Attach.
func (s *Session) Detach() error {
	return nil
}

// Core returns a façade for controlling core index k through this
// session's DSU3 instance. k is validated lazily, on first access, the way
// devices/dsu3 validates every core-indexed operation.
func (s *Session) Core(k int) *leon3.Core {
	return leon3.New(s.dsu, k)
}

// Bridge exposes the underlying AHBJTAG bridge, for callers that need raw
// AHB memory access alongside DSU3/core-level operations.
func (s *Session) Bridge() *ahbjtag.Bridge {
	return s.bridge
}

// BaseAddress returns the DSU3 base address resolved during Attach.
func (s *Session) BaseAddress() uint32 {
	return s.base
}
