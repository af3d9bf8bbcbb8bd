// Copyright 2026 The Leon3jtag Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package leon3 presents a per-core control façade over a GRLIB DSU3
// instance: halt/run/step/status and register access in terms of SPARC
// core semantics rather than raw DSU3 register layouts.
package leon3

import (
	"time"

	"github.com/leon3probe/leon3jtag/devices/dsu3"
)

// sleep is a seam for tests.
var sleep = time.Sleep

const pollInterval = time.Millisecond

// Core controls a single LEON3 integer-unit core through its DSU3
// instance.
type Core struct {
	dsu   *dsu3.Registers
	index int
}

// New returns a Core controlling core index k through dsu.
func New(dsu *dsu3.Registers, k int) *Core {
	return &Core{dsu: dsu, index: k}
}

// HaltReason classifies why a core is halted.
type HaltReason int

const (
	// HaltUnknown covers debug-mode entry this driver cannot yet
	// classify further (hardware-breakpoint discrimination via DSU_DTR
	// is not implemented).
	HaltUnknown HaltReason = iota
	HaltException
	HaltStep
)

// Status is the abstract run state of a core, derived from DSU_CTRL and
// DSU_BRSS.
type Status int

const (
	Running Status = iota
	Sleeping
	Halted
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case Sleeping:
		return "sleeping"
	case Halted:
		return "halted"
	default:
		return "running"
	}
}

// CoreInformation is returned by operations that leave the core halted.
type CoreInformation struct {
	PC uint32
}

// ctrlAndBrss reads both DSU_CTRL and DSU_BRSS for the core in one call.
func (c *Core) ctrlAndBrss() (dsu3.DsuCtrl, dsu3.DsuBrss, error) {
	ctrl, err := dsu3.ReadReg[dsu3.DsuCtrl](c.dsu, c.index)
	if err != nil {
		return 0, 0, err
	}
	brss, err := dsu3.ReadReg[dsu3.DsuBrss](c.dsu, c.index)
	if err != nil {
		return 0, 0, err
	}
	return ctrl, brss, nil
}

// CoreHalted reports whether the core is halted for any reason (HL, PE,
// or DM set).
func (c *Core) CoreHalted() (bool, error) {
	ctrl, err := dsu3.ReadReg[dsu3.DsuCtrl](c.dsu, c.index)
	if err != nil {
		return false, err
	}
	return ctrl.HL() || ctrl.PE() || ctrl.DM(), nil
}

// CoreInDebugMode reports whether the core has entered debug mode.
func (c *Core) CoreInDebugMode() (bool, error) {
	ctrl, err := dsu3.ReadReg[dsu3.DsuCtrl](c.dsu, c.index)
	if err != nil {
		return false, err
	}
	return ctrl.DM(), nil
}

// Status derives the core's abstract status from DSU_CTRL and DSU_BRSS.
func (c *Core) Status() (Status, HaltReason, error) {
	ctrl, brss, err := c.ctrlAndBrss()
	if err != nil {
		return 0, 0, err
	}
	if ctrl.PW() {
		return Sleeping, 0, nil
	}
	if ctrl.HL() || ctrl.PE() || ctrl.DM() {
		switch {
		case ctrl.PE():
			return Halted, HaltException, nil
		case brss.SS(c.index):
			return Halted, HaltStep, nil
		default:
			return Halted, HaltUnknown, nil
		}
	}
	return Running, 0, nil
}

// WaitForCoreHalted polls CoreHalted with a 1ms inter-poll sleep until it
// reports true or timeout elapses.
func (c *Core) WaitForCoreHalted(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		halted, err := c.CoreHalted()
		if err != nil {
			return err
		}
		if halted {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrTimeout
		}
		sleep(pollInterval)
	}
}

// Halt forces the core into debug mode by setting BRSS.BN for this core,
// then waits for it to actually halt. On success it returns the core's
// program counter.
func (c *Core) Halt(timeout time.Duration) (CoreInformation, error) {
	if _, err := dsu3.ModifyReg(c.dsu, c.index, func(b *dsu3.DsuBrss) struct{} {
		b.SetBN(c.index, true)
		return struct{}{}
	}); err != nil {
		return CoreInformation{}, err
	}
	if err := c.WaitForCoreHalted(timeout); err != nil {
		return CoreInformation{}, err
	}
	return c.CoreInfo()
}

// CoreInfo reads the core's program counter.
func (c *Core) CoreInfo() (CoreInformation, error) {
	pc, err := c.dsu.ReadCoreReg(c.index, dsu3.NewSpecialRegisterID(dsu3.SelPC))
	if err != nil {
		return CoreInformation{}, err
	}
	return CoreInformation{PC: pc}, nil
}

// Run returns ErrCoreInError when the core is in error mode (DSU_CTRL.PE).
// Otherwise it returns *ErrNotImplemented: it does not clear BRSS.BN and
// does not resume the core.
func (c *Core) Run() error {
	ctrl, err := dsu3.ReadReg[dsu3.DsuCtrl](c.dsu, c.index)
	if err != nil {
		return err
	}
	if ctrl.PE() {
		return ErrCoreInError
	}
	return &ErrNotImplemented{Op: "run"}
}

// Step is not implemented.
func (c *Core) Step() (CoreInformation, error) {
	return CoreInformation{}, &ErrNotImplemented{Op: "step"}
}

// Reset is not implemented.
func (c *Core) Reset() error {
	return &ErrNotImplemented{Op: "reset"}
}

// ResetAndHalt is not implemented: the DSU3 register set this driver
// targets exposes no atomic reset-then-halt primitive.
func (c *Core) ResetAndHalt(timeout time.Duration) (CoreInformation, error) {
	return CoreInformation{}, &ResetHaltRequestNotSupportedError{}
}

// CoreHaltedOrDebugMode is not implemented: classifying "halted because of
// a hardware breakpoint" vs. "merely in debug mode" requires decoding
// DSU_DTR, which this driver does not yet do.
func (c *Core) CoreHaltedOrDebugMode() (bool, error) {
	return false, &ErrNotImplemented{Op: "core_halted_or_debug_mode"}
}

// ReadCoreReg reads an IU or special register from the core, applying
// windowed-register-file translation as needed. FPU register transfer is
// not implemented.
func (c *Core) ReadCoreReg(id dsu3.RegisterID) (uint32, error) {
	if id.Class() == dsu3.ClassFPU {
		return 0, &ErrNotImplemented{Op: "fpu register transfer"}
	}
	return c.dsu.ReadCoreReg(c.index, id)
}

// WriteCoreReg writes an IU or special register on the core, applying
// windowed-register-file translation as needed. FPU register transfer is
// not implemented.
func (c *Core) WriteCoreReg(id dsu3.RegisterID, v uint32) error {
	if id.Class() == dsu3.ClassFPU {
		return &ErrNotImplemented{Op: "fpu register transfer"}
	}
	return c.dsu.WriteCoreReg(c.index, id, v)
}
