// Copyright 2026 The Leon3jtag Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package dsu3 drives the GRLIB Debug Support Unit v3, the memory-mapped
// debug controller for one or more LEON3 integer-unit cores, through a
// plain AHB memory interface.
//
// See the GRLIB IP Core User's Manual, DSU3 chapter, for the register
// layout this package decodes.
package dsu3

import (
	"sync"
	"time"
)

// MaxCoreIndex is the highest core index the DSU3 per-core address window
// scheme supports.
const MaxCoreIndex = 15

// coreStride is the address distance between consecutive per-core DSU3
// windows.
const coreStride = 0x10_0000

// ahbMemory is the minimal memory interface devices/dsu3 needs from the
// AHBJTAG bridge. It is declared here, by the consumer, the way
// conn/i2c.Bus is declared by the package that needs an I²C bus rather
// than by the bus driver itself.
type ahbMemory interface {
	ReadWords(addr uint32, out []uint32, timeout time.Duration) error
	WriteWords(addr uint32, data []uint32, timeout time.Duration) error
}

// Register32 is implemented by every DSU3 register type: a plain uint32
// carrying a fixed offset within a core's DSU3 window and bit accessors
// for its fields. It stands in for the compile-time "offset + decode"
// parameter a generic MemoryMappedRegister<u32> would carry.
type Register32 interface {
	~uint32
	Offset() uint32
}

// Registers provides read/write/modify access to one DSU3 instance's
// register file, shared by all cores behind it.
//
// Registers is not safe for concurrent use beyond the single mutex
// protecting the first-attach flag: the underlying bridge is a
// single-owner resource and callers are expected to serialize their own
// access to a given core.
type Registers struct {
	mem     ahbMemory
	timeout time.Duration
	base    uint32

	mu          sync.Mutex
	initialized bool
}

// New returns a Registers instance for the DSU3 block discovered at base,
// issuing AHB transactions through mem with the given per-word timeout.
func New(mem ahbMemory, base uint32, timeout time.Duration) *Registers {
	return &Registers{mem: mem, base: base, timeout: timeout}
}

// coreBase returns the base address of core k's DSU3 window, after
// validating k.
func (r *Registers) coreBase(k int) (uint32, error) {
	if k < 0 || k > MaxCoreIndex {
		return 0, &CoreOutOfRangeError{CoreIndex: k}
	}
	return r.base + uint32(k)*coreStride, nil
}

// ensureFirstAttach performs the one-time DSU3 initialization mandated by
// the GRLIB manual: Break-on-IU-watchpoint (BW) must be set for the
// break-now (BN) bits in DSU_BRSS to take effect. It runs at most once per
// Registers instance, on the first access of any kind.
func ensureFirstAttach(r *Registers, k int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.initialized {
		return nil
	}
	if _, err := modifyRegRaw(r, k, func(ctrl *DsuCtrl) struct{} {
		ctrl.SetBW(true)
		return struct{}{}
	}); err != nil {
		return err
	}
	r.initialized = true
	return nil
}

// ReadReg reads and decodes register R at core k.
func ReadReg[R Register32](r *Registers, k int) (R, error) {
	var zero R
	if err := ensureFirstAttach(r, k); err != nil {
		return zero, err
	}
	return readRegRaw[R](r, k)
}

func readRegRaw[R Register32](r *Registers, k int) (R, error) {
	var zero R
	base, err := r.coreBase(k)
	if err != nil {
		return zero, err
	}
	var out [1]uint32
	if err := r.mem.ReadWords(base+zero.Offset(), out[:], r.timeout); err != nil {
		return zero, err
	}
	return R(out[0]), nil
}

// WriteReg writes register R's value at core k.
func WriteReg[R Register32](r *Registers, k int, v R) error {
	if err := ensureFirstAttach(r, k); err != nil {
		return err
	}
	return writeRegRaw(r, k, v)
}

func writeRegRaw[R Register32](r *Registers, k int, v R) error {
	base, err := r.coreBase(k)
	if err != nil {
		return err
	}
	return r.mem.WriteWords(base+v.Offset(), []uint32{uint32(v)}, r.timeout)
}

// ModifyReg reads register R at core k, applies f to a mutable view, writes
// the (possibly mutated) value back, and returns f's result.
func ModifyReg[R Register32, T any](r *Registers, k int, f func(*R) T) (T, error) {
	if err := ensureFirstAttach(r, k); err != nil {
		var zero T
		return zero, err
	}
	return modifyRegRaw(r, k, f)
}

func modifyRegRaw[R Register32, T any](r *Registers, k int, f func(*R) T) (T, error) {
	var zero T
	v, err := readRegRaw[R](r, k)
	if err != nil {
		return zero, err
	}
	result := f(&v)
	if err := writeRegRaw(r, k, v); err != nil {
		return zero, err
	}
	return result, nil
}
