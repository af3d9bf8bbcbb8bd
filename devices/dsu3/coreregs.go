// Copyright 2026 The Leon3jtag Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dsu3

// Offsets of the per-core memory-mapped register-file windows this package
// exposes in addition to the fixed control registers in registers.go,
// consistent with the DSU_DTR/PSR offsets in the DSU3 address map.
const (
	globalRegFileOffset  = 0x200000
	iuRegFileOffset      = 0x300000
	specialRegFileOffset = 0x400000
	fpuRegFileOffset     = 0x500000

	windowStride   = 0x40
	outSubOffset   = 0x00
	localSubOffset = 0x20

	numWindows = 8
)

const (
	offsetY     = specialRegFileOffset + 0x00
	offsetPSR   = specialRegFileOffset + 0x04
	offsetWIM   = specialRegFileOffset + 0x08
	offsetTBR   = specialRegFileOffset + 0x0C
	offsetPC    = specialRegFileOffset + 0x10
	offsetNPC   = specialRegFileOffset + 0x14
	offsetFSR   = specialRegFileOffset + 0x18
	offsetCPSR  = specialRegFileOffset + 0x1C
	offsetASR16 = specialRegFileOffset + 0x40
)

// readWord reads the single 32-bit word at byte offset off within core k's
// DSU3 window, running the first-attach procedure first if needed.
func (r *Registers) readWord(k int, off uint32) (uint32, error) {
	if err := ensureFirstAttach(r, k); err != nil {
		return 0, err
	}
	base, err := r.coreBase(k)
	if err != nil {
		return 0, err
	}
	var out [1]uint32
	if err := r.mem.ReadWords(base+off, out[:], r.timeout); err != nil {
		return 0, err
	}
	return out[0], nil
}

// writeWord writes v to the single 32-bit word at byte offset off within
// core k's DSU3 window, running the first-attach procedure first if
// needed.
func (r *Registers) writeWord(k int, off uint32, v uint32) error {
	if err := ensureFirstAttach(r, k); err != nil {
		return err
	}
	base, err := r.coreBase(k)
	if err != nil {
		return err
	}
	return r.mem.WriteWords(base+off, []uint32{v}, r.timeout)
}

// registerOffset translates a decoded RegisterID into a byte offset within
// core k's DSU3 window, reading PSR.CWP first when the register is in a
// windowed bank (O or L; I belongs to the next window, per the standard
// SPARC convention that a window's "in" registers alias the next window's
// "out" registers).
func (r *Registers) registerOffset(k int, d decoded) (uint32, error) {
	switch d.class {
	case ClassIUCore:
		if d.bank == BankGlobal {
			return globalRegFileOffset + uint32(d.index)*4, nil
		}
		cwp, err := r.currentWindow(k)
		if err != nil {
			return 0, err
		}
		window := cwp
		sub := outSubOffset
		switch d.bank {
		case BankOut:
			window, sub = cwp, outSubOffset
		case BankLocal:
			window, sub = cwp, localSubOffset
		case BankIn:
			// Ii of window cwp is the same physical register as Oi of
			// window cwp+1: the two windows' register sets overlap.
			window, sub = (cwp+1)%numWindows, outSubOffset
		}
		return iuRegFileOffset + uint32(window)*windowStride + uint32(sub) + uint32(d.index)*4, nil
	case ClassIUSpecial:
		if d.isASR {
			return offsetASR16 + uint32(d.asrN)*4, nil
		}
		switch d.selector {
		case SelY:
			return offsetY, nil
		case SelPSR:
			return offsetPSR, nil
		case SelWIM:
			return offsetWIM, nil
		case SelTBR:
			return offsetTBR, nil
		case SelPC:
			return offsetPC, nil
		case SelNPC:
			return offsetNPC, nil
		case SelFSR:
			return offsetFSR, nil
		case SelCPSR:
			return offsetCPSR, nil
		}
	case ClassFPU:
		return fpuRegFileOffset + uint32(d.index)*4, nil
	}
	return 0, &InvalidRegisterIDError{}
}

// currentWindow reads PSR.CWP for core k.
func (r *Registers) currentWindow(k int) (uint8, error) {
	v, err := r.readWord(k, Psr(0).Offset())
	if err != nil {
		return 0, err
	}
	return Psr(v).CWP(), nil
}

// ReadCoreReg reads the IU, special, or FPU register named by id from
// core k, applying windowed-register-file translation as needed.
func (r *Registers) ReadCoreReg(k int, id RegisterID) (uint32, error) {
	d, err := id.decode()
	if err != nil {
		return 0, err
	}
	off, err := r.registerOffset(k, d)
	if err != nil {
		return 0, err
	}
	return r.readWord(k, off)
}

// WriteCoreReg writes v to the IU, special, or FPU register named by id
// on core k, applying windowed-register-file translation as needed.
func (r *Registers) WriteCoreReg(k int, id RegisterID, v uint32) error {
	d, err := id.decode()
	if err != nil {
		return err
	}
	off, err := r.registerOffset(k, d)
	if err != nil {
		return err
	}
	return r.writeWord(k, off, v)
}
