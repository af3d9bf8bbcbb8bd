// Copyright 2026 The Leon3jtag Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dsu3

// bit returns whether bit n of v is set.
func bit(v uint32, n uint) bool {
	return v&(1<<n) != 0
}

func setBit(v *uint32, n uint, set bool) {
	if set {
		*v |= 1 << n
	} else {
		*v &^= 1 << n
	}
}

// field extracts the inclusive bit range [hi:lo] of v.
func field(v uint32, hi, lo uint) uint32 {
	mask := uint32(1)<<(hi-lo+1) - 1
	return (v >> lo) & mask
}

// DsuCtrl is the DSU Control Register (GRLIB IP Core User's Manual
// §32.6.1). Only the bits this driver reads or writes are exposed.
type DsuCtrl uint32

// Offset implements dsu3.Register32.
func (DsuCtrl) Offset() uint32 { return 0x000000 }

// PW reports whether the processor is in power-down mode (read-only).
func (c DsuCtrl) PW() bool { return bit(uint32(c), 11) }

// HL reports, on read, whether the processor is halted. Setting it while
// the processor is in debug mode puts the processor in halt mode.
func (c DsuCtrl) HL() bool { return bit(uint32(c), 10) }

// SetHL sets the halt (HL) bit.
func (c *DsuCtrl) SetHL(v bool) { setBit((*uint32)(c), 10, v) }

// PE reports whether the processor is in error mode (read-only on its
// own; writing 1 clears the error and halt mode).
func (c DsuCtrl) PE() bool { return bit(uint32(c), 9) }

// SetPE sets the processor-error (PE) bit.
func (c *DsuCtrl) SetPE(v bool) { setBit((*uint32)(c), 9, v) }

// EB is the value of the external DSUBRE signal (read-only).
func (c DsuCtrl) EB() bool { return bit(uint32(c), 8) }

// EE is the value of the external DSUEN signal (read-only).
func (c DsuCtrl) EE() bool { return bit(uint32(c), 7) }

// DM reports whether the processor has entered debug mode (read-only).
func (c DsuCtrl) DM() bool { return bit(uint32(c), 6) }

// BZ: break on error traps.
func (c DsuCtrl) BZ() bool { return bit(uint32(c), 5) }

// SetBZ sets the break-on-error-traps (BZ) bit.
func (c *DsuCtrl) SetBZ(v bool) { setBit((*uint32)(c), 5, v) }

// BX: break on any trap.
func (c DsuCtrl) BX() bool { return bit(uint32(c), 4) }

// SetBX sets the break-on-trap (BX) bit.
func (c *DsuCtrl) SetBX(v bool) { setBit((*uint32)(c), 4, v) }

// BS: break on software breakpoint instruction.
func (c DsuCtrl) BS() bool { return bit(uint32(c), 3) }

// SetBS sets the break-on-software-breakpoint (BS) bit.
func (c *DsuCtrl) SetBS(v bool) { setBit((*uint32)(c), 3, v) }

// BW: break on IU watchpoint. Must be set for DSU_BRSS.BN writes to take
// effect (see the first-attach procedure).
func (c DsuCtrl) BW() bool { return bit(uint32(c), 2) }

// SetBW sets the break-on-watchpoint (BW) bit.
func (c *DsuCtrl) SetBW(v bool) { setBit((*uint32)(c), 2, v) }

// BE: break on error (trap in trap).
func (c DsuCtrl) BE() bool { return bit(uint32(c), 1) }

// SetBE sets the break-on-error (BE) bit.
func (c *DsuCtrl) SetBE(v bool) { setBit((*uint32)(c), 1, v) }

// TE: trace enable.
func (c DsuCtrl) TE() bool { return bit(uint32(c), 0) }

// SetTE sets the trace-enable (TE) bit.
func (c *DsuCtrl) SetTE(v bool) { setBit((*uint32)(c), 0, v) }

// DsuBrss is the DSU Break and Single Step Register (GRLIB IP Core User's
// Manual §32.6.2). It controls all processors in a multiprocessor system
// and is only accessible through core 0's DSU3 window.
type DsuBrss uint32

// Offset implements dsu3.Register32.
func (DsuBrss) Offset() uint32 { return 0x000020 }

// SS reports whether processor k is set to single-step.
func (r DsuBrss) SS(k int) bool { return bit(uint32(r), uint(16+k)) }

// SetSS sets or clears processor k's single-step bit.
func (r *DsuBrss) SetSS(k int, v bool) { setBit((*uint32)(r), uint(16+k), v) }

// BN reports whether processor k is forced into debug mode (break now).
func (r DsuBrss) BN(k int) bool { return bit(uint32(r), uint(k)) }

// SetBN sets or clears processor k's break-now bit.
func (r *DsuBrss) SetBN(k int, v bool) { setBit((*uint32)(r), uint(k), v) }

// DsuDbgm is the DSU Debug Mode Mask Register (GRLIB IP Core User's Manual
// §32.6.3). Like DsuBrss, it is only accessible through core 0's window.
type DsuDbgm uint32

// Offset implements dsu3.Register32.
func (DsuDbgm) Offset() uint32 { return 0x000024 }

// DM reports whether processor k is masked from being forced into debug
// mode by another processor entering it.
func (r DsuDbgm) DM(k int) bool { return bit(uint32(r), uint(16+k)) }

// SetDM sets or clears processor k's debug-mode mask bit.
func (r *DsuDbgm) SetDM(k int, v bool) { setBit((*uint32)(r), uint(16+k), v) }

// ED reports whether processor k enters debug mode when another processor
// does.
func (r DsuDbgm) ED(k int) bool { return bit(uint32(r), uint(k)) }

// SetED sets or clears processor k's enter-debug-mode bit.
func (r *DsuDbgm) SetED(k int, v bool) { setBit((*uint32)(r), uint(k), v) }

// DsuDtr is the DSU Trap Register (GRLIB IP Core User's Manual §32.6.4),
// read-only: it reports the SPARC trap type that caused the processor to
// enter debug mode.
type DsuDtr uint32

// Offset implements dsu3.Register32.
func (DsuDtr) Offset() uint32 { return 0x400020 }

// EM reports whether the trap would have caused the processor to enter
// error mode.
func (r DsuDtr) EM() bool { return bit(uint32(r), 12) }

// TrapType is the 8-bit SPARC trap type that caused debug mode entry.
func (r DsuDtr) TrapType() uint8 { return uint8(field(uint32(r), 11, 4)) }

// Psr is the SPARC Processor State Register (SPARC Architecture Manual
// Version 8, §4.2), projected through the DSU3 special-register window.
type Psr uint32

// Offset implements dsu3.Register32.
func (Psr) Offset() uint32 { return 0x400004 }

// Impl is the hardwired implementation identifier.
func (p Psr) Impl() uint8 { return uint8(field(uint32(p), 31, 28)) }

// Ver is the hardwired or software-readable version field.
func (p Psr) Ver() uint8 { return uint8(field(uint32(p), 27, 24)) }

// ICC is the integer condition code nibble (N,Z,V,C).
func (p Psr) ICC() uint8 { return uint8(field(uint32(p), 23, 20)) }

// N is the ALU-negative condition code bit.
func (p Psr) N() bool { return bit(uint32(p), 23) }

// Z is the ALU-zero condition code bit.
func (p Psr) Z() bool { return bit(uint32(p), 22) }

// V is the ALU-overflow condition code bit.
func (p Psr) V() bool { return bit(uint32(p), 21) }

// C is the ALU-carry condition code bit.
func (p Psr) C() bool { return bit(uint32(p), 20) }

// EC reports whether the coprocessor is enabled.
func (p Psr) EC() bool { return bit(uint32(p), 13) }

// EF reports whether the FPU is enabled.
func (p Psr) EF() bool { return bit(uint32(p), 12) }

// PIL is the processor interrupt level.
func (p Psr) PIL() uint8 { return uint8(field(uint32(p), 11, 8)) }

// S reports supervisor (true) vs. user (false) mode.
func (p Psr) S() bool { return bit(uint32(p), 7) }

// PS is the value of S at the time of the most recent trap.
func (p Psr) PS() bool { return bit(uint32(p), 6) }

// ET reports whether traps are enabled.
func (p Psr) ET() bool { return bit(uint32(p), 5) }

// CWP is the Current Window Pointer: which of the 8 register windows is
// active.
func (p Psr) CWP() uint8 { return uint8(field(uint32(p), 4, 0)) }

func assertRegister32[R Register32]() {}

var (
	_ = assertRegister32[DsuCtrl]
	_ = assertRegister32[DsuBrss]
	_ = assertRegister32[DsuDbgm]
	_ = assertRegister32[DsuDtr]
	_ = assertRegister32[Psr]
)
