// Copyright 2026 The Leon3jtag Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dsu3

// RegisterID is the 16-bit opaque register identifier used at the
// package boundary to name any IU core register, IU special register,
// or FPU register without exposing the underlying windowed addressing
// scheme to callers.
//
//	bits 15..12 = class   (0 = IU core, 1 = IU special, 2 = FPU)
//	class 0: bits 11..8 = bank (0=G, 1=O, 2=L, 3=I); bits 7..0 = index 0..7
//	class 1: bits 7..0  = selector (0=Y, 1=PSR, 2=WIM, 3=TBR, 4=PC, 5=nPC,
//	         6=FSR, 7=CPSR, 32..47 = ASR16..ASR31)
//	class 2: bits 7..0  = F index
type RegisterID uint16

// Register class values (bits 15..12 of a RegisterID).
const (
	ClassIUCore RegClass = iota
	ClassIUSpecial
	ClassFPU
)

// RegClass is the class field of a RegisterID.
type RegClass uint8

// IU core bank values (bits 11..8 of a class-0 RegisterID).
const (
	BankGlobal RegBank = iota
	BankOut
	BankLocal
	BankIn
)

// RegBank is the bank field of a class-0 RegisterID.
type RegBank uint8

// IU special-register selectors (class 1).
const (
	SelY RegSelector = iota
	SelPSR
	SelWIM
	SelTBR
	SelPC
	SelNPC
	SelFSR
	SelCPSR
)

// RegSelector is the selector field of a class-1 RegisterID.
type RegSelector uint8

const (
	selASR16Lo = 32
	selASR31Hi = 47
)

// NewIURegisterID encodes a class-0 (IU core) register identifier.
func NewIURegisterID(bank RegBank, index uint8) RegisterID {
	return RegisterID(uint16(ClassIUCore)<<12 | uint16(bank)<<8 | uint16(index))
}

// NewSpecialRegisterID encodes a class-1 (IU special) register identifier.
func NewSpecialRegisterID(sel RegSelector) RegisterID {
	return RegisterID(uint16(ClassIUSpecial)<<12 | uint16(sel))
}

// NewASRRegisterID encodes the ancillary state register ASR(16+n), n in
// 0..15.
func NewASRRegisterID(n uint8) RegisterID {
	return RegisterID(uint16(ClassIUSpecial)<<12 | uint16(selASR16Lo+n))
}

// NewFPURegisterID encodes a class-2 (FPU) register identifier.
func NewFPURegisterID(index uint8) RegisterID {
	return RegisterID(uint16(ClassFPU)<<12 | uint16(index))
}

// Class returns the RegisterID's class field.
func (id RegisterID) Class() RegClass {
	return RegClass(id >> 12)
}

// decoded is the fully validated, split-out form of a RegisterID.
type decoded struct {
	class    RegClass
	bank     RegBank
	index    uint8
	selector RegSelector
	isASR    bool
	asrN     uint8
}

// decode validates id and splits it into its class-specific fields.
// Out-of-range encodings yield *InvalidRegisterIDError.
func (id RegisterID) decode() (decoded, error) {
	class := id.Class()
	low := uint8(id & 0xFF)
	switch class {
	case ClassIUCore:
		bank := RegBank((id >> 8) & 0xF)
		if bank > BankIn {
			return decoded{}, &InvalidRegisterIDError{ID: id}
		}
		if low > 7 {
			return decoded{}, &InvalidRegisterIDError{ID: id}
		}
		return decoded{class: class, bank: bank, index: low}, nil
	case ClassIUSpecial:
		switch {
		case low <= uint8(SelCPSR):
			return decoded{class: class, selector: RegSelector(low)}, nil
		case low >= selASR16Lo && low <= selASR31Hi:
			return decoded{class: class, isASR: true, asrN: low - selASR16Lo}, nil
		default:
			return decoded{}, &InvalidRegisterIDError{ID: id}
		}
	case ClassFPU:
		if low > 31 {
			return decoded{}, &InvalidRegisterIDError{ID: id}
		}
		return decoded{class: class, index: low}, nil
	default:
		return decoded{}, &InvalidRegisterIDError{ID: id}
	}
}
