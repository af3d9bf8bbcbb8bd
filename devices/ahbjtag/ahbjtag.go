// Copyright 2026 The Leon3jtag Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ahbjtag drives the GRLIB AHBJTAG bridge: two memory-mapped JTAG
// data registers (ADATA, DDATA) that together expose a target's AMBA AHB
// bus as a set of byte/halfword/word/doubleword reads and writes.
//
// A transaction is one ADATA shift describing what to do, followed by one
// or more DDATA shifts that carry the payload and, on the last shift, the
// completion flag. See the GRLIB IP Core User's Manual, AHBJTAG chapter,
// for the wire protocol this package implements bit-for-bit.
package ahbjtag

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/leon3probe/leon3jtag/conn/jtagbus"
)

const (
	adataBitLen = 35
	ddataBitLen = 33

	burstBoundary = 1024 // AHB re-arbitration boundary, in bytes.
)

// Width is an AHB transaction width, as encoded into the top bits of ADATA.
type Width uint8

// Supported AHB transaction widths.
const (
	Byte Width = iota
	Halfword
	Word
)

func (w Width) encode() uint8 {
	switch w {
	case Byte:
		return 0b00
	case Halfword:
		return 0b01
	case Word:
		return 0b10
	default:
		panic(fmt.Sprintf("ahbjtag: invalid width %d", w))
	}
}

// Size returns the width in bytes.
func (w Width) Size() uint32 {
	switch w {
	case Byte:
		return 1
	case Halfword:
		return 2
	case Word:
		return 4
	default:
		panic(fmt.Sprintf("ahbjtag: invalid width %d", w))
	}
}

func (w Width) String() string {
	switch w {
	case Byte:
		return "byte"
	case Halfword:
		return "halfword"
	case Word:
		return "word"
	default:
		return fmt.Sprintf("Width(%d)", uint8(w))
	}
}

// Kind is the direction of an AHB transaction.
type Kind uint8

// Supported transaction kinds.
const (
	Read Kind = iota
	Write
)

func (k Kind) encode() uint8 {
	if k == Write {
		return 1
	}
	return 0
}

// Bridge drives one AHBJTAG bridge instance over a jtagbus.Port.
//
// Bridge is not safe for concurrent use: the probe port is an exclusive
// resource and the bridge is single-owner. A Bridge value holds the
// currently-open transaction as a plain field, never as package-level
// state, so that test doubles and multiple independent bridges never
// interfere with each other.
type Bridge struct {
	port      jtagbus.Port
	adataAddr uint32
	ddataAddr uint32

	openKind  *Kind
	openWidth *Width
}

// New returns a Bridge that shifts ADATA/DDATA through port at the given
// JTAG register addresses, as discovered by plug-and-play scan.
func New(port jtagbus.Port, adataAddr, ddataAddr uint32) *Bridge {
	return &Bridge{port: port, adataAddr: adataAddr, ddataAddr: ddataAddr}
}

func (b *Bridge) writeADATA(addr uint32, kind Kind, width Width) error {
	var cmd [5]byte
	cmd[0] = (kind.encode() << 2) | width.encode()
	binary.BigEndian.PutUint32(cmd[1:], addr)
	if _, err := b.port.WriteRegister(b.adataAddr, cmd[:], adataBitLen); err != nil {
		return &jtagbus.Error{Op: "ADATA shift", Err: err}
	}
	k, w := kind, width
	b.openKind, b.openWidth = &k, &w
	return nil
}

// shiftDDATA performs one DDATA shift carrying payload (ignored on reads),
// with seq indicating whether more transfers will follow in this burst. It
// polls until the DONE flag is observed or timeout elapses, returning the
// 32-bit value shifted back (the read result, or garbage on a write).
func (b *Bridge) shiftDDATA(seq bool, payload uint32, timeout time.Duration) (uint32, error) {
	if b.openWidth == nil {
		panic("ahbjtag: DDATA shift with no open ADATA transaction")
	}
	if seq && *b.openWidth != Word {
		panic("ahbjtag: sequential DDATA shifts are only legal for word transactions")
	}

	var shiftIn [5]byte
	if seq {
		shiftIn[0] = 1
	}
	binary.BigEndian.PutUint32(shiftIn[1:], payload)

	deadline := time.Now().Add(timeout)
	for {
		resp, err := b.port.WriteRegister(b.ddataAddr, shiftIn[:], ddataBitLen)
		if err != nil {
			return 0, &jtagbus.Error{Op: "DDATA shift", Err: err}
		}
		done := resp[0]&1 != 0
		value := binary.BigEndian.Uint32(resp[1:])
		if done {
			if !seq {
				b.openKind, b.openWidth = nil, nil
			}
			return value, nil
		}
		if time.Now().After(deadline) {
			return 0, ErrTimeout
		}
	}
}

// writeDDATA is shiftDDATA for a write transaction: it asserts that the
// payload width matches the currently open ADATA width.
func (b *Bridge) writeDDATA(width Width, seq bool, payload uint32, timeout time.Duration) error {
	if b.openKind == nil || *b.openKind != Write {
		panic("ahbjtag: DDATA write with no open write transaction")
	}
	if *b.openWidth != width {
		panic("ahbjtag: DDATA write width doesn't match ADATA fields")
	}
	_, err := b.shiftDDATA(seq, payload, timeout)
	return err
}

func (b *Bridge) readDDATA(width Width, seq bool, timeout time.Duration) (uint32, error) {
	if b.openKind == nil || *b.openKind != Read {
		panic("ahbjtag: DDATA read with no open read transaction")
	}
	if *b.openWidth != width {
		panic("ahbjtag: DDATA read width doesn't match ADATA fields")
	}
	v, err := b.shiftDDATA(seq, 0, timeout)
	if err != nil {
		return 0, err
	}
	switch width {
	case Byte:
		return v & 0xFF, nil
	case Halfword:
		return v & 0xFFFF, nil
	default:
		return v, nil
	}
}

// ReadWords reads len(out) consecutive 32-bit words starting at addr, which
// must be 4-byte aligned. timeout applies to each individual word transfer,
// not to the read as a whole. Sequential words are bursted within a single
// ADATA transaction whenever they share a 1KiB-aligned AHB arbitration
// window; a burst never straddles that boundary (see runEnd below).
func (b *Bridge) ReadWords(addr uint32, out []uint32, timeout time.Duration) error {
	if err := checkAligned(addr, 4); err != nil {
		return err
	}
	if err := checkOutOfBounds(addr, uint64(len(out))*4); err != nil {
		return err
	}
	for i := 0; i < len(out); {
		j := runEnd(addr, i, len(out))
		runAddr := addr + uint32(i)*4
		if err := b.writeADATA(runAddr, Read, Word); err != nil {
			return err
		}
		for k := i; k < j; k++ {
			v, err := b.readDDATA(Word, k < j-1, timeout)
			if err != nil {
				return err
			}
			out[k] = v
		}
		i = j
	}
	return nil
}

// WriteWords writes data as consecutive 32-bit words starting at addr,
// which must be 4-byte aligned, using the same burst-partitioning rule as
// ReadWords.
func (b *Bridge) WriteWords(addr uint32, data []uint32, timeout time.Duration) error {
	if err := checkAligned(addr, 4); err != nil {
		return err
	}
	if err := checkOutOfBounds(addr, uint64(len(data))*4); err != nil {
		return err
	}
	for i := 0; i < len(data); {
		j := runEnd(addr, i, len(data))
		runAddr := addr + uint32(i)*4
		if err := b.writeADATA(runAddr, Write, Word); err != nil {
			return err
		}
		for k := i; k < j; k++ {
			if err := b.writeDDATA(Word, k < j-1, data[k], timeout); err != nil {
				return err
			}
		}
		i = j
	}
	return nil
}

// runEnd returns the exclusive end index of the burst run starting at i:
// the largest j such that every word in [i, j) shares the same 1KiB
// arbitration window. Indices must be processed in ascending order for this
// grouping to be well-defined.
func runEnd(addr uint32, i, n int) int {
	group := (uint64(addr) + uint64(i)*4) / burstBoundary
	j := i + 1
	for j < n && (uint64(addr)+uint64(j)*4)/burstBoundary == group {
		j++
	}
	return j
}

// ReadHalfword reads a single 16-bit halfword at addr, which must be
// 2-byte aligned.
func (b *Bridge) ReadHalfword(addr uint32, timeout time.Duration) (uint16, error) {
	if err := checkAligned(addr, 2); err != nil {
		return 0, err
	}
	if err := b.writeADATA(addr, Read, Halfword); err != nil {
		return 0, err
	}
	v, err := b.readDDATA(Halfword, false, timeout)
	return uint16(v), err
}

// WriteHalfword writes a single 16-bit halfword at addr, which must be
// 2-byte aligned.
func (b *Bridge) WriteHalfword(addr uint32, v uint16, timeout time.Duration) error {
	if err := checkAligned(addr, 2); err != nil {
		return err
	}
	if err := b.writeADATA(addr, Write, Halfword); err != nil {
		return err
	}
	return b.writeDDATA(Halfword, false, uint32(v), timeout)
}

// ReadByte reads a single byte at addr. Any address is valid.
func (b *Bridge) ReadByte(addr uint32, timeout time.Duration) (uint8, error) {
	if err := b.writeADATA(addr, Read, Byte); err != nil {
		return 0, err
	}
	v, err := b.readDDATA(Byte, false, timeout)
	return uint8(v), err
}

// WriteByte writes a single byte at addr. Any address is valid.
func (b *Bridge) WriteByte(addr uint32, v uint8, timeout time.Duration) error {
	if err := b.writeADATA(addr, Write, Byte); err != nil {
		return err
	}
	return b.writeDDATA(Byte, false, uint32(v), timeout)
}

// ReadHalfwords reads len(out) independent, non-bursted halfwords starting
// at addr, each 2-byte aligned.
func (b *Bridge) ReadHalfwords(addr uint32, out []uint16, timeout time.Duration) error {
	if err := checkOutOfBounds(addr, uint64(len(out))*2); err != nil {
		return err
	}
	for i := range out {
		v, err := b.ReadHalfword(addr+uint32(i)*2, timeout)
		if err != nil {
			return err
		}
		out[i] = v
	}
	return nil
}

// WriteHalfwords writes data as independent, non-bursted halfwords starting
// at addr, each 2-byte aligned.
func (b *Bridge) WriteHalfwords(addr uint32, data []uint16, timeout time.Duration) error {
	if err := checkOutOfBounds(addr, uint64(len(data))*2); err != nil {
		return err
	}
	for i, v := range data {
		if err := b.WriteHalfword(addr+uint32(i)*2, v, timeout); err != nil {
			return err
		}
	}
	return nil
}

// ReadBytes reads len(out) independent, non-bursted bytes starting at addr.
func (b *Bridge) ReadBytes(addr uint32, out []byte, timeout time.Duration) error {
	if err := checkOutOfBounds(addr, uint64(len(out))); err != nil {
		return err
	}
	for i := range out {
		v, err := b.ReadByte(addr+uint32(i), timeout)
		if err != nil {
			return err
		}
		out[i] = v
	}
	return nil
}

// WriteBytes writes data as independent, non-bursted bytes starting at addr.
func (b *Bridge) WriteBytes(addr uint32, data []byte, timeout time.Duration) error {
	if err := checkOutOfBounds(addr, uint64(len(data))); err != nil {
		return err
	}
	for i, v := range data {
		if err := b.WriteByte(addr+uint32(i), v, timeout); err != nil {
			return err
		}
	}
	return nil
}

// ReadDoubleWords reads len(out) consecutive 64-bit values starting at
// addr, which must be 8-byte aligned. The target is big-endian: the high
// 32 bits of each 64-bit value occupy the lower address. Because the two
// halves are assembled with explicit shifts rather than a reinterpreted
// memory layout, this holds on hosts of either endianness with no runtime
// branch: words[2*i] is always the high half by construction.
func (b *Bridge) ReadDoubleWords(addr uint32, out []uint64, timeout time.Duration) error {
	if err := checkAligned(addr, 8); err != nil {
		return err
	}
	words := make([]uint32, len(out)*2)
	if err := b.ReadWords(addr, words, timeout); err != nil {
		return err
	}
	for i := range out {
		out[i] = uint64(words[2*i])<<32 | uint64(words[2*i+1])
	}
	return nil
}

// WriteDoubleWords writes data as consecutive 64-bit values starting at
// addr, which must be 8-byte aligned, applying the same endian handling as
// ReadDoubleWords in reverse.
func (b *Bridge) WriteDoubleWords(addr uint32, data []uint64, timeout time.Duration) error {
	if err := checkAligned(addr, 8); err != nil {
		return err
	}
	words := make([]uint32, len(data)*2)
	for i, v := range data {
		words[2*i], words[2*i+1] = uint32(v>>32), uint32(v)
	}
	return b.WriteWords(addr, words, timeout)
}

// ReadMem32 reads a byte-oriented memory region whose length must be a
// multiple of 4, returning it in target (big-endian) byte order.
func (b *Bridge) ReadMem32(addr uint32, data []byte, timeout time.Duration) error {
	if len(data)%4 != 0 {
		return &InvalidDataLengthError{Op: "ReadMem32", RequiredMultiple: 4}
	}
	words := make([]uint32, len(data)/4)
	if err := b.ReadWords(addr, words, timeout); err != nil {
		return err
	}
	for i, v := range words {
		binary.BigEndian.PutUint32(data[4*i:], v)
	}
	return nil
}

// WriteMem32 writes a byte-oriented memory region, interpreted in target
// (big-endian) byte order, whose length must be a multiple of 4.
func (b *Bridge) WriteMem32(addr uint32, data []byte, timeout time.Duration) error {
	if len(data)%4 != 0 {
		return &InvalidDataLengthError{Op: "WriteMem32", RequiredMultiple: 4}
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.BigEndian.Uint32(data[4*i:])
	}
	return b.WriteWords(addr, words, timeout)
}

// ReadMem64 reads a byte-oriented memory region whose length must be a
// multiple of 8, returning it in target (big-endian) byte order.
func (b *Bridge) ReadMem64(addr uint32, data []byte, timeout time.Duration) error {
	if len(data)%8 != 0 {
		return &InvalidDataLengthError{Op: "ReadMem64", RequiredMultiple: 8}
	}
	values := make([]uint64, len(data)/8)
	if err := b.ReadDoubleWords(addr, values, timeout); err != nil {
		return err
	}
	for i, v := range values {
		binary.BigEndian.PutUint64(data[8*i:], v)
	}
	return nil
}

// WriteMem64 writes a byte-oriented memory region, interpreted in target
// (big-endian) byte order, whose length must be a multiple of 8.
func (b *Bridge) WriteMem64(addr uint32, data []byte, timeout time.Duration) error {
	if len(data)%8 != 0 {
		return &InvalidDataLengthError{Op: "WriteMem64", RequiredMultiple: 8}
	}
	values := make([]uint64, len(data)/8)
	for i := range values {
		values[i] = binary.BigEndian.Uint64(data[8*i:])
	}
	return b.WriteDoubleWords(addr, values, timeout)
}

func checkAligned(addr uint32, alignment uint32) error {
	if addr%alignment != 0 {
		return &MemoryNotAlignedError{Address: addr, Alignment: alignment}
	}
	return nil
}

func checkOutOfBounds(addr uint32, numBytes uint64) error {
	if numBytes == 0 {
		return nil
	}
	if uint64(addr)+numBytes-1 > 0xFFFFFFFF {
		return ErrOutOfBounds
	}
	return nil
}
