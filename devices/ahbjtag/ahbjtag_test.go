// Copyright 2026 The Leon3jtag Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ahbjtag

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/leon3probe/leon3jtag/conn/jtagbus"
	"github.com/leon3probe/leon3jtag/conn/jtagbus/jtagbustest"
)

const (
	testADATAAddr = 0x10
	testDDATAAddr = 0x11
)

func adata(kind byte, width byte, addr uint32) []byte {
	return []byte{(kind << 2) | width, byte(addr >> 24), byte(addr >> 16), byte(addr >> 8), byte(addr)}
}

func ddataIn(seq bool, payload uint32) []byte {
	b := []byte{0, byte(payload >> 24), byte(payload >> 16), byte(payload >> 8), byte(payload)}
	if seq {
		b[0] = 1
	}
	return b
}

func ddataOut(done bool, value uint32) []byte {
	b := []byte{0, byte(value >> 24), byte(value >> 16), byte(value >> 8), byte(value)}
	if done {
		b[0] = 1
	}
	return b
}

// A two-word write at a 4-aligned address is a single burst: one ADATA,
// then SEQ=1 on every DDATA shift except the last.
func TestWriteWords_Burst(t *testing.T) {
	p := &jtagbustest.Playback{Ops: []jtagbustest.IO{
		{Addr: testADATAAddr, BitLength: adataBitLen, BitsIn: adata(1, 0b10, 0x40000000)},
		{Addr: testDDATAAddr, BitLength: ddataBitLen, BitsIn: ddataIn(true, 0xDEADBEEF), BitsOut: ddataOut(true, 0)},
		{Addr: testDDATAAddr, BitLength: ddataBitLen, BitsIn: ddataIn(false, 0xCAFEF00D), BitsOut: ddataOut(true, 0)},
	}}
	b := New(p, testADATAAddr, testDDATAAddr)
	if err := b.WriteWords(0x40000000, []uint32{0xDEADBEEF, 0xCAFEF00D}, time.Second); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
}

// A read of 4 words at 0x3F8 straddles the 1KiB boundary between
// index 1 and 2: two ADATA shifts, each covering two words.
func TestReadWords_BoundaryCrossing(t *testing.T) {
	p := &jtagbustest.Playback{Ops: []jtagbustest.IO{
		{Addr: testADATAAddr, BitLength: adataBitLen, BitsIn: adata(0, 0b10, 0x3F8)},
		{Addr: testDDATAAddr, BitLength: ddataBitLen, BitsIn: ddataIn(true, 0), BitsOut: ddataOut(true, 0x11111111)},
		{Addr: testDDATAAddr, BitLength: ddataBitLen, BitsIn: ddataIn(false, 0), BitsOut: ddataOut(true, 0x22222222)},
		{Addr: testADATAAddr, BitLength: adataBitLen, BitsIn: adata(0, 0b10, 0x400)},
		{Addr: testDDATAAddr, BitLength: ddataBitLen, BitsIn: ddataIn(true, 0), BitsOut: ddataOut(true, 0x33333333)},
		{Addr: testDDATAAddr, BitLength: ddataBitLen, BitsIn: ddataIn(false, 0), BitsOut: ddataOut(true, 0x44444444)},
	}}
	b := New(p, testADATAAddr, testDDATAAddr)
	out := make([]uint32, 4)
	if err := b.ReadWords(0x3F8, out, time.Second); err != nil {
		t.Fatal(err)
	}
	want := []uint32{0x11111111, 0x22222222, 0x33333333, 0x44444444}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("unexpected result (-want +got):\n%s", diff)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
}

// A halfword write is single-shot, right-justified in the low 16 bits of
// the DDATA payload.
func TestWriteHalfword_Packing(t *testing.T) {
	p := &jtagbustest.Playback{Ops: []jtagbustest.IO{
		{Addr: testADATAAddr, BitLength: adataBitLen, BitsIn: adata(1, 0b01, 0x2)},
		{Addr: testDDATAAddr, BitLength: ddataBitLen, BitsIn: ddataIn(false, 0x00001234), BitsOut: ddataOut(true, 0)},
	}}
	b := New(p, testADATAAddr, testDDATAAddr)
	if err := b.WriteHalfword(0x2, 0x1234, time.Second); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
}

// A halfword read at a misaligned address fails before any probe traffic.
func TestReadHalfword_Misaligned(t *testing.T) {
	p := &jtagbustest.Playback{}
	b := New(p, testADATAAddr, testDDATAAddr)
	_, err := b.ReadHalfword(0x12345671, time.Second)
	var alignErr *MemoryNotAlignedError
	if !errors.As(err, &alignErr) {
		t.Fatalf("expected *MemoryNotAlignedError, got %v", err)
	}
	if alignErr.Address != 0x12345671 || alignErr.Alignment != 2 {
		t.Fatalf("unexpected error fields: %+v", alignErr)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
}

// If DDATA never reports DONE within the timeout the read fails without
// issuing another ADATA.
func TestReadWords_Timeout(t *testing.T) {
	port := &neverDonePort{}
	b := New(port, testADATAAddr, testDDATAAddr)
	var out [1]uint32
	err := b.ReadWords(0x0, out[:], 10*time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if port.adataCount != 1 {
		t.Fatalf("expected exactly one ADATA shift, got %d", port.adataCount)
	}
}

// A failure reported by the probe transport surfaces as *jtagbus.Error,
// unwrapping to the probe's own error.
func TestProbeError_Wrapped(t *testing.T) {
	probeErr := errors.New("usb link dropped")
	b := New(&brokenPort{err: probeErr}, testADATAAddr, testDDATAAddr)
	var out [1]uint32
	err := b.ReadWords(0x0, out[:], time.Second)
	var busErr *jtagbus.Error
	if !errors.As(err, &busErr) {
		t.Fatalf("expected *jtagbus.Error, got %v", err)
	}
	if !errors.Is(err, probeErr) {
		t.Fatalf("expected error to unwrap to the probe error, got %v", err)
	}
}

type brokenPort struct {
	err error
}

func (p *brokenPort) WriteRegister(addr uint32, bitsIn []byte, bitLength uint) ([]byte, error) {
	return nil, p.err
}

type neverDonePort struct {
	adataCount int
}

func (p *neverDonePort) WriteRegister(addr uint32, bitsIn []byte, bitLength uint) ([]byte, error) {
	if bitLength == adataBitLen {
		p.adataCount++
		return nil, nil
	}
	return ddataOut(false, 0), nil
}

// Write-then-read round trips.
func TestRoundTrip_Word(t *testing.T) {
	p := &jtagbustest.Playback{Ops: []jtagbustest.IO{
		{Addr: testADATAAddr, BitLength: adataBitLen, BitsIn: adata(1, 0b10, 0x1000)},
		{Addr: testDDATAAddr, BitLength: ddataBitLen, BitsIn: ddataIn(false, 0xAABBCCDD), BitsOut: ddataOut(true, 0)},
		{Addr: testADATAAddr, BitLength: adataBitLen, BitsIn: adata(0, 0b10, 0x1000)},
		{Addr: testDDATAAddr, BitLength: ddataBitLen, BitsIn: ddataIn(false, 0), BitsOut: ddataOut(true, 0xAABBCCDD)},
	}}
	b := New(p, testADATAAddr, testDDATAAddr)
	if err := b.WriteWords(0x1000, []uint32{0xAABBCCDD}, time.Second); err != nil {
		t.Fatal(err)
	}
	var out [1]uint32
	if err := b.ReadWords(0x1000, out[:], time.Second); err != nil {
		t.Fatal(err)
	}
	if out[0] != 0xAABBCCDD {
		t.Fatalf("got %#x, want 0xAABBCCDD", out[0])
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestRoundTrip_Byte(t *testing.T) {
	p := &jtagbustest.Playback{Ops: []jtagbustest.IO{
		{Addr: testADATAAddr, BitLength: adataBitLen, BitsIn: adata(1, 0b00, 0x7)},
		{Addr: testDDATAAddr, BitLength: ddataBitLen, BitsIn: ddataIn(false, 0x42), BitsOut: ddataOut(true, 0)},
		{Addr: testADATAAddr, BitLength: adataBitLen, BitsIn: adata(0, 0b00, 0x7)},
		{Addr: testDDATAAddr, BitLength: ddataBitLen, BitsIn: ddataIn(false, 0), BitsOut: ddataOut(true, 0x42)},
	}}
	b := New(p, testADATAAddr, testDDATAAddr)
	if err := b.WriteByte(0x7, 0x42, time.Second); err != nil {
		t.Fatal(err)
	}
	v, err := b.ReadByte(0x7, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x42 {
		t.Fatalf("got %#x, want 0x42", v)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestRoundTrip_Halfword(t *testing.T) {
	p := &jtagbustest.Playback{Ops: []jtagbustest.IO{
		{Addr: testADATAAddr, BitLength: adataBitLen, BitsIn: adata(1, 0b01, 0x1002)},
		{Addr: testDDATAAddr, BitLength: ddataBitLen, BitsIn: ddataIn(false, 0x1234), BitsOut: ddataOut(true, 0)},
		{Addr: testADATAAddr, BitLength: adataBitLen, BitsIn: adata(0, 0b01, 0x1002)},
		{Addr: testDDATAAddr, BitLength: ddataBitLen, BitsIn: ddataIn(false, 0), BitsOut: ddataOut(true, 0x1234)},
	}}
	b := New(p, testADATAAddr, testDDATAAddr)
	if err := b.WriteHalfword(0x1002, 0x1234, time.Second); err != nil {
		t.Fatal(err)
	}
	v, err := b.ReadHalfword(0x1002, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x1234 {
		t.Fatalf("got %#x, want 0x1234", v)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
}

// The byte at target address a is the high byte of the 64-bit value read
// at a: ReadMem64 hands back target byte order unchanged.
func TestReadMem64_TargetByteOrder(t *testing.T) {
	p := &jtagbustest.Playback{Ops: []jtagbustest.IO{
		{Addr: testADATAAddr, BitLength: adataBitLen, BitsIn: adata(0, 0b10, 0x3000)},
		{Addr: testDDATAAddr, BitLength: ddataBitLen, BitsIn: ddataIn(true, 0), BitsOut: ddataOut(true, 0x11223344)},
		{Addr: testDDATAAddr, BitLength: ddataBitLen, BitsIn: ddataIn(false, 0), BitsOut: ddataOut(true, 0x55667788)},
	}}
	b := New(p, testADATAAddr, testDDATAAddr)
	buf := make([]byte, 8)
	if err := b.ReadMem64(0x3000, buf, time.Second); err != nil {
		t.Fatal(err)
	}
	want := []byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88}
	if diff := cmp.Diff(want, buf); diff != "" {
		t.Fatalf("unexpected bytes (-want +got):\n%s", diff)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestInvalidDataLength(t *testing.T) {
	p := &jtagbustest.Playback{}
	b := New(p, testADATAAddr, testDDATAAddr)
	err := b.WriteMem64(0x0, make([]byte, 12), time.Second)
	var lenErr *InvalidDataLengthError
	if !errors.As(err, &lenErr) {
		t.Fatalf("expected *InvalidDataLengthError, got %v", err)
	}
	if lenErr.RequiredMultiple != 8 {
		t.Fatalf("unexpected multiple: %d", lenErr.RequiredMultiple)
	}
	if err := b.ReadMem32(0x0, make([]byte, 6), time.Second); !errors.As(err, &lenErr) {
		t.Fatalf("expected *InvalidDataLengthError, got %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
}

// The byte at target address a is the high byte of the 64-bit value
// written at a, regardless of host endianness.
func TestEndian64_HighWordAtLowerAddress(t *testing.T) {
	p := &jtagbustest.Playback{Ops: []jtagbustest.IO{
		{Addr: testADATAAddr, BitLength: adataBitLen, BitsIn: adata(1, 0b10, 0x2000)},
		{Addr: testDDATAAddr, BitLength: ddataBitLen, BitsIn: ddataIn(true, 0x11223344), BitsOut: ddataOut(true, 0)},
		{Addr: testDDATAAddr, BitLength: ddataBitLen, BitsIn: ddataIn(false, 0x55667788), BitsOut: ddataOut(true, 0)},
	}}
	b := New(p, testADATAAddr, testDDATAAddr)
	if err := b.WriteDoubleWords(0x2000, []uint64{0x1122334455667788}, time.Second); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
}

// An out-of-bounds access fails before any shift is emitted.
func TestOutOfBounds_NoTraffic(t *testing.T) {
	p := &jtagbustest.Playback{}
	b := New(p, testADATAAddr, testDDATAAddr)
	out := make([]uint32, 3)
	err := b.ReadWords(0xFFFFFFF8, out, time.Second)
	if !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
}

// Misaligned addresses for widths >= 2 fail before any shift.
func TestAlignment_NoTraffic(t *testing.T) {
	p := &jtagbustest.Playback{}
	b := New(p, testADATAAddr, testDDATAAddr)
	if err := b.WriteWords(0x1001, []uint32{1}, time.Second); err == nil {
		t.Fatal("expected alignment error")
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
}

// Burst partitioning never straddles a 1KiB boundary, and the
// number of ADATA shifts equals the number of distinct 1KiB windows
// touched.
func TestBurstPartition_MatchesWindowCount(t *testing.T) {
	cases := []struct {
		addr uint32
		n    int
	}{
		{0x0, 1},
		{0x0, 4},
		{0x3F8, 4},
		{0x3FC, 1},
		{0x3FC, 2},
		{0x1000, 300},
	}
	for _, c := range cases {
		groups := map[uint64]struct{}{}
		for i := 0; i < c.n; i++ {
			groups[(uint64(c.addr)+uint64(i)*4)/burstBoundary] = struct{}{}
		}
		runs := 0
		for i := 0; i < c.n; {
			j := runEnd(c.addr, i, c.n)
			g0 := (uint64(c.addr) + uint64(i)*4) / burstBoundary
			g1 := (uint64(c.addr) + uint64(j-1)*4) / burstBoundary
			if g0 != g1 {
				t.Fatalf("run [%d,%d) for addr=%#x straddles a boundary", i, j, c.addr)
			}
			runs++
			i = j
		}
		if runs != len(groups) {
			t.Fatalf("addr=%#x n=%d: got %d runs, want %d", c.addr, c.n, runs, len(groups))
		}
	}
}
