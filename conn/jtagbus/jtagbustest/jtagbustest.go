// Copyright 2026 The Leon3jtag Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package jtagbustest is meant to be used to test drivers over a fake JTAG
// register-shift transport.
package jtagbustest

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/leon3probe/leon3jtag/conn/jtagbus"
)

// IO registers one shift that happened on either a real or fake JTAG port.
type IO struct {
	Addr      uint32
	BitLength uint
	BitsIn    []byte
	BitsOut   []byte
}

// Record implements jtagbus.Port and records everything shifted through it.
//
// This can then be used to feed a Playback to do "replay" based unit tests.
type Record struct {
	sync.Mutex
	Port jtagbus.Port // Port can be nil if no real transport backs the recording.
	Ops  []IO
}

// WriteRegister implements jtagbus.Port.
func (r *Record) WriteRegister(addr uint32, bitsIn []byte, bitLength uint) ([]byte, error) {
	r.Lock()
	defer r.Unlock()
	var out []byte
	if r.Port != nil {
		o, err := r.Port.WriteRegister(addr, bitsIn, bitLength)
		if err != nil {
			return nil, err
		}
		out = o
	}
	io := IO{Addr: addr, BitLength: bitLength, BitsIn: append([]byte(nil), bitsIn...)}
	if out != nil {
		io.BitsOut = append([]byte(nil), out...)
	}
	r.Ops = append(r.Ops, io)
	return out, nil
}

// Playback implements jtagbus.Port and plays back a recorded shift sequence.
//
// While "replay" type of unit tests are of limited value on their own, they
// give an easy, exact way to assert on-wire traffic for a bit-accurate
// protocol such as AHBJTAG.
type Playback struct {
	sync.Mutex
	Ops []IO
}

// Close asserts that every expected shift was consumed.
func (p *Playback) Close() error {
	p.Lock()
	defer p.Unlock()
	if len(p.Ops) != 0 {
		return fmt.Errorf("jtagbustest: expected playback to be empty:\n%#v", p.Ops)
	}
	return nil
}

// WriteRegister implements jtagbus.Port.
func (p *Playback) WriteRegister(addr uint32, bitsIn []byte, bitLength uint) ([]byte, error) {
	p.Lock()
	defer p.Unlock()
	if len(p.Ops) == 0 {
		return nil, errors.New("jtagbustest: unexpected WriteRegister()")
	}
	want := p.Ops[0]
	if addr != want.Addr {
		return nil, fmt.Errorf("jtagbustest: unexpected addr %#x != %#x", addr, want.Addr)
	}
	if bitLength != want.BitLength {
		return nil, fmt.Errorf("jtagbustest: unexpected bitLength %d != %d", bitLength, want.BitLength)
	}
	if !bytes.Equal(bitsIn, want.BitsIn) {
		return nil, fmt.Errorf("jtagbustest: unexpected bitsIn %#v != %#v", bitsIn, want.BitsIn)
	}
	p.Ops = p.Ops[1:]
	return want.BitsOut, nil
}

var _ jtagbus.Port = &Record{}
var _ jtagbus.Port = &Playback{}
