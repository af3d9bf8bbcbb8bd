// Copyright 2026 The Leon3jtag Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package leon3test provides fakes for testing code built on devices/leon3
// and devices/dsu3.
package leon3test

import (
	"sync"
	"time"
)

// Memory is a fake AHB memory: a flat, word-addressed map that satisfies
// the ReadWords/WriteWords interface devices/dsu3 declares for itself.
type Memory struct {
	mu    sync.Mutex
	words map[uint32]uint32

	// Reads and Writes record every address touched, in order, for tests
	// that assert on access patterns (e.g. "exactly one write to
	// DSU_CTRL").
	Reads  []uint32
	Writes []uint32
}

// NewMemory returns an empty Memory.
func NewMemory() *Memory {
	return &Memory{words: map[uint32]uint32{}}
}

// Set pre-loads the word at addr, for tests that need specific register
// contents (e.g. a particular PSR.CWP) before exercising the code under
// test.
func (m *Memory) Set(addr, value uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.words[addr] = value
}

// Get returns the word currently stored at addr.
func (m *Memory) Get(addr uint32) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.words[addr]
}

// ReadWords implements devices/dsu3's ahbMemory interface.
func (m *Memory) ReadWords(addr uint32, out []uint32, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range out {
		a := addr + uint32(i)*4
		m.Reads = append(m.Reads, a)
		out[i] = m.words[a]
	}
	return nil
}

// WriteWords implements devices/dsu3's ahbMemory interface.
func (m *Memory) WriteWords(addr uint32, data []uint32, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, v := range data {
		a := addr + uint32(i)*4
		m.Writes = append(m.Writes, a)
		m.words[a] = v
	}
	return nil
}
