// Copyright 2026 The Leon3jtag Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// leon3ctl is a thin CLI front-end over package leon3jtag: halt, resume,
// single-step, inspect status, and peek/poke memory or core registers on a
// LEON3 target through its DSU3 debug support unit.
//
// leon3ctl has no built-in JTAG transport: probe hardware access and
// plug-and-play region discovery live outside this module. An embedding
// program must set Port and Scanner before main runs; run standalone,
// leon3ctl reports that and exits non-zero.
package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"time"

	"github.com/leon3probe/leon3jtag"
	"github.com/leon3probe/leon3jtag/conn/jtagbus"
	"github.com/leon3probe/leon3jtag/devices/ahbjtag"
	"github.com/leon3probe/leon3jtag/devices/dsu3"
)

// Port is the JTAG transport leon3ctl drives. It is nil until an embedding
// program supplies a real probe implementation.
var Port jtagbus.Port

// Scanner resolves the DSU3 plug-and-play entry. It is nil until an
// embedding program supplies a real plug-and-play walker.
var Scanner leon3jtag.PlugAndPlayScanner

func mainImpl() error {
	core := flag.Int("core", 0, "core index to target")
	adata := flag.Uint("adata", 0, "ADATA JTAG register address, from plug-and-play scan")
	ddata := flag.Uint("ddata", 0, "DDATA JTAG register address, from plug-and-play scan")
	addr := flag.Uint("addr", 0, "target address for peek/poke")
	width := flag.String("width", "word", "peek/poke width: byte, half, or word")
	value := flag.Uint("value", 0, "value to write for poke/writereg")
	reg := flag.Uint("reg", 0, "16-bit dsu3.RegisterID for readreg/writereg")
	timeout := flag.Duration("timeout", 2*time.Second, "per-word AHB transaction timeout")
	verbose := flag.Bool("v", false, "verbose mode")
	flag.Parse()
	if !*verbose {
		log.SetOutput(ioutil.Discard)
	}
	log.SetFlags(log.Lmicroseconds)

	if flag.NArg() == 0 {
		return fmt.Errorf("usage: leon3ctl [flags] halt|run|step|status|readreg|writereg|peek|poke")
	}
	if Port == nil || Scanner == nil {
		return fmt.Errorf("leon3ctl: no JTAG transport configured; this command must be embedded by a program that sets leon3ctl.Port and leon3ctl.Scanner")
	}

	sess, err := leon3jtag.Attach(Port, Scanner, uint32(*adata), uint32(*ddata), *timeout)
	if err != nil {
		return err
	}
	defer sess.Detach()

	c := sess.Core(*core)
	switch cmd := flag.Arg(0); cmd {
	case "halt":
		info, err := c.Halt(*timeout)
		if err != nil {
			return err
		}
		fmt.Printf("halted at PC=%#08x\n", info.PC)
	case "status":
		status, reason, err := c.Status()
		if err != nil {
			return err
		}
		fmt.Printf("%s (reason=%d)\n", status, reason)
	case "run":
		return c.Run()
	case "step":
		info, err := c.Step()
		if err != nil {
			return err
		}
		fmt.Printf("stepped to PC=%#08x\n", info.PC)
	case "readreg":
		v, err := c.ReadCoreReg(dsu3.RegisterID(*reg))
		if err != nil {
			return err
		}
		fmt.Printf("%#08x\n", v)
	case "writereg":
		return c.WriteCoreReg(dsu3.RegisterID(*reg), uint32(*value))
	case "peek":
		return peek(sess.Bridge(), *width, uint32(*addr), *timeout)
	case "poke":
		return poke(sess.Bridge(), *width, uint32(*addr), uint32(*value), *timeout)
	default:
		return fmt.Errorf("leon3ctl: unknown command %q", cmd)
	}
	return nil
}

func peek(b *ahbjtag.Bridge, width string, addr uint32, timeout time.Duration) error {
	switch width {
	case "byte":
		v, err := b.ReadByte(addr, timeout)
		if err != nil {
			return err
		}
		fmt.Printf("%#02x\n", v)
	case "half":
		v, err := b.ReadHalfword(addr, timeout)
		if err != nil {
			return err
		}
		fmt.Printf("%#04x\n", v)
	case "word":
		var out [1]uint32
		if err := b.ReadWords(addr, out[:], timeout); err != nil {
			return err
		}
		fmt.Printf("%#08x\n", out[0])
	default:
		return fmt.Errorf("leon3ctl: unknown -width %q", width)
	}
	return nil
}

func poke(b *ahbjtag.Bridge, width string, addr, value uint32, timeout time.Duration) error {
	switch width {
	case "byte":
		return b.WriteByte(addr, uint8(value), timeout)
	case "half":
		return b.WriteHalfword(addr, uint16(value), timeout)
	case "word":
		return b.WriteWords(addr, []uint32{value}, timeout)
	default:
		return fmt.Errorf("leon3ctl: unknown -width %q", width)
	}
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "leon3ctl: %s.\n", err)
		os.Exit(1)
	}
}
