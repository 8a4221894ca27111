package cpu

import (
	"fmt"

	"github.com/nsavage/godmg/dmg/addr"
)

// Bus is the subset of the memory bus the CPU needs.
type Bus interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
	IE() byte
	IF() byte
	ClearIF(i addr.Interrupt)
}

// ErrUnmappedOpcode is returned (via CPU.Err) when execution reaches one of
// the eleven undefined primary opcodes. Per spec.md §7 the frame stops early
// so the host can decide whether to reset.
type ErrUnmappedOpcode struct {
	PC     uint16
	Opcode uint8
}

func (e *ErrUnmappedOpcode) Error() string {
	return fmt.Sprintf("cpu: unknown opcode 0x%02X at PC=0x%04X", e.Opcode, e.PC)
}

// Post-reset register values (spec.md §3).
const (
	resetA  = 0x01
	resetF  = 0xB0
	resetB  = 0x00
	resetC  = 0x13
	resetD  = 0x00
	resetE  = 0xD8
	resetH  = 0x01
	resetL  = 0x4D
	resetSP = 0xFFFE
	resetPC = 0x0100
)

// CPU holds the Sharp SM83-style register file and the handful of
// ancillary flags (IME, HALT bug, STOP, EI delay) spec.md §3 names.
type CPU struct {
	a, f, b, c, d, e, h, l uint8
	sp, pc                 uint16

	ime      bool
	imeDelay int // 0 = no pending EI; counts down once per Step, IME is set when it reaches 0
	halted   bool
	haltBug  bool
	stopped  bool

	bus Bus

	Err error
}

// New returns a CPU initialized to the post-boot-ROM register state.
func New(bus Bus) *CPU {
	c := &CPU{bus: bus}
	c.Reset()
	buildDispatchTable()
	return c
}

// Reset restores the post-boot register values spec.md §3 documents.
func (c *CPU) Reset() {
	c.a, c.f = resetA, resetF
	c.b, c.c = resetB, resetC
	c.d, c.e = resetD, resetE
	c.h, c.l = resetH, resetL
	c.sp = resetSP
	c.pc = resetPC
	c.ime = false
	c.imeDelay = 0
	c.halted = false
	c.haltBug = false
	c.stopped = false
	c.Err = nil
}

// PC returns the program counter (for debugging/diagnostics).
func (c *CPU) PC() uint16 { return c.pc }

// SP returns the stack pointer.
func (c *CPU) SP() uint16 { return c.sp }

// A/F/B/C/D/E/H/L/AF/BC/DE/HL expose register state for tests and debug tooling.
func (c *CPU) A() uint8     { return c.a }
func (c *CPU) F() uint8     { return c.getF() }
func (c *CPU) B() uint8     { return c.b }
func (c *CPU) CReg() uint8  { return c.c }
func (c *CPU) D() uint8     { return c.d }
func (c *CPU) E() uint8     { return c.e }
func (c *CPU) H() uint8     { return c.h }
func (c *CPU) L() uint8     { return c.l }
func (c *CPU) AF() uint16   { return c.af() }
func (c *CPU) BC() uint16   { return c.bc() }
func (c *CPU) DE() uint16   { return c.de() }
func (c *CPU) HL() uint16   { return c.hl() }
func (c *CPU) IME() bool    { return c.ime }
func (c *CPU) Halted() bool { return c.halted }
func (c *CPU) Stopped() bool { return c.stopped }

// pendingInterrupts returns the set of currently enabled-and-requested
// interrupt bits (low 5 bits only).
func (c *CPU) pendingInterrupts() uint8 {
	return c.bus.IE() & c.bus.IF() & 0x1F
}

func (c *CPU) push8(v uint8) {
	c.sp--
	c.bus.Write(c.sp, v)
}

func (c *CPU) pop8() uint8 {
	v := c.bus.Read(c.sp)
	c.sp++
	return v
}

func (c *CPU) push16(v uint16) {
	c.push8(uint8(v >> 8))
	c.push8(uint8(v))
}

func (c *CPU) pop16() uint16 {
	low := c.pop8()
	high := c.pop8()
	return uint16(high)<<8 | uint16(low)
}

func (c *CPU) fetch8() uint8 {
	v := c.bus.Read(c.pc)
	if c.haltBug {
		c.haltBug = false
	} else {
		c.pc++
	}
	return v
}

func (c *CPU) fetchImm8() uint8 {
	v := c.bus.Read(c.pc)
	c.pc++
	return v
}

func (c *CPU) fetchImm16() uint16 {
	low := c.fetchImm8()
	high := c.fetchImm8()
	return uint16(high)<<8 | uint16(low)
}

// Step executes one instruction (or services one halted/STOPped cycle) and
// returns the number of cycles consumed, always a multiple of 4. Callers
// must call the shared tick function with that count before the next Step.
func (c *CPU) Step() int {
	if c.stopped {
		if c.pendingInterrupts() != 0 {
			c.stopped = false
		} else {
			return 4
		}
	}

	if c.halted {
		if c.pendingInterrupts() == 0 {
			return 4
		}
		c.halted = false
	}

	if cycles, serviced := c.serviceInterrupt(); serviced {
		return cycles
	}

	opcode := c.fetch8()

	var idx uint16
	if opcode == 0xCB {
		second := c.fetchImm8()
		idx = 0x100 | uint16(second)
	} else {
		idx = uint16(opcode)
	}

	handler := dispatchTable[idx]
	cycles := handler(c)

	if c.imeDelay > 0 {
		c.imeDelay--
		if c.imeDelay == 0 {
			c.ime = true
		}
	}

	return cycles
}

// serviceInterrupt implements the interrupt-acknowledge handshake of
// spec.md §4.1.1: lowest-numbered pending bit wins, 20 cycles are charged.
func (c *CPU) serviceInterrupt() (cycles int, serviced bool) {
	if !c.ime {
		return 0, false
	}

	pending := c.pendingInterrupts()
	if pending == 0 {
		return 0, false
	}

	var which addr.Interrupt
	for bitIdx := uint8(0); bitIdx < 5; bitIdx++ {
		if pending&(1<<bitIdx) != 0 {
			which = addr.Interrupt(bitIdx)
			break
		}
	}

	c.ime = false
	c.halted = false
	c.bus.ClearIF(which)
	c.push16(c.pc)
	c.pc = which.Vector()

	return 20, true
}
