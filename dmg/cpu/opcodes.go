package cpu

// buildPrimaryTable populates dispatchTable[0x00-0xFF]. Most entries are
// produced by a small set of generator functions parametrized over the
// reg8/reg16/stackReg selectors from registers.go, rather than 256 distinct
// named handlers (spec.md §9).
func buildPrimaryTable() {
	dispatchTable[0x00] = opNop
	dispatchTable[0x76] = opHalt
	dispatchTable[0x10] = opStop
	dispatchTable[0xF3] = opDI
	dispatchTable[0xFB] = opEI

	buildLoadTable()
	buildIncDecTable()
	buildALUTable()
	buildRotateAccTable()
	buildMiscFlagTable()
	buildJumpTable()
	buildStackTable()
	buildCallRetTable()

	for _, op := range unmappedOpcodes {
		dispatchTable[op] = unmapped(op)
	}
}

func opNop(c *CPU) int { return 4 }

func opHalt(c *CPU) int {
	if !c.ime && c.pendingInterrupts() != 0 {
		c.haltBug = true
	} else {
		c.halted = true
	}
	return 4
}

// opStop is simplified to behave like HALT: it parks the CPU until the next
// enabled-and-requested interrupt. Real hardware also resets the DIV timer
// and waits for a joypad edge when no interrupt is pending; godmg never
// needs that distinction since STOP does not appear in any ROM it targets.
func opStop(c *CPU) int {
	c.fetchImm8() // STOP's padding byte, conventionally 0x00
	c.stopped = true
	return 4
}

func opDI(c *CPU) int {
	c.ime = false
	c.imeDelay = 0
	return 4
}

func opEI(c *CPU) int {
	if c.imeDelay == 0 {
		c.imeDelay = 2
	}
	return 4
}

// --- Loads ---------------------------------------------------------------

var r8Order = [8]reg8{regB, regC, regD, regE, regH, regL, regHL, regA}
var rr16Order = [4]reg16{regBC, regDE, regHL16, regSP}
var stackOrder = [4]stackReg{stackBC, stackDE, stackHL, stackAF}

func buildLoadTable() {
	// LD r,r' : 0x40-0x7F, skipping 0x76 (HALT).
	for dst := 0; dst < 8; dst++ {
		for src := 0; src < 8; src++ {
			op := uint8(0x40 + dst*8 + src)
			if op == 0x76 {
				continue
			}
			d, s := r8Order[dst], r8Order[src]
			dispatchTable[op] = func(c *CPU) int {
				v := c.get8(s)
				c.set8(d, v)
				if d == regHL || s == regHL {
					return 8
				}
				return 4
			}
		}
	}

	// LD r,d8 : column pattern 0x06,0x0E,0x16,... (row*8 + 6).
	for row := 0; row < 8; row++ {
		op := uint8(row*8 + 6)
		d := r8Order[row]
		dispatchTable[op] = func(c *CPU) int {
			v := c.fetchImm8()
			c.set8(d, v)
			if d == regHL {
				return 12
			}
			return 8
		}
	}

	// LD rr,d16 : 0x01,0x11,0x21,0x31.
	for i, rr := range rr16Order {
		op := uint8(0x01 + i*0x10)
		r := rr
		dispatchTable[op] = func(c *CPU) int {
			c.set16(r, c.fetchImm16())
			return 12
		}
	}

	dispatchTable[0x02] = func(c *CPU) int { c.bus.Write(c.bc(), c.a); return 8 }
	dispatchTable[0x12] = func(c *CPU) int { c.bus.Write(c.de(), c.a); return 8 }
	dispatchTable[0x0A] = func(c *CPU) int { c.a = c.bus.Read(c.bc()); return 8 }
	dispatchTable[0x1A] = func(c *CPU) int { c.a = c.bus.Read(c.de()); return 8 }

	dispatchTable[0x22] = func(c *CPU) int { c.bus.Write(c.hl(), c.a); c.setHL(c.hl() + 1); return 8 }
	dispatchTable[0x32] = func(c *CPU) int { c.bus.Write(c.hl(), c.a); c.setHL(c.hl() - 1); return 8 }
	dispatchTable[0x2A] = func(c *CPU) int { c.a = c.bus.Read(c.hl()); c.setHL(c.hl() + 1); return 8 }
	dispatchTable[0x3A] = func(c *CPU) int { c.a = c.bus.Read(c.hl()); c.setHL(c.hl() - 1); return 8 }

	dispatchTable[0x08] = func(c *CPU) int {
		addr16 := c.fetchImm16()
		sp := c.sp
		c.bus.Write(addr16, uint8(sp))
		c.bus.Write(addr16+1, uint8(sp>>8))
		return 20
	}

	dispatchTable[0xEA] = func(c *CPU) int { addr16 := c.fetchImm16(); c.bus.Write(addr16, c.a); return 16 }
	dispatchTable[0xFA] = func(c *CPU) int { addr16 := c.fetchImm16(); c.a = c.bus.Read(addr16); return 16 }

	dispatchTable[0xE0] = func(c *CPU) int {
		off := c.fetchImm8()
		c.bus.Write(0xFF00+uint16(off), c.a)
		return 12
	}
	dispatchTable[0xF0] = func(c *CPU) int {
		off := c.fetchImm8()
		c.a = c.bus.Read(0xFF00 + uint16(off))
		return 12
	}
	dispatchTable[0xE2] = func(c *CPU) int { c.bus.Write(0xFF00+uint16(c.c), c.a); return 8 }
	dispatchTable[0xF2] = func(c *CPU) int { c.a = c.bus.Read(0xFF00 + uint16(c.c)); return 8 }

	dispatchTable[0xF9] = func(c *CPU) int { c.sp = c.hl(); return 8 }
	dispatchTable[0xF8] = func(c *CPU) int {
		operand := c.fetchImm8()
		c.setHL(c.addSP8(operand))
		return 12
	}
	dispatchTable[0xE8] = func(c *CPU) int {
		operand := c.fetchImm8()
		c.sp = c.addSP8(operand)
		return 16
	}

	for i, rr := range rr16Order {
		op := uint8(0x09 + i*0x10)
		r := rr
		dispatchTable[op] = func(c *CPU) int { c.addHL(c.get16(r)); return 8 }
	}
}

// --- INC/DEC ---------------------------------------------------------------

func buildIncDecTable() {
	for row := 0; row < 8; row++ {
		r := r8Order[row]
		incOp := uint8(row*8 + 4)
		decOp := uint8(row*8 + 5)
		dispatchTable[incOp] = func(c *CPU) int {
			c.incR8(r)
			if r == regHL {
				return 12
			}
			return 4
		}
		dispatchTable[decOp] = func(c *CPU) int {
			c.decR8(r)
			if r == regHL {
				return 12
			}
			return 4
		}
	}

	for i, rr := range rr16Order {
		incOp := uint8(0x03 + i*0x10)
		decOp := uint8(0x0B + i*0x10)
		r := rr
		dispatchTable[incOp] = func(c *CPU) int { c.set16(r, c.get16(r)+1); return 8 }
		dispatchTable[decOp] = func(c *CPU) int { c.set16(r, c.get16(r)-1); return 8 }
	}
}

// --- 8-bit ALU ---------------------------------------------------------------

func buildALUTable() {
	type aluOp struct {
		apply func(c *CPU, n uint8)
	}
	ops := [8]aluOp{
		{func(c *CPU, n uint8) { c.addA(n, 0) }},
		{func(c *CPU, n uint8) {
			carry := uint8(0)
			if c.flag(flagC) {
				carry = 1
			}
			c.addA(n, carry)
		}},
		{func(c *CPU, n uint8) { c.subA(n, 0, true) }},
		{func(c *CPU, n uint8) {
			carry := uint8(0)
			if c.flag(flagC) {
				carry = 1
			}
			c.subA(n, carry, true)
		}},
		{func(c *CPU, n uint8) { c.andA(n) }},
		{func(c *CPU, n uint8) { c.xorA(n) }},
		{func(c *CPU, n uint8) { c.orA(n) }},
		{func(c *CPU, n uint8) { c.subA(n, 0, false) }},
	}

	for row, op := range ops {
		apply := op.apply
		for col := 0; col < 8; col++ {
			opcode := uint8(0x80 + row*8 + col)
			src := r8Order[col]
			dispatchTable[opcode] = func(c *CPU) int {
				apply(c, c.get8(src))
				if src == regHL {
					return 8
				}
				return 4
			}
		}
		immOp := uint8(0xC6 + row*8)
		dispatchTable[immOp] = func(c *CPU) int {
			apply(c, c.fetchImm8())
			return 8
		}
	}
}

func buildRotateAccTable() {
	// Accumulator rotates always clear Z, unlike their CB-prefixed siblings.
	dispatchTable[0x07] = func(c *CPU) int { c.a = c.rlc(c.a); c.setFlag(flagZ, false); return 4 }
	dispatchTable[0x0F] = func(c *CPU) int { c.a = c.rrc(c.a); c.setFlag(flagZ, false); return 4 }
	dispatchTable[0x17] = func(c *CPU) int { c.a = c.rl(c.a); c.setFlag(flagZ, false); return 4 }
	dispatchTable[0x1F] = func(c *CPU) int { c.a = c.rr(c.a); c.setFlag(flagZ, false); return 4 }
}

func buildMiscFlagTable() {
	dispatchTable[0x27] = func(c *CPU) int { c.daa(); return 4 }
	dispatchTable[0x2F] = func(c *CPU) int { c.cpl(); return 4 }
	dispatchTable[0x37] = func(c *CPU) int { c.scf(); return 4 }
	dispatchTable[0x3F] = func(c *CPU) int { c.ccf(); return 4 }
}

// --- Jumps / calls / returns ------------------------------------------------

func condTrue(c *CPU, cc uint8) bool {
	switch cc {
	case 0:
		return !c.flag(flagZ)
	case 1:
		return c.flag(flagZ)
	case 2:
		return !c.flag(flagC)
	case 3:
		return c.flag(flagC)
	}
	return false
}

func buildJumpTable() {
	dispatchTable[0x18] = func(c *CPU) int {
		offset := int8(c.fetchImm8())
		c.pc = uint16(int32(c.pc) + int32(offset))
		return 12
	}
	for cc := uint8(0); cc < 4; cc++ {
		op := uint8(0x20 + cc*8)
		cond := cc
		dispatchTable[op] = func(c *CPU) int {
			offset := int8(c.fetchImm8())
			if condTrue(c, cond) {
				c.pc = uint16(int32(c.pc) + int32(offset))
				return 12
			}
			return 8
		}
	}

	dispatchTable[0xC3] = func(c *CPU) int { c.pc = c.fetchImm16(); return 16 }
	dispatchTable[0xE9] = func(c *CPU) int { c.pc = c.hl(); return 4 }
	for cc := uint8(0); cc < 4; cc++ {
		op := uint8(0xC2 + cc*8)
		cond := cc
		dispatchTable[op] = func(c *CPU) int {
			target := c.fetchImm16()
			if condTrue(c, cond) {
				c.pc = target
				return 16
			}
			return 12
		}
	}
}

func buildCallRetTable() {
	dispatchTable[0xCD] = func(c *CPU) int {
		target := c.fetchImm16()
		c.push16(c.pc)
		c.pc = target
		return 24
	}
	for cc := uint8(0); cc < 4; cc++ {
		op := uint8(0xC4 + cc*8)
		cond := cc
		dispatchTable[op] = func(c *CPU) int {
			target := c.fetchImm16()
			if condTrue(c, cond) {
				c.push16(c.pc)
				c.pc = target
				return 24
			}
			return 12
		}
	}

	dispatchTable[0xC9] = func(c *CPU) int { c.pc = c.pop16(); return 16 }
	dispatchTable[0xD9] = func(c *CPU) int { c.pc = c.pop16(); c.ime = true; return 16 }
	for cc := uint8(0); cc < 4; cc++ {
		op := uint8(0xC0 + cc*8)
		cond := cc
		dispatchTable[op] = func(c *CPU) int {
			if condTrue(c, cond) {
				c.pc = c.pop16()
				return 20
			}
			return 8
		}
	}

	for i := 0; i < 8; i++ {
		op := uint8(0xC7 + i*8)
		vector := uint16(i * 8)
		dispatchTable[op] = func(c *CPU) int {
			c.push16(c.pc)
			c.pc = vector
			return 16
		}
	}
}

func buildStackTable() {
	for i, rr := range stackOrder {
		pushOp := uint8(0xC5 + i*0x10)
		popOp := uint8(0xC1 + i*0x10)
		r := rr
		dispatchTable[pushOp] = func(c *CPU) int { c.push16(c.getStack(r)); return 16 }
		dispatchTable[popOp] = func(c *CPU) int { c.setStack(r, c.pop16()); return 12 }
	}
}
