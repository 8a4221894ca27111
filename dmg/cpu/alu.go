package cpu

// addA implements ADD A,n / ADC A,n depending on carryIn.
func (c *CPU) addA(n uint8, carryIn uint8) {
	a := c.a
	sum := uint16(a) + uint16(n) + uint16(carryIn)
	result := uint8(sum)

	c.setFlag(flagZ, result == 0)
	c.setFlag(flagN, false)
	c.setFlag(flagH, (a&0x0F)+(n&0x0F)+carryIn > 0x0F)
	c.setFlag(flagC, sum > 0xFF)

	c.a = result
}

// subA implements SUB/SBC/CP depending on carryIn and storeResult.
func (c *CPU) subA(n uint8, carryIn uint8, storeResult bool) {
	a := c.a
	diff := int16(a) - int16(n) - int16(carryIn)
	result := uint8(diff)

	c.setFlag(flagZ, result == 0)
	c.setFlag(flagN, true)
	c.setFlag(flagH, int16(a&0x0F)-int16(n&0x0F)-int16(carryIn) < 0)
	c.setFlag(flagC, diff < 0)

	if storeResult {
		c.a = result
	}
}

func (c *CPU) andA(n uint8) {
	c.a &= n
	c.setFlag(flagZ, c.a == 0)
	c.setFlag(flagN, false)
	c.setFlag(flagH, true)
	c.setFlag(flagC, false)
}

func (c *CPU) orA(n uint8) {
	c.a |= n
	c.setFlag(flagZ, c.a == 0)
	c.setFlag(flagN, false)
	c.setFlag(flagH, false)
	c.setFlag(flagC, false)
}

func (c *CPU) xorA(n uint8) {
	c.a ^= n
	c.setFlag(flagZ, c.a == 0)
	c.setFlag(flagN, false)
	c.setFlag(flagH, false)
	c.setFlag(flagC, false)
}

func (c *CPU) addHL(rr uint16) {
	hl := c.hl()
	sum := uint32(hl) + uint32(rr)

	c.setFlag(flagN, false)
	c.setFlag(flagH, (hl&0x0FFF)+(rr&0x0FFF) > 0x0FFF)
	c.setFlag(flagC, sum > 0xFFFF)

	c.setHL(uint16(sum))
}

// addSP8 computes SP + s8 (used by ADD SP,s8 and LD HL,SP+s8). Flags are
// derived from the unsigned low byte of SP against the unsigned operand
// byte, per spec.md §4.1 ("H and C are computed on the unsigned low byte").
func (c *CPU) addSP8(operand uint8) uint16 {
	spLow := uint8(c.sp)
	sum := uint16(spLow) + uint16(operand)

	c.setFlag(flagZ, false)
	c.setFlag(flagN, false)
	c.setFlag(flagH, (spLow&0x0F)+(operand&0x0F) > 0x0F)
	c.setFlag(flagC, sum > 0xFF)

	return c.sp + uint16(int8(operand))
}

func (c *CPU) incR8(r reg8) {
	v := c.get8(r)
	result := v + 1
	c.setFlag(flagZ, result == 0)
	c.setFlag(flagN, false)
	c.setFlag(flagH, v&0x0F == 0x0F)
	c.set8(r, result)
}

func (c *CPU) decR8(r reg8) {
	v := c.get8(r)
	result := v - 1
	c.setFlag(flagZ, result == 0)
	c.setFlag(flagN, true)
	c.setFlag(flagH, v&0x0F == 0x00)
	c.set8(r, result)
}

func (c *CPU) cpl() {
	c.a = ^c.a
	c.setFlag(flagN, true)
	c.setFlag(flagH, true)
}

func (c *CPU) scf() {
	c.setFlag(flagN, false)
	c.setFlag(flagH, false)
	c.setFlag(flagC, true)
}

func (c *CPU) ccf() {
	c.setFlag(flagN, false)
	c.setFlag(flagH, false)
	c.setFlag(flagC, !c.flag(flagC))
}

// daa implements the decimal-adjust quirk of spec.md §4.1. Both corrections
// are computed against the pre-adjustment value of A, then applied together.
func (c *CPU) daa() {
	a := c.a
	carry := c.flag(flagC)
	half := c.flag(flagH)
	sub := c.flag(flagN)

	var correction uint8
	if half || (!sub && (a&0x0F) > 0x09) {
		correction |= 0x06
	}
	if carry || (!sub && a > 0x99) {
		correction |= 0x60
		carry = true
	}

	if sub {
		a -= correction
	} else {
		a += correction
	}

	c.setFlag(flagZ, a == 0)
	c.setFlag(flagH, false)
	c.setFlag(flagC, carry)
	c.a = a
}

// Generic CB-quadrant operations, returning the result and updating flags.
// Shared by both the un-prefixed accumulator rotates (which always clear Z)
// and the CB-prefixed per-register forms.

func (c *CPU) rlc(v uint8) uint8 {
	carryOut := v&0x80 != 0
	result := v<<1 | v>>7
	c.setFlag(flagN, false)
	c.setFlag(flagH, false)
	c.setFlag(flagC, carryOut)
	return result
}

func (c *CPU) rrc(v uint8) uint8 {
	carryOut := v&0x01 != 0
	result := v>>1 | v<<7
	c.setFlag(flagN, false)
	c.setFlag(flagH, false)
	c.setFlag(flagC, carryOut)
	return result
}

func (c *CPU) rl(v uint8) uint8 {
	carryIn := uint8(0)
	if c.flag(flagC) {
		carryIn = 1
	}
	carryOut := v&0x80 != 0
	result := v<<1 | carryIn
	c.setFlag(flagN, false)
	c.setFlag(flagH, false)
	c.setFlag(flagC, carryOut)
	return result
}

func (c *CPU) rr(v uint8) uint8 {
	carryIn := uint8(0)
	if c.flag(flagC) {
		carryIn = 0x80
	}
	carryOut := v&0x01 != 0
	result := v>>1 | carryIn
	c.setFlag(flagN, false)
	c.setFlag(flagH, false)
	c.setFlag(flagC, carryOut)
	return result
}

func (c *CPU) sla(v uint8) uint8 {
	carryOut := v&0x80 != 0
	result := v << 1
	c.setFlag(flagN, false)
	c.setFlag(flagH, false)
	c.setFlag(flagC, carryOut)
	return result
}

func (c *CPU) sra(v uint8) uint8 {
	carryOut := v&0x01 != 0
	result := (v >> 1) | (v & 0x80)
	c.setFlag(flagN, false)
	c.setFlag(flagH, false)
	c.setFlag(flagC, carryOut)
	return result
}

func (c *CPU) srl(v uint8) uint8 {
	carryOut := v&0x01 != 0
	result := v >> 1
	c.setFlag(flagN, false)
	c.setFlag(flagH, false)
	c.setFlag(flagC, carryOut)
	return result
}

func (c *CPU) swap(v uint8) uint8 {
	result := v<<4 | v>>4
	c.setFlag(flagN, false)
	c.setFlag(flagH, false)
	c.setFlag(flagC, false)
	return result
}

func (c *CPU) setZFromResult(v uint8) {
	c.setFlag(flagZ, v == 0)
}
