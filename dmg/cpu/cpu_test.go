package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsavage/godmg/dmg/addr"
)

// fakeBus is a flat 64KiB RAM-backed Bus used to exercise the CPU in
// isolation from the real memory-mapped decode logic.
type fakeBus struct {
	mem        [0x10000]byte
	ifReg      byte
	ieReg      byte
	writeTrace []uint16
}

func newFakeBus() *fakeBus { return &fakeBus{} }

func (b *fakeBus) Read(address uint16) byte { return b.mem[address] }
func (b *fakeBus) Write(address uint16, value byte) {
	b.mem[address] = value
	b.writeTrace = append(b.writeTrace, address)
}
func (b *fakeBus) IE() byte { return b.ieReg }
func (b *fakeBus) IF() byte { return b.ifReg | 0xE0 }
func (b *fakeBus) ClearIF(i addr.Interrupt) {
	b.ifReg &^= 1 << uint8(i)
}

func (b *fakeBus) load(pc uint16, bytes ...byte) {
	copy(b.mem[pc:], bytes)
}

func TestNewResetState(t *testing.T) {
	bus := newFakeBus()
	c := New(bus)

	assert.Equal(t, uint8(0x01), c.A())
	assert.Equal(t, uint8(0xB0), c.F())
	assert.Equal(t, uint16(0xFFFE), c.SP())
	assert.Equal(t, uint16(0x0100), c.PC())
	assert.False(t, c.IME())
}

func TestAddSetsHalfCarryWithoutCarry(t *testing.T) {
	bus := newFakeBus()
	c := New(bus)
	c.a = 0x0F
	bus.load(c.pc, 0xC6, 0x01) // ADD A,d8
	cycles := c.Step()

	assert.Equal(t, 8, cycles)
	assert.Equal(t, uint8(0x10), c.A())
	assert.True(t, c.flag(flagH))
	assert.False(t, c.flag(flagC))
	assert.False(t, c.flag(flagZ))
}

func TestPushPopRoundTrip(t *testing.T) {
	bus := newFakeBus()
	c := New(bus)
	c.setBC(0xBEEF)
	bus.load(c.pc, 0xC5, 0xD1) // PUSH BC ; POP DE
	c.Step()
	c.Step()

	assert.Equal(t, uint16(0xBEEF), c.DE())
	assert.Equal(t, uint16(0xFFFE), c.SP())
}

func TestRLCAEightTimesIsIdentity(t *testing.T) {
	bus := newFakeBus()
	c := New(bus)
	c.a = 0x85
	for i := 0; i < 8; i++ {
		bus.load(c.pc, 0x07) // RLCA
		c.Step()
	}
	assert.Equal(t, uint8(0x85), c.A())
}

func TestSwapIsInvolution(t *testing.T) {
	bus := newFakeBus()
	c := New(bus)
	c.a = 0x3C
	bus.load(c.pc, 0xCB, 0x37) // SWAP A
	c.Step()
	assert.Equal(t, uint8(0xC3), c.A())
	bus.load(c.pc, 0xCB, 0x37)
	c.Step()
	assert.Equal(t, uint8(0x3C), c.A())
}

func TestDAAAfterBCDAddition(t *testing.T) {
	bus := newFakeBus()
	c := New(bus)
	c.a = 0x45
	c.b = 0x38
	bus.load(c.pc, 0x80, 0x27) // ADD A,B ; DAA
	c.Step()
	c.Step()

	assert.Equal(t, uint8(0x83), c.A())
	assert.False(t, c.flag(flagC))
}

func TestInterruptServicedWhenIMESet(t *testing.T) {
	bus := newFakeBus()
	c := New(bus)
	bus.load(c.pc, 0xFB, 0x00) // EI ; NOP (IME takes effect after the instruction following EI)
	c.Step()                   // EI
	c.Step()                   // NOP, IME becomes true here

	bus.ieReg = 1 << uint8(addr.VBlank)
	bus.ifReg = 1 << uint8(addr.VBlank)

	cycles := c.Step()
	require.Equal(t, 20, cycles)
	assert.Equal(t, addr.VBlank.Vector(), c.PC())
	assert.False(t, c.IME())
	assert.Equal(t, byte(0), bus.ifReg)
}

func TestHaltWakesOnPendingInterruptWithoutServicing(t *testing.T) {
	bus := newFakeBus()
	c := New(bus)
	c.ime = false
	bus.load(c.pc, 0x76) // HALT
	c.Step()
	assert.True(t, c.Halted())

	bus.ieReg = 1 << uint8(addr.Timer)
	bus.ifReg = 1 << uint8(addr.Timer)

	cycles := c.Step()
	assert.Equal(t, 4, cycles)
	assert.False(t, c.Halted())
}

func TestUnmappedOpcodeRecordsErr(t *testing.T) {
	bus := newFakeBus()
	c := New(bus)
	bus.load(c.pc, 0xD3)
	c.Step()

	require.Error(t, c.Err)
	var unmapped *ErrUnmappedOpcode
	require.ErrorAs(t, c.Err, &unmapped)
	assert.Equal(t, uint8(0xD3), unmapped.Opcode)
}

func TestJrConditionalNotTakenCost(t *testing.T) {
	bus := newFakeBus()
	c := New(bus)
	c.setFlag(flagZ, false)
	bus.load(c.pc, 0x28, 0x05) // JR Z,+5 ; Z clear, not taken
	cycles := c.Step()
	assert.Equal(t, 8, cycles)
}
