// Package memory implements the 64 KiB address-decoding bus: ROM/VRAM/WRAM
// regions, echo-RAM aliasing, OAM-DMA, the joypad-matrix synthesis, the
// internal timer, and the interrupt flag/enable registers.
package memory

import (
	"fmt"
	"log/slog"

	"github.com/nsavage/godmg/dmg/addr"
	"github.com/nsavage/godmg/dmg/serial"
)

// LCDRegisters is implemented by the PPU: the 0xFF40-0xFF4B block (LCDC,
// STAT, SCY/SCX, LY, LYC, DMA source latch aside, BGP/OBP0/OBP1, WY/WX) is
// owned by the PPU since several of those bits reflect PPU-internal state
// (mode, LY, LYC coincidence) that the bus must not shadow independently.
// Injected after construction to avoid a memory<->video import cycle.
type LCDRegisters interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
}

// MMU is the Game Boy's 16-bit address-decoding memory bus.
type MMU struct {
	cart *Cartridge

	vram  [0x2000]byte
	wram  [0x2000]byte
	extRAM [0x2000]byte
	oam   [0xA0]byte
	hram  [0x7F]byte

	ifReg byte
	ieReg byte

	timer  timer
	joypad *joypad
	serial *serial.Port

	lcd    LCDRegisters
	dmaReg byte
}

// New returns an MMU with no cartridge loaded (equivalent to a console
// turned on without one: ROM/external-RAM reads return 0xFF).
func New() *MMU {
	m := &MMU{
		cart:   nil,
		joypad: newJoypad(),
		serial: serial.New(),
	}
	m.timer.RequestInterrupt = func() { m.RequestInterrupt(addr.Timer) }
	m.joypad.RequestInterrupt = func() { m.RequestInterrupt(addr.Joypad) }
	m.serial.RequestInterrupt = func() { m.RequestInterrupt(addr.Serial) }
	m.ifReg = 0xE0
	return m
}

// NewWithCartridge returns an MMU with cart already inserted.
func NewWithCartridge(cart *Cartridge) *MMU {
	m := New()
	m.cart = cart
	return m
}

// SetLCDRegisters wires the PPU's register block into the bus. Must be
// called once before any I/O-register access in the 0xFF40-0xFF4B range.
func (m *MMU) SetLCDRegisters(lcd LCDRegisters) {
	m.lcd = lcd
}

// SetJoypadState stores the external 8-bit joypad signal (spec.md §6's
// single shared-with-the-host datum). Safe to call between RunFrame calls;
// a torn read of one bit is acceptable since all bits are independent.
func (m *MMU) SetJoypadState(state uint8) {
	m.joypad.SetState(state)
}

// Tick advances the timer by the given number of CPU cycles and the serial
// stub by one step; the machine calls it once per CPU step.
func (m *MMU) Tick(cycles int) {
	m.timer.tick(cycles)
	m.serial.Tick(cycles)
}

// RequestInterrupt sets the IF bit for the given interrupt source.
func (m *MMU) RequestInterrupt(i addr.Interrupt) {
	m.ifReg = (m.ifReg | (1 << uint8(i))) | 0xE0
}

// IE returns the interrupt-enable register.
func (m *MMU) IE() byte { return m.ieReg }

// IF returns the interrupt-flag register, high bits forced to 1.
func (m *MMU) IF() byte { return m.ifReg | 0xE0 }

// ClearIF clears the given interrupt's pending flag.
func (m *MMU) ClearIF(i addr.Interrupt) {
	m.ifReg &^= 1 << uint8(i)
	m.ifReg |= 0xE0
}

func inRange(addrVal, lo, hi uint16) bool { return addrVal >= lo && addrVal <= hi }

// Read decodes address and returns the byte stored there.
func (m *MMU) Read(address uint16) byte {
	switch {
	case address <= 0x7FFF:
		if m.cart == nil {
			m.logMissingCartridge("read", fmt.Sprintf("0x%04X", address))
			return 0xFF
		}
		return m.cart.Read(address)
	case inRange(address, 0x8000, 0x9FFF):
		return m.vram[address-0x8000]
	case inRange(address, 0xA000, 0xBFFF):
		if m.cart == nil {
			m.logMissingCartridge("read", fmt.Sprintf("0x%04X", address))
			return 0xFF
		}
		return m.extRAM[address-0xA000]
	case inRange(address, 0xC000, 0xDFFF):
		return m.wram[address-0xC000]
	case inRange(address, 0xE000, 0xFDFF):
		return m.wram[address-0xE000]
	case inRange(address, addr.OAMStart, addr.OAMEnd):
		return m.oam[address-addr.OAMStart]
	case inRange(address, 0xFEA0, 0xFEFF):
		return 0xFF
	case address == addr.P1:
		return m.joypad.read()
	case address == addr.SB || address == addr.SC:
		return m.serial.Read(address)
	case address == addr.DIV || address == addr.TIMA || address == addr.TMA || address == addr.TAC:
		return m.timer.read(address)
	case address == addr.IF:
		return m.IF()
	case address == addr.DMA:
		return m.dmaReg
	case inRange(address, addr.LCDC, addr.WX):
		if m.lcd != nil {
			return m.lcd.Read(address)
		}
		return 0xFF
	case inRange(address, 0xFF80, 0xFFFE):
		return m.hram[address-0xFF80]
	case address == addr.IE:
		return m.ieReg
	default:
		// Unimplemented I/O (APU, boot ROM disable, etc.): open bus reads as 0xFF.
		return 0xFF
	}
}

// Write decodes address and stores value, applying the side effects
// (DIV reset, DMA, register masking) spec.md §4.2.2 names.
func (m *MMU) Write(address uint16, value byte) {
	switch {
	case address <= 0x7FFF:
		if m.cart != nil {
			m.cart.Write(address, value)
		} else {
			m.logMissingCartridge("write", fmt.Sprintf("0x%04X", address))
		}
	case inRange(address, 0x8000, 0x9FFF):
		m.vram[address-0x8000] = value
	case inRange(address, 0xA000, 0xBFFF):
		if m.cart != nil {
			m.extRAM[address-0xA000] = value
		} else {
			m.logMissingCartridge("write", fmt.Sprintf("0x%04X", address))
		}
	case inRange(address, 0xC000, 0xDFFF):
		m.wram[address-0xC000] = value
	case inRange(address, 0xE000, 0xFDFF):
		m.wram[address-0xE000] = value
	case inRange(address, addr.OAMStart, addr.OAMEnd):
		m.oam[address-addr.OAMStart] = value
	case inRange(address, 0xFEA0, 0xFEFF):
		// discarded
	case address == addr.P1:
		m.joypad.write(value)
	case address == addr.SB || address == addr.SC:
		m.serial.Write(address, value)
	case address == addr.DIV || address == addr.TIMA || address == addr.TMA || address == addr.TAC:
		m.timer.write(address, value)
	case address == addr.IF:
		m.ifReg = (value & 0x1F) | 0xE0
	case address == addr.DMA:
		m.dmaReg = value
		m.doOAMDMA(value)
	case inRange(address, addr.LCDC, addr.WX):
		if m.lcd != nil {
			m.lcd.Write(address, value)
		}
	case inRange(address, 0xFF80, 0xFFFE):
		m.hram[address-0xFF80] = value
	case address == addr.IE:
		m.ieReg = value & 0x1F
	default:
		// Unimplemented I/O registers: writes are accepted and discarded.
	}
}

// doOAMDMA performs the 160-byte block copy from value*0x100 into OAM.
// Real hardware staggers this over 160 machine cycles during which most of
// the address space is inaccessible to the CPU; this core performs it
// synchronously (see DESIGN.md for the tradeoff).
func (m *MMU) doOAMDMA(value byte) {
	source := uint16(value) << 8
	for i := uint16(0); i < 0xA0; i++ {
		m.oam[i] = m.Read(source + i)
	}
}

// ReadOAM reads a raw OAM byte without going through the general decoder;
// used by the PPU's sprite scan (PPU.readOAM).
func (m *MMU) ReadOAM(offset uint8) byte {
	return m.oam[offset]
}

// HandleKeyPress marks a key as pressed (0 bit) and raises the joypad
// interrupt on a high-to-low transition.
func (m *MMU) HandleKeyPress(key JoypadKey) {
	m.setKey(key, false)
}

// HandleKeyRelease marks a key as released (1 bit).
func (m *MMU) HandleKeyRelease(key JoypadKey) {
	m.setKey(key, true)
}

func (m *MMU) setKey(key JoypadKey, released bool) {
	bitIndex := uint8(key)
	state := m.joypad.state
	if released {
		state |= 1 << bitIndex
	} else {
		state &^= 1 << bitIndex
	}
	m.joypad.SetState(state)
}

func (m *MMU) logMissingCartridge(op, addrHex string) {
	slog.Warn(fmt.Sprintf("%s with no cartridge loaded", op), "addr", addrHex)
}
