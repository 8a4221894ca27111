// Package dmg wires the CPU, memory bus and picture processor into a single
// runnable console and exposes the handful of operations a host loop needs:
// load a ROM, advance one frame, forward input, cycle the palette, reset.
package dmg

import (
	"fmt"
	"log/slog"

	"github.com/nsavage/godmg/dmg/backend"
	"github.com/nsavage/godmg/dmg/cpu"
	"github.com/nsavage/godmg/dmg/memory"
	"github.com/nsavage/godmg/dmg/video"
)

// Machine owns one CPU, one memory bus and one PPU, and is the unit a host
// loads a ROM into and steps frame by frame.
type Machine struct {
	cpu *cpu.CPU
	mmu *memory.MMU
	ppu *video.PPU
}

// New returns a Machine with no cartridge inserted; reads from ROM space
// return 0xFF and writes are ignored until LoadROM is called.
func New() *Machine {
	m := &Machine{mmu: memory.New()}
	m.wire()
	return m
}

// NewWithROM is a convenience constructor that loads data as the cartridge
// image immediately, returning any load error from LoadROM.
func NewWithROM(data []byte) (*Machine, error) {
	m := New()
	if err := m.LoadROM(data); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Machine) wire() {
	m.ppu = video.NewPPU(m.mmu)
	m.mmu.SetLCDRegisters(m.ppu)
	m.cpu = cpu.New(m.mmu)
}

// LoadROM replaces the inserted cartridge with the given image and performs
// a soft reset.
func (m *Machine) LoadROM(data []byte) error {
	cart, err := memory.NewCartridgeWithData(data)
	if err != nil {
		return fmt.Errorf("dmg: load rom: %w", err)
	}
	m.mmu = memory.NewWithCartridge(cart)
	m.wire()
	slog.Info("rom loaded", "title", cart.Title, "type", cart.CartridgeType)
	return nil
}

// Reset performs a soft reset: CPU registers and PPU state return to their
// post-boot values. The memory bus is kept as it is: the inserted cartridge,
// RAM contents, timer and other I/O registers are not reset.
func (m *Machine) Reset() {
	m.cpu.Reset()
	m.ppu = video.NewPPU(m.mmu)
	m.mmu.SetLCDRegisters(m.ppu)
}

// RunFrame executes instructions until cycleBudget cycles have been spent
// (the last instruction may overshoot the budget), stopping early once a
// full frame's worth of PPU output is produced or the CPU records an
// unmapped-opcode error. It runs the CPU even when no cartridge is loaded. It returns the rendered framebuffer and the CPU's
// error, if any. Callers that want a full frame pass config.CyclesPerFrame.
func (m *Machine) RunFrame(cycleBudget int) (*video.FrameBuffer, error) {
	spent := 0

	for spent < cycleBudget {
		cycles := m.cpu.Step()
		if m.cpu.Err != nil {
			return m.ppu.FrameBuffer(), m.cpu.Err
		}

		m.mmu.Tick(cycles)
		m.ppu.Tick(cycles)
		spent += cycles

		if m.ppu.ConsumeFrameReady() {
			break
		}
	}

	return m.ppu.FrameBuffer(), nil
}

// HandleInput applies a single backend input event to the joypad matrix, or
// to the host-level palette/reset controls. Quit is the backend's own
// concern and is not handled here.
func (m *Machine) HandleInput(ev backend.InputEvent) {
	key, isJoypad := joypadKeyFor(ev.Key)
	if isJoypad {
		if ev.Pressed {
			m.mmu.HandleKeyPress(key)
		} else {
			m.mmu.HandleKeyRelease(key)
		}
		return
	}

	if !ev.Pressed {
		return
	}
	switch ev.Key {
	case backend.KeyCyclePalette:
		m.CyclePalette()
	case backend.KeyReset:
		m.Reset()
	}
}

// SetJoypad writes the raw 8-bit joypad state directly, bypassing the
// per-key HandleInput path. One bit per button, 0 meaning pressed; see
// dmg/memory/joypad.go.
func (m *Machine) SetJoypad(state uint8) {
	m.mmu.SetJoypadState(state)
}

// CyclePalette advances the PPU to the next entry in its palette table.
func (m *Machine) CyclePalette() {
	m.ppu.CyclePalette()
}

func joypadKeyFor(k backend.InputKey) (memory.JoypadKey, bool) {
	switch k {
	case backend.KeyRight:
		return memory.JoypadRight, true
	case backend.KeyLeft:
		return memory.JoypadLeft, true
	case backend.KeyUp:
		return memory.JoypadUp, true
	case backend.KeyDown:
		return memory.JoypadDown, true
	case backend.KeyA:
		return memory.JoypadA, true
	case backend.KeyB:
		return memory.JoypadB, true
	case backend.KeySelect:
		return memory.JoypadSelect, true
	case backend.KeyStart:
		return memory.JoypadStart, true
	}
	return 0, false
}
