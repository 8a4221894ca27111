package dmg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsavage/godmg/dmg/backend"
	"github.com/nsavage/godmg/dmg/config"
)

// tightLoopROM returns a 32 KiB image whose entry point is an infinite
// "JR -2" loop, enough to keep the CPU busy for a full frame without
// reaching an unmapped opcode.
func tightLoopROM() []byte {
	rom := make([]byte, 0x8000)
	rom[0x0100] = 0x18 // JR
	rom[0x0101] = 0xFE // -2
	return rom
}

func TestRunFrameProducesAFullFrameWithoutError(t *testing.T) {
	m, err := NewWithROM(tightLoopROM())
	require.NoError(t, err)

	frame, runErr := m.RunFrame(config.CyclesPerFrame)
	require.NoError(t, runErr)
	require.NotNil(t, frame)
}

func TestRunFrameStopsOnUnmappedOpcode(t *testing.T) {
	rom := make([]byte, 0x8000)
	rom[0x0100] = 0xD3 // unmapped
	m, err := NewWithROM(rom)
	require.NoError(t, err)

	_, runErr := m.RunFrame(config.CyclesPerFrame)
	require.Error(t, runErr)
}

func TestRunFrameHonoursPartialCycleBudget(t *testing.T) {
	m, err := NewWithROM(tightLoopROM())
	require.NoError(t, err)

	_, runErr := m.RunFrame(8)
	assert.NoError(t, runErr)
	assert.Less(t, m.cpu.PC(), uint16(0x0102))
}

func TestHandleInputForwardsJoypadPress(t *testing.T) {
	m, err := NewWithROM(tightLoopROM())
	require.NoError(t, err)

	m.HandleInput(backend.InputEvent{Key: backend.KeyA, Pressed: true})
	// RunFrame must still complete without error with a button held.
	_, runErr := m.RunFrame(config.CyclesPerFrame)
	assert.NoError(t, runErr)

	m.mmu.Write(0xFF00, 0x10) // select the action-button nibble
	assert.Equal(t, byte(0xDE), m.mmu.Read(0xFF00), "A should read as pressed (0)")
}

func TestSetJoypadForwardsRawStateToMMU(t *testing.T) {
	m, err := NewWithROM(tightLoopROM())
	require.NoError(t, err)

	m.mmu.Write(0xFF00, 0x10) // select the action-button nibble
	m.SetJoypad(0xEF)         // A held, B/Select/Start/dpad released

	assert.Equal(t, byte(0xDE), m.mmu.Read(0xFF00))
}

func TestCyclePaletteChangesFramePalette(t *testing.T) {
	m, err := NewWithROM(tightLoopROM())
	require.NoError(t, err)

	before := m.ppu.palette()
	m.HandleInput(backend.InputEvent{Key: backend.KeyCyclePalette, Pressed: true})
	after := m.ppu.palette()

	assert.NotEqual(t, before, after)
}

func TestMachineCyclePaletteAdvancesDirectly(t *testing.T) {
	m, err := NewWithROM(tightLoopROM())
	require.NoError(t, err)

	before := m.ppu.palette()
	m.CyclePalette()
	after := m.ppu.palette()

	assert.NotEqual(t, before, after)
}

func TestResetRestoresPostBootState(t *testing.T) {
	m, err := NewWithROM(tightLoopROM())
	require.NoError(t, err)

	m.RunFrame(config.CyclesPerFrame)
	m.HandleInput(backend.InputEvent{Key: backend.KeyReset, Pressed: true})

	assert.Equal(t, uint16(0x0100), m.cpu.PC())
}
