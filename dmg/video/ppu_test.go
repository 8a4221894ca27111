package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsavage/godmg/dmg/addr"
)

// fakeBus is a flat-memory stand-in for *memory.MMU, giving tests direct
// control over VRAM/OAM contents and observing raised interrupts.
type fakeBus struct {
	mem            [0x10000]byte
	oam            [0xA0]byte
	interruptsSeen []addr.Interrupt
}

func (b *fakeBus) Read(address uint16) byte { return b.mem[address] }
func (b *fakeBus) ReadOAM(offset uint8) byte { return b.oam[offset] }
func (b *fakeBus) RequestInterrupt(i addr.Interrupt) {
	b.interruptsSeen = append(b.interruptsSeen, i)
}

func newTestPPU() (*PPU, *fakeBus) {
	bus := &fakeBus{}
	p := NewPPU(bus)
	p.lcdc = 0x91 // display + BG enabled, unsigned tile data, map 0
	return p, bus
}

func TestPPUPostResetState(t *testing.T) {
	p, _ := newTestPPU()
	assert.Equal(t, ModeOAMScan, p.Mode())
	assert.Equal(t, 0, p.LY())
}

func TestPPUModeProgressesAcrossOneScanline(t *testing.T) {
	p, _ := newTestPPU()

	p.Tick(oamScanDots - 1)
	assert.Equal(t, ModeOAMScan, p.Mode())
	p.Tick(1)
	assert.Equal(t, ModeDrawing, p.Mode())

	p.Tick(drawingEndDot - oamScanDots - 1)
	assert.Equal(t, ModeDrawing, p.Mode())
	p.Tick(1)
	assert.Equal(t, ModeHBlank, p.Mode())

	p.Tick(dotsPerLine - drawingEndDot - 1)
	assert.Equal(t, ModeHBlank, p.Mode())
	p.Tick(1)
	assert.Equal(t, ModeOAMScan, p.Mode())
	assert.Equal(t, 1, p.LY())
}

func TestPPURaisesVBlankAtLine144(t *testing.T) {
	p, bus := newTestPPU()
	p.Tick(dotsPerLine * 144)

	assert.Equal(t, ModeVBlank, p.Mode())
	assert.Equal(t, 144, p.LY())
	require.Contains(t, bus.interruptsSeen, addr.VBlank)
}

func TestPPURestartsFrameAfterLine153(t *testing.T) {
	p, _ := newTestPPU()
	p.Tick(dotsPerLine * 154)

	assert.Equal(t, 0, p.LY())
	assert.Equal(t, ModeOAMScan, p.Mode())
}

func TestPPUDisabledDisplayHoldsLY0(t *testing.T) {
	p, _ := newTestPPU()
	p.lcdc = 0x00
	p.Tick(dotsPerLine * 3)
	assert.Equal(t, 0, p.LY())
}

func TestLYCCoincidenceRaisesSTATOnceOnRisingEdge(t *testing.T) {
	p, bus := newTestPPU()
	p.lyc = 1
	p.stat |= 1 << statLYCInterrupt

	p.Tick(dotsPerLine) // LY becomes 1: coincidence rising edge
	require.Contains(t, bus.interruptsSeen, addr.LCDStat)

	before := len(bus.interruptsSeen)
	p.Tick(1) // still LY==1, no further edge
	assert.Equal(t, before, len(bus.interruptsSeen))
}

func TestBackgroundPixelReadsThroughTileMapAndData(t *testing.T) {
	p, bus := newTestPPU()
	p.bgp = 0xE4 // identity mapping: 0,1,2,3 -> 0,1,2,3

	// Tile 1 at map origin, all-black row (colour 3: low=high=0xFF).
	bus.mem[addr.TileMap0] = 1
	tileAddr := addr.TileData0 + 16
	bus.mem[tileAddr] = 0xFF
	bus.mem[tileAddr+1] = 0xFF

	p.Tick(drawingEndDot) // render scanline 0
	assert.Equal(t, p.palette()[3], p.framebuffer.At(0, 0))
}

func TestSpritePixelHidesBehindNonZeroBGWhenPriorityBitSet(t *testing.T) {
	p, bus := newTestPPU()
	p.lcdc |= 1 << lcdcSpriteEnable
	p.obp0 = 0xE4 // sprite colour 1 maps to shade 1, unlike the BG's shade 3 under BGP 0xFC

	// Background colour 1 across the line.
	bus.mem[addr.TileMap0] = 0
	bus.mem[addr.TileData0] = 0xFF
	bus.mem[addr.TileData0+1] = 0x00

	// One sprite at (0,0) with the priority bit set, opaque colour 1.
	bus.oam[0] = 16 // y
	bus.oam[1] = 8  // x
	bus.oam[2] = 0  // tile
	bus.oam[3] = 0x80
	bus.mem[addr.TileData0] = 0xFF // reused by both BG and sprite tile 0
	bus.mem[addr.TileData0+1] = 0x00

	p.Tick(drawingEndDot)

	bgColour := p.mapColour(1, p.bgp)
	assert.Equal(t, bgColour, p.framebuffer.At(0, 0), "priority sprite must not draw over non-zero background")
}
