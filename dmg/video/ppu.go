// Package video implements the dot-accurate picture processor: the mode
// state machine, background/window/sprite rendering, and the STAT/LYC
// interrupt logic.
package video

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/nsavage/godmg/dmg/addr"
	"github.com/nsavage/godmg/dmg/bit"
	"github.com/nsavage/godmg/dmg/config"
)

// Mode is the PPU's current rendering stage; the values match STAT bits 1:0.
type Mode uint8

const (
	ModeHBlank  Mode = 0
	ModeVBlank  Mode = 1
	ModeOAMScan Mode = 2
	ModeDrawing Mode = 3
)

const (
	dotsPerLine     = 456
	oamScanDots     = 80
	drawingEndDot   = 252 // mode 3 runs from dot 80 to dot 252
	lastVisibleLine = 143
)

// LCDC bits.
const (
	lcdcDisplayEnable     = 7
	lcdcWindowMapSelect   = 6
	lcdcWindowEnable      = 5
	lcdcTileDataSelect    = 4
	lcdcBGMapSelect       = 3
	lcdcSpriteSize        = 2
	lcdcSpriteEnable      = 1
	lcdcBGEnable          = 0
)

// STAT bits.
const (
	statLYCInterrupt    = 6
	statOAMInterrupt    = 5
	statVBlankInterrupt = 4
	statHBlankInterrupt = 3
	statCoincidence     = 2
)

// Bus is the subset of the memory bus the PPU needs: VRAM/OAM reads and
// interrupt requests. Implemented by *memory.MMU.
type Bus interface {
	Read(address uint16) byte
	ReadOAM(offset uint8) byte
	RequestInterrupt(i addr.Interrupt)
}

// PPU renders the 160x144 framebuffer one scanline at a time, driven by the
// CPU's shared tick function (spec.md §2).
type PPU struct {
	bus Bus

	dot  int
	ly   int
	mode Mode

	windowLine  int
	windowDrawn bool

	statIRQLine bool

	lcdc byte
	stat byte
	scy  byte
	scx  byte
	lyc  byte
	bgp  byte
	obp0 byte
	obp1 byte
	wy   byte
	wx   byte

	paletteID int

	framebuffer  *FrameBuffer
	bgColorIndex [Width]uint8 // colour-0-ness of the background line just drawn, for sprite priority

	frameReady bool

	// OnFrameReady is called exactly once per frame at VBlank onset, with the
	// framebuffer to present. The core stays pure: it never calls a
	// presentation API directly (spec.md §9 "Framebuffer handoff").
	OnFrameReady func(*FrameBuffer)
}

// NewPPU returns a PPU wired to bus, with mode/LY at their post-reset values
// (mode 2, LY 0).
func NewPPU(bus Bus) *PPU {
	p := &PPU{
		bus:         bus,
		mode:        ModeOAMScan,
		stat:        0x80 | byte(ModeOAMScan),
		bgp:         0xFC,
		obp0:        0xFF,
		obp1:        0xFF,
		lcdc:        0x91,
		framebuffer: NewFrameBuffer(),
		paletteID:   config.DefaultPalette,
	}
	return p
}

func (p *PPU) readOAM(offset uint8) byte { return p.bus.ReadOAM(offset) }

// FrameBuffer returns the last fully rendered frame.
func (p *PPU) FrameBuffer() *FrameBuffer { return p.framebuffer }

// SetPalette selects a palette by index, modulo the table length.
func (p *PPU) SetPalette(id int) {
	n := len(config.Palettes)
	p.paletteID = ((id % n) + n) % n
}

// CyclePalette advances to the next palette in the table.
func (p *PPU) CyclePalette() {
	p.SetPalette(p.paletteID + 1)
}

func (p *PPU) palette() config.Palette {
	return config.Palettes[p.paletteID]
}

func (p *PPU) displayEnabled() bool {
	return bit.IsSet(lcdcDisplayEnable, p.lcdc)
}

// Tick advances the PPU by cycles CPU-observed cycles (a tick granularity of
// 1 dot per cycle, per spec.md §4.3).
func (p *PPU) Tick(cycles int) {
	for i := 0; i < cycles; i++ {
		p.tickOne()
	}
}

func (p *PPU) tickOne() {
	if !p.displayEnabled() {
		p.dot = 0
		p.ly = 0
		p.statIRQLine = false
		p.mode = ModeHBlank
		p.stat = (p.stat &^ 0x03) | 0x80
		return
	}

	p.dot++

	switch p.mode {
	case ModeOAMScan:
		if p.dot == oamScanDots {
			p.setMode(ModeDrawing)
		}
	case ModeDrawing:
		if p.dot == drawingEndDot {
			p.drawLine()
			p.setMode(ModeHBlank)
		}
	case ModeHBlank:
		if p.dot == dotsPerLine {
			p.dot = 0
			p.setLY(p.ly + 1)
			if p.ly == lastVisibleLine+1 {
				p.setMode(ModeVBlank)
				p.publishFrame()
				p.bus.RequestInterrupt(addr.VBlank)
			} else {
				p.setMode(ModeOAMScan)
			}
		}
	case ModeVBlank:
		if p.dot == dotsPerLine {
			p.dot = 0
			p.setLY(p.ly + 1)
			if p.ly > 153 {
				p.setLY(0)
				p.windowLine = 0
				p.setMode(ModeOAMScan)
			}
		}
	}

	p.updateSTAT()
}

func (p *PPU) setMode(m Mode) {
	p.mode = m
	p.stat = (p.stat &^ 0x03) | byte(m)
	p.updateSTAT()
}

func (p *PPU) setLY(ly int) {
	p.ly = ly
	p.updateSTAT()
}

// updateSTAT recomputes the coincidence bit and the composite STAT signal,
// requesting the LCD-STAT interrupt only on a rising edge (spec.md §4.3.4):
// this is the one place in the core where level/edge distinction matters.
func (p *PPU) updateSTAT() {
	coincidence := p.ly == int(p.lyc)
	if coincidence {
		p.stat |= 1 << statCoincidence
	} else {
		p.stat &^= 1 << statCoincidence
	}

	composite := (bit.IsSet(statLYCInterrupt, p.stat) && coincidence) ||
		(bit.IsSet(statOAMInterrupt, p.stat) && p.mode == ModeOAMScan) ||
		(bit.IsSet(statVBlankInterrupt, p.stat) && p.mode == ModeVBlank) ||
		(bit.IsSet(statHBlankInterrupt, p.stat) && p.mode == ModeHBlank)

	if composite && !p.statIRQLine {
		p.bus.RequestInterrupt(addr.LCDStat)
	}
	p.statIRQLine = composite
}

func (p *PPU) publishFrame() {
	p.frameReady = true
	if p.OnFrameReady != nil {
		p.OnFrameReady(p.framebuffer)
	}
}

// drawLine renders background, window and sprites for the current scanline
// (spec.md §4.3.1-§4.3.2), performed once at mode-3 exit.
func (p *PPU) drawLine() {
	p.windowDrawn = false
	p.drawBackground()
	p.drawWindow()
	p.drawSprites()
	if p.windowDrawn {
		p.windowLine++
	}
}

func (p *PPU) mapColour(colour uint8, palette byte) uint32 {
	mapped := (palette >> (2 * colour)) & 0x03
	return p.palette()[mapped]
}

func (p *PPU) tileDataAddr(tileID byte, useSigned bool) uint16 {
	if !useSigned {
		return addr.TileData0 + uint16(tileID)*16
	}
	return uint16(int32(addr.TileData1) + int32(int8(tileID))*16)
}

func (p *PPU) drawBackground() {
	bgEnabled := bit.IsSet(lcdcBGEnable, p.lcdc)
	useSigned := !bit.IsSet(lcdcTileDataSelect, p.lcdc)
	mapBase := addr.TileMap0
	if bit.IsSet(lcdcBGMapSelect, p.lcdc) {
		mapBase = addr.TileMap1
	}

	for x := 0; x < Width; x++ {
		if !bgEnabled {
			p.bgColorIndex[x] = 0
			p.framebuffer.Set(x, p.ly, p.mapColour(0, p.bgp))
			continue
		}

		bx := (x + int(p.scx)) & 0xFF
		by := (p.ly + int(p.scy)) & 0xFF

		mapAddr := mapBase + uint16((by/8)*32+(bx/8))
		tileID := p.bus.Read(mapAddr)

		tileAddr := p.tileDataAddr(tileID, useSigned) + uint16(2*(by&7))
		low := p.bus.Read(tileAddr)
		high := p.bus.Read(tileAddr + 1)

		shift := uint8(7 - (bx & 7))
		colour := bit.Bit(shift, low) | (bit.Bit(shift, high) << 1)

		p.bgColorIndex[x] = colour
		p.framebuffer.Set(x, p.ly, p.mapColour(colour, p.bgp))
	}
}

func (p *PPU) drawWindow() {
	if !bit.IsSet(lcdcWindowEnable, p.lcdc) {
		return
	}
	if p.ly < int(p.wy) {
		return
	}

	wxStart := int(p.wx) - 7
	if wxStart >= Width {
		return
	}

	useSigned := !bit.IsSet(lcdcTileDataSelect, p.lcdc)
	mapBase := addr.TileMap0
	if bit.IsSet(lcdcWindowMapSelect, p.lcdc) {
		mapBase = addr.TileMap1
	}

	drewAny := false
	for x := 0; x < Width; x++ {
		if x < wxStart {
			continue
		}
		wxPixel := x - wxStart
		wyLine := p.windowLine

		mapAddr := mapBase + uint16((wyLine/8)*32+(wxPixel/8))
		tileID := p.bus.Read(mapAddr)

		tileAddr := p.tileDataAddr(tileID, useSigned) + uint16(2*(wyLine&7))
		low := p.bus.Read(tileAddr)
		high := p.bus.Read(tileAddr + 1)

		shift := uint8(7 - (wxPixel & 7))
		colour := bit.Bit(shift, low) | (bit.Bit(shift, high) << 1)

		p.bgColorIndex[x] = colour
		p.framebuffer.Set(x, p.ly, p.mapColour(colour, p.bgp))
		drewAny = true
	}

	if drewAny {
		p.windowDrawn = true
	}
}

func (p *PPU) drawSprites() {
	if !bit.IsSet(lcdcSpriteEnable, p.lcdc) {
		return
	}

	height := 8
	if bit.IsSet(lcdcSpriteSize, p.lcdc) {
		height = 16
	}

	sprites := p.scanSprites(p.ly, height)

	sort.Slice(sprites, func(i, j int) bool {
		if sprites[i].x != sprites[j].x {
			return sprites[i].x < sprites[j].x
		}
		return sprites[i].oamIndex < sprites[j].oamIndex
	})

	// Render in reverse sort order: right-priority sprites first, so
	// earlier-sorted (leftmost/lowest-index) sprites overwrite them.
	for i := len(sprites) - 1; i >= 0; i-- {
		p.drawSprite(sprites[i], height)
	}
}

func (p *PPU) drawSprite(s sprite, height int) {
	row := p.ly - int(s.y)
	if s.yFlip() {
		row = height - 1 - row
	}

	tileIndex := s.tile
	if height == 16 {
		tileIndex &^= 0x01
		if row >= 8 {
			tileIndex++
			row -= 8
		}
	}

	tileAddr := addr.TileData0 + uint16(tileIndex)*16 + uint16(2*row)
	low := p.bus.Read(tileAddr)
	high := p.bus.Read(tileAddr + 1)

	palette := p.obp0
	if s.paletteOBP1() {
		palette = p.obp1
	}

	for col := 0; col < 8; col++ {
		screenX := int(s.x) + col
		if screenX < 0 || screenX >= Width {
			continue
		}

		bitIndex := col
		if !s.xFlip() {
			bitIndex = 7 - col
		}

		colour := bit.Bit(uint8(bitIndex), low) | (bit.Bit(uint8(bitIndex), high) << 1)
		if colour == 0 {
			continue
		}

		if s.priority() && p.bgColorIndex[screenX] != 0 {
			continue
		}

		p.framebuffer.Set(screenX, p.ly, p.mapColour(colour, palette))
	}
}

// Read implements memory.LCDRegisters: the 0xFF40-0xFF4B register block.
func (p *PPU) Read(address uint16) byte {
	switch address {
	case addr.LCDC:
		return p.lcdc
	case addr.STAT:
		return p.stat | 0x80
	case addr.SCY:
		return p.scy
	case addr.SCX:
		return p.scx
	case addr.LY:
		return byte(p.ly)
	case addr.LYC:
		return p.lyc
	case addr.BGP:
		return p.bgp
	case addr.OBP0:
		return p.obp0
	case addr.OBP1:
		return p.obp1
	case addr.WY:
		return p.wy
	case addr.WX:
		return p.wx
	default:
		slog.Warn("video: read of unmapped LCD register", "addr", fmt.Sprintf("0x%04X", address))
		return 0xFF
	}
}

// Write implements memory.LCDRegisters.
func (p *PPU) Write(address uint16, value byte) {
	switch address {
	case addr.LCDC:
		p.lcdc = value
	case addr.STAT:
		p.stat = (p.stat & 0x07) | (value & 0x78) | 0x80
		p.updateSTAT()
	case addr.SCY:
		p.scy = value
	case addr.SCX:
		p.scx = value
	case addr.LY:
		// writes are ignored: LY is read-only
	case addr.LYC:
		p.lyc = value
		p.updateSTAT()
	case addr.BGP:
		p.bgp = value
	case addr.OBP0:
		p.obp0 = value
	case addr.OBP1:
		p.obp1 = value
	case addr.WY:
		p.wy = value
	case addr.WX:
		p.wx = value
	default:
		slog.Warn("video: write of unmapped LCD register", "addr", fmt.Sprintf("0x%04X", address))
	}
}

// ConsumeFrameReady reports whether a frame was published since the last
// call, clearing the flag. Lets a host poll instead of registering a callback.
func (p *PPU) ConsumeFrameReady() bool {
	ready := p.frameReady
	p.frameReady = false
	return ready
}

// Mode returns the PPU's current mode (exported for tests/debug tooling).
func (p *PPU) Mode() Mode { return p.mode }

// LY returns the current scanline.
func (p *PPU) LY() int { return p.ly }

// Dot returns the current dot within the scanline.
func (p *PPU) Dot() int { return p.dot }
