package video

// sprite is the transient per-scanline sprite record spec.md §3 names.
type sprite struct {
	oamIndex int
	x        int16
	y        int16
	tile     uint8
	attr     uint8
}

func (s sprite) priority() bool { return s.attr&0x80 != 0 }
func (s sprite) yFlip() bool    { return s.attr&0x40 != 0 }
func (s sprite) xFlip() bool    { return s.attr&0x20 != 0 }
func (s sprite) paletteOBP1() bool { return s.attr&0x10 != 0 }

// scanSprites walks OAM in index order and returns up to 10 sprites whose
// vertical extent covers line ly, given the current sprite height (8 or 16).
func (p *PPU) scanSprites(ly int, height int) []sprite {
	var found []sprite

	for i := 0; i < 40 && len(found) < 10; i++ {
		base := uint8(i * 4)
		rawY := p.readOAM(base)
		rawX := p.readOAM(base + 1)
		tile := p.readOAM(base + 2)
		attr := p.readOAM(base + 3)

		y := int16(rawY) - 16
		x := int16(rawX) - 8

		if ly >= int(y) && ly < int(y)+height {
			found = append(found, sprite{
				oamIndex: i,
				x:        x,
				y:        y,
				tile:     tile,
				attr:     attr,
			})
		}
	}

	return found
}
