package video

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanSpritesCapsAtTenPerLine(t *testing.T) {
	p, bus := newTestPPU()

	for i := 0; i < 20; i++ {
		base := i * 4
		bus.oam[base] = 16   // y=0
		bus.oam[base+1] = 8  // x=0
		bus.oam[base+2] = 0
		bus.oam[base+3] = 0
	}

	found := p.scanSprites(0, 8)
	assert.Len(t, found, 10)
}

func TestScanSpritesOnlyMatchesCoveredLines(t *testing.T) {
	p, bus := newTestPPU()
	bus.oam[0] = 32 // y=16, covers lines 16-23 for an 8px sprite
	bus.oam[1] = 8
	bus.oam[2] = 0
	bus.oam[3] = 0

	assert.Empty(t, p.scanSprites(0, 8))
	assert.Len(t, p.scanSprites(16, 8), 1)
	assert.Empty(t, p.scanSprites(24, 8))
}

func TestSpriteSortOrderIsXThenOAMIndex(t *testing.T) {
	sprites := []sprite{
		{oamIndex: 2, x: 5},
		{oamIndex: 0, x: 5},
		{oamIndex: 1, x: 3},
	}

	sort.Slice(sprites, func(i, j int) bool {
		if sprites[i].x != sprites[j].x {
			return sprites[i].x < sprites[j].x
		}
		return sprites[i].oamIndex < sprites[j].oamIndex
	})

	assert.Equal(t, []int{1, 0, 2}, []int{sprites[0].oamIndex, sprites[1].oamIndex, sprites[2].oamIndex})
}
