package video

import "github.com/nsavage/godmg/dmg/config"

// Width and Height are the fixed Game Boy screen dimensions.
const (
	Width  = config.ScreenWidth
	Height = config.ScreenHeight
)

// FrameBuffer holds one rendered frame as packed 32-bit ARGB pixels.
type FrameBuffer struct {
	pixels [Width * Height]uint32
}

// NewFrameBuffer returns a framebuffer cleared to the lightest palette shade.
func NewFrameBuffer() *FrameBuffer {
	fb := &FrameBuffer{}
	for i := range fb.pixels {
		fb.pixels[i] = config.Palettes[config.DefaultPalette][0]
	}
	return fb
}

// Set stores the ARGB colour at (x, y).
func (f *FrameBuffer) Set(x, y int, argb uint32) {
	f.pixels[y*Width+x] = argb
}

// At returns the ARGB colour at (x, y).
func (f *FrameBuffer) At(x, y int) uint32 {
	return f.pixels[y*Width+x]
}

// ToSlice returns the whole frame as a row-major slice of ARGB pixels.
func (f *FrameBuffer) ToSlice() []uint32 {
	return f.pixels[:]
}

// Copy returns an independent copy of the framebuffer, for handing to a
// host that must retain a frame across the next RunFrame call.
func (f *FrameBuffer) Copy() *FrameBuffer {
	cp := *f
	return &cp
}
