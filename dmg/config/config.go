// Package config holds the small set of constants that would otherwise be
// magic numbers scattered through machine/video/cpu: screen geometry, frame
// timing and the palette table. Grounded on the original implementation's
// config header (screen size, palette table, frame timing, default keys).
package config

import "time"

const (
	// ScreenWidth is the framebuffer width in pixels.
	ScreenWidth = 160
	// ScreenHeight is the framebuffer height in pixels.
	ScreenHeight = 144

	// CyclesPerFrame is the CPU cycle budget of a single frame (154 scanlines * 456 dots).
	CyclesPerFrame = 70224

	// ClockHz is the nominal CPU clock frequency.
	ClockHz = 4_194_304

	// FrameRate is the real hardware's refresh rate, ClockHz / CyclesPerFrame.
	FrameRate = float64(ClockHz) / float64(CyclesPerFrame)
)

// FrameDuration is the wall-clock time budget of a single frame at FrameRate.
var FrameDuration = time.Second * CyclesPerFrame / ClockHz

// Palette is a 4-entry ARGB lookup table, lightest to darkest, indexed by the
// 2-bit colour produced after passing a pixel through BGP/OBP0/OBP1.
type Palette [4]uint32

// Palettes is the fixed table of selectable palettes. Index 0 is a
// neutral greyscale rendition; index 1 mimics the green-tinted original
// hardware screen.
var Palettes = []Palette{
	{0xFFFFFFFF, 0xFFC0C0C0, 0xFF606060, 0xFF000000},
	{0xFF9BBC0F, 0xFF8BAC0F, 0xFF306230, 0xFF0F380F},
}

// DefaultPalette is the palette index selected at machine init.
const DefaultPalette = 0

// Default joypad key layout, carried over from the original implementation's
// BUTTON_* defines. The on-screen remapping menu and its persistence are an
// explicit non-goal. The terminal and sdl2 backends carry this same layout in
// their own key tables and do not read these constants.
const (
	DefaultKeyA      = 'x'
	DefaultKeyB      = 'z'
	DefaultKeySelect = '\\'
	DefaultKeyStart  = '\r'

	DefaultKeyPaletteSwap = "F2"
	DefaultKeyReset       = "F1"
)
