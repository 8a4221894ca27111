// Package backend defines the platform-facing surface a host loop drives:
// render a completed frame, collect input, clean up on exit.
package backend

import "github.com/nsavage/godmg/dmg/video"

// InputEvent is a single joypad/control action observed by a backend during
// one Update call.
type InputEvent struct {
	Key     InputKey
	Pressed bool
}

// InputKey enumerates the actions a backend can report, beyond the eight
// joypad buttons: palette cycling and soft reset are host-level controls
// spec.md's supplemented-features section adds.
type InputKey uint8

const (
	KeyRight InputKey = iota
	KeyLeft
	KeyUp
	KeyDown
	KeyA
	KeyB
	KeySelect
	KeyStart
	KeyCyclePalette
	KeyReset
	KeyQuit
)

// Backend is a complete presentation layer: it renders finished frames and
// reports input. Terminal and SDL2 implementations live in their own
// subpackages so the sdl2 cgo dependency only enters a build that asks
// for it.
type Backend interface {
	// Init prepares backend resources (window, screen) for the given config.
	Init(config Config) error

	// Update renders frame and returns the input events observed since the
	// previous call.
	Update(frame *video.FrameBuffer) ([]InputEvent, error)

	// Cleanup releases backend resources.
	Cleanup() error
}

// Config holds the options a host passes to Backend.Init.
type Config struct {
	Title      string
	Scale      int
	PaletteID  int
}
