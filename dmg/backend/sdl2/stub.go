//go:build !sdl2

package sdl2

import (
	"fmt"

	"github.com/nsavage/godmg/dmg/backend"
	"github.com/nsavage/godmg/dmg/video"
)

// Backend is a stand-in used when the binary is built without the sdl2 tag
// (the default, since SDL2's development libraries are not always present).
type Backend struct{}

func New() *Backend { return &Backend{} }

func (s *Backend) Init(cfg backend.Config) error {
	return fmt.Errorf("sdl2 backend not compiled in: rebuild with -tags sdl2")
}

func (s *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	return nil, fmt.Errorf("sdl2 backend not compiled in")
}

func (s *Backend) Cleanup() error { return nil }
