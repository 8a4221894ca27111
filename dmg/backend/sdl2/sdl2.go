//go:build sdl2

// Package sdl2 renders frames through go-sdl2 bindings. It requires the SDL2
// development libraries and the "sdl2" build tag; stub.go provides the
// default (non-cgo) build's fallback.
package sdl2

import (
	"fmt"
	"log/slog"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/nsavage/godmg/dmg/backend"
	"github.com/nsavage/godmg/dmg/video"
)

const pixelScale = 4

// Backend implements backend.Backend using an SDL2 window and renderer.
type Backend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	running  bool
	pixels   []byte
}

func New() *Backend { return &Backend{} }

func (s *Backend) Init(cfg backend.Config) error {
	scale := cfg.Scale
	if scale <= 0 {
		scale = pixelScale
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("sdl2: init: %w", err)
	}

	title := cfg.Title
	if title == "" {
		title = "godmg"
	}

	window, err := sdl.CreateWindow(title, sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(video.Width*scale), int32(video.Height*scale), sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("sdl2: create window: %w", err)
	}
	s.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("sdl2: create renderer: %w", err)
	}
	s.renderer = renderer

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_ARGB8888, sdl.TEXTUREACCESS_STREAMING,
		int32(video.Width), int32(video.Height))
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("sdl2: create texture: %w", err)
	}
	s.texture = texture
	s.pixels = make([]byte, video.Width*video.Height*4)
	s.running = true

	slog.Info("sdl2 backend initialized", "scale", scale)
	return nil
}

func (s *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	var events []backend.InputEvent

	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		switch e := ev.(type) {
		case *sdl.QuitEvent:
			s.running = false
			events = append(events, backend.InputEvent{Key: backend.KeyQuit, Pressed: true})
		case *sdl.KeyboardEvent:
			if key, ok := keyMapping[e.Keysym.Sym]; ok {
				events = append(events, backend.InputEvent{Key: key, Pressed: e.Type == sdl.KEYDOWN})
			}
		}
	}

	if !s.running {
		return events, nil
	}

	src := frame.ToSlice()
	for i, px := range src {
		o := i * 4
		s.pixels[o+0] = byte(px)
		s.pixels[o+1] = byte(px >> 8)
		s.pixels[o+2] = byte(px >> 16)
		s.pixels[o+3] = byte(px >> 24)
	}
	if err := s.texture.Update(nil, s.pixels, video.Width*4); err != nil {
		return events, fmt.Errorf("sdl2: texture update: %w", err)
	}

	s.renderer.Clear()
	s.renderer.Copy(s.texture, nil, nil)
	s.renderer.Present()

	return events, nil
}

func (s *Backend) Cleanup() error {
	if s.texture != nil {
		s.texture.Destroy()
	}
	if s.renderer != nil {
		s.renderer.Destroy()
	}
	if s.window != nil {
		s.window.Destroy()
	}
	sdl.Quit()
	return nil
}

var keyMapping = map[sdl.Keycode]backend.InputKey{
	sdl.K_UP:     backend.KeyUp,
	sdl.K_DOWN:   backend.KeyDown,
	sdl.K_LEFT:   backend.KeyLeft,
	sdl.K_RIGHT:  backend.KeyRight,
	sdl.K_x:      backend.KeyA,
	sdl.K_z:      backend.KeyB,
	sdl.K_RETURN: backend.KeyStart,
	sdl.K_BACKSLASH: backend.KeySelect,
	sdl.K_F1:     backend.KeyReset,
	sdl.K_F2:     backend.KeyCyclePalette,
}
