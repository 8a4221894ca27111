// Package terminal renders frames to a tcell screen using half-block
// characters, two Game Boy pixels per terminal cell.
package terminal

import (
	"fmt"
	"log/slog"

	"github.com/gdamore/tcell/v2"

	"github.com/nsavage/godmg/dmg/backend"
	"github.com/nsavage/godmg/dmg/video"
)

const (
	minTermWidth  = video.Width + 2
	minTermHeight = video.Height/2 + 2
)

// Backend implements backend.Backend by drawing to the controlling terminal.
type Backend struct {
	screen  tcell.Screen
	running bool
	config  backend.Config
}

// New returns an uninitialized terminal backend.
func New() *Backend { return &Backend{} }

func (t *Backend) Init(cfg backend.Config) error {
	t.config = cfg

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: failed to open screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal: failed to init screen: %w", err)
	}

	t.screen = screen
	t.running = true
	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	slog.Info("terminal backend initialized", "title", cfg.Title)
	return nil
}

func (t *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	var events []backend.InputEvent

	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			events = append(events, t.translateKey(ev)...)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	if !t.running {
		return events, nil
	}

	termWidth, termHeight := t.screen.Size()
	if termWidth < minTermWidth || termHeight < minTermHeight {
		t.screen.Clear()
		msg := fmt.Sprintf("terminal too small, need at least %dx%d", minTermWidth, minTermHeight)
		style := tcell.StyleDefault.Foreground(tcell.ColorRed)
		for i, ch := range msg {
			t.screen.SetContent(i, termHeight/2, ch, nil, style)
		}
		t.screen.Show()
		return events, nil
	}

	t.draw(frame)
	t.screen.Show()
	return events, nil
}

func (t *Backend) Cleanup() error {
	if t.screen != nil {
		t.screen.Fini()
	}
	return nil
}

func (t *Backend) draw(frame *video.FrameBuffer) {
	t.screen.Clear()
	pixels := frame.ToSlice()

	for y := 0; y < video.Height; y += 2 {
		for x := 0; x < video.Width; x++ {
			top := shadeOf(pixels[y*video.Width+x])
			bottom := 3
			if y+1 < video.Height {
				bottom = shadeOf(pixels[(y+1)*video.Width+x])
			}
			ch, fg, bg := halfBlock(top, bottom)
			style := tcell.StyleDefault.Foreground(fg).Background(bg)
			t.screen.SetContent(x+1, y/2+1, ch, nil, style)
		}
	}
}

var shadeColors = [4]tcell.Color{tcell.ColorBlack, tcell.ColorGray, tcell.ColorSilver, tcell.ColorWhite}

// shadeOf buckets an ARGB pixel into one of four terminal-displayable
// brightness levels, regardless of which configured palette produced it.
func shadeOf(pixel uint32) int {
	r := (pixel >> 16) & 0xFF
	switch {
	case r < 0x40:
		return 0
	case r < 0x90:
		return 1
	case r < 0xD0:
		return 2
	default:
		return 3
	}
}

func halfBlock(top, bottom int) (rune, tcell.Color, tcell.Color) {
	if top == bottom {
		return '█', shadeColors[top], tcell.ColorDefault
	}
	return '▀', shadeColors[top], shadeColors[bottom]
}

var keyMapping = map[tcell.Key]backend.InputKey{
	tcell.KeyUp:     backend.KeyUp,
	tcell.KeyDown:   backend.KeyDown,
	tcell.KeyLeft:   backend.KeyLeft,
	tcell.KeyRight:  backend.KeyRight,
	tcell.KeyEnter:  backend.KeyStart,
	tcell.KeyF1:     backend.KeyReset,
	tcell.KeyF2:     backend.KeyCyclePalette,
	tcell.KeyCtrlC:  backend.KeyQuit,
	tcell.KeyEscape: backend.KeyQuit,
}

var runeMapping = map[rune]backend.InputKey{
	'x': backend.KeyA,
	'z': backend.KeyB,
	'\\': backend.KeySelect,
}

// translateKey reports a press and, for non-quit keys, a synthetic release
// on the following frame is the host's responsibility; tcell delivers key
// presses as discrete events without repeat/hold info, so each observed
// event is reported as a press.
func (t *Backend) translateKey(ev *tcell.EventKey) []backend.InputEvent {
	if key, ok := keyMapping[ev.Key()]; ok {
		if key == backend.KeyQuit {
			t.running = false
		}
		return []backend.InputEvent{{Key: key, Pressed: true}}
	}
	if ev.Key() == tcell.KeyRune {
		if key, ok := runeMapping[ev.Rune()]; ok {
			return []backend.InputEvent{{Key: key, Pressed: true}}
		}
	}
	return nil
}
