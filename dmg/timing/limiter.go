// Package timing paces the emulation loop to the console's real frame rate.
package timing

import (
	"time"

	"github.com/nsavage/godmg/dmg/config"
)

// Limiter controls how fast the host loop is allowed to run frames.
type Limiter interface {
	// WaitForNextFrame blocks until it is time to produce the next frame.
	WaitForNextFrame()

	// Reset clears accumulated timing state, useful after a pause.
	Reset()
}

// NewNoOpLimiter returns a Limiter that never blocks, for headless or
// benchmark runs.
func NewNoOpLimiter() Limiter { return noOpLimiter{} }

type noOpLimiter struct{}

func (noOpLimiter) WaitForNextFrame() {}
func (noOpLimiter) Reset()            {}

// TickerLimiter paces frames with a time.Ticker set to config.FrameDuration.
type TickerLimiter struct {
	ticker *time.Ticker
}

// NewTickerLimiter returns a Limiter ticking at the Game Boy's native
// ~59.7 Hz frame rate (config.FrameDuration).
func NewTickerLimiter() *TickerLimiter {
	return &TickerLimiter{ticker: time.NewTicker(config.FrameDuration)}
}

func (t *TickerLimiter) WaitForNextFrame() { <-t.ticker.C }

func (t *TickerLimiter) Reset() { t.ticker.Reset(config.FrameDuration) }

// Stop releases the underlying ticker.
func (t *TickerLimiter) Stop() { t.ticker.Stop() }
