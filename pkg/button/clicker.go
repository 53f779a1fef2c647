// Package button turns raw push-button presses into single and double clicks.
package button

import (
	"sync"
	"time"
)

// Click is a classified button gesture.
type Click int

const (
	Single Click = iota
	Double
)

func (c Click) String() string {
	if c == Double {
		return "double"
	}
	return "single"
}

// DefaultWindow is the longest gap between two presses of a double click.
const DefaultWindow = 300 * time.Millisecond

// Clicker classifies presses. A press followed by a second press within the
// window is a Double; a press with no follow-up becomes a Single once the
// window lapses.
type Clicker struct {
	window time.Duration
	out    chan Click

	mu    sync.Mutex
	timer *time.Timer
}

// NewClicker returns a Clicker; window <= 0 selects DefaultWindow.
func NewClicker(window time.Duration) *Clicker {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Clicker{
		window: window,
		out:    make(chan Click, 4),
	}
}

// Clicks returns the channel of classified clicks.
func (c *Clicker) Clicks() <-chan Click {
	return c.out
}

// Press records one button press.
func (c *Clicker) Press() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		if c.timer.Stop() {
			c.timer = nil
			c.emit(Double)
			return
		}
		// The window lapsed and its callback is waiting for mu.
		c.emit(Single)
	}
	var t *time.Timer
	t = time.AfterFunc(c.window, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.timer != t {
			return
		}
		c.timer = nil
		c.emit(Single)
	})
	c.timer = t
}

// Stop cancels a pending single click.
func (c *Clicker) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Clicker) emit(k Click) {
	select {
	case c.out <- k:
	default:
		// Drop if nobody is listening
	}
}
