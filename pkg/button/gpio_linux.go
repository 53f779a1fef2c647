//go:build linux

package button

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// Watcher feeds a Clicker from a GPIO input line.
type Watcher struct {
	line *gpiocdev.Line
}

// WatchGPIO requests the line as a pulled-up input and calls c.Press on
// every falling edge. The button is expected to short the line to ground.
func WatchGPIO(chip string, offset int, c *Clicker) (*Watcher, error) {
	if chip == "" {
		return nil, fmt.Errorf("button: gpio chip is required")
	}
	if offset < 0 {
		return nil, fmt.Errorf("button: invalid gpio line %d", offset)
	}

	line, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithDebounce(10*time.Millisecond),
		gpiocdev.WithConsumer("mello-button"),
		gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
			if evt.Type == gpiocdev.LineEventFallingEdge {
				c.Press()
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("button: request %s line %d: %w", chip, offset, err)
	}
	return &Watcher{line: line}, nil
}

// Close releases the line.
func (w *Watcher) Close() error {
	if w == nil || w.line == nil {
		return nil
	}
	err := w.line.Close()
	w.line = nil
	return err
}
