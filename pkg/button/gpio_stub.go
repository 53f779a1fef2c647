//go:build !linux

package button

import "fmt"

type Watcher struct{}

func WatchGPIO(chip string, offset int, c *Clicker) (*Watcher, error) {
	return nil, fmt.Errorf("button: gpio not supported on this platform")
}

func (w *Watcher) Close() error { return nil }
