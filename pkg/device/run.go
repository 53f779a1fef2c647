package device

import (
	"context"
	"fmt"
	"time"
)

// Input is a discrete operator control.
type Input int

const (
	// Pressed captures a new zero reference.
	Pressed Input = iota
	// DoubleClicked pauses or resumes streaming.
	DoubleClicked
)

func (in Input) String() string {
	switch in {
	case Pressed:
		return "pressed"
	case DoubleClicked:
		return "double-clicked"
	default:
		return fmt.Sprintf("input(%d)", int(in))
	}
}

// Handle applies one operator input to the tracker.
func (t *Tracker) Handle(ctx context.Context, in Input) error {
	switch in {
	case Pressed:
		return t.CaptureZero(ctx)
	case DoubleClicked:
		t.ToggleStream()
		return nil
	default:
		return fmt.Errorf("unknown input %v", in)
	}
}

// Run captures an initial zero, then ticks the tracker at hz until ctx is
// cancelled or a readback, zero or write fault occurs. Inputs are applied
// between ticks on the calling goroutine.
func Run(ctx context.Context, t *Tracker, hz int, inputs <-chan Input) error {
	if hz <= 0 {
		return fmt.Errorf("hz must be > 0")
	}

	t.display.ShowStreaming(!t.paused)
	if err := t.CaptureZero(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(time.Second / time.Duration(hz))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case in, ok := <-inputs:
			if !ok {
				inputs = nil
				continue
			}
			if err := t.Handle(ctx, in); err != nil {
				return err
			}
		case <-ticker.C:
			if err := t.Tick(ctx); err != nil {
				return err
			}
		}
	}
}
