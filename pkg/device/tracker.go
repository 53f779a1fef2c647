// Package device implements the Mello position tracker: it zeroes the joint
// readbacks on demand and streams reported positions as records.
package device

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gwillem/mello/pkg/record"
	"github.com/gwillem/mello/pkg/robot"
)

// Joints provides synchronous joint readbacks in degrees.
type Joints interface {
	JointPosition(ctx context.Context, joint int) (float64, error)
	JogPosition(ctx context.Context) (float64, error)
}

// Display shows tracker state to the operator.
type Display interface {
	ShowPositions(reported [robot.NumChannels]float64)
	ShowZeroed()
	ShowStreaming(streaming bool)
}

// DefaultSettle is the delay after a zero capture.
const DefaultSettle = 100 * time.Millisecond

// Config holds configuration for a Tracker.
type Config struct {
	Joints  Joints
	Display Display                    // optional
	Output  io.Writer                  // receives one record line per streaming tick
	Signs   [robot.NumChannels]float64 // all zero selects robot.DefaultSigns
	Settle  time.Duration              // zero selects DefaultSettle, negative disables it
}

// Tracker owns the position state of the device. It is not safe for
// concurrent use; Run drives it from a single goroutine.
type Tracker struct {
	joints  Joints
	display Display
	out     io.Writer
	signs   [robot.NumChannels]float64
	settle  time.Duration

	raw      [robot.NumChannels]float64
	zero     [robot.NumChannels]float64
	reported [robot.NumChannels]float64
	paused   bool

	buf []byte
}

// NewTracker creates a tracker in the paused state with a zero reference of all zeros.
func NewTracker(cfg Config) (*Tracker, error) {
	if cfg.Joints == nil {
		return nil, fmt.Errorf("joints are required")
	}
	if cfg.Output == nil {
		return nil, fmt.Errorf("output is required")
	}
	if cfg.Signs == ([robot.NumChannels]float64{}) {
		cfg.Signs = robot.DefaultSigns
	}
	for i, s := range cfg.Signs {
		if s != 1 && s != -1 {
			return nil, fmt.Errorf("sign[%d] = %v, want 1 or -1", i, s)
		}
	}
	if cfg.Display == nil {
		cfg.Display = nopDisplay{}
	}
	switch {
	case cfg.Settle == 0:
		cfg.Settle = DefaultSettle
	case cfg.Settle < 0:
		cfg.Settle = 0
	}

	return &Tracker{
		joints:  cfg.Joints,
		display: cfg.Display,
		out:     cfg.Output,
		signs:   cfg.Signs,
		settle:  cfg.Settle,
		paused:  true,
		buf:     make([]byte, 0, 256),
	}, nil
}

// CaptureZero reads all joints and stores them as the new zero reference.
// The jog channel reference stays 0. On error the previous reference is kept.
func (t *Tracker) CaptureZero(ctx context.Context) error {
	var zero [robot.NumChannels]float64
	for i := 0; i < robot.NumJoints; i++ {
		pos, err := t.joints.JointPosition(ctx, i)
		if err != nil {
			return fmt.Errorf("capture zero: %w", err)
		}
		zero[i] = pos
	}
	t.zero = zero

	if t.settle > 0 {
		timer := time.NewTimer(t.settle)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	t.display.ShowZeroed()
	return nil
}

// ToggleStream flips between paused and streaming.
func (t *Tracker) ToggleStream() {
	t.paused = !t.paused
	t.display.ShowStreaming(!t.paused)
}

// Tick runs one control cycle: read all channels, and when streaming,
// recompute the reported position and write one record.
func (t *Tracker) Tick(ctx context.Context) error {
	var raw [robot.NumChannels]float64
	for i := 0; i < robot.NumJoints; i++ {
		pos, err := t.joints.JointPosition(ctx, i)
		if err != nil {
			return fmt.Errorf("tick: %w", err)
		}
		raw[i] = pos
	}
	jog, err := t.joints.JogPosition(ctx)
	if err != nil {
		return fmt.Errorf("tick: %w", err)
	}
	raw[robot.JogChannel] = jog
	t.raw = raw

	if !t.paused {
		t.reported = Report(&t.zero, &t.signs, &t.raw)
		t.buf = append(record.Append(t.buf[:0], &t.zero, &t.raw, &t.reported), '\n')
		if _, err := t.out.Write(t.buf); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	t.display.ShowPositions(t.reported)
	return nil
}

// Report computes reported[i] = zero[i] + sign[i]*raw[i] for every channel.
func Report(zero, signs, raw *[robot.NumChannels]float64) [robot.NumChannels]float64 {
	var out [robot.NumChannels]float64
	for i := range out {
		out[i] = zero[i] + signs[i]*raw[i]
	}
	return out
}

// Paused reports whether streaming is paused.
func (t *Tracker) Paused() bool { return t.paused }

// Reported returns the last computed reported position.
func (t *Tracker) Reported() [robot.NumChannels]float64 { return t.reported }

// Raw returns the last readbacks.
func (t *Tracker) Raw() [robot.NumChannels]float64 { return t.raw }

// Zero returns the current zero reference.
func (t *Tracker) Zero() [robot.NumChannels]float64 { return t.zero }

type nopDisplay struct{}

func (nopDisplay) ShowPositions([robot.NumChannels]float64) {}
func (nopDisplay) ShowZeroed()                              {}
func (nopDisplay) ShowStreaming(bool)                       {}
