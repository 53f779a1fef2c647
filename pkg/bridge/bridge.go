// Package bridge forwards Mello poses to a remote robot controller at a
// fixed rate.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gwillem/mello/pkg/robot"
	"github.com/gwillem/mello/pkg/teleop"
)

// Sample is one published pose.
type Sample struct {
	Joints    [robot.NumJoints]float64 `json:"joints_rad"`
	Gripper   robot.Gripper            `json:"gripper"`
	Timestamp time.Time                `json:"timestamp"`
}

// NewSample builds a Sample from accessor values.
func NewSample(values [robot.NumChannels]float64, at time.Time) Sample {
	s := Sample{
		Gripper:   robot.GripperFromRaw(values[robot.JogChannel]),
		Timestamp: at.UTC(),
	}
	copy(s.Joints[:], values[:robot.NumJoints])
	return s
}

// Payload encodes the sample as JSON.
func (s Sample) Payload() ([]byte, error) {
	return json.Marshal(s)
}

// Sink receives samples.
type Sink interface {
	Publish(ctx context.Context, s Sample) error
}

// Run pulls from src at hz and publishes every sample to sink until ctx is
// cancelled. Publish errors are passed to onError and do not stop the loop.
func Run(ctx context.Context, src teleop.Source, sink Sink, hz int, onError func(error)) error {
	if hz <= 0 {
		return fmt.Errorf("hz must be > 0")
	}
	if onError == nil {
		onError = func(error) {}
	}

	ticker := time.NewTicker(time.Second / time.Duration(hz))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if err := sink.Publish(ctx, NewSample(src.Values(), now)); err != nil {
				onError(err)
			}
		}
	}
}
