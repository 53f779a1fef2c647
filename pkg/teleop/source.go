// Package teleop turns the Mello record stream into the latest robot pose
// for a robot control loop.
package teleop

import (
	"github.com/gwillem/mello/pkg/robot"
)

// Source is what a robot control loop pulls poses from.
type Source interface {
	// Values returns six joint angles in radians followed by the gripper
	// flag (>= 0 open, < 0 closed). It never blocks.
	Values() [robot.NumChannels]float64
	// Pose returns the same snapshot as a robot.Pose.
	Pose() robot.Pose
	Close() error
}

// Fixed is a Source that always returns the same pose. It needs no hardware.
type Fixed struct {
	pose robot.Pose
}

var (
	_ Source = (*Fixed)(nil)
	_ Source = (*Reader)(nil)
)

// NewFixed returns a Source pinned to pose.
func NewFixed(pose robot.Pose) *Fixed {
	return &Fixed{pose: pose}
}

// NewDummy returns a Source pinned to robot.HomePose with the gripper open.
func NewDummy() *Fixed {
	return NewFixed(robot.HomePose())
}

func (f *Fixed) Values() [robot.NumChannels]float64 { return f.pose.Values() }

func (f *Fixed) Pose() robot.Pose { return f.pose }

func (f *Fixed) Close() error { return nil }
