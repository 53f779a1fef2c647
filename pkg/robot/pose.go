package robot

import "math"

// Gripper is the binary gripper command sent to the robot.
type Gripper int

const (
	GripperClosed Gripper = -1
	GripperOpen   Gripper = 1
)

// GripperFromRaw thresholds a raw jog value. Zero counts as open.
func GripperFromRaw(raw float64) Gripper {
	if raw >= 0 {
		return GripperOpen
	}
	return GripperClosed
}

func (g Gripper) String() string {
	if g == GripperClosed {
		return "Closed"
	}
	return "Open"
}

// Pose is a joint-space robot pose with a gripper command.
type Pose struct {
	Joints  [NumJoints]float64 // radians
	Gripper Gripper
}

// HomePose returns the fixed home pose used by the stand-in source.
func HomePose() Pose {
	return Pose{
		Joints:  [NumJoints]float64{0, -math.Pi / 2, math.Pi / 2, -math.Pi / 2, -math.Pi / 2, 0},
		Gripper: GripperOpen,
	}
}

// ZeroPose returns the cold-start pose of the hardware reader.
func ZeroPose() Pose {
	return Pose{Gripper: GripperOpen}
}

// Values flattens the pose into six joint radians followed by the gripper flag.
func (p Pose) Values() [NumChannels]float64 {
	var v [NumChannels]float64
	copy(v[:], p.Joints[:])
	v[JogChannel] = float64(p.Gripper)
	return v
}

// Degrees returns the joint angles in degrees.
func (p Pose) Degrees() [NumJoints]float64 {
	var d [NumJoints]float64
	for i, r := range p.Joints {
		d[i] = RadiansToDegrees(r)
	}
	return d
}

// DegreesToRadians converts degrees to radians.
func DegreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// RadiansToDegrees converts radians to degrees.
func RadiansToDegrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}
