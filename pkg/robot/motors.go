// Package robot provides the joint model shared by the Mello device and the
// host: joint names, poses, unit conversions, servo calibration and config.
package robot

// MotorName identifies a motor in the arm.
type MotorName string

// Joint names for the six-axis UR arm, plus the jog channel.
const (
	Base     MotorName = "base"
	Shoulder MotorName = "shoulder"
	Elbow    MotorName = "elbow"
	Wrist1   MotorName = "wrist_1"
	Wrist2   MotorName = "wrist_2"
	Wrist3   MotorName = "wrist_3"
	Jog      MotorName = "jog"
)

// NumJoints is the number of rotational joints on the arm.
const NumJoints = 6

// NumChannels is the number of values per record: six joints and the jog channel.
const NumChannels = NumJoints + 1

// JogChannel is the index of the jog/gripper value in a record.
const JogChannel = NumJoints

// AllJoints returns the joint names in record order (indices 0-5).
func AllJoints() []MotorName {
	return []MotorName{
		Base,
		Shoulder,
		Elbow,
		Wrist1,
		Wrist2,
		Wrist3,
	}
}

// AllChannels returns the joint names followed by the jog channel.
func AllChannels() []MotorName {
	return append(AllJoints(), Jog)
}
