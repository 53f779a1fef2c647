package robot

// TicksPerRevolution is the encoder resolution of an STS3215 servo.
const TicksPerRevolution = 4096

// DefaultHomingOffset is the servo mid-position used when no offset is recorded.
const DefaultHomingOffset = TicksPerRevolution / 2

// MotorCalibration holds calibration data for a single motor.
type MotorCalibration struct {
	ID           int `json:"id"`
	HomingOffset int `json:"homing_offset"`
}

// Calibration holds calibration data for all motors, keyed by motor name.
type Calibration map[MotorName]MotorCalibration

// DefaultCalibration maps joints to servo IDs 1-6 at mid-position, without a jog servo.
func DefaultCalibration() Calibration {
	cal := make(Calibration, NumJoints)
	for i, name := range AllJoints() {
		cal[name] = MotorCalibration{ID: i + 1, HomingOffset: DefaultHomingOffset}
	}
	return cal
}

// Degrees converts a raw servo position to degrees relative to the homing offset.
func (c MotorCalibration) Degrees(raw int) float64 {
	return float64(raw-c.HomingOffset) * 360.0 / TicksPerRevolution
}

// MotorIDs returns the servo IDs for all joints in the calibration, in joint order.
// The jog servo is not included.
func (c Calibration) MotorIDs() []int {
	ids := make([]int, 0, len(c))
	for _, name := range AllJoints() {
		if mc, ok := c[name]; ok {
			ids = append(ids, mc.ID)
		}
	}
	return ids
}

// Complete reports whether every joint has a calibration entry.
func (c Calibration) Complete() bool {
	for _, name := range AllJoints() {
		if _, ok := c[name]; !ok {
			return false
		}
	}
	return true
}
