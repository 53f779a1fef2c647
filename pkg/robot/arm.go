package robot

import (
	"context"
	"fmt"
	"time"

	"github.com/hipsterbrown/feetech-servo/feetech"
)

// ArmConfig describes the servo bus behind the Mello joints.
type ArmConfig struct {
	Port        string
	BaudRate    int
	Calibration Calibration
	Timeout     time.Duration
}

// Arm reads joint positions from a chain of feetech servos.
type Arm struct {
	bus    *feetech.Bus
	group  *feetech.ServoGroup
	joints [NumJoints]*feetech.Servo
	cal    [NumJoints]MotorCalibration
	jog    *feetech.Servo
	jogCal MotorCalibration
}

// NewArm opens the bus and binds a servo to each calibrated joint.
func NewArm(ctx context.Context, cfg ArmConfig) (*Arm, error) {
	if !cfg.Calibration.Complete() {
		return nil, fmt.Errorf("calibration must cover all %d joints", NumJoints)
	}
	if cfg.BaudRate == 0 {
		cfg.BaudRate = DefaultDeviceBaud
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 100 * time.Millisecond
	}

	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     cfg.Port,
		BaudRate: cfg.BaudRate,
		Protocol: feetech.ProtocolSTS,
		Timeout:  cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open bus: %w", err)
	}

	minID, maxID := idRange(cfg.Calibration)
	found, err := bus.Scan(ctx, minID, maxID)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("scan bus: %w", err)
	}
	servos := make(map[int]*feetech.Servo, len(found))
	for _, s := range found {
		servos[s.ID] = feetech.NewServo(bus, s.ID, s.Model)
	}

	a := &Arm{
		bus:   bus,
		group: feetech.NewServoGroupByIDs(bus, cfg.Calibration.MotorIDs()...),
	}
	for i, name := range AllJoints() {
		mc := cfg.Calibration[name]
		servo, ok := servos[mc.ID]
		if !ok {
			bus.Close()
			return nil, fmt.Errorf("servo %d (%s) not found on %s", mc.ID, name, cfg.Port)
		}
		a.joints[i] = servo
		a.cal[i] = mc
	}
	if mc, ok := cfg.Calibration[Jog]; ok {
		servo, ok := servos[mc.ID]
		if !ok {
			bus.Close()
			return nil, fmt.Errorf("jog servo %d not found on %s", mc.ID, cfg.Port)
		}
		a.jog = servo
		a.jogCal = mc
	}

	return a, nil
}

func idRange(cal Calibration) (int, int) {
	minID, maxID := 0, 0
	for _, mc := range cal {
		if minID == 0 || mc.ID < minID {
			minID = mc.ID
		}
		if mc.ID > maxID {
			maxID = mc.ID
		}
	}
	return minID, maxID
}

// Close closes the arm's bus connection.
func (a *Arm) Close() error {
	return a.bus.Close()
}

// Disable disables torque on all joint servos so the arm can be moved by hand.
func (a *Arm) Disable(ctx context.Context) error {
	if err := a.group.DisableAll(ctx); err != nil {
		return err
	}
	if a.jog != nil {
		return a.jog.Disable(ctx)
	}
	return nil
}

// JointPosition reads one joint in degrees. Each call is a single servo query.
func (a *Arm) JointPosition(ctx context.Context, joint int) (float64, error) {
	if joint < 0 || joint >= NumJoints {
		return 0, fmt.Errorf("joint %d out of range", joint)
	}
	raw, err := a.joints[joint].Position(ctx)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", AllJoints()[joint], err)
	}
	return a.cal[joint].Degrees(raw), nil
}

// JogPosition reads the jog servo in degrees, or 0 when none is configured.
func (a *Arm) JogPosition(ctx context.Context) (float64, error) {
	if a.jog == nil {
		return 0, nil
	}
	raw, err := a.jog.Position(ctx)
	if err != nil {
		return 0, fmt.Errorf("read jog: %w", err)
	}
	return a.jogCal.Degrees(raw), nil
}
