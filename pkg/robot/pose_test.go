package robot

import (
	"math"
	"testing"
)

func TestGripperFromRaw(t *testing.T) {
	tests := []struct {
		raw  float64
		want Gripper
	}{
		{1, GripperOpen},
		{0, GripperOpen}, // boundary is open
		{math.Copysign(0, -1), GripperOpen},
		{-0.001, GripperClosed},
		{-100, GripperClosed},
		{250, GripperOpen},
	}

	for _, tt := range tests {
		if got := GripperFromRaw(tt.raw); got != tt.want {
			t.Errorf("GripperFromRaw(%v) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestPose_Values(t *testing.T) {
	p := HomePose()
	v := p.Values()

	want := [NumChannels]float64{0, -math.Pi / 2, math.Pi / 2, -math.Pi / 2, -math.Pi / 2, 0, 1}
	if v != want {
		t.Errorf("HomePose().Values() = %v, want %v", v, want)
	}

	p.Gripper = GripperClosed
	if got := p.Values()[JogChannel]; got != -1 {
		t.Errorf("closed gripper flag = %v, want -1", got)
	}
}

func TestZeroPose(t *testing.T) {
	p := ZeroPose()
	if p.Joints != [NumJoints]float64{} {
		t.Errorf("ZeroPose joints = %v", p.Joints)
	}
	if p.Gripper != GripperOpen {
		t.Errorf("ZeroPose gripper = %v, want open", p.Gripper)
	}
}

func TestPose_Degrees(t *testing.T) {
	d := HomePose().Degrees()
	want := [NumJoints]float64{0, -90, 90, -90, -90, 0}
	for i := range want {
		if math.Abs(d[i]-want[i]) > 1e-9 {
			t.Errorf("Degrees()[%d] = %f, want %f", i, d[i], want[i])
		}
	}
}

func TestDegreesRadiansRoundTrip(t *testing.T) {
	for _, deg := range []float64{-360, -30, 0, 10, 45, 180} {
		back := RadiansToDegrees(DegreesToRadians(deg))
		if math.Abs(back-deg) > 1e-9 {
			t.Errorf("round trip %f -> %f", deg, back)
		}
	}
	if got := DegreesToRadians(180); got != math.Pi {
		t.Errorf("DegreesToRadians(180) = %v, want pi", got)
	}
}

func TestAllChannels(t *testing.T) {
	ch := AllChannels()
	if len(ch) != NumChannels {
		t.Fatalf("AllChannels() has %d entries, want %d", len(ch), NumChannels)
	}
	if ch[JogChannel] != Jog {
		t.Errorf("AllChannels()[%d] = %s, want jog", JogChannel, ch[JogChannel])
	}
	// AllJoints must not be aliased by AllChannels
	if len(AllJoints()) != NumJoints {
		t.Errorf("AllJoints() has %d entries", len(AllJoints()))
	}
}
