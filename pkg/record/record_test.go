package record

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/gwillem/mello/pkg/robot"
)

// Line as printed by the device firmware.
const deviceLine = "{'iniital_positions': [10, 20, 30, 40, 50, 60, 0], " +
	"'measured_positions': [15, 20, 30, 40, 50, 60, -12.5], " +
	"'joint_positions:': [-5, 0, 0, 0, 0, 0, -12.5]}"

func TestDecode_DeviceLine(t *testing.T) {
	rec, err := Decode([]byte(deviceLine + "\r\n"))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	wantInitial := [robot.NumChannels]float64{10, 20, 30, 40, 50, 60, 0}
	if rec.Initial != wantInitial {
		t.Errorf("Initial = %v, want %v", rec.Initial, wantInitial)
	}
	wantMeasured := [robot.NumChannels]float64{15, 20, 30, 40, 50, 60, -12.5}
	if rec.Measured != wantMeasured {
		t.Errorf("Measured = %v, want %v", rec.Measured, wantMeasured)
	}
	wantJoints := [robot.NumChannels]float64{-5, 0, 0, 0, 0, 0, -12.5}
	if rec.Joints != wantJoints {
		t.Errorf("Joints = %v, want %v", rec.Joints, wantJoints)
	}
	if jog, ok := rec.Jog(); !ok || jog != -12.5 {
		t.Errorf("Jog() = %v, %v; want -12.5, true", jog, ok)
	}
}

func TestDecode_FloatForms(t *testing.T) {
	line := "{'iniital_positions': [0.0, -0.0, 1.5, 1e-05, -2.5E+3, 7, 0], " +
		"'measured_positions': [0, 0, 0, 0, 0, 0, 0], " +
		"'joint_positions:': [1.25, 2, 3, 4, 5, 6, 7]}"
	rec, err := Decode([]byte(line))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := [robot.NumChannels]float64{0, 0, 1.5, 1e-05, -2500, 7, 0}
	if rec.Initial != want {
		t.Errorf("Initial = %v, want %v", rec.Initial, want)
	}
}

func TestDecode_IntegerForms(t *testing.T) {
	line := "{'iniital_positions': [00, 0o17, 0b101, 0x1f, -0, +3, 1_000], " +
		"'measured_positions': [0, 0, 0, 0, 0, 0, 0], " +
		"'joint_positions:': [1, 2, 3, 4, 5, 6, 7]}"
	rec, err := Decode([]byte(line))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := [robot.NumChannels]float64{0, 15, 5, 31, 0, 3, 1000}
	if rec.Initial != want {
		t.Errorf("Initial = %v, want %v", rec.Initial, want)
	}
}

func TestDecode_SixJointValues(t *testing.T) {
	line := "{'iniital_positions': [0, 0, 0, 0, 0, 0, 0], " +
		"'measured_positions': [0, 0, 0, 0, 0, 0, 0], " +
		"'joint_positions:': [1, 2, 3, 4, 5, 6]}"
	rec, err := Decode([]byte(line))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if _, ok := rec.Jog(); ok {
		t.Error("six-value joint list should not carry a jog value")
	}
	if rec.Joints[5] != 6 {
		t.Errorf("Joints[5] = %v, want 6", rec.Joints[5])
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"empty", ""},
		{"whitespace", "   \t"},
		{"truncated", "{'iniital_positions': [10, 20, 30"},
		{"garbage", "\x00\x7f@@ boot: rst:0x1"},
		{"list", "[1, 2, 3]"},
		{"block mapping", "iniital_positions: [1]"},
		{"missing joints", "{'iniital_positions': [0, 0, 0, 0, 0, 0, 0], 'measured_positions': [0, 0, 0, 0, 0, 0, 0]}"},
		{"missing initial", "{'measured_positions': [0, 0, 0, 0, 0, 0, 0], 'joint_positions:': [1, 2, 3, 4, 5, 6, 7]}"},
		{"key without colon", "{'iniital_positions': [0, 0, 0, 0, 0, 0, 0], 'measured_positions': [0, 0, 0, 0, 0, 0, 0], 'joint_positions': [1, 2, 3, 4, 5, 6, 7]}"},
		{"unknown key", "{'iniital_positions': [0, 0, 0, 0, 0, 0, 0], 'measured_positions': [0, 0, 0, 0, 0, 0, 0], 'joint_positions:': [1, 2, 3, 4, 5, 6, 7], 'extra': 1}"},
		{"short initial", "{'iniital_positions': [0, 0, 0], 'measured_positions': [0, 0, 0, 0, 0, 0, 0], 'joint_positions:': [1, 2, 3, 4, 5, 6, 7]}"},
		{"short joints", "{'iniital_positions': [0, 0, 0, 0, 0, 0, 0], 'measured_positions': [0, 0, 0, 0, 0, 0, 0], 'joint_positions:': [1, 2, 3, 4, 5]}"},
		{"long joints", "{'iniital_positions': [0, 0, 0, 0, 0, 0, 0], 'measured_positions': [0, 0, 0, 0, 0, 0, 0], 'joint_positions:': [1, 2, 3, 4, 5, 6, 7, 8]}"},
		{"non-numeric", "{'iniital_positions': [0, 0, 0, 0, 0, 0, 0], 'measured_positions': [0, 0, 0, 0, 0, 0, 0], 'joint_positions:': [1, 2, 'x', 4, 5, 6, 7]}"},
		{"quoted number", "{'iniital_positions': [0, 0, 0, 0, 0, 0, 0], 'measured_positions': [0, 0, 0, 0, 0, 0, 0], 'joint_positions:': [1, 2, '3', 4, 5, 6, 7]}"},
		{"python nan", "{'iniital_positions': [0, 0, 0, 0, 0, 0, 0], 'measured_positions': [0, 0, 0, 0, 0, 0, 0], 'joint_positions:': [1, 2, nan, 4, 5, 6, 7]}"},
		{"yaml inf", "{'iniital_positions': [0, 0, 0, 0, 0, 0, 0], 'measured_positions': [0, 0, 0, 0, 0, 0, 0], 'joint_positions:': [1, 2, .inf, 4, 5, 6, 7]}"},
		{"null", "{'iniital_positions': [0, 0, 0, 0, 0, 0, 0], 'measured_positions': [0, 0, 0, 0, 0, 0, 0], 'joint_positions:': [1, 2, null, 4, 5, 6, 7]}"},
		{"bool", "{'iniital_positions': [0, 0, 0, 0, 0, 0, 0], 'measured_positions': [0, 0, 0, 0, 0, 0, 0], 'joint_positions:': [1, 2, true, 4, 5, 6, 7]}"},
		{"nested", "{'iniital_positions': [0, 0, 0, 0, 0, 0, 0], 'measured_positions': [0, 0, 0, 0, 0, 0, 0], 'joint_positions:': [[1], 2, 3, 4, 5, 6, 7]}"},
		{"not a list", "{'iniital_positions': [0, 0, 0, 0, 0, 0, 0], 'measured_positions': [0, 0, 0, 0, 0, 0, 0], 'joint_positions:': 5}"},
		{"leading zero", "{'iniital_positions': [0, 0, 0, 0, 0, 0, 0], 'measured_positions': [0, 0, 0, 0, 0, 0, 0], 'joint_positions:': [1, 2, 017, 4, 5, 6, 7]}"},
		{"negative leading zero", "{'iniital_positions': [0, 0, 0, 0, 0, 0, 0], 'measured_positions': [0, 0, 0, 0, 0, 0, 0], 'joint_positions:': [1, 2, -017, 4, 5, 6, 7]}"},
		{"underscored leading zero", "{'iniital_positions': [0, 0, 0, 0, 0, 0, 0], 'measured_positions': [0, 0, 0, 0, 0, 0, 0], 'joint_positions:': [1, 2, 0_7, 4, 5, 6, 7]}"},
		{"duplicate key", "{'iniital_positions': [0, 0, 0, 0, 0, 0, 0], 'iniital_positions': [0, 0, 0, 0, 0, 0, 0], 'measured_positions': [0, 0, 0, 0, 0, 0, 0], 'joint_positions:': [1, 2, 3, 4, 5, 6, 7]}"},
	}

	for _, tt := range tests {
		_, err := Decode([]byte(tt.line))
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("%s: error %v does not wrap ErrMalformed", tt.name, err)
		}
	}
}

func TestEncode_Format(t *testing.T) {
	initial := [robot.NumChannels]float64{10, 20, 30, 40, 50, 60, 0}
	measured := [robot.NumChannels]float64{15, 20, 30, 40, 50, 60, -12.5}
	joints := [robot.NumChannels]float64{-5, 0, 0, 0, 0, 0, -12.5}

	got := string(Encode(&initial, &measured, &joints))
	if got != deviceLine+"\n" {
		t.Errorf("Encode =\n%q\nwant\n%q", got, deviceLine+"\n")
	}
	if strings.Count(got, "\n") != 1 {
		t.Errorf("Encode must produce exactly one line, got %q", got)
	}
}

func TestEncodeDecode(t *testing.T) {
	initial := [robot.NumChannels]float64{-3.0517578125, 0.1, 1e21, math.Copysign(0, -1), 359.999, -180, 0}
	measured := [robot.NumChannels]float64{1, 2, 3, 4, 5, 6, 7}
	joints := [robot.NumChannels]float64{1.0 / 3, -2.0 / 3, 1e-9, 42, -42, 0.5, -1}

	rec, err := Decode(Encode(&initial, &measured, &joints))
	if err != nil {
		t.Fatalf("Decode(Encode(...)): %v", err)
	}
	if rec.Initial != initial {
		t.Errorf("Initial = %v, want %v", rec.Initial, initial)
	}
	if rec.Joints != joints || !rec.HasJog {
		t.Errorf("Joints = %v (jog %v), want %v", rec.Joints, rec.HasJog, joints)
	}
}
