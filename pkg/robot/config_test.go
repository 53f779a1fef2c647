package robot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigFrom_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mello.json")
	if err := os.WriteFile(path, []byte(`{"host": {"port": "/dev/ttyACM0"}}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	if cfg.Host.Port != "/dev/ttyACM0" {
		t.Errorf("host.port = %q", cfg.Host.Port)
	}
	if cfg.Host.Baud != DefaultHostBaud {
		t.Errorf("host.baud = %d, want %d", cfg.Host.Baud, DefaultHostBaud)
	}
	if cfg.Device.Hz != DefaultDeviceHz {
		t.Errorf("device.hz = %d, want %d", cfg.Device.Hz, DefaultDeviceHz)
	}
	if cfg.MQTT.Topic != DefaultMQTTTopic {
		t.Errorf("mqtt.topic = %q", cfg.MQTT.Topic)
	}
	if cfg.Device.SignTable() != DefaultSigns {
		t.Errorf("signs = %v, want default", cfg.Device.SignTable())
	}
	if cfg.Device.Button.Enabled() {
		t.Error("button should be disabled by default")
	}
}

func TestLoadConfigFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"bad sign", `{"device": {"signs": [1, 1, 2, 1, 1, 1, 1]}}`, "device.signs[2]"},
		{"negative baud", `{"host": {"baud": -1}}`, "host.baud"},
		{"negative hz", `{"device": {"hz": -5}}`, "device.hz"},
	}

	for _, tt := range tests {
		path := filepath.Join(t.TempDir(), "mello.json")
		if err := os.WriteFile(path, []byte(tt.data), 0644); err != nil {
			t.Fatal(err)
		}
		_, err := LoadConfigFrom(path)
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: error %q does not mention %q", tt.name, err, tt.want)
		}
	}
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mello.json")

	cfg := NewConfig()
	cfg.Host.Port = "/dev/ttyUSB1"
	cfg.Device.Port = "/dev/ttyACM3"
	cfg.Device.Calibration = DefaultCalibration()
	signs := [NumChannels]float64{1, 1, 1, 1, 1, 1, -1}
	cfg.Device.Signs = &signs
	cfg.Device.Button = ButtonConfig{Chip: "gpiochip0", Line: 17}

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	got, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	if got.Host.Port != "/dev/ttyUSB1" || got.Device.Port != "/dev/ttyACM3" {
		t.Errorf("ports = %q, %q", got.Host.Port, got.Device.Port)
	}
	if !got.Device.IsCalibrated() {
		t.Error("device should be calibrated")
	}
	if got.Device.SignTable() != signs {
		t.Errorf("signs = %v, want %v", got.Device.SignTable(), signs)
	}
	if !got.Device.Button.Enabled() || got.Device.Button.Line != 17 {
		t.Errorf("button = %+v", got.Device.Button)
	}
}
