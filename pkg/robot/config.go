package robot

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultConfigFile is read when no --config path is given.
const DefaultConfigFile = "mello.json"

// Defaults applied by LoadConfigFrom and NewConfig.
const (
	DefaultHostBaud   = 115200
	DefaultDeviceBaud = 1_000_000
	DefaultDeviceHz   = 50
	DefaultMQTTTopic  = "mello/pose"
)

// DefaultSigns is the per-channel sign table of the Mello device.
var DefaultSigns = [NumChannels]float64{-1, -1, -1, -1, -1, -1, 1}

// Config holds the Mello configuration
type Config struct {
	Host   HostConfig   `json:"host"`
	Device DeviceConfig `json:"device"`
	MQTT   MQTTConfig   `json:"mqtt"`
}

// HostConfig holds the serial link the host reads records from
type HostConfig struct {
	Port string `json:"port"`
	Baud int    `json:"baud,omitempty"`
}

// DeviceConfig holds configuration for the device-side tracker
type DeviceConfig struct {
	Port        string                `json:"port"`
	Baud        int                   `json:"baud,omitempty"`
	Output      string                `json:"output,omitempty"`
	OutputBaud  int                   `json:"output_baud,omitempty"`
	Hz          int                   `json:"hz,omitempty"`
	Signs       *[NumChannels]float64 `json:"signs,omitempty"`
	Calibration Calibration           `json:"calibration,omitempty"`
	Button      ButtonConfig          `json:"button"`
}

// ButtonConfig locates the zero/stream push-button on a GPIO chip
type ButtonConfig struct {
	Chip string `json:"chip,omitempty"`
	Line int    `json:"line,omitempty"`
}

// MQTTConfig holds the broker the bridge publishes to
type MQTTConfig struct {
	Broker   string `json:"broker,omitempty"`
	Topic    string `json:"topic,omitempty"`
	ClientID string `json:"client_id,omitempty"`
}

// NewConfig returns a configuration with all defaults applied.
func NewConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// IsCalibrated returns true if every joint has calibration data
func (d *DeviceConfig) IsCalibrated() bool {
	return d.Calibration.Complete()
}

// SignTable returns the configured sign table or the default one.
func (d *DeviceConfig) SignTable() [NumChannels]float64 {
	if d.Signs == nil {
		return DefaultSigns
	}
	return *d.Signs
}

// Enabled reports whether a GPIO button is configured
func (b ButtonConfig) Enabled() bool {
	return b.Chip != ""
}

// LoadConfigFrom loads configuration from a specific file
func LoadConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Host.Baud < 0 {
		return fmt.Errorf("host.baud must be > 0")
	}
	if c.Device.Hz < 0 {
		return fmt.Errorf("device.hz must be > 0")
	}
	if c.Device.Signs != nil {
		for i, s := range c.Device.Signs {
			if s != 1 && s != -1 {
				return fmt.Errorf("device.signs[%d] = %v, want 1 or -1", i, s)
			}
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Host.Baud == 0 {
		c.Host.Baud = DefaultHostBaud
	}
	if c.Device.Baud == 0 {
		c.Device.Baud = DefaultDeviceBaud
	}
	if c.Device.OutputBaud == 0 {
		c.Device.OutputBaud = DefaultHostBaud
	}
	if c.Device.Hz == 0 {
		c.Device.Hz = DefaultDeviceHz
	}
	if c.MQTT.Topic == "" {
		c.MQTT.Topic = DefaultMQTTTopic
	}
}

// SaveTo saves configuration to a specific file
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
