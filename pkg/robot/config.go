package robot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

const DefaultConfigFile = "serialbot.json"

// Defaults used when the config file or flags leave a value empty.
const (
	DefaultPort     = "/dev/serial0"
	DefaultBaudRate = 115200
	DefaultProfile  = "planar"
)

// Config holds the robot configuration
type Config struct {
	Port      string          `json:"port"`
	BaudRate  int             `json:"baud_rate"`
	Profile   string          `json:"profile"`
	Overrides ProfileOverride `json:"overrides,omitzero"`
	Telemetry TelemetryConfig `json:"telemetry,omitzero"`
}

// ProfileOverride replaces selected values of the named profile. Zero values
// leave the profile default in place.
type ProfileOverride struct {
	InitialSpeed    float64 `json:"initial_speed,omitempty"`
	SpeedStep       float64 `json:"speed_step,omitempty"`
	SpeedRange      *Range  `json:"speed_range,omitempty"`
	InitialYawRate  float64 `json:"initial_yaw_rate,omitempty"`
	YawRateStep     float64 `json:"yaw_rate_step,omitempty"`
	YawRateRange    *Range  `json:"yaw_rate_range,omitempty"`
	StopAlsoDisarms *bool   `json:"stop_also_disarms,omitempty"`
	SettleDelayMs   int     `json:"settle_delay_ms,omitempty"`
}

// TelemetryConfig configures optional MQTT publication of session events.
type TelemetryConfig struct {
	Broker   string `json:"broker,omitempty"`
	Topic    string `json:"topic,omitempty"`
	ClientID string `json:"client_id,omitempty"`
}

// Enabled returns true if a broker is configured
func (t TelemetryConfig) Enabled() bool {
	return t.Broker != ""
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() *Config {
	return &Config{
		Port:     DefaultPort,
		BaudRate: DefaultBaudRate,
		Profile:  DefaultProfile,
	}
}

// ApplyDefaults fills empty fields with defaults
func (c *Config) ApplyDefaults() {
	if c.Port == "" {
		c.Port = DefaultPort
	}
	if c.BaudRate == 0 {
		c.BaudRate = DefaultBaudRate
	}
	if c.Profile == "" {
		c.Profile = DefaultProfile
	}
	if c.Telemetry.Enabled() {
		if c.Telemetry.Topic == "" {
			c.Telemetry.Topic = "serialbot/teleop"
		}
		if c.Telemetry.ClientID == "" {
			c.Telemetry.ClientID = "serialbot-teleop"
		}
	}
}

// Validate checks values that would make the link unusable
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("no serial port configured")
	}
	if c.BaudRate <= 0 {
		return fmt.Errorf("invalid baud rate %d", c.BaudRate)
	}
	for name, r := range map[string]*Range{"speed_range": c.Overrides.SpeedRange, "yaw_rate_range": c.Overrides.YawRateRange} {
		if r == nil {
			continue
		}
		if err := r.Validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// LoadConfig loads configuration from the default config file
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(DefaultConfigFile)
}

// LoadConfigFrom loads configuration from a specific file
func LoadConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// Save saves configuration to the default config file
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigFile)
}

// SaveTo saves configuration to a specific file
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ConfigExists returns true if the default config file exists
func ConfigExists() bool {
	_, err := os.Stat(DefaultConfigFile)
	return err == nil
}
