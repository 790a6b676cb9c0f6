// Package config provides configuration for go-cobot commands.
//
// Configuration is loaded from an optional YAML file layered over built-in
// defaults, with a small set of environment variable overrides for the
// values that change between machines (serial port, STT credentials).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SerialConfig describes the serial link to the arm.
type SerialConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// JointRange is an inclusive per-joint bound in degrees.
type JointRange struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// MotionConfig holds the fixed motion parameters of the deployment.
type MotionConfig struct {
	// Limits are the hard per-joint safety bounds, joints 1..6 in order.
	Limits [6]JointRange `yaml:"limits"`

	// ToleranceDeg widens the limits into the command window used to judge
	// whether a current reading is close enough to trust for relative moves.
	ToleranceDeg float64 `yaml:"tolerance_deg"`

	// HomeAngles is the home pose in degrees, joints 1..6.
	HomeAngles [6]float64 `yaml:"home_angles"`

	HomeSpeed   int `yaml:"home_speed"`   // 0..100, startup homing move
	ManualSpeed int `yaml:"manual_speed"` // 0..100, per-joint voice moves

	SettleMS      int `yaml:"settle_ms"`       // pause after each joint move
	ConnectWaitMS int `yaml:"connect_wait_ms"` // pause after opening the port
	HomeWaitMS    int `yaml:"home_wait_ms"`    // pause after the homing move

	ReadRetries int `yaml:"read_retries"`  // angle read attempts
	ReadDelayMS int `yaml:"read_delay_ms"` // pause between attempts
}

// SpeechConfig describes the streaming STT gateway.
type SpeechConfig struct {
	GatewayURL string `yaml:"gateway_url"`
	APIKey     string `yaml:"api_key"`
	Language   string `yaml:"language"`
	SampleRate int    `yaml:"sample_rate"`
}

// WebConfig describes the dashboard server.
type WebConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    string `yaml:"port"`
}

// Config is the root configuration for go-cobot.
type Config struct {
	LogLevel string       `yaml:"log_level"`
	Serial   SerialConfig `yaml:"serial"`
	Motion   MotionConfig `yaml:"motion"`
	Speech   SpeechConfig `yaml:"speech"`
	Web      WebConfig    `yaml:"web"`
}

// Default returns the built-in configuration for a myCobot 280 deployment.
func Default() Config {
	return Config{
		LogLevel: "info",
		Serial: SerialConfig{
			Port: "/dev/ttyUSB0",
			Baud: 115200,
		},
		Motion: MotionConfig{
			Limits: [6]JointRange{
				{Min: 0, Max: 150},
				{Min: -120, Max: 0},
				{Min: 0, Max: 150},
				{Min: -135, Max: 135},
				{Min: -120, Max: 120},
				{Min: -160, Max: 160},
			},
			ToleranceDeg:  5,
			HomeAngles:    [6]float64{119.17, -94.83, 148.35, 26.71, -75.14, 117.59},
			HomeSpeed:     50,
			ManualSpeed:   30,
			SettleMS:      1000,
			ConnectWaitMS: 2000,
			HomeWaitMS:    5000,
			ReadRetries:   6,
			ReadDelayMS:   300,
		},
		Speech: SpeechConfig{
			Language:   "es-ES",
			SampleRate: 16000,
		},
		Web: WebConfig{
			Enabled: true,
			Port:    "8080",
		},
	}
}

// Load reads the config file at path over the defaults.
// An empty path or a missing file yields the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides machine-specific values from the environment.
func applyEnv(cfg *Config) {
	if port := os.Getenv("COBOT_SERIAL_PORT"); port != "" {
		cfg.Serial.Port = port
	}
	if url := os.Getenv("STT_GATEWAY_URL"); url != "" {
		cfg.Speech.GatewayURL = url
	}
	if key := os.Getenv("STT_API_KEY"); key != "" {
		cfg.Speech.APIKey = key
	}
	if lvl := os.Getenv("COBOT_LOG_LEVEL"); lvl != "" {
		cfg.LogLevel = lvl
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	for i, r := range c.Motion.Limits {
		if r.Min > r.Max {
			return fmt.Errorf("config: joint %d limits inverted: min %.2f > max %.2f", i+1, r.Min, r.Max)
		}
	}
	if c.Motion.ToleranceDeg < 0 {
		return fmt.Errorf("config: tolerance must be >= 0, got %.2f", c.Motion.ToleranceDeg)
	}
	if c.Motion.ManualSpeed < 0 || c.Motion.ManualSpeed > 100 {
		return fmt.Errorf("config: manual speed must be 0..100, got %d", c.Motion.ManualSpeed)
	}
	if c.Motion.HomeSpeed < 0 || c.Motion.HomeSpeed > 100 {
		return fmt.Errorf("config: home speed must be 0..100, got %d", c.Motion.HomeSpeed)
	}
	return nil
}
