package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.Serial.Port != "/dev/ttyUSB0" || cfg.Serial.Baud != 115200 {
		t.Errorf("serial defaults = %+v", cfg.Serial)
	}
	if cfg.Motion.ToleranceDeg != 5 {
		t.Errorf("tolerance = %.1f, want 5", cfg.Motion.ToleranceDeg)
	}
	if cfg.Motion.Limits[1].Min != -120 || cfg.Motion.Limits[1].Max != 0 {
		t.Errorf("J2 limits = %+v", cfg.Motion.Limits[1])
	}
	if cfg.Motion.HomeSpeed != 50 || cfg.Motion.ManualSpeed != 30 {
		t.Errorf("speeds = %d/%d, want 50/30", cfg.Motion.HomeSpeed, cfg.Motion.ManualSpeed)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Serial.Port != Default().Serial.Port {
		t.Errorf("missing file should keep defaults, got %+v", cfg.Serial)
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cobot.yaml")
	body := []byte("serial:\n  port: /dev/ttyACM1\nmotion:\n  manual_speed: 20\nweb:\n  port: \"9090\"\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Serial.Port != "/dev/ttyACM1" {
		t.Errorf("port = %q", cfg.Serial.Port)
	}
	if cfg.Motion.ManualSpeed != 20 {
		t.Errorf("manual speed = %d, want 20", cfg.Motion.ManualSpeed)
	}
	if cfg.Web.Port != "9090" {
		t.Errorf("web port = %q", cfg.Web.Port)
	}
	// Untouched values keep their defaults
	if cfg.Motion.HomeSpeed != 50 {
		t.Errorf("home speed = %d, want default 50", cfg.Motion.HomeSpeed)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("COBOT_SERIAL_PORT", "/dev/ttyUSB7")
	t.Setenv("STT_GATEWAY_URL", "ws://stt.local:9000/v1")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Serial.Port != "/dev/ttyUSB7" {
		t.Errorf("port = %q", cfg.Serial.Port)
	}
	if cfg.Speech.GatewayURL != "ws://stt.local:9000/v1" {
		t.Errorf("gateway = %q", cfg.Speech.GatewayURL)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Motion.Limits[0] = JointRange{Min: 10, Max: -10}
	if err := cfg.Validate(); err == nil {
		t.Error("inverted limits must fail validation")
	}

	cfg = Default()
	cfg.Motion.ManualSpeed = 150
	if err := cfg.Validate(); err == nil {
		t.Error("speed above 100 must fail validation")
	}

	cfg = Default()
	cfg.Motion.ToleranceDeg = -1
	if err := cfg.Validate(); err == nil {
		t.Error("negative tolerance must fail validation")
	}
}
