package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validConfig = `
# heading sender configuration
SOURCE=mag
I2C_BUS=2
MPU_I2C_ADDR=0x68
MAG_FORWARD_AXIS=-y
MAG_LATERAL_AXIS=-x
AXIS_INVERTED=false
MOUNT_OFFSET_DEG=90.0
DECLINATION_DEG=0.1
TALKER_ID=HE
UDP_DESTINATIONS=127.0.0.1:2021, 127.0.0.1:2022
SERIAL_BAUD=4800
SAMPLE_INTERVAL=100
MQTT_BROKER=tcp://localhost:1883
TOPIC_HEADING=heading/true
WEB_SERVER_PORT=8080
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "heading_config.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Source != "mag" {
		t.Errorf("Source = %q, want mag", cfg.Source)
	}
	if cfg.MPUI2CAddr != 0x68 {
		t.Errorf("MPUI2CAddr = 0x%X, want 0x68", cfg.MPUI2CAddr)
	}
	if cfg.MagForwardAxis != "-y" || cfg.MagLateralAxis != "-x" {
		t.Errorf("axis mapping = %q/%q, want -y/-x", cfg.MagForwardAxis, cfg.MagLateralAxis)
	}
	if cfg.MountOffsetDeg != 90.0 || cfg.DeclinationDeg != 0.1 {
		t.Errorf("offsets = %v/%v, want 90/0.1", cfg.MountOffsetDeg, cfg.DeclinationDeg)
	}
	if cfg.TalkerID != "HE" {
		t.Errorf("TalkerID = %q, want HE", cfg.TalkerID)
	}
	want := []string{"127.0.0.1:2021", "127.0.0.1:2022"}
	if len(cfg.UDPDestinations) != len(want) {
		t.Fatalf("UDPDestinations = %v, want %v", cfg.UDPDestinations, want)
	}
	for i, ep := range want {
		if cfg.UDPDestinations[i] != ep {
			t.Errorf("UDPDestinations[%d] = %q, want %q", i, cfg.UDPDestinations[i], ep)
		}
	}
	if cfg.SampleInterval != 100 {
		t.Errorf("SampleInterval = %d, want 100", cfg.SampleInterval)
	}
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	_, err := Load(writeConfig(t, validConfig+"\nBOGUS_KEY=1\n"))
	if err == nil || !strings.Contains(err.Error(), "unknown config key") {
		t.Fatalf("err = %v, want unknown config key error", err)
	}
}

func TestLoadRejectsBadTalker(t *testing.T) {
	bad := strings.Replace(validConfig, "TALKER_ID=HE", "TALKER_ID=HDG", 1)
	if _, err := Load(writeConfig(t, bad)); err == nil {
		t.Fatal("three-character TALKER_ID accepted, want error")
	}
}

func TestLoadRejectsOutOfRangeInterval(t *testing.T) {
	bad := strings.Replace(validConfig, "SAMPLE_INTERVAL=100", "SAMPLE_INTERVAL=1000", 1)
	if _, err := Load(writeConfig(t, bad)); err == nil {
		t.Fatal("1000 ms SAMPLE_INTERVAL accepted, want error (4-200 Hz)")
	}
}

func TestLoadRejectsPortlessDestination(t *testing.T) {
	bad := strings.Replace(validConfig,
		"UDP_DESTINATIONS=127.0.0.1:2021, 127.0.0.1:2022",
		"UDP_DESTINATIONS=127.0.0.1", 1)
	if _, err := Load(writeConfig(t, bad)); err == nil {
		t.Fatal("port-less UDP destination accepted, want error")
	}
}

func TestLoadRequiresDestinations(t *testing.T) {
	bad := strings.Replace(validConfig,
		"UDP_DESTINATIONS=127.0.0.1:2021, 127.0.0.1:2022", "", 1)
	_, err := Load(writeConfig(t, bad))
	if err == nil || !strings.Contains(err.Error(), "UDP_DESTINATIONS") {
		t.Fatalf("err = %v, want missing UDP_DESTINATIONS error", err)
	}
}
