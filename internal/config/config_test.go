package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if !strings.Contains(configDir, "rnet") {
		t.Errorf("GetConfigDir() = %v, should contain 'rnet'", configDir)
	}

	if runtime.GOOS == "linux" && os.Getenv("XDG_CONFIG_HOME") == "" {
		if !strings.Contains(configDir, ".config") {
			t.Errorf("Unix config dir should contain '.config', got: %v", configDir)
		}
	}
}

func TestGetConfigDir_XDG(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux")
	}
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	dir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if dir != filepath.Join("/tmp/xdg", "rnet") {
		t.Errorf("GetConfigDir() = %v", dir)
	}

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if filepath.Base(path) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", path)
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	if cfg.Version != CurrentVersion {
		t.Errorf("Version = %v, want %v", cfg.Version, CurrentVersion)
	}
	if cfg.Transport.Type != TransportSerial {
		t.Errorf("Transport.Type = %q, want serial", cfg.Transport.Type)
	}
	if cfg.Transport.BaudRate != 19200 {
		t.Errorf("BaudRate = %d, want 19200", cfg.Transport.BaudRate)
	}
	if cfg.Transport.ReadTimeout != time.Second {
		t.Errorf("ReadTimeout = %v, want 1s", cfg.Transport.ReadTimeout)
	}
	if cfg.Controllers == nil {
		t.Error("Controllers should not be nil")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Listen != DefaultListen {
		t.Errorf("Listen = %q, want %q", cfg.Server.Listen, DefaultListen)
	}
}

func TestParse(t *testing.T) {
	doc := `
version: 1
transport:
  type: tcp
  address: bridge.local:4001
  read_timeout: 250ms
server:
  listen: "127.0.0.1:9000"
  announce: true
controllers:
  1:
    name: Main
    zones:
      1: Kitchen
      6: Patio
`
	cfg, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Transport.Type != TransportTCP || cfg.Transport.Address != "bridge.local:4001" {
		t.Errorf("transport = %+v", cfg.Transport)
	}
	if cfg.Transport.ReadTimeout != 250*time.Millisecond {
		t.Errorf("ReadTimeout = %v, want 250ms", cfg.Transport.ReadTimeout)
	}
	if cfg.Transport.BaudRate != DefaultBaudRate {
		t.Errorf("BaudRate default not applied: %d", cfg.Transport.BaudRate)
	}
	if cfg.ReconnectDelay != DefaultReconnectDelay {
		t.Errorf("ReconnectDelay = %v, want default", cfg.ReconnectDelay)
	}
	if !cfg.Server.Announce || cfg.Server.Listen != "127.0.0.1:9000" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if got := cfg.ZoneLabel(1, 6); got != "Patio" {
		t.Errorf("ZoneLabel(1, 6) = %q, want Patio", got)
	}
	if got := cfg.ZoneLabel(2, 1); got != "" {
		t.Errorf("ZoneLabel(2, 1) = %q, want empty", got)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad version", "version: 2\n"},
		{"unknown transport", "version: 1\ntransport:\n  type: usb\n"},
		{"zero controller", "version: 1\ncontrollers:\n  0:\n    name: x\n"},
		{"negative timeout", "version: 1\ntransport:\n  read_timeout: -1s\n"},
		{"malformed yaml", "version: [1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.doc)); err == nil {
				t.Error("Parse() error = nil, want error")
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := NewConfig()
	cfg.Transport.Device = "/dev/ttyUSB1"
	cfg.SetZoneLabel(2, 3, "Den")

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("file mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Transport.Device != "/dev/ttyUSB1" {
		t.Errorf("Device = %q", loaded.Transport.Device)
	}
	if loaded.ZoneLabel(2, 3) != "Den" {
		t.Errorf("ZoneLabel(2, 3) = %q, want Den", loaded.ZoneLabel(2, 3))
	}
	if loaded.Transport.ReadTimeout != time.Second {
		t.Errorf("ReadTimeout = %v after round trip", loaded.Transport.ReadTimeout)
	}
}

func TestSetZoneLabel_NilMaps(t *testing.T) {
	cfg := &Config{}
	cfg.SetZoneLabel(1, 1, "Office")
	if cfg.ZoneLabel(1, 1) != "Office" {
		t.Error("label not stored")
	}
	cfg.Controllers[3] = nil
	if cfg.ZoneLabel(3, 1) != "" {
		t.Error("nil controller should have no labels")
	}
	cfg.SetZoneLabel(3, 1, "Gym")
	if cfg.ZoneLabel(3, 1) != "Gym" {
		t.Error("label not stored on nil controller entry")
	}
}

func TestSetZoneLabel_EmptyClears(t *testing.T) {
	cfg := NewConfig()
	cfg.SetZoneLabel(1, 2, "Patio")
	cfg.SetZoneLabel(1, 2, "")
	if got := cfg.ZoneLabel(1, 2); got != "" {
		t.Errorf("ZoneLabel() = %q after clearing", got)
	}
	// Clearing an unknown controller is a no-op
	cfg.SetZoneLabel(9, 1, "")
	if _, ok := cfg.Controllers[9]; ok {
		t.Error("clearing created a controller entry")
	}
}
