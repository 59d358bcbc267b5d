package config

import (
	"fmt"
	"time"
)

// CurrentVersion is the config file format version
const CurrentVersion = 1

// Transport types
const (
	TransportSerial = "serial"
	TransportTCP    = "tcp"
)

// Default values applied by NewConfig and Load
const (
	DefaultBaudRate       = 19200
	DefaultReadTimeout    = time.Second
	DefaultReconnectDelay = 5 * time.Second
	DefaultListen         = ":8080"
	DefaultInstanceName   = "RNET bus"
)

// Config represents the entire configuration file.
type Config struct {
	Version        int                 `yaml:"version"`
	Transport      Transport           `yaml:"transport"`
	Server         Server              `yaml:"server"`
	ReconnectDelay time.Duration       `yaml:"reconnect_delay"`
	Controllers    map[int]*Controller `yaml:"controllers,omitempty"` // Keyed by controller number (1-based)
}

// Transport selects and configures the link to the bus.
// Each transport instance gets its own copy of this value.
type Transport struct {
	Type        string        `yaml:"type"`                // "serial" or "tcp"
	Device      string        `yaml:"device,omitempty"`    // Serial device path (e.g. /dev/ttyUSB0)
	Address     string        `yaml:"address,omitempty"`   // host:port of a serial-over-IP bridge
	BaudRate    int           `yaml:"baud_rate,omitempty"` // Serial only
	ReadTimeout time.Duration `yaml:"read_timeout"`        // Bound on a single read
}

// Server configures the update stream HTTP/WebSocket endpoint.
type Server struct {
	Listen       string `yaml:"listen"`                  // host:port to listen on
	Announce     bool   `yaml:"announce"`                // Advertise the stream over mDNS
	InstanceName string `yaml:"instance_name,omitempty"` // mDNS instance name
}

// Controller holds display metadata for one controller on the bus.
// Labels are purely client-side; the bus knows nothing about them.
type Controller struct {
	Name  string         `yaml:"name,omitempty"`
	Zones map[int]string `yaml:"zones,omitempty"` // Zone labels keyed by zone number (1-based)
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Transport: Transport{
			Type:        TransportSerial,
			BaudRate:    DefaultBaudRate,
			ReadTimeout: DefaultReadTimeout,
		},
		Server: Server{
			Listen:       DefaultListen,
			InstanceName: DefaultInstanceName,
		},
		ReconnectDelay: DefaultReconnectDelay,
		Controllers:    make(map[int]*Controller),
	}
}

// applyDefaults fills zero values left by a partial config file
func (c *Config) applyDefaults() {
	if c.Transport.Type == "" {
		c.Transport.Type = TransportSerial
	}
	if c.Transport.BaudRate == 0 {
		c.Transport.BaudRate = DefaultBaudRate
	}
	if c.Transport.ReadTimeout == 0 {
		c.Transport.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.Listen == "" {
		c.Server.Listen = DefaultListen
	}
	if c.Server.InstanceName == "" {
		c.Server.InstanceName = DefaultInstanceName
	}
	if c.ReconnectDelay == 0 {
		c.ReconnectDelay = DefaultReconnectDelay
	}
	if c.Controllers == nil {
		c.Controllers = make(map[int]*Controller)
	}
}

// Validate checks the configuration for values the tools cannot use.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("unsupported config version: %d (expected %d)", c.Version, CurrentVersion)
	}

	switch c.Transport.Type {
	case TransportSerial:
		if c.Transport.BaudRate < 0 {
			return fmt.Errorf("invalid baud rate: %d", c.Transport.BaudRate)
		}
	case TransportTCP:
	default:
		return fmt.Errorf("unknown transport type %q (expected %q or %q)", c.Transport.Type, TransportSerial, TransportTCP)
	}

	if c.Transport.ReadTimeout < 0 {
		return fmt.Errorf("read_timeout must not be negative")
	}
	if c.ReconnectDelay < 0 {
		return fmt.Errorf("reconnect_delay must not be negative")
	}

	for num := range c.Controllers {
		if num < 1 {
			return fmt.Errorf("controller numbers start at 1, got %d", num)
		}
	}
	return nil
}

// ZoneLabel returns the user label for a zone, or "" if none is set.
func (c *Config) ZoneLabel(controller, zone int) string {
	ctrl, ok := c.Controllers[controller]
	if !ok || ctrl == nil {
		return ""
	}
	return ctrl.Zones[zone]
}

// SetZoneLabel sets or updates the label of a zone. An empty label removes it.
func (c *Config) SetZoneLabel(controller, zone int, label string) {
	if label == "" {
		if ctrl := c.Controllers[controller]; ctrl != nil {
			delete(ctrl.Zones, zone)
		}
		return
	}
	if c.Controllers == nil {
		c.Controllers = make(map[int]*Controller)
	}
	ctrl, ok := c.Controllers[controller]
	if !ok || ctrl == nil {
		ctrl = &Controller{}
		c.Controllers[controller] = ctrl
	}
	if ctrl.Zones == nil {
		ctrl.Zones = make(map[int]string)
	}
	ctrl.Zones[zone] = label
}
