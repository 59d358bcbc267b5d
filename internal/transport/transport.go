package transport

import (
	"fmt"
	"io"
	"time"

	"github.com/muurk/rnet/internal/config"
)

// DefaultReadTimeout bounds every read so the owning loop regains control
const DefaultReadTimeout = time.Second

// Transport is a byte-oriented link to the RNET bus.
//
// Reader must block for at most the configured read timeout and return
// (0, nil) when nothing arrived. Disconnect is idempotent.
type Transport interface {
	// Connect opens the link. Failures are *ConnectionError.
	Connect() error
	Disconnect() error
	IsConnected() bool
	// Name returns the device path or address for logging
	Name() string
	Reader() io.Reader
	Writer() io.Writer
}

// New builds the transport described by cfg
func New(cfg config.Transport) (Transport, error) {
	timeout := cfg.ReadTimeout
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}

	switch cfg.Type {
	case config.TransportSerial, "":
		if cfg.Device == "" {
			return nil, fmt.Errorf("serial transport requires a device path")
		}
		return NewSerial(SerialConfig{
			Device:      cfg.Device,
			BaudRate:    cfg.BaudRate,
			ReadTimeout: timeout,
		}), nil
	case config.TransportTCP:
		if cfg.Address == "" {
			return nil, fmt.Errorf("tcp transport requires an address")
		}
		return NewTCP(TCPConfig{
			Address:     cfg.Address,
			ReadTimeout: timeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown transport type %q", cfg.Type)
	}
}
