package transport

import (
	"errors"
	"io"
	"io/fs"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"github.com/muurk/rnet/internal/logging"
)

// DefaultBaudRate is the RNET bus speed
const DefaultBaudRate = 19200

// SerialConfig is the per-instance configuration of a serial transport.
// Each transport owns its config; nothing is registered process-wide.
type SerialConfig struct {
	Device      string        // Device path (e.g. /dev/ttyUSB0)
	BaudRate    int           // Defaults to 19200
	ReadTimeout time.Duration // Defaults to 1s
}

// openFunc matches serial.Open
type openFunc func(device string, mode *serial.Mode) (serial.Port, error)

// SerialTransport reads the bus from a local serial port at 8N1, no flow control.
type SerialTransport struct {
	config SerialConfig
	open   openFunc

	mu   sync.Mutex
	port serial.Port
}

// NewSerial creates a serial transport. It does not open the port.
func NewSerial(cfg SerialConfig) *SerialTransport {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = DefaultBaudRate
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	return &SerialTransport{
		config: cfg,
		open:   serial.Open,
	}
}

// Name returns the device path
func (s *SerialTransport) Name() string { return s.config.Device }

// Connect opens and configures the serial port
func (s *SerialTransport) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port != nil {
		return nil
	}

	mode := &serial.Mode{
		BaudRate: s.config.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := s.open(s.config.Device, mode)
	if err != nil {
		return &ConnectionError{
			Reason: classifyOpenError(err),
			Device: s.config.Device,
			Err:    err,
		}
	}

	if err := port.SetReadTimeout(s.config.ReadTimeout); err != nil {
		_ = port.Close()
		return &ConnectionError{
			Reason: ReasonUnsupported,
			Device: s.config.Device,
			Err:    err,
		}
	}

	s.port = port
	logging.Info("Serial port opened",
		zap.String("device", s.config.Device),
		zap.Int("baud", s.config.BaudRate),
		zap.Duration("read_timeout", s.config.ReadTimeout),
	)
	return nil
}

// Disconnect closes the port. Calling it on a closed transport is a no-op.
func (s *SerialTransport) Disconnect() error {
	s.mu.Lock()
	port := s.port
	s.port = nil
	s.mu.Unlock()

	if port == nil {
		return nil
	}
	logging.LogConnection(s.config.Device, "serial_closed")
	return port.Close()
}

// IsConnected reports whether the port is open
func (s *SerialTransport) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port != nil
}

// Reader returns the inbound byte source
func (s *SerialTransport) Reader() io.Reader { return readerFunc(s.read) }

// Writer returns the outbound byte sink
func (s *SerialTransport) Writer() io.Writer { return writerFunc(s.write) }

func (s *SerialTransport) current() serial.Port {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

func (s *SerialTransport) read(p []byte) (int, error) {
	port := s.current()
	if port == nil {
		return 0, ErrNotConnected
	}
	n, err := port.Read(p)
	if err != nil && !s.IsConnected() {
		return n, ErrNotConnected
	}
	return n, err
}

func (s *SerialTransport) write(p []byte) (int, error) {
	port := s.current()
	if port == nil {
		return 0, ErrNotConnected
	}
	return port.Write(p)
}

// classifyOpenError maps serial open failures onto a Reason
func classifyOpenError(err error) Reason {
	var portErr *serial.PortError
	if errors.As(err, &portErr) {
		switch portErr.Code() {
		case serial.PortBusy:
			return ReasonDeviceBusy
		case serial.PortNotFound:
			return ReasonNotFound
		case serial.InvalidSerialPort:
			return ReasonInvalidDevice
		case serial.InvalidSpeed, serial.InvalidDataBits, serial.InvalidParity,
			serial.InvalidStopBits, serial.InvalidTimeoutValue, serial.FunctionNotImplemented:
			return ReasonUnsupported
		}
	}
	if errors.Is(err, fs.ErrNotExist) {
		return ReasonNotFound
	}
	return ReasonIO
}

type readerFunc func(p []byte) (int, error)

func (f readerFunc) Read(p []byte) (int, error) { return f(p) }

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

// listPorts matches serial.GetPortsList
var listPorts = serial.GetPortsList

// ListSerialPorts returns the serial devices present on this machine
func ListSerialPorts() ([]string, error) {
	ports, err := listPorts()
	if err != nil {
		return nil, &ConnectionError{Reason: classifyOpenError(err), Device: "serial port list", Err: err}
	}
	return ports, nil
}
