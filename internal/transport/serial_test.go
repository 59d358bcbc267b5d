package transport

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"testing"
	"time"

	"go.bug.st/serial"
)

// fakePort implements the parts of serial.Port the transport uses
type fakePort struct {
	serial.Port
	data       *bytes.Buffer
	written    bytes.Buffer
	timeout    time.Duration
	timeoutErr error
	closed     bool
}

func (p *fakePort) Read(b []byte) (int, error) {
	if p.closed {
		return 0, errors.New("port closed")
	}
	if p.data.Len() == 0 {
		return 0, nil
	}
	return p.data.Read(b)
}

func (p *fakePort) Write(b []byte) (int, error) { return p.written.Write(b) }

func (p *fakePort) SetReadTimeout(d time.Duration) error {
	p.timeout = d
	return p.timeoutErr
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func newFakeSerial(port *fakePort, openErr error) (*SerialTransport, *serial.Mode) {
	var gotMode serial.Mode
	s := NewSerial(SerialConfig{Device: "/dev/ttyFAKE0"})
	s.open = func(device string, mode *serial.Mode) (serial.Port, error) {
		gotMode = *mode
		if openErr != nil {
			return nil, openErr
		}
		return port, nil
	}
	return s, &gotMode
}

func TestSerialTransport_ConnectConfiguresPort(t *testing.T) {
	port := &fakePort{data: bytes.NewBuffer([]byte{0xf0, 0x01})}
	s, mode := newFakeSerial(port, nil)

	if s.IsConnected() {
		t.Fatal("IsConnected() = true before Connect")
	}
	if err := s.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if !s.IsConnected() {
		t.Fatal("IsConnected() = false after Connect")
	}

	if mode.BaudRate != DefaultBaudRate || mode.DataBits != 8 ||
		mode.Parity != serial.NoParity || mode.StopBits != serial.OneStopBit {
		t.Errorf("mode = %+v, want 19200 8N1", *mode)
	}
	if port.timeout != DefaultReadTimeout {
		t.Errorf("read timeout = %v, want %v", port.timeout, DefaultReadTimeout)
	}

	buf := make([]byte, 8)
	n, err := s.Reader().Read(buf)
	if err != nil || n != 2 {
		t.Fatalf("Read() = %d, %v", n, err)
	}
	n, err = s.Reader().Read(buf)
	if err != nil || n != 0 {
		t.Errorf("Read() on idle port = %d, %v; want 0, nil", n, err)
	}

	if _, err := s.Writer().Write([]byte{0x7f}); err != nil {
		t.Errorf("Write() error = %v", err)
	}
	if !bytes.Equal(port.written.Bytes(), []byte{0x7f}) {
		t.Errorf("written = %x", port.written.Bytes())
	}
}

func TestSerialTransport_DisconnectIdempotent(t *testing.T) {
	port := &fakePort{data: &bytes.Buffer{}}
	s, _ := newFakeSerial(port, nil)

	if err := s.Disconnect(); err != nil {
		t.Fatalf("Disconnect() before Connect error = %v", err)
	}
	if err := s.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := s.Disconnect(); err != nil {
		t.Fatalf("Disconnect() error = %v", err)
	}
	if err := s.Disconnect(); err != nil {
		t.Fatalf("second Disconnect() error = %v", err)
	}
	if !port.closed {
		t.Error("port not closed")
	}
	if s.IsConnected() {
		t.Error("IsConnected() = true after Disconnect")
	}

	if _, err := s.Reader().Read(make([]byte, 1)); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Read() after Disconnect error = %v, want ErrNotConnected", err)
	}
	if _, err := s.Writer().Write([]byte{1}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Write() after Disconnect error = %v, want ErrNotConnected", err)
	}
}

func TestSerialTransport_ConnectErrors(t *testing.T) {
	tests := []struct {
		name    string
		openErr error
		want    Reason
	}{
		{"generic failure", errors.New("input/output error"), ReasonIO},
		{"missing device", fmt.Errorf("open: %w", fs.ErrNotExist), ReasonNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newFakeSerial(nil, tt.openErr)
			err := s.Connect()

			var connErr *ConnectionError
			if !errors.As(err, &connErr) {
				t.Fatalf("Connect() error = %v, want *ConnectionError", err)
			}
			if connErr.Reason != tt.want {
				t.Errorf("reason = %v, want %v", connErr.Reason, tt.want)
			}
			if connErr.Device != "/dev/ttyFAKE0" {
				t.Errorf("device = %q", connErr.Device)
			}
			if !errors.Is(err, tt.openErr) {
				t.Error("underlying error not reachable through Unwrap")
			}
			if s.IsConnected() {
				t.Error("IsConnected() = true after failed Connect")
			}
		})
	}
}

func TestSerialTransport_TimeoutRejected(t *testing.T) {
	port := &fakePort{data: &bytes.Buffer{}, timeoutErr: errors.New("invalid timeout")}
	s, _ := newFakeSerial(port, nil)

	err := s.Connect()
	var connErr *ConnectionError
	if !errors.As(err, &connErr) || connErr.Reason != ReasonUnsupported {
		t.Fatalf("Connect() error = %v, want unsupported ConnectionError", err)
	}
	if !port.closed {
		t.Error("port left open after failed configuration")
	}
}

func TestSerialTransport_MissingDevice(t *testing.T) {
	s := NewSerial(SerialConfig{Device: "/dev/rnet-does-not-exist"})
	err := s.Connect()
	if !IsConnectionError(err) {
		t.Fatalf("Connect() error = %v, want ConnectionError", err)
	}
}

func TestSerialTransport_ReadErrorAfterDisconnect(t *testing.T) {
	port := &fakePort{data: &bytes.Buffer{}}
	s, _ := newFakeSerial(port, nil)
	if err := s.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	r := s.Reader()
	port.closed = true
	s.mu.Lock()
	s.port = nil
	s.mu.Unlock()

	if _, err := r.Read(make([]byte, 1)); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Read() error = %v, want ErrNotConnected", err)
	}
}

func TestListSerialPorts(t *testing.T) {
	orig := listPorts
	defer func() { listPorts = orig }()

	listPorts = func() ([]string, error) { return []string{"/dev/ttyUSB0", "/dev/ttyS0"}, nil }
	ports, err := ListSerialPorts()
	if err != nil {
		t.Fatalf("ListSerialPorts() error = %v", err)
	}
	if len(ports) != 2 || ports[0] != "/dev/ttyUSB0" {
		t.Errorf("ListSerialPorts() = %v", ports)
	}

	listPorts = func() ([]string, error) { return nil, fmt.Errorf("enumerate: %w", fs.ErrNotExist) }
	_, err = ListSerialPorts()
	var ce *ConnectionError
	if !errors.As(err, &ce) {
		t.Fatalf("error = %v, want *ConnectionError", err)
	}
	if ce.Reason != ReasonNotFound {
		t.Errorf("Reason = %v, want %v", ce.Reason, ReasonNotFound)
	}
}
