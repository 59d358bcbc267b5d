package transport

import (
	"errors"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/rnet/internal/logging"
)

// DefaultDialTimeout bounds connection setup to a serial-over-IP bridge
const DefaultDialTimeout = 5 * time.Second

// TCPConfig is the per-instance configuration of a TCP transport
type TCPConfig struct {
	Address     string        // host:port of the serial bridge (e.g. ser2net)
	ReadTimeout time.Duration // Defaults to 1s
	DialTimeout time.Duration // Defaults to 5s
}

// TCPTransport reads the bus through a raw TCP serial bridge.
type TCPTransport struct {
	config TCPConfig

	mu   sync.Mutex
	conn net.Conn
}

// NewTCP creates a TCP transport. It does not dial.
func NewTCP(cfg TCPConfig) *TCPTransport {
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	return &TCPTransport{config: cfg}
}

// Name returns the bridge address
func (t *TCPTransport) Name() string { return t.config.Address }

// Connect dials the bridge
func (t *TCPTransport) Connect() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn != nil {
		return nil
	}

	dialer := net.Dialer{Timeout: t.config.DialTimeout}
	conn, err := dialer.Dial("tcp", t.config.Address)
	if err != nil {
		return &ConnectionError{
			Reason: classifyDialError(err),
			Device: t.config.Address,
			Err:    err,
		}
	}

	t.conn = conn
	logging.Info("Serial bridge connected",
		zap.String("address", t.config.Address),
		zap.String("local_addr", conn.LocalAddr().String()),
	)
	return nil
}

// Disconnect closes the connection. Calling it twice is a no-op.
func (t *TCPTransport) Disconnect() error {
	t.mu.Lock()
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()

	if conn == nil {
		return nil
	}
	logging.LogConnection(t.config.Address, "bridge_closed")
	return conn.Close()
}

// IsConnected reports whether the connection is open
func (t *TCPTransport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn != nil
}

// Reader returns the inbound byte source. Reads time out after the
// configured read timeout and then return (0, nil).
func (t *TCPTransport) Reader() io.Reader { return readerFunc(t.read) }

// Writer returns the outbound byte sink
func (t *TCPTransport) Writer() io.Writer { return writerFunc(t.write) }

func (t *TCPTransport) current() net.Conn {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn
}

func (t *TCPTransport) read(p []byte) (int, error) {
	conn := t.current()
	if conn == nil {
		return 0, ErrNotConnected
	}
	if err := conn.SetReadDeadline(time.Now().Add(t.config.ReadTimeout)); err != nil {
		return 0, err
	}

	n, err := conn.Read(p)
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return n, nil
		}
		if !t.IsConnected() {
			return n, ErrNotConnected
		}
	}
	return n, err
}

func (t *TCPTransport) write(p []byte) (int, error) {
	conn := t.current()
	if conn == nil {
		return 0, ErrNotConnected
	}
	return conn.Write(p)
}

// classifyDialError maps dial failures onto a Reason
func classifyDialError(err error) Reason {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ReasonNotFound
	}
	var addrErr *net.AddrError
	if errors.As(err, &addrErr) {
		return ReasonInvalidDevice
	}
	return ReasonIO
}
