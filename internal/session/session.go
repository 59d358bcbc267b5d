package session

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/muurk/rnet/internal/logging"
	"github.com/muurk/rnet/internal/protocol"
	"github.com/muurk/rnet/internal/transport"
)

// Stats is a snapshot of session counters
type Stats struct {
	Connected bool                   `json:"connected"`
	Frames    uint64                 `json:"frames"`
	Discarded uint64                 `json:"discarded_bytes"`
	Rejected  uint64                 `json:"rejected_windows"`
	Dispatch  protocol.DispatchStats `json:"dispatch"`
}

// Session owns one transport and drives frames from it through a dispatcher.
type Session struct {
	transport  transport.Transport
	dispatcher *protocol.Dispatcher

	running   atomic.Bool
	stopped   atomic.Bool
	frames    atomic.Uint64
	discarded atomic.Uint64
	rejected  atomic.Uint64
}

// New creates a session reading from t and dispatching through d
func New(t transport.Transport, d *protocol.Dispatcher) *Session {
	return &Session{
		transport:  t,
		dispatcher: d,
	}
}

// ErrAlreadyRunning is returned when Run is called on a running session
var ErrAlreadyRunning = errors.New("session already running")

// Run connects the transport and dispatches frames until ctx is done, Stop
// is called, or the transport fails. Connect and read failures are returned
// and never retried here. A requested stop returns nil. Counters accumulate
// across runs.
func (s *Session) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer s.running.Store(false)
	// A Stop issued while idle is consumed by this run
	defer s.stopped.Store(false)

	if s.stopRequested(ctx) {
		return nil
	}

	name := s.transport.Name()
	if err := s.transport.Connect(); err != nil {
		return fmt.Errorf("connect to bus: %w", err)
	}
	logging.LogConnection(name, "bus_connected")

	// Closing the transport is what unblocks the read loop
	stop := context.AfterFunc(ctx, func() { _ = s.transport.Disconnect() })
	defer stop()
	defer func() { _ = s.transport.Disconnect() }()

	a := protocol.NewAssemblerFor(s.transport.Reader(), s.dispatcher)
	var discarded, rejected uint64
	logging.Debug("Frame assembler ready",
		zap.String("device", name),
		zap.Int("frame_length", a.FrameLength()),
	)

	for {
		if s.stopRequested(ctx) {
			return nil
		}
		if !s.transport.IsConnected() {
			return fmt.Errorf("read from %s: %w", name, transport.ErrNotConnected)
		}

		f, err := a.Next()
		s.discarded.Add(a.Discarded() - discarded)
		s.rejected.Add(a.Rejected() - rejected)
		discarded, rejected = a.Discarded(), a.Rejected()
		if err != nil {
			if s.stopRequested(ctx) {
				return nil
			}
			logging.Error("Bus read failed",
				zap.String("device", name),
				zap.Error(err),
			)
			return fmt.Errorf("read from %s: %w", name, err)
		}
		if f == nil {
			continue
		}

		s.frames.Add(1)
		s.dispatcher.Dispatch(f)
	}
}

// Stop disconnects the transport, ending Run. Safe to call at any time; a
// Stop made while no Run is active makes the next Run return nil at once.
func (s *Session) Stop() error {
	s.stopped.Store(true)
	return s.transport.Disconnect()
}

// Connected reports whether the transport is open
func (s *Session) Connected() bool {
	return s.transport.IsConnected()
}

// Stats returns a snapshot of the session counters
func (s *Session) Stats() Stats {
	return Stats{
		Connected: s.transport.IsConnected(),
		Frames:    s.frames.Load(),
		Discarded: s.discarded.Load(),
		Rejected:  s.rejected.Load(),
		Dispatch:  s.dispatcher.Stats(),
	}
}

func (s *Session) stopRequested(ctx context.Context) bool {
	return ctx.Err() != nil || s.stopped.Load()
}

// Name returns the transport's device path or address
func (s *Session) Name() string {
	return s.transport.Name()
}
