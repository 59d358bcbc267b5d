package protocol

import (
	"bytes"
	"errors"
	"io"
	"iter"

	"github.com/muurk/rnet/internal/logging"
)

// assemblerState tracks where the buffer stands relative to the next frame
type assemblerState int

const (
	// stateSeeking: buffer empty, waiting for a marker byte
	stateSeeking assemblerState = iota
	// stateAccumulating: marker at buf[0], fewer than frameLen bytes buffered
	stateAccumulating
	// stateReady: a complete frame sits at the front of the buffer
	stateReady
)

func (s assemblerState) String() string {
	switch s {
	case stateSeeking:
		return "seeking"
	case stateAccumulating:
		return "accumulating"
	case stateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// FrameSizer tells an Assembler how much of a window is a real frame.
// MeasureFrame returns the length of the frame that starts window, or 0 when
// the window does not start with a recognized frame. Dispatcher implements it.
type FrameSizer interface {
	FrameLength() int
	MeasureFrame(window Frame) int
}

// Assembler cuts a continuous byte stream into frames anchored on
// FrameMarker.
//
// A plain assembler emits fixed windows of frameLen bytes. One built with
// NewAssemblerFor asks its FrameSizer for each window: recognized frames are
// cut at their own length, and an unrecognized window loses only its marker
// byte before the assembler resynchronizes on the next marker.
//
// The reader is expected to block for a bounded time and return (0, nil)
// when nothing arrived, as serial ports configured with a read timeout do.
// An Assembler must be driven by a single goroutine.
type Assembler struct {
	r        io.Reader
	frameLen int
	sizer    FrameSizer
	buf      []byte
	scratch  []byte
	state    assemblerState

	frames    uint64
	discarded uint64
	rejected  uint64
}

// NewAssembler returns an assembler producing frames of frameLen bytes from r
func NewAssembler(r io.Reader, frameLen int) *Assembler {
	if frameLen < 1 {
		frameLen = 1
	}
	return &Assembler{
		r:        r,
		frameLen: frameLen,
		buf:      make([]byte, 0, 2*frameLen),
		scratch:  make([]byte, frameLen),
	}
}

// NewAssemblerFor returns an assembler whose window is s.FrameLength() and
// whose frames are cut at the length s measures.
func NewAssemblerFor(r io.Reader, s FrameSizer) *Assembler {
	a := NewAssembler(r, s.FrameLength())
	a.sizer = s
	return a
}

// FrameLength returns the size of produced frames
func (a *Assembler) FrameLength() int { return a.frameLen }

// Frames returns how many frames have been produced
func (a *Assembler) Frames() uint64 { return a.frames }

// Discarded returns how many bytes were dropped while resynchronizing
func (a *Assembler) Discarded() uint64 { return a.discarded }

// Rejected returns how many marker-anchored windows the sizer did not
// recognize
func (a *Assembler) Rejected() uint64 { return a.rejected }

// Buffered returns how many bytes are waiting for the next frame
func (a *Assembler) Buffered() int { return len(a.buf) }

// Reset drops buffered bytes and switches to reading from r.
func (a *Assembler) Reset(r io.Reader) {
	a.r = r
	a.buf = a.buf[:0]
	a.state = stateSeeking
}

// Next runs one read cycle. It returns a frame when one is complete, and
// (nil, nil) when the read timed out or the frame is still partial. Read
// errors are returned unchanged; buffered bytes survive them, except at
// io.EOF where a sized assembler drains what it can from the tail.
func (a *Assembler) Next() (Frame, error) {
	a.advance()
	if f := a.drain(); f != nil {
		return f, nil
	}

	n, err := a.r.Read(a.scratch)
	if n > 0 {
		a.buf = append(a.buf, a.scratch[:n]...)
		a.advance()
		if f := a.drain(); f != nil {
			return f, nil
		}
	}

	switch {
	case errors.Is(err, io.EOF):
		if f := a.flush(); f != nil {
			return f, nil
		}
		return nil, err
	case err != nil:
		return nil, err
	case n == 0:
		// Quiet bus: a short frame may be all that is buffered
		return a.settle(), nil
	}
	return nil, nil
}

// All yields frames until the reader fails. io.EOF ends the sequence
// without an error; any other error is yielded once before stopping.
func (a *Assembler) All() iter.Seq2[Frame, error] {
	return func(yield func(Frame, error) bool) {
		for {
			f, err := a.Next()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					yield(nil, err)
				}
				return
			}
			if f == nil {
				continue
			}
			if !yield(f, nil) {
				return
			}
		}
	}
}

// advance resynchronizes on the marker and recomputes the state
func (a *Assembler) advance() {
	if len(a.buf) > 0 && a.buf[0] != FrameMarker {
		a.resync()
	}

	switch {
	case len(a.buf) == 0:
		a.state = stateSeeking
	case len(a.buf) < a.frameLen:
		a.state = stateAccumulating
	default:
		a.state = stateReady
	}
}

// resync drops leading bytes up to the next marker, or everything if the
// buffer holds no marker.
func (a *Assembler) resync() {
	i := bytes.IndexByte(a.buf, FrameMarker)
	if i < 0 {
		i = len(a.buf)
	}

	logging.LogRawBytes("Discarded bytes while seeking frame marker", a.buf[:i])
	a.discarded += uint64(i)

	n := copy(a.buf, a.buf[i:])
	a.buf = a.buf[:n]
}

// drain takes frames while a full window is buffered, skipping rejected
// windows
func (a *Assembler) drain() Frame {
	for a.state == stateReady {
		if f := a.take(); f != nil {
			return f
		}
	}
	return nil
}

// take removes the frame at the front of a full window, or rejects the
// window when the sizer does not recognize it
func (a *Assembler) take() Frame {
	if a.sizer == nil {
		return a.cut(a.frameLen)
	}
	n := a.sizer.MeasureFrame(Frame(a.buf[:a.frameLen]))
	if n <= 0 || n > a.frameLen {
		a.reject()
		return nil
	}
	return a.cut(n)
}

// settle cuts a buffered frame shorter than the window, leaving a partial
// frame in place
func (a *Assembler) settle() Frame {
	if a.sizer == nil || a.state != stateAccumulating {
		return nil
	}
	if n := a.sizer.MeasureFrame(Frame(a.buf)); n > 0 && n <= len(a.buf) {
		return a.cut(n)
	}
	return nil
}

// flush recovers short frames from the tail once the input has ended.
// Whatever cannot form a frame is discarded.
func (a *Assembler) flush() Frame {
	if a.sizer == nil {
		return nil
	}
	for len(a.buf) > 0 {
		if n := a.sizer.MeasureFrame(Frame(a.buf)); n > 0 && n <= len(a.buf) {
			return a.cut(n)
		}
		a.reject()
	}
	return nil
}

// reject drops the marker of an unrecognized window and resynchronizes
func (a *Assembler) reject() {
	logging.LogRawBytes("Unrecognized frame window", a.buf[:min(len(a.buf), a.frameLen)])
	a.rejected++
	a.discarded++

	n := copy(a.buf, a.buf[1:])
	a.buf = a.buf[:n]
	a.advance()
}

// cut removes the first n buffered bytes as a frame
func (a *Assembler) cut(n int) Frame {
	f := NewFrame(a.buf[:n])
	m := copy(a.buf, a.buf[n:])
	a.buf = a.buf[:m]
	a.frames++
	a.advance()
	logging.LogFrame("Frame assembled", f)
	return f
}
