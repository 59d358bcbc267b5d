package protocol

import (
	"encoding/hex"
	"fmt"
)

// FrameMarker is the byte every RNET frame starts with.
const FrameMarker = 0xF0

// Frame is one fixed-length RNET message, anchored by FrameMarker at offset 0.
// Frames handed out by the Assembler own their backing array; nothing else
// holds a reference, so treat a Frame as read-only.
type Frame []byte

// NewFrame copies data into a new Frame.
func NewFrame(data []byte) Frame {
	f := make(Frame, len(data))
	copy(f, data)
	return f
}

// Len returns the frame length in bytes
func (f Frame) Len() int { return len(f) }

// Byte returns the byte at offset i, or 0 when i is out of range.
func (f Frame) Byte(i int) byte {
	if i < 0 || i >= len(f) {
		return 0
	}
	return f[i]
}

// Bytes returns a copy of the frame contents
func (f Frame) Bytes() []byte {
	out := make([]byte, len(f))
	copy(out, f)
	return out
}

// Anchored reports whether the frame starts with FrameMarker
func (f Frame) Anchored() bool {
	return len(f) > 0 && f[0] == FrameMarker
}

// String returns a debug representation of the frame
func (f Frame) String() string {
	return fmt.Sprintf("Frame{len=%d, hex=%s}", len(f), hex.EncodeToString(f))
}

// ParseHexFrame decodes a hex string (spaces, colons and an optional 0x
// prefix per byte are ignored) into a Frame.
func ParseHexFrame(s string) (Frame, error) {
	clean := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ' ' || c == ':' || c == ',' || c == '\t' || c == '\n' || c == '\r':
			continue
		case c == '0' && i+1 < len(s) && (s[i+1] == 'x' || s[i+1] == 'X'):
			i++
			continue
		}
		clean = append(clean, c)
	}
	data, err := hex.DecodeString(string(clean))
	if err != nil {
		return nil, fmt.Errorf("invalid hex frame: %w", err)
	}
	return Frame(data), nil
}
