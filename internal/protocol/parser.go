package protocol

import (
	"go.uber.org/zap"

	"github.com/muurk/rnet/internal/logging"
)

// BusParser recognizes one RNET frame shape and decodes it.
//
// Process must only be trusted when Matches is true for the same frame;
// implementations re-check and return nil for frames they do not recognize.
// Parsers hold no mutable state and are safe for concurrent use.
type BusParser interface {
	// Name identifies the parser in logs and statistics
	Name() string
	// FrameLength is the smallest frame that carries every byte the parser reads
	FrameLength() int
	Matches(f Frame) bool
	Process(f Frame) *ZoneStateUpdate
}

// byteAt is one fixed-offset equality check
type byteAt struct {
	offset int
	value  byte
}

// bytePattern classifies a frame by exact byte values at fixed offsets
type bytePattern []byteAt

func (p bytePattern) matches(f Frame) bool {
	for _, b := range p {
		if b.offset >= len(f) || f[b.offset] != b.value {
			return false
		}
	}
	return true
}

// decodeOnOff maps the bus status byte: 1 is on, anything else is off
func decodeOnOff(b byte) OnOff {
	return OnOff(b == 1)
}

// decodeIndex converts a 0-based wire index to a 1-based Index
func decodeIndex(b byte) Index {
	return Index(int(b) + 1)
}

// decodePercent scales a half-percent wire value. The result is not clamped.
func decodePercent(b byte) Percent {
	return Percent(int(b) * 2)
}

func decodeZoneID(controller, zone byte) ZoneID {
	return ZoneID{Controller: int(controller) + 1, Zone: int(zone) + 1}
}

// Power change frame layout
const (
	powerControllerOffset = 1
	powerStatusOffset     = 17
	powerZoneOffset       = 19
	powerFrameLength      = 20
)

var powerChangePattern = bytePattern{
	{0, FrameMarker},
	{6, 0x7F},
	{7, 0x05},
	{14, 0xF1},
	{15, 0x23},
}

// PowerChangeParser decodes the event a controller emits when a zone is
// switched on or off.
type PowerChangeParser struct{}

func (PowerChangeParser) Name() string { return "power_change" }

func (PowerChangeParser) FrameLength() int { return powerFrameLength }

func (PowerChangeParser) Matches(f Frame) bool {
	return len(f) >= powerFrameLength && powerChangePattern.matches(f)
}

func (p PowerChangeParser) Process(f Frame) *ZoneStateUpdate {
	if !p.Matches(f) {
		return nil
	}

	zone := decodeZoneID(f[powerControllerOffset], f[powerZoneOffset])
	status := decodeOnOff(f[powerStatusOffset])

	logging.Debug("Status change (power) detected",
		zap.Stringer("zone", zone),
		zap.Uint8("value", f[powerStatusOffset]),
	)

	return NewZoneStateUpdate(zone, ChannelUpdate{Channel: ChannelZoneStatus, Value: status})
}

// Zone info frame layout
const (
	infoZoneOffset       = 4
	infoControllerOffset = 12
	infoStatusOffset     = 20
	infoSourceOffset     = 21
	infoVolumeOffset     = 22
	infoFrameLength      = 23
)

var zoneInfoPattern = bytePattern{
	{0, FrameMarker},
	{3, 0x70},
	{9, 0x04},
	{10, 0x02},
}

// ZoneInfoParser decodes the full zone info reply: status, volume and source.
type ZoneInfoParser struct{}

func (ZoneInfoParser) Name() string { return "zone_info" }

func (ZoneInfoParser) FrameLength() int { return infoFrameLength }

func (ZoneInfoParser) Matches(f Frame) bool {
	return len(f) >= infoFrameLength && zoneInfoPattern.matches(f)
}

func (p ZoneInfoParser) Process(f Frame) *ZoneStateUpdate {
	if !p.Matches(f) {
		return nil
	}

	zone := decodeZoneID(f[infoControllerOffset], f[infoZoneOffset])

	return NewZoneStateUpdate(zone,
		ChannelUpdate{Channel: ChannelZoneStatus, Value: decodeOnOff(f[infoStatusOffset])},
		ChannelUpdate{Channel: ChannelZoneVolume, Value: decodePercent(f[infoVolumeOffset])},
		ChannelUpdate{Channel: ChannelZoneSource, Value: decodeIndex(f[infoSourceOffset])},
	)
}

// DefaultParsers returns the built-in parsers in precedence order.
func DefaultParsers() []BusParser {
	return []BusParser{
		PowerChangeParser{},
		ZoneInfoParser{},
	}
}
