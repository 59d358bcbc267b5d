package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ZoneID identifies a zone on a (possibly daisy-chained) RNET bus.
// Both indices are 1-based; the wire carries them 0-based.
type ZoneID struct {
	Controller int `json:"controller"`
	Zone       int `json:"zone"`
}

// String returns the zone in C<controller>/Z<zone> form
func (z ZoneID) String() string {
	return fmt.Sprintf("C%d/Z%d", z.Controller, z.Zone)
}

// Channel names an independently updatable zone attribute.
type Channel int

const (
	ChannelZoneStatus Channel = iota + 1
	ChannelZoneVolume
	ChannelZoneSource
)

var channelNames = map[Channel]string{
	ChannelZoneStatus: "status",
	ChannelZoneVolume: "volume",
	ChannelZoneSource: "source",
}

// String returns the channel's wire-independent name
func (c Channel) String() string {
	if name, ok := channelNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Channel(%d)", int(c))
}

// MarshalText implements encoding.TextMarshaler
func (c Channel) MarshalText() ([]byte, error) {
	name, ok := channelNames[c]
	if !ok {
		return nil, fmt.Errorf("unknown channel %d", int(c))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Channel) UnmarshalText(text []byte) error {
	for ch, name := range channelNames {
		if strings.EqualFold(name, string(text)) {
			*c = ch
			return nil
		}
	}
	return fmt.Errorf("unknown channel %q", string(text))
}

// Value is the new state of a channel. The set of implementations is closed:
// OnOff, Index and Percent.
type Value interface {
	fmt.Stringer
	isValue()
}

// OnOff is a boolean channel value
type OnOff bool

const (
	On  OnOff = true
	Off OnOff = false
)

func (OnOff) isValue() {}

func (v OnOff) String() string {
	if v {
		return "ON"
	}
	return "OFF"
}

// Index is a 1-based integer channel value (e.g. a source number)
type Index int

func (Index) isValue() {}

func (v Index) String() string { return fmt.Sprintf("%d", int(v)) }

// Percent is a percentage channel value. Decoded values are not clamped, so
// a Percent may exceed 100 when the device reports an out-of-range byte.
type Percent int

func (Percent) isValue() {}

func (v Percent) String() string { return fmt.Sprintf("%d%%", int(v)) }

// InRange reports whether the value lies within 0..100
func (v Percent) InRange() bool { return v >= 0 && v <= 100 }

// ChannelUpdate is a single channel and its new value
type ChannelUpdate struct {
	Channel Channel
	Value   Value
}

// String returns a channel=value representation
func (u ChannelUpdate) String() string {
	return fmt.Sprintf("%s=%s", u.Channel, u.Value)
}

type channelUpdateJSON struct {
	Channel Channel `json:"channel"`
	Value   any     `json:"value"`
}

// MarshalJSON encodes the value as a JSON bool or number
func (u ChannelUpdate) MarshalJSON() ([]byte, error) {
	out := channelUpdateJSON{Channel: u.Channel}
	switch v := u.Value.(type) {
	case OnOff:
		out.Value = bool(v)
	case Index:
		out.Value = int(v)
	case Percent:
		out.Value = int(v)
	default:
		return nil, fmt.Errorf("unsupported value type %T", u.Value)
	}
	return json.Marshal(out)
}

// ZoneStateUpdate carries every channel update decoded from one frame.
// Consumers apply the updates together; their order carries no meaning.
type ZoneStateUpdate struct {
	Zone    ZoneID          `json:"zone"`
	Updates []ChannelUpdate `json:"updates"`
}

// NewZoneStateUpdate builds an update for zone. At least one channel update
// is required.
func NewZoneStateUpdate(zone ZoneID, first ChannelUpdate, rest ...ChannelUpdate) *ZoneStateUpdate {
	updates := make([]ChannelUpdate, 0, 1+len(rest))
	updates = append(updates, first)
	updates = append(updates, rest...)
	return &ZoneStateUpdate{Zone: zone, Updates: updates}
}

// Get returns the value for channel, if the update carries it
func (u *ZoneStateUpdate) Get(channel Channel) (Value, bool) {
	for _, cu := range u.Updates {
		if cu.Channel == channel {
			return cu.Value, true
		}
	}
	return nil, false
}

// String returns a debug representation of the update
func (u *ZoneStateUpdate) String() string {
	parts := make([]string, len(u.Updates))
	for i, cu := range u.Updates {
		parts[i] = cu.String()
	}
	return fmt.Sprintf("ZoneStateUpdate{zone=%s, %s}", u.Zone, strings.Join(parts, ", "))
}
