package server

import (
	"sort"
	"sync"
	"time"

	"github.com/muurk/rnet/internal/protocol"
)

// ZoneState is the last known value of every channel seen for a zone
type ZoneState struct {
	Zone      protocol.ZoneID          `json:"zone"`
	Label     string                   `json:"label,omitempty"`
	Channels  []protocol.ChannelUpdate `json:"channels"`
	UpdatedAt time.Time                `json:"updated_at"`
}

// LabelFunc returns a display label for a zone, or ""
type LabelFunc func(controller, zone int) string

// StateCache folds zone updates into per-zone channel state
type StateCache struct {
	mu     sync.RWMutex
	zones  map[protocol.ZoneID]map[protocol.Channel]protocol.Value
	seen   map[protocol.ZoneID]time.Time
	labels LabelFunc
	now    func() time.Time
}

// NewStateCache creates an empty cache. labels may be nil.
func NewStateCache(labels LabelFunc) *StateCache {
	return &StateCache{
		zones:  make(map[protocol.ZoneID]map[protocol.Channel]protocol.Value),
		seen:   make(map[protocol.ZoneID]time.Time),
		labels: labels,
		now:    time.Now,
	}
}

// Apply records every channel carried by update
func (c *StateCache) Apply(update protocol.ZoneStateUpdate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	channels, ok := c.zones[update.Zone]
	if !ok {
		channels = make(map[protocol.Channel]protocol.Value)
		c.zones[update.Zone] = channels
	}
	for _, cu := range update.Updates {
		channels[cu.Channel] = cu.Value
	}
	c.seen[update.Zone] = c.now()
}

// Zone returns the state of one zone
func (c *StateCache) Zone(id protocol.ZoneID) (ZoneState, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	channels, ok := c.zones[id]
	if !ok {
		return ZoneState{}, false
	}
	return c.stateLocked(id, channels), true
}

// Snapshot returns every known zone ordered by controller then zone
func (c *StateCache) Snapshot() []ZoneState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]ZoneState, 0, len(c.zones))
	for id, channels := range c.zones {
		out = append(out, c.stateLocked(id, channels))
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Zone, out[j].Zone
		if a.Controller != b.Controller {
			return a.Controller < b.Controller
		}
		return a.Zone < b.Zone
	})
	return out
}

// Len returns the number of known zones
func (c *StateCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.zones)
}

func (c *StateCache) stateLocked(id protocol.ZoneID, channels map[protocol.Channel]protocol.Value) ZoneState {
	st := ZoneState{
		Zone:      id,
		Channels:  make([]protocol.ChannelUpdate, 0, len(channels)),
		UpdatedAt: c.seen[id],
	}
	if c.labels != nil {
		st.Label = c.labels(id.Controller, id.Zone)
	}
	for ch, v := range channels {
		st.Channels = append(st.Channels, protocol.ChannelUpdate{Channel: ch, Value: v})
	}
	sort.Slice(st.Channels, func(i, j int) bool {
		return st.Channels[i].Channel < st.Channels[j].Channel
	})
	return st
}
