package protocol

import (
	"sync"

	"go.uber.org/zap"

	"github.com/muurk/rnet/internal/logging"
)

// Consumer receives decoded zone updates. Delivery is fire-and-forget.
type Consumer interface {
	HandleUpdate(update ZoneStateUpdate)
}

// ConsumerFunc adapts a function to Consumer
type ConsumerFunc func(update ZoneStateUpdate)

// HandleUpdate calls f(update)
func (f ConsumerFunc) HandleUpdate(update ZoneStateUpdate) { f(update) }

// ChannelConsumer returns a Consumer that forwards updates into ch.
// The send blocks while ch is full.
func ChannelConsumer(ch chan<- ZoneStateUpdate) Consumer {
	return ConsumerFunc(func(update ZoneStateUpdate) { ch <- update })
}

// MultiConsumer fans every update out to each consumer in order
func MultiConsumer(consumers ...Consumer) Consumer {
	return ConsumerFunc(func(update ZoneStateUpdate) {
		for _, c := range consumers {
			c.HandleUpdate(update)
		}
	})
}

// DispatchStats counts dispatched frames
type DispatchStats struct {
	Matched   map[string]uint64 `json:"matched"`
	Unmatched uint64            `json:"unmatched"`
}

// Dispatcher runs each frame through an ordered list of parsers.
//
// Registration order is precedence: the first parser whose Matches returns
// true decodes the frame and no other parser sees it. Register the most
// specific shapes first when shapes could overlap.
type Dispatcher struct {
	parsers  []BusParser
	consumer Consumer

	mu        sync.Mutex
	matched   map[string]uint64
	unmatched uint64
}

// NewDispatcher creates a dispatcher that forwards to consumer. With no
// parsers given it registers DefaultParsers.
func NewDispatcher(consumer Consumer, parsers ...BusParser) *Dispatcher {
	if len(parsers) == 0 {
		parsers = DefaultParsers()
	}
	d := &Dispatcher{
		consumer: consumer,
		matched:  make(map[string]uint64),
	}
	for _, p := range parsers {
		d.Register(p)
	}
	return d
}

// Register appends p at the lowest precedence. Register is not safe to call
// while frames are being dispatched.
func (d *Dispatcher) Register(p BusParser) {
	d.parsers = append(d.parsers, p)
}

// Parsers returns the registered parsers in precedence order
func (d *Dispatcher) Parsers() []BusParser {
	out := make([]BusParser, len(d.parsers))
	copy(out, d.parsers)
	return out
}

// FrameLength returns the frame window needed by the registered parsers
func (d *Dispatcher) FrameLength() int {
	n := 0
	for _, p := range d.parsers {
		if l := p.FrameLength(); l > n {
			n = l
		}
	}
	return n
}

// MeasureFrame returns the frame length of the first parser that matches
// window, or 0 when none does. Windows may be longer than the frame.
func (d *Dispatcher) MeasureFrame(window Frame) int {
	for _, p := range d.parsers {
		if p.Matches(window) {
			return p.FrameLength()
		}
	}
	return 0
}

// Decode returns the update produced by the first matching parser, along
// with that parser. It returns nil, nil when no parser matches.
func (d *Dispatcher) Decode(f Frame) (*ZoneStateUpdate, BusParser) {
	for _, p := range d.parsers {
		if p.Matches(f) {
			return p.Process(f), p
		}
	}
	return nil, nil
}

// Dispatch decodes f and forwards the result to the consumer. It reports
// whether a parser recognized the frame. Unrecognized frames are dropped.
func (d *Dispatcher) Dispatch(f Frame) bool {
	update, parser := d.Decode(f)
	if parser == nil {
		d.mu.Lock()
		d.unmatched++
		d.mu.Unlock()
		logging.Debug("Unrecognized frame dropped",
			zap.Int("length", f.Len()),
			zap.String("hex", logging.HexDump(f)),
		)
		return false
	}

	d.mu.Lock()
	d.matched[parser.Name()]++
	d.mu.Unlock()

	if update == nil {
		return true
	}

	logging.Debug("Frame decoded",
		zap.String("parser", parser.Name()),
		zap.Stringer("update", update),
	)

	if d.consumer != nil {
		d.consumer.HandleUpdate(*update)
	}
	return true
}

// Stats returns a snapshot of dispatch counters
func (d *Dispatcher) Stats() DispatchStats {
	d.mu.Lock()
	defer d.mu.Unlock()

	matched := make(map[string]uint64, len(d.matched))
	for k, v := range d.matched {
		matched[k] = v
	}
	return DispatchStats{Matched: matched, Unmatched: d.unmatched}
}
