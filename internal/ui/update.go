package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/muurk/rnet/internal/protocol"
)

// LabelFunc returns a display label for a zone, or ""
type LabelFunc func(controller, zone int) string

// ZoneName returns "C1/Z2" or "C1/Z2 Kitchen" when labels has an entry
func ZoneName(id protocol.ZoneID, labels LabelFunc) string {
	name := id.String()
	if labels != nil {
		if label := labels(id.Controller, id.Zone); label != "" {
			name += " " + label
		}
	}
	return name
}

// FormatValue renders a channel value with its state colors
func FormatValue(v protocol.Value) string {
	switch val := v.(type) {
	case protocol.OnOff:
		if val {
			return OnStyle.Render(OnMarker + " " + val.String())
		}
		return OffStyle.Render(OffMarker + " " + val.String())
	case protocol.Percent:
		if !val.InRange() {
			return OutOfRangeStyle.Render(val.String() + "!")
		}
		return ValueStyle.Render(val.String())
	case nil:
		return OffStyle.Render("-")
	default:
		return ValueStyle.Render(v.String())
	}
}

// FormatUpdate renders one update as a single console line
func FormatUpdate(at time.Time, update protocol.ZoneStateUpdate, labels LabelFunc) string {
	parts := make([]string, 0, len(update.Updates))
	for _, cu := range update.Updates {
		parts = append(parts, fmt.Sprintf("%s=%s", cu.Channel, FormatValue(cu.Value)))
	}
	return fmt.Sprintf("%s  %s  %s",
		TimestampStyle.Render(at.Format("15:04:05.000")),
		ZoneStyle.Render(fmt.Sprintf("%-16s", ZoneName(update.Zone, labels))),
		strings.Join(parts, "  "),
	)
}

// FormatFrame renders a decoded frame for the decode command. A nil
// update means no parser recognized the frame.
func FormatFrame(f protocol.Frame, parser string, update *protocol.ZoneStateUpdate, labels LabelFunc) string {
	var b strings.Builder
	b.WriteString(TimestampStyle.Render(f.String()))
	b.WriteString("\n  ")
	if update == nil {
		b.WriteString(OutOfRangeStyle.Render("unrecognized"))
		return b.String()
	}
	b.WriteString(HeaderParamKeyStyle.UnsetPaddingLeft().Render(parser + ":"))
	b.WriteString(" ")
	b.WriteString(ZoneStyle.Render(ZoneName(update.Zone, labels)))
	for _, cu := range update.Updates {
		b.WriteString("  ")
		b.WriteString(fmt.Sprintf("%s=%s", cu.Channel, FormatValue(cu.Value)))
	}
	return b.String()
}
