package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/rnet/internal/protocol"
)

// UpdateMsg delivers a decoded zone update to the board
type UpdateMsg protocol.ZoneStateUpdate

// StatusMsg reports the bus connection state to the board
type StatusMsg struct {
	Connected bool
	Err       error
}

const volumeBarWidth = 20

// Board is a live table of every zone seen on the bus.
type Board struct {
	title     string
	labels    LabelFunc
	zones     map[protocol.ZoneID]map[protocol.Channel]protocol.Value
	order     []protocol.ZoneID
	updates   int
	last      time.Time
	connected bool
	err       error
	width     int

	spinner spinner.Model
	bar     progress.Model
	now     func() time.Time
}

// NewBoard creates an empty board. labels may be nil.
func NewBoard(title string, labels LabelFunc) Board {
	return Board{
		title:  title,
		labels: labels,
		zones:  make(map[protocol.ZoneID]map[protocol.Channel]protocol.Value),
		width:  GetTerminalWidth(),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(ZoneStyle),
		),
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(volumeBarWidth),
			progress.WithoutPercentage(),
		),
		now: time.Now,
	}
}

// Consumer returns a protocol.Consumer that feeds updates into p
func Consumer(p *tea.Program) protocol.Consumer {
	return protocol.ConsumerFunc(func(update protocol.ZoneStateUpdate) {
		p.Send(UpdateMsg(update))
	})
}

// Init implements tea.Model
func (b Board) Init() tea.Cmd {
	return b.spinner.Tick
}

// Update implements tea.Model
func (b Board) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return b, tea.Quit
		}
	case tea.WindowSizeMsg:
		b.width = msg.Width
	case UpdateMsg:
		b.apply(protocol.ZoneStateUpdate(msg))
	case StatusMsg:
		b.connected = msg.Connected
		b.err = msg.Err
	case spinner.TickMsg:
		var cmd tea.Cmd
		b.spinner, cmd = b.spinner.Update(msg)
		return b, cmd
	}
	return b, nil
}

func (b *Board) apply(update protocol.ZoneStateUpdate) {
	channels, ok := b.zones[update.Zone]
	if !ok {
		channels = make(map[protocol.Channel]protocol.Value)
		b.zones[update.Zone] = channels
		b.order = append(b.order, update.Zone)
		sort.Slice(b.order, func(i, j int) bool {
			if b.order[i].Controller != b.order[j].Controller {
				return b.order[i].Controller < b.order[j].Controller
			}
			return b.order[i].Zone < b.order[j].Zone
		})
	}
	for _, cu := range update.Updates {
		channels[cu.Channel] = cu.Value
	}
	b.updates++
	b.last = b.now()
}

// View implements tea.Model
func (b Board) View() string {
	var s strings.Builder

	s.WriteString(HeaderTitleStyle.Render(strings.ToUpper(b.title)))
	s.WriteString("\n")
	width := b.width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}
	s.WriteString(RenderHorizontalDivider(width-2, "─"))
	s.WriteString("\n")

	if len(b.order) == 0 {
		s.WriteString("  " + b.spinner.View() + " Waiting for zone updates...\n")
	}
	for _, id := range b.order {
		s.WriteString(b.renderRow(id))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(StatusStyle.Render(b.statusLine()))
	s.WriteString("\n")
	return s.String()
}

func (b Board) renderRow(id protocol.ZoneID) string {
	channels := b.zones[id]

	volume := "    "
	bar := strings.Repeat(" ", volumeBarWidth)
	if v, ok := channels[protocol.ChannelZoneVolume].(protocol.Percent); ok {
		volume = fmt.Sprintf("%4s", v.String())
		if !v.InRange() {
			volume = OutOfRangeStyle.Render(volume)
		}
		bar = b.bar.ViewAs(clampUnit(float64(v) / 100))
	}

	source := "-"
	if v, ok := channels[protocol.ChannelZoneSource]; ok {
		source = v.String()
	}

	return fmt.Sprintf("  %s  %s  %s %s  src %s",
		ZoneStyle.Render(fmt.Sprintf("%-18s", ZoneName(id, b.labels))),
		FormatValue(channels[protocol.ChannelZoneStatus]),
		bar,
		volume,
		ValueStyle.Render(source),
	)
}

func (b Board) statusLine() string {
	state := "disconnected"
	if b.connected {
		state = "connected"
	}
	line := fmt.Sprintf("  %s · %d zones · %d updates", state, len(b.order), b.updates)
	if !b.last.IsZero() {
		line += " · last " + b.last.Format("15:04:05")
	}
	if b.err != nil {
		line += " · " + b.err.Error()
	}
	return line + " · q to quit"
}

func clampUnit(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
