package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/muurk/rnet/internal/protocol"
)

// Printer writes styled output line by line. It is a protocol.Consumer,
// printing each update as it arrives.
type Printer struct {
	mu     sync.Mutex
	out    io.Writer
	width  int
	labels LabelFunc
	now    func() time.Time
}

// NewPrinter creates a new Printer that writes to the given writer.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer, labels LabelFunc) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{
		out:    w,
		width:  GetTerminalWidth(),
		labels: labels,
		now:    time.Now,
	}
}

// Width returns the terminal width used by this printer
func (p *Printer) Width() int {
	return p.width
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintln(p.out, content)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(title, command string, params map[string]string) {
	p.Println(NewHeader(title, command, params).SetWidth(p.width).Render())
}

// PrintError prints an error box with troubleshooting tips
func (p *Printer) PrintError(title string, err error, troubleshooting []string) {
	p.Println(RenderErrorBox(title, err, troubleshooting, p.width))
}

// PrintFrame prints a decoded (or unrecognized) frame
func (p *Printer) PrintFrame(f protocol.Frame, parser string, update *protocol.ZoneStateUpdate) {
	p.Println(FormatFrame(f, parser, update, p.labels))
}

// HandleUpdate implements protocol.Consumer
func (p *Printer) HandleUpdate(update protocol.ZoneStateUpdate) {
	p.Println(FormatUpdate(p.now(), update, p.labels))
}
