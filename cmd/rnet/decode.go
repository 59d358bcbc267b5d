package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/muurk/rnet/internal/protocol"
	"github.com/muurk/rnet/internal/ui"
)

var (
	decodeRaw  bool
	decodeJSON bool
)

var decodeCmd = &cobra.Command{
	Use:   "decode [hex-frame...]",
	Short: "Decode captured RNET frames",
	Long: `Decode frames without a bus connection.

Each argument is one frame in hex; spaces, colons, commas and 0x prefixes are
ignored. Without arguments, hex text is read from stdin and treated as a
continuous byte stream, so frames may span lines and noise between frames is
skipped. With --raw, stdin is read as binary capture data.`,
	Example: `  # Decode a single frame
  rnet decode "F0 00 00 70 01 00 00 7F 00 04 02 00 00 00 00 00 00 00 00 00 01 02 14"

  # Decode a raw serial capture
  rnet decode --raw < capture.bin

  # Emit JSON for scripting
  cat frames.txt | rnet decode --json`,
	RunE: runDecode,
}

func init() {
	decodeCmd.Flags().BoolVar(&decodeRaw, "raw", false, "Read stdin as binary instead of hex text")
	decodeCmd.Flags().BoolVar(&decodeJSON, "json", false, "Print one JSON object per decoded update")
	rootCmd.AddCommand(decodeCmd)
}

func runDecode(cmd *cobra.Command, args []string) error {
	d := &decoder{
		dispatcher: protocol.NewDispatcher(nil),
		printer:    ui.NewPrinter(cmd.OutOrStdout(), cfg.ZoneLabel),
		out:        cmd.OutOrStdout(),
		errOut:     cmd.ErrOrStderr(),
		json:       decodeJSON,
	}

	if len(args) > 0 {
		for _, arg := range args {
			f, err := protocol.ParseHexFrame(arg)
			if err != nil {
				return err
			}
			if err := d.decode(f); err != nil {
				return err
			}
		}
		return nil
	}

	var in io.Reader = cmd.InOrStdin()
	if !decodeRaw {
		in = newHexReader(in)
	}
	return d.stream(in)
}

// decoder decodes frames and prints the result
type decoder struct {
	dispatcher *protocol.Dispatcher
	printer    *ui.Printer
	out        io.Writer
	errOut     io.Writer
	json       bool
}

func (d *decoder) decode(f protocol.Frame) error {
	update, parser := d.dispatcher.Decode(f)
	if d.json {
		if update == nil {
			return nil
		}
		data, err := json.Marshal(update)
		if err != nil {
			return fmt.Errorf("failed to encode update: %w", err)
		}
		_, err = fmt.Fprintln(d.out, string(data))
		return err
	}

	name := ""
	if parser != nil {
		name = parser.Name()
	}
	d.printer.PrintFrame(f, name, update)
	return nil
}

// stream assembles frames from r until EOF
func (d *decoder) stream(r io.Reader) error {
	a := protocol.NewAssemblerFor(r, d.dispatcher)
	for f, err := range a.All() {
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if err := d.decode(f); err != nil {
			return err
		}
	}
	if a.Discarded() > 0 && !d.json {
		fmt.Fprintf(d.errOut, "%d bytes skipped outside frames\n", a.Discarded())
	}
	return nil
}

// hexReader turns lines of hex text into the bytes they describe
type hexReader struct {
	scanner *bufio.Scanner
	pending []byte
}

func newHexReader(r io.Reader) *hexReader {
	return &hexReader{scanner: bufio.NewScanner(r)}
}

func (h *hexReader) Read(p []byte) (int, error) {
	for len(h.pending) == 0 {
		if !h.scanner.Scan() {
			if err := h.scanner.Err(); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
		f, err := protocol.ParseHexFrame(h.scanner.Text())
		if err != nil {
			return 0, err
		}
		h.pending = f
	}
	n := copy(p, h.pending)
	h.pending = h.pending[n:]
	return n, nil
}
