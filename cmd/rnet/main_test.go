package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/rnet/internal/config"
	"github.com/muurk/rnet/internal/protocol"
	"github.com/muurk/rnet/internal/session"
	"github.com/muurk/rnet/internal/transport"
	"github.com/muurk/rnet/internal/ui"
)

const zoneInfoHex = "F0 00 00 70 01 00 00 7F 00 04 02 00 00 00 00 00 00 00 00 00 01 02 14"

func TestDecodeCommand_JSON(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	defer func() { decodeJSON = false }()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{"decode", "--json", zoneInfoHex, "F0 01 02"})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1 (unrecognized frames are skipped): %q", len(lines), out.String())
	}
	want := `{"zone":{"controller":1,"zone":2},"updates":[` +
		`{"channel":"status","value":true},` +
		`{"channel":"volume","value":40},` +
		`{"channel":"source","value":3}]}`
	if lines[0] != want {
		t.Errorf("output = %s\nwant %s", lines[0], want)
	}
}

func TestDecodeCommand_BadHex(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{"decode", "zz"})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err == nil {
		t.Error("Execute() with bad hex should fail")
	}
}

func TestVersionCommand(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.HasPrefix(out.String(), "rnet ") || !strings.Contains(out.String(), "commit:") {
		t.Errorf("version output = %q", out.String())
	}
}

func TestDecoder_StreamResyncsAcrossLines(t *testing.T) {
	// Noise, then one frame split over two lines
	input := "13 37\n" + zoneInfoHex[:20] + "\n" + zoneInfoHex[20:] + "\n"

	var out, errOut bytes.Buffer
	d := &decoder{
		dispatcher: protocol.NewDispatcher(nil),
		printer:    ui.NewPrinter(&out, nil),
		out:        &out,
		errOut:     &errOut,
		json:       true,
	}
	if err := d.stream(newHexReader(strings.NewReader(input))); err != nil {
		t.Fatalf("stream() error = %v", err)
	}

	var update struct {
		Zone protocol.ZoneID `json:"zone"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(out.Bytes()), &update); err != nil {
		t.Fatalf("output %q is not one JSON update: %v", out.String(), err)
	}
	if update.Zone != (protocol.ZoneID{Controller: 1, Zone: 2}) {
		t.Errorf("zone = %v", update.Zone)
	}
}

func TestDecoder_PrintsUnrecognized(t *testing.T) {
	var out bytes.Buffer
	d := &decoder{
		dispatcher: protocol.NewDispatcher(nil),
		printer:    ui.NewPrinter(&out, nil),
		out:        &out,
		errOut:     io.Discard,
	}
	if err := d.decode(protocol.Frame{0xF0, 0x01}); err != nil {
		t.Fatalf("decode() error = %v", err)
	}
	if !strings.Contains(out.String(), "unrecognized") {
		t.Errorf("output = %q", out.String())
	}
}

func TestHexReader_InvalidLine(t *testing.T) {
	r := newHexReader(strings.NewReader("F0 00\nnot hex\n"))
	buf := make([]byte, 8)

	if n, err := r.Read(buf); err != nil || n != 2 {
		t.Fatalf("first Read() = %d, %v", n, err)
	}
	if _, err := r.Read(buf); err == nil {
		t.Error("Read() of invalid line should fail")
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	newCmd := func() *cobra.Command {
		cmd := &cobra.Command{}
		f := cmd.Flags()
		f.StringVar(&transportType, "transport", "", "")
		f.StringVar(&devicePath, "device", "", "")
		f.StringVar(&bridgeAddress, "address", "", "")
		f.IntVar(&baudRate, "baud", config.DefaultBaudRate, "")
		f.DurationVar(&readTimeout, "read-timeout", config.DefaultReadTimeout, "")
		f.DurationVar(&reconnectDelay, "reconnect-delay", config.DefaultReconnectDelay, "")
		return cmd
	}

	t.Run("address implies tcp", func(t *testing.T) {
		cmd := newCmd()
		_ = cmd.Flags().Set("address", "bridge:4001")
		c := config.NewConfig()
		applyFlagOverrides(cmd, c)
		if c.Transport.Type != config.TransportTCP || c.Transport.Address != "bridge:4001" {
			t.Errorf("transport = %+v", c.Transport)
		}
	})

	t.Run("unset flags keep file values", func(t *testing.T) {
		cmd := newCmd()
		c := config.NewConfig()
		c.Transport.Device = "/dev/ttyAMA0"
		c.ReconnectDelay = time.Minute
		applyFlagOverrides(cmd, c)
		if c.Transport.Device != "/dev/ttyAMA0" || c.ReconnectDelay != time.Minute {
			t.Errorf("file values overwritten: %+v", c)
		}
	})

	t.Run("explicit values", func(t *testing.T) {
		cmd := newCmd()
		_ = cmd.Flags().Set("device", "/dev/ttyUSB3")
		_ = cmd.Flags().Set("baud", "9600")
		_ = cmd.Flags().Set("read-timeout", "250ms")
		_ = cmd.Flags().Set("reconnect-delay", "0")
		c := config.NewConfig()
		applyFlagOverrides(cmd, c)
		if c.Transport.Device != "/dev/ttyUSB3" || c.Transport.BaudRate != 9600 {
			t.Errorf("transport = %+v", c.Transport)
		}
		if c.Transport.ReadTimeout != 250*time.Millisecond {
			t.Errorf("ReadTimeout = %v", c.Transport.ReadTimeout)
		}
		if c.ReconnectDelay != 0 {
			t.Errorf("ReconnectDelay = %v, want 0", c.ReconnectDelay)
		}
	})
}

// failingTransport never connects
type failingTransport struct {
	mu       sync.Mutex
	attempts int
}

func (f *failingTransport) Connect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	return &transport.ConnectionError{Reason: transport.ReasonNotFound, Device: "missing"}
}

func (f *failingTransport) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts
}

func (f *failingTransport) Disconnect() error { return nil }
func (f *failingTransport) IsConnected() bool { return false }
func (f *failingTransport) Name() string      { return "missing" }
func (f *failingTransport) Reader() io.Reader { return strings.NewReader("") }
func (f *failingTransport) Writer() io.Writer { return io.Discard }

func TestSuperviseSession_NoReconnect(t *testing.T) {
	ft := &failingTransport{}
	sess := session.New(ft, protocol.NewDispatcher(nil))

	var failures int
	err := superviseSession(context.Background(), sess, 0, func(error) { failures++ })
	if !transport.IsConnectionError(err) {
		t.Errorf("error = %v, want connection error", err)
	}
	if failures != 1 || ft.count() != 1 {
		t.Errorf("failures = %d, attempts = %d, want 1 and 1", failures, ft.count())
	}
}

func TestSuperviseSession_RetriesUntilCancelled(t *testing.T) {
	ft := &failingTransport{}
	sess := session.New(ft, protocol.NewDispatcher(nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- superviseSession(ctx, sess, 5*time.Millisecond, nil) }()

	deadline := time.Now().Add(2 * time.Second)
	for ft.count() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("only %d attempts", ft.count())
		}
		time.Sleep(time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("superviseSession() = %v, want nil after cancel", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("superviseSession() did not return")
	}
}

func TestTransportParams(t *testing.T) {
	c := config.NewConfig()
	c.Transport.Device = "/dev/ttyUSB0"
	p := transportParams(c)
	if p["Device"] != "/dev/ttyUSB0" || p["Baud"] != "19200" || p["Reconnect"] != "5s" {
		t.Errorf("serial params = %v", p)
	}

	c.Transport.Type = config.TransportTCP
	c.Transport.Address = "bridge:4001"
	c.ReconnectDelay = 0
	p = transportParams(c)
	if p["Address"] != "bridge:4001" || p["Reconnect"] != "off" {
		t.Errorf("tcp params = %v", p)
	}
	if _, ok := p["Device"]; ok {
		t.Error("tcp params should not include Device")
	}
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestConfigCommands(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "rnet.yaml")
	defer func() {
		configPath = ""
		forceInit = false
	}()

	out, err := runRoot(t, "config", "path", "--config", path)
	if err != nil {
		t.Fatalf("config path error = %v", err)
	}
	if strings.TrimSpace(out) != path {
		t.Errorf("config path = %q, want %q", out, path)
	}

	if _, err := runRoot(t, "config", "init", "--config", path); err != nil {
		t.Fatalf("config init error = %v", err)
	}
	if _, err := runRoot(t, "config", "init", "--config", path); err == nil {
		t.Error("second config init without --force should fail")
	}

	if _, err := runRoot(t, "config", "label", "--config", path, "2", "3", "Kitchen"); err != nil {
		t.Fatalf("config label error = %v", err)
	}
	loaded, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := loaded.ZoneLabel(2, 3); got != "Kitchen" {
		t.Errorf("ZoneLabel(2, 3) = %q, want Kitchen", got)
	}

	out, err = runRoot(t, "config", "show", "--config", path)
	if err != nil {
		t.Fatalf("config show error = %v", err)
	}
	if !strings.Contains(out, "Kitchen") || !strings.Contains(out, "baud_rate: 19200") {
		t.Errorf("config show output = %q", out)
	}
}

func TestParseBusNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"1", 1, false},
		{"12", 12, false},
		{"0", 0, true},
		{"-2", 0, true},
		{"x", 0, true},
	}
	for _, tt := range tests {
		got, err := parseBusNumber("zone", tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseBusNumber(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("parseBusNumber(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
