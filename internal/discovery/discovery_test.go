package discovery

import (
	"net"
	"reflect"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func TestParseServiceEntry(t *testing.T) {
	tests := []struct {
		name     string
		entry    *zeroconf.ServiceEntry
		wantNil  bool
		wantIP   string
		wantPort int
	}{
		{
			name: "IPv4 endpoint",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "RNET bus"},
				HostName:      "pi.local.",
				Port:          8080,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.4.16")},
				Text:          []string{"path=/ws", "version=1.0"},
			},
			wantIP:   "192.168.4.16",
			wantPort: 8080,
		},
		{
			name: "IPv6 only",
			entry: &zeroconf.ServiceEntry{
				HostName: "pi.local.",
				Port:     9000,
				AddrIPv6: []net.IP{net.ParseIP("fe80::1")},
			},
			wantIP:   "fe80::1",
			wantPort: 9000,
		},
		{
			name: "both families prefers IPv4",
			entry: &zeroconf.ServiceEntry{
				HostName: "pi.local.",
				Port:     8080,
				AddrIPv4: []net.IP{net.ParseIP("10.0.0.5")},
				AddrIPv6: []net.IP{net.ParseIP("fe80::2")},
			},
			wantIP:   "10.0.0.5",
			wantPort: 8080,
		},
		{
			name: "no address",
			entry: &zeroconf.ServiceEntry{
				HostName: "pi.local.",
				Port:     8080,
			},
			wantNil: true,
		},
		{
			name: "no port",
			entry: &zeroconf.ServiceEntry{
				HostName: "pi.local.",
				AddrIPv4: []net.IP{net.ParseIP("10.0.0.5")},
			},
			wantNil: true,
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ep := parseServiceEntry(tt.entry)

			if tt.wantNil {
				if ep != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", ep)
				}
				return
			}
			if ep == nil {
				t.Fatal("parseServiceEntry() = nil, want endpoint")
			}
			if ep.IP != tt.wantIP {
				t.Errorf("IP = %v, want %v", ep.IP, tt.wantIP)
			}
			if ep.Port != tt.wantPort {
				t.Errorf("Port = %v, want %v", ep.Port, tt.wantPort)
			}
			if ep.Instance != tt.entry.Instance {
				t.Errorf("Instance = %q, want %q", ep.Instance, tt.entry.Instance)
			}
			if time.Since(ep.DiscoveredAt) > time.Second {
				t.Errorf("DiscoveredAt is not recent: %v", ep.DiscoveredAt)
			}
		})
	}
}

func TestParseTXT(t *testing.T) {
	got := parseTXT([]string{"path=/ws", "version=1.0", "flag", "=orphan", "device=/dev/tty=USB0"})
	want := map[string]string{
		"path":    "/ws",
		"version": "1.0",
		"flag":    "",
		"device":  "/dev/tty=USB0",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseTXT() = %v, want %v", got, want)
	}
}

func TestTXTRecords(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]string
		want []string
	}{
		{
			name: "adds default path",
			in:   map[string]string{TXTVersion: "1.2.0", TXTDevice: "/dev/ttyUSB0"},
			want: []string{"device=/dev/ttyUSB0", "path=/ws", "version=1.2.0"},
		},
		{
			name: "keeps explicit path",
			in:   map[string]string{TXTPath: "/stream"},
			want: []string{"path=/stream"},
		},
		{
			name: "nil metadata",
			in:   nil,
			want: []string{"path=/ws"},
		},
		{
			name: "skips empty key",
			in:   map[string]string{"": "x"},
			want: []string{"path=/ws"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TXTRecords(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TXTRecords() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTXTRecords_RoundTrip(t *testing.T) {
	in := map[string]string{TXTVersion: "dev", TXTDevice: "bridge:4001"}
	got := parseTXT(TXTRecords(in))
	if got[TXTVersion] != "dev" || got[TXTDevice] != "bridge:4001" || got[TXTPath] != DefaultStreamPath {
		t.Errorf("round trip = %v", got)
	}
}

func TestEndpointURLs(t *testing.T) {
	ep := &Endpoint{Instance: "RNET bus", Hostname: "pi.local.", IP: "192.168.1.20", Port: 8080}
	if got := ep.BaseURL(); got != "http://192.168.1.20:8080" {
		t.Errorf("BaseURL() = %q", got)
	}
	if got := ep.StreamURL(); got != "ws://192.168.1.20:8080/ws" {
		t.Errorf("StreamURL() = %q", got)
	}

	ep.Metadata = map[string]string{TXTPath: "/stream"}
	if got := ep.StreamURL(); got != "ws://192.168.1.20:8080/stream" {
		t.Errorf("StreamURL() with path = %q", got)
	}

	v6 := &Endpoint{IP: "fe80::1", Port: 9000}
	if got := v6.BaseURL(); got != "http://[fe80::1]:9000" {
		t.Errorf("IPv6 BaseURL() = %q", got)
	}
}

func TestAnnounce_InvalidArguments(t *testing.T) {
	if _, err := Announce("", 8080, nil); err == nil {
		t.Error("Announce() with empty instance should fail")
	}
	if _, err := Announce("RNET bus", 0, nil); err == nil {
		t.Error("Announce() with port 0 should fail")
	}
	if _, err := Announce("RNET bus", 70000, nil); err == nil {
		t.Error("Announce() with port 70000 should fail")
	}
}

func TestAnnouncement_ShutdownNil(t *testing.T) {
	var a *Announcement
	a.Shutdown()
	(&Announcement{}).Shutdown()
}

func TestNewScanner(t *testing.T) {
	if s := NewScanner(); s.Timeout != DefaultScanTimeout {
		t.Errorf("Timeout = %v, want %v", s.Timeout, DefaultScanTimeout)
	}
}
