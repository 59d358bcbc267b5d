package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Endpoint is an RNET update stream found on the local network
type Endpoint struct {
	// Instance is the advertised instance name (e.g. "RNET bus")
	Instance string

	// Hostname is the mDNS hostname of the serving machine
	Hostname string

	// IP is the preferred address, IPv4 when available
	IP string

	Port int

	// Metadata holds the TXT record, e.g. "version", "device", "path"
	Metadata map[string]string

	DiscoveredAt time.Time
}

// String returns a human-readable description of the endpoint
func (e *Endpoint) String() string {
	return fmt.Sprintf("%s (%s) at %s", e.Instance, e.Hostname, e.hostPort())
}

// BaseURL returns the HTTP base URL of the endpoint
func (e *Endpoint) BaseURL() string {
	return "http://" + e.hostPort()
}

// StreamURL returns the WebSocket URL of the update stream
func (e *Endpoint) StreamURL() string {
	path := e.GetMetadata(TXTPath)
	if path == "" {
		path = DefaultStreamPath
	}
	return "ws://" + e.hostPort() + path
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (e *Endpoint) GetMetadata(key string) string {
	if e.Metadata == nil {
		return ""
	}
	return e.Metadata[key]
}

func (e *Endpoint) hostPort() string {
	return net.JoinHostPort(e.IP, strconv.Itoa(e.Port))
}
