package discovery

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/rnet/internal/logging"
)

const (
	// ServiceType is the mDNS service type of an RNET update stream
	ServiceType = "_rnet._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for a browse
	DefaultScanTimeout = 5 * time.Second
)

// Scanner browses the local network for RNET update streams
type Scanner struct {
	// Timeout is the maximum time to wait for answers
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// Scan collects every endpoint that answers before the timeout or ctx ends.
func (s *Scanner) Scan(ctx context.Context) ([]*Endpoint, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	var (
		mu        sync.Mutex
		endpoints []*Endpoint
		seen      = make(map[string]bool)
	)
	collected := make(chan struct{})

	// The resolver closes entries once ctx is done
	go func() {
		defer close(collected)
		for entry := range entries {
			ep := parseServiceEntry(entry)
			if ep == nil {
				continue
			}
			key := ep.Instance + "@" + ep.hostPort()
			mu.Lock()
			if !seen[key] {
				seen[key] = true
				endpoints = append(endpoints, ep)
				logging.Debug("RNET endpoint found",
					zap.String("instance", ep.Instance),
					zap.String("addr", ep.hostPort()),
				)
			}
			mu.Unlock()
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()
	select {
	case <-collected:
	case <-time.After(time.Second):
		logging.Debug("mDNS resolver did not close its entry channel")
	}

	mu.Lock()
	defer mu.Unlock()
	return endpoints, nil
}

// parseServiceEntry converts a zeroconf service entry to an Endpoint.
// Returns nil when the entry has no usable address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Endpoint {
	if entry == nil || entry.Port == 0 {
		return nil
	}

	// Prefer IPv4
	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	return &Endpoint{
		Instance:     entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         entry.Port,
		Metadata:     parseTXT(entry.Text),
		DiscoveredAt: time.Now(),
	}
}

// parseTXT splits "key=value" TXT strings. A bare key maps to "".
func parseTXT(records []string) map[string]string {
	metadata := make(map[string]string, len(records))
	for _, txt := range records {
		key, value, _ := strings.Cut(txt, "=")
		if key == "" {
			continue
		}
		metadata[key] = value
	}
	return metadata
}
