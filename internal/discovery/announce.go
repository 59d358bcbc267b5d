package discovery

import (
	"fmt"
	"sort"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/rnet/internal/logging"
)

// TXT record keys published with the service
const (
	TXTVersion = "version"
	TXTDevice  = "device"
	TXTPath    = "path"
)

// DefaultStreamPath is the WebSocket path advertised when none is given
const DefaultStreamPath = "/ws"

// Announcement is a running mDNS registration
type Announcement struct {
	server   *zeroconf.Server
	instance string
}

// Announce registers the update stream on port under instance. The
// registration lives until Shutdown is called.
func Announce(instance string, port int, metadata map[string]string) (*Announcement, error) {
	if instance == "" {
		return nil, fmt.Errorf("instance name is required")
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("invalid port %d", port)
	}

	txt := TXTRecords(metadata)
	server, err := zeroconf.Register(instance, ServiceType, ServiceDomain, port, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}

	logging.Info("Announcing update stream",
		zap.String("instance", instance),
		zap.String("service", ServiceType),
		zap.Int("port", port),
		zap.Strings("txt", txt),
	)

	return &Announcement{server: server, instance: instance}, nil
}

// Shutdown withdraws the registration
func (a *Announcement) Shutdown() {
	if a == nil || a.server == nil {
		return
	}
	a.server.Shutdown()
	logging.Debug("mDNS announcement withdrawn", zap.String("instance", a.instance))
}

// TXTRecords renders metadata as sorted "key=value" strings, adding the
// default stream path when none is set.
func TXTRecords(metadata map[string]string) []string {
	records := make([]string, 0, len(metadata)+1)
	hasPath := false
	for k, v := range metadata {
		if k == "" {
			continue
		}
		if k == TXTPath {
			hasPath = true
		}
		records = append(records, k+"="+v)
	}
	if !hasPath {
		records = append(records, TXTPath+"="+DefaultStreamPath)
	}
	sort.Strings(records)
	return records
}
