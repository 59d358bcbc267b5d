// Package discovery advertises and finds RNET update streams over mDNS.
//
// A serving process announces itself as a "_rnet._tcp" service on the port
// of its HTTP/WebSocket endpoint. Clients browse for that service type to
// find streams without configuring addresses.
//
// # Announcing
//
//	a, err := discovery.Announce("RNET bus", 8080, map[string]string{
//	    discovery.TXTVersion: version.Version,
//	})
//	if err != nil {
//	    return err
//	}
//	defer a.Shutdown()
//
// # Browsing
//
//	endpoints, err := discovery.NewScanner().Scan(ctx)
//	for _, ep := range endpoints {
//	    fmt.Println(ep.Instance, ep.StreamURL())
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Clients must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
