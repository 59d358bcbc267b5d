// Package server streams decoded RNET zone updates to network clients.
//
// The Server is a protocol.Consumer. Every update it receives is folded
// into a per-zone state cache and broadcast as one JSON text message to
// every WebSocket client.
//
// # Endpoints
//
//	GET /ws                          WebSocket stream of zone updates
//	GET /zones                       last known state of every zone
//	GET /zones/{controller}/{zone}   last known state of one zone
//	GET /healthz                     bus connectivity and counters
//
// # Message Format
//
//	{"zone":{"controller":1,"zone":2},
//	 "updates":[{"channel":"status","value":true},
//	            {"channel":"volume","value":40},
//	            {"channel":"source","value":3}]}
//
// Clients that fall behind by more than a small queue of messages are
// disconnected rather than slowing the bus reader.
//
// # Usage Example
//
//	srv := server.New(server.Config{Listen: ":8080", Status: sess.Stats})
//	disp := protocol.NewDispatcher(srv)
//	go srv.Start(ctx)
package server
