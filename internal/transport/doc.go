// Package transport provides byte-stream links to an RNET bus.
//
// Two transports are available: SerialTransport for a local RS-232 port and
// TCPTransport for a raw serial-over-IP bridge such as ser2net. Both read
// with a bounded timeout and return (0, nil) when it expires, which lets the
// session loop notice cancellation between reads.
//
// Connect failures are reported as *ConnectionError with a Reason. The
// transports never retry; reconnect policy belongs to the caller.
//
// Every transport is configured through its own config value. No transport
// writes process-wide state, so independent transports can be opened
// concurrently.
package transport
