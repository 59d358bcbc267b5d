// Package logging provides structured logging for the RNET bus tools.
//
// This package wraps a zap logger with package-level helpers so the protocol,
// transport and server packages can log without threading a logger through
// every constructor.
//
// # Log Levels
//
//   - Debug: frame hex dumps, unrecognized frames, resync discards
//   - Info: connections, decoded updates, client joins
//   - Warn: dropped clients, reconnect attempts
//   - Error: transport failures
//
// # Configuration
//
// Logging is silent unless a level is given or RNET_LOG_LEVEL is set:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// Output goes to stderr so the console renderer can own stdout.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use once Initialize has
// returned.
package logging
