// Package ui renders RNET zone updates for the terminal.
//
// Two output modes are provided:
//
//   - Printer: one styled line per update, suitable for logs and pipes
//   - Board: a live Bubble Tea table with one row per zone, showing
//     power state, a volume bar and the selected source
//
// Both are protocol.Consumer implementations (the Board through Consumer),
// so they plug straight into a dispatcher.
//
// # Logging Integration
//
// This package expects logging to be controlled via the RNET_LOG_LEVEL
// environment variable. When unset, zap logging is silent so the styled
// output stays clean.
package ui
