// Rnet reads a Russound RNET bus and reports zone state changes.
//
// It decodes power, volume and source updates from a serial port or a
// serial-over-TCP bridge, prints them to the console, and can serve them to
// other programs as a WebSocket stream.
//
// Usage:
//
//	rnet [command] [flags]
//
// See 'rnet --help' for available commands.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/rnet/internal/config"
	"github.com/muurk/rnet/internal/logging"
	"github.com/muurk/rnet/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logging.Sync()
}

// Global flags
var (
	configPath     string
	logLevel       string
	transportType  string
	devicePath     string
	bridgeAddress  string
	baudRate       int
	readTimeout    time.Duration
	reconnectDelay time.Duration
)

// cfg is loaded before every command runs
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "rnet",
	Short: "RNET bus monitor and decoder",
	Long: `A tool for observing zone state on a Russound RNET bus.

It listens to the bus through a serial port (19200 8N1) or a serial-over-TCP
bridge, decodes zone power, volume and source changes, and prints them or
streams them to network clients.

Settings come from the config file and can be overridden by flags.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.Initialize(logLevel); err != nil {
			return err
		}
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		applyFlagOverrides(cmd, loaded)
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Config file (default is the OS config dir, e.g. ~/.config/rnet/config.yaml)")
	pf.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); defaults to $"+logging.LogLevelEnvVar)
	pf.StringVar(&transportType, "transport", "", "Bus transport: serial or tcp")
	pf.StringVar(&devicePath, "device", "", "Serial device path (e.g. /dev/ttyUSB0)")
	pf.StringVar(&bridgeAddress, "address", "", "host:port of a serial-over-TCP bridge (implies --transport tcp)")
	pf.IntVar(&baudRate, "baud", config.DefaultBaudRate, "Serial baud rate")
	pf.DurationVar(&readTimeout, "read-timeout", config.DefaultReadTimeout, "Bound on a single bus read")
	pf.DurationVar(&reconnectDelay, "reconnect-delay", config.DefaultReconnectDelay, "Wait before reconnecting after a bus failure (0 disables)")

	rootCmd.AddCommand(versionCmd)
}

// applyFlagOverrides copies explicitly set flags over file values
func applyFlagOverrides(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("device") {
		c.Transport.Device = devicePath
		if !flags.Changed("transport") {
			c.Transport.Type = config.TransportSerial
		}
	}
	if flags.Changed("address") {
		c.Transport.Address = bridgeAddress
		if !flags.Changed("transport") {
			c.Transport.Type = config.TransportTCP
		}
	}
	if flags.Changed("transport") {
		c.Transport.Type = transportType
	}
	if flags.Changed("baud") {
		c.Transport.BaudRate = baudRate
	}
	if flags.Changed("read-timeout") {
		c.Transport.ReadTimeout = readTimeout
	}
	if flags.Changed("reconnect-delay") {
		c.ReconnectDelay = reconnectDelay
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "rnet %s (commit: %s) %s\n", version.Version, version.Commit, version.Platform())
	},
}
