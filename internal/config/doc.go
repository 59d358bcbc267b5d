// Package config provides YAML configuration for the RNET tools.
//
// The file selects the bus transport, configures the update stream server
// and stores display labels for controllers and zones. Command line flags
// override file values.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/rnet/config.yaml or $HOME/.config/rnet/config.yaml
//   - macOS: $HOME/.config/rnet/config.yaml
//   - Windows: %LOCALAPPDATA%\rnet\config.yaml
//
// # Example
//
//	version: 1
//	transport:
//	  type: serial
//	  device: /dev/ttyUSB0
//	  baud_rate: 19200
//	  read_timeout: 1s
//	server:
//	  listen: ":8080"
//	  announce: true
//	reconnect_delay: 5s
//	controllers:
//	  1:
//	    name: Main
//	    zones:
//	      1: Kitchen
//	      2: Patio
//
// # Usage Example
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cfg.SetZoneLabel(1, 3, "Den")
//	if err := cfg.Save(""); err != nil {
//	    log.Fatal(err)
//	}
//
// Every Config is an independent value. Nothing here is global, so two
// transports built from two configs never share state.
package config
