package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/rnet/internal/discovery"
)

var scanTimeout time.Duration

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find update streams announced on the local network",
	Long: `Browse mDNS for _rnet._tcp services started with 'rnet serve --announce'
and print their WebSocket URLs.`,
	Example: `  # Browse for 5 seconds (default)
  rnet discover

  # Longer browse for slow networks
  rnet discover --timeout 15s`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().DurationVar(&scanTimeout, "timeout", discovery.DefaultScanTimeout, "Browse timeout")
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Browsing for %s services (timeout: %s)...\n\n", discovery.ServiceType, scanTimeout)

	scanner := discovery.NewScanner()
	scanner.Timeout = scanTimeout

	endpoints, err := scanner.Scan(cmd.Context())
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	if len(endpoints) == 0 {
		fmt.Fprintln(out, "No update streams found.")
		fmt.Fprintln(out, "\nTroubleshooting:")
		fmt.Fprintln(out, "  - Start the server with 'rnet serve --announce'")
		fmt.Fprintln(out, "  - Check that multicast (UDP 5353) is allowed")
		fmt.Fprintln(out, "  - Try increasing --timeout")
		return nil
	}

	fmt.Fprintf(out, "Found %d stream(s):\n\n", len(endpoints))
	for i, ep := range endpoints {
		fmt.Fprintf(out, "%d. %s\n", i+1, ep.Instance)
		fmt.Fprintf(out, "   Host:    %s\n", ep.Hostname)
		fmt.Fprintf(out, "   Stream:  %s\n", ep.StreamURL())
		fmt.Fprintf(out, "   Zones:   %s/zones\n", ep.BaseURL())
		if v := ep.GetMetadata(discovery.TXTVersion); v != "" {
			fmt.Fprintf(out, "   Version: %s\n", v)
		}
		if dev := ep.GetMetadata(discovery.TXTDevice); dev != "" {
			fmt.Fprintf(out, "   Bus:     %s\n", dev)
		}
		fmt.Fprintln(out)
	}
	return nil
}
