package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/muurk/rnet/internal/transport"
	"github.com/muurk/rnet/internal/ui"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports on this machine",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		ports, err := transport.ListSerialPorts()
		if err != nil {
			ui.NewPrinter(out, nil).PrintError("Cannot list serial ports", err, ui.ConnectionTips(err))
			return err
		}
		if len(ports) == 0 {
			fmt.Fprintln(out, "No serial ports found.")
			return nil
		}
		for _, p := range ports {
			marker := " "
			if p == cfg.Transport.Device {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %s\n", marker, p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)
}
