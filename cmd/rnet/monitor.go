package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/muurk/rnet/internal/session"
	"github.com/muurk/rnet/internal/ui"
)

var liveBoard bool

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Print zone updates as they appear on the bus",
	Long: `Connect to the bus and print every decoded zone update.

By default each update is printed on its own line. With --live a table of
all zones seen so far is kept on screen and updated in place.`,
	Example: `  # Monitor a local serial adapter
  rnet monitor --device /dev/ttyUSB0

  # Monitor through a serial-over-TCP bridge with a live zone table
  rnet monitor --address 192.168.1.40:4001 --live

  # Exit on the first bus failure instead of reconnecting
  rnet monitor --device /dev/ttyUSB0 --reconnect-delay 0`,
	RunE: runMonitor,
}

func init() {
	monitorCmd.Flags().BoolVar(&liveBoard, "live", false, "Show a live zone table instead of a line per update")
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if liveBoard {
		return runBoard(ctx)
	}

	printer := ui.NewPrinter(cmd.OutOrStdout(), cfg.ZoneLabel)
	printer.PrintHeader("Bus Monitor", "rnet monitor", transportParams(cfg))

	sess, err := openSession(cfg, printer)
	if err != nil {
		return err
	}

	err = superviseSession(ctx, sess, cfg.ReconnectDelay, func(err error) {
		printer.PrintError("Bus connection failed", err, ui.ConnectionTips(err))
	})
	if err != nil {
		return fmt.Errorf("bus monitor stopped: %w", err)
	}
	return nil
}

// runBoard drives the Bubble Tea zone table until the user quits or ctx ends
func runBoard(ctx context.Context) error {
	board := ui.NewBoard("RNET zones", cfg.ZoneLabel)
	p := tea.NewProgram(board, tea.WithContext(ctx), tea.WithAltScreen())

	sess, err := openSession(cfg, ui.Consumer(p))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- superviseSession(ctx, sess, cfg.ReconnectDelay, func(err error) {
			p.Send(ui.StatusMsg{Connected: false, Err: err})
		})
	}()
	go reportConnection(ctx, p, sess)

	_, runErr := p.Run()
	cancel()
	sessErr := <-done

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return runErr
	}
	return sessErr
}

// reportConnection forwards connection state changes to the board
func reportConnection(ctx context.Context, p *tea.Program, sess *session.Session) {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	last := false
	p.Send(ui.StatusMsg{Connected: false})
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if now := sess.Connected(); now != last {
				last = now
				if now {
					p.Send(ui.StatusMsg{Connected: true})
				}
			}
		}
	}
}

