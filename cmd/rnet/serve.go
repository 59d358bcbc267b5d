package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/muurk/rnet/internal/config"
	"github.com/muurk/rnet/internal/discovery"
	"github.com/muurk/rnet/internal/logging"
	"github.com/muurk/rnet/internal/protocol"
	"github.com/muurk/rnet/internal/server"
	"github.com/muurk/rnet/internal/session"
	"github.com/muurk/rnet/internal/ui"
	"github.com/muurk/rnet/internal/version"
)

var (
	listenAddr   string
	announce     bool
	instanceName string
	echoUpdates  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Stream zone updates over WebSocket",
	Long: `Connect to the bus and serve decoded zone updates to network clients.

Endpoints:
  GET /ws                          WebSocket stream, one JSON message per update
  GET /zones                       last known state of every zone
  GET /zones/{controller}/{zone}   last known state of one zone
  GET /healthz                     bus connectivity and counters

With --announce the stream is advertised over mDNS as a _rnet._tcp service.`,
	Example: `  # Serve a local serial adapter on the default port
  rnet serve --device /dev/ttyUSB0

  # Serve on a specific address and advertise over mDNS
  rnet serve --device /dev/ttyUSB0 --listen :9000 --announce`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", config.DefaultListen, "HTTP/WebSocket listen address")
	serveCmd.Flags().BoolVar(&announce, "announce", false, "Advertise the stream over mDNS")
	serveCmd.Flags().StringVar(&instanceName, "name", config.DefaultInstanceName, "mDNS instance name")
	serveCmd.Flags().BoolVar(&echoUpdates, "echo", false, "Also print each update to the console")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	if flags.Changed("listen") {
		cfg.Server.Listen = listenAddr
	}
	if flags.Changed("announce") {
		cfg.Server.Announce = announce
	}
	if flags.Changed("name") {
		cfg.Server.InstanceName = instanceName
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The server reports session stats; the session feeds the server
	var sess *session.Session
	srv := server.New(server.Config{
		Listen: cfg.Server.Listen,
		Labels: cfg.ZoneLabel,
		Status: func() session.Stats { return sess.Stats() },
	})

	printer := ui.NewPrinter(cmd.OutOrStdout(), cfg.ZoneLabel)
	var consumer protocol.Consumer = srv
	if echoUpdates {
		consumer = protocol.MultiConsumer(srv, printer)
	}

	sess, err := openSession(cfg, consumer)
	if err != nil {
		return err
	}

	if err := srv.Listen(); err != nil {
		return err
	}

	params := transportParams(cfg)
	params["Listen"] = srv.Addr().String()
	printer.PrintHeader("Update Stream", "rnet serve", params)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Start(ctx)
	})

	g.Go(func() error {
		err := superviseSession(ctx, sess, cfg.ReconnectDelay, func(err error) {
			logging.Error("Bus connection failed", zap.Error(err))
		})
		if err != nil {
			return fmt.Errorf("bus session: %w", err)
		}
		return nil
	})

	if cfg.Server.Announce {
		g.Go(func() error {
			a, err := discovery.Announce(cfg.Server.InstanceName, srv.Port(), map[string]string{
				discovery.TXTVersion: version.Version,
				discovery.TXTDevice:  sess.Name(),
			})
			if err != nil {
				// The stream still works without mDNS
				logging.Warn("mDNS announcement failed", zap.Error(err))
				return nil
			}
			<-ctx.Done()
			a.Shutdown()
			return nil
		})
	}

	err = g.Wait()
	if ctx.Err() != nil && err == nil {
		logging.Info("Update stream stopped")
	}
	return err
}
