package main

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/rnet/internal/config"
	"github.com/muurk/rnet/internal/logging"
	"github.com/muurk/rnet/internal/protocol"
	"github.com/muurk/rnet/internal/session"
	"github.com/muurk/rnet/internal/transport"
)

// openSession builds the transport from c and a session dispatching to consumer
func openSession(c *config.Config, consumer protocol.Consumer) (*session.Session, error) {
	t, err := transport.New(c.Transport)
	if err != nil {
		return nil, err
	}
	return session.New(t, protocol.NewDispatcher(consumer)), nil
}

// superviseSession runs sess until ctx ends, reconnecting after delay when
// the bus fails. With delay <= 0 the first failure is returned. onFailure,
// if set, sees every failure.
func superviseSession(ctx context.Context, sess *session.Session, delay time.Duration, onFailure func(error)) error {
	for {
		err := sess.Run(ctx)
		if ctx.Err() != nil || err == nil {
			return nil
		}
		if onFailure != nil {
			onFailure(err)
		}
		if delay <= 0 {
			return err
		}

		logging.Warn("Bus session ended, reconnecting",
			zap.Error(err),
			zap.Duration("retry_in", delay),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// transportParams describes the bus link for command headers
func transportParams(c *config.Config) map[string]string {
	params := map[string]string{"Transport": c.Transport.Type}
	switch c.Transport.Type {
	case config.TransportTCP:
		params["Address"] = c.Transport.Address
	default:
		params["Device"] = c.Transport.Device
		params["Baud"] = strconv.Itoa(c.Transport.BaudRate)
	}
	if c.ReconnectDelay > 0 {
		params["Reconnect"] = c.ReconnectDelay.String()
	} else {
		params["Reconnect"] = "off"
	}
	return params
}
