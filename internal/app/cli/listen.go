package cli

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"inspectd/internal/app/bus"
	"inspectd/internal/app/console"
	"inspectd/internal/app/errors"
	"inspectd/internal/app/packet"
	"inspectd/internal/app/recorder"
	"inspectd/internal/app/tap"
	"inspectd/internal/config"
)

// sinks are the consumers of received packets
type sinks struct {
	printer  console.Printer
	recorder recorder.Recorder
	tap      tap.Server
}

// handleListen starts the listeners and consumes their events until ctx ends
func (c *cli) handleListen(ctx context.Context, opts *Options) error {
	filter, err := console.NewFilter(opts.Apps, opts.Sessions)
	if err != nil {
		return err
	}

	out := sinks{printer: console.NewPrinter(c.out, c.formatter, filter)}

	if opts.Record != "" {
		rec, err := recorder.New(opts.Record, config.RecordFlushInterval, c.log)
		if err != nil {
			return err
		}

		defer func() {
			if err := rec.Close(); err != nil {
				c.log.Warn().Err(err).Msgf("Failed to close recording %s", rec.Path())
			}
		}()

		out.recorder = rec
	}

	listeners := c.listeners.Listeners()
	if len(listeners) == 0 {
		return errors.ErrNoListeners
	}

	c.listeners.Attach(c.bus)
	events := c.bus.Subscribe(ctx)

	if err := c.listeners.Start(ctx); err != nil {
		return err
	}

	defer c.listeners.Stop()

	names := make([]string, 0, len(listeners))
	fields := make([]console.Field, 0, len(listeners)+2)

	for _, l := range listeners {
		names = append(names, l.Name())
		fields = append(fields, console.Field{Label: l.Name(), Value: l.Addr()})
	}

	if c.cfg.Tap.Enabled {
		if err := c.tap.Start(ctx, names); err != nil {
			c.log.Warn().Err(err).Msg("Tap unavailable, tail will not work")
		} else {
			defer c.tap.Stop()

			out.tap = c.tap
			fields = append(fields, console.Field{Label: "tap", Value: c.tap.SocketPath()})
		}
	}

	if c.cfg.Metrics.Address != "" {
		stop, err := c.serveMetrics(ctx)
		if err != nil {
			return err
		}

		defer stop()

		fields = append(fields, console.Field{Label: "metrics", Value: c.cfg.Metrics.Address})
	}

	if out.recorder != nil {
		fields = append(fields, console.Field{Label: "record", Value: out.recorder.Path()})
	}

	c.formatter.RenderBanner(c.out, config.AppName+" listening", fields)

	c.consume(events, out)

	c.log.Info().Msgf("Printed %d packet(s)", out.printer.Printed())

	if dropped := c.bus.Dropped(); dropped > 0 {
		c.log.Warn().Msgf("Dropped %d event(s) while the consumer was behind, output and recording are incomplete", dropped)
	}

	return nil
}

// consume dispatches bus events until the subscription is closed
func (c *cli) consume(events <-chan bus.Message, out sinks) {
	for msg := range events {
		switch data := msg.Data.(type) {
		case bus.PacketReceived:
			c.deliver(out, data.Transport, data.ConnID, data.Packet)
		case bus.ClientConnected:
			c.log.Info().Msgf("%s client %s connected from %s", data.Transport, data.ConnID, data.Remote)
		case bus.ClientDisconnected:
			c.log.Info().Msgf("%s client %s disconnected", data.Transport, data.ConnID)
		case bus.ListenerStarted:
			c.log.Debug().Msgf("%s listener started on %s", data.Transport, data.Addr)
		case bus.ListenerStopped:
			c.log.Debug().Msgf("%s listener stopped", data.Transport)
		case bus.Error:
			c.log.Warn().Err(data.Err).Msgf("%s listener error", data.Transport)
			c.reporter.Capture(data.Err, map[string]string{"transport": data.Transport})
		}
	}
}

func (c *cli) deliver(out sinks, transport, connID string, p packet.Packet) {
	out.printer.Print(p)

	if out.recorder != nil {
		if err := out.recorder.Record(p); err != nil {
			c.log.Warn().Err(err).Msg("Failed to record packet")
		}
	}

	if out.tap != nil {
		out.tap.Broadcast(transport, connID, p)
	}
}

// serveMetrics exposes the Prometheus collectors on the configured address
func (c *cli) serveMetrics(ctx context.Context) (func(), error) {
	ln, err := net.Listen("tcp", c.cfg.Metrics.Address)
	if err != nil {
		return nil, errors.Join(errors.ErrFailedToListen, err)
	}

	r := chi.NewRouter()
	r.Handle("/metrics", c.metrics.Handler())

	srv := &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			c.log.Error().Err(err).Msg("Metrics server failed")
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), c.cfg.Listener.ShutdownGrace)
		defer cancel()

		srv.Shutdown(shutdownCtx)
	}, nil
}
