package cli

import (
	"context"

	"inspectd/internal/app/console"
	"inspectd/internal/config"
)

// handleRelay runs the forwarder and its HTTP ingress until ctx ends
func (c *cli) handleRelay(ctx context.Context) error {
	if err := c.forwarder.Start(ctx); err != nil {
		return err
	}

	defer func() {
		if err := c.forwarder.Stop(); err != nil {
			c.log.Warn().Err(err).Msg("Failed to close relay target connection")
		}
	}()

	if err := c.relay.Start(ctx); err != nil {
		return err
	}

	c.formatter.RenderBanner(c.out, config.AppName+" relay", []console.Field{
		{Label: "address", Value: c.relay.Addr()},
		{Label: "target", Value: c.cfg.Relay.Target},
	})

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.cfg.Listener.ShutdownGrace)
	defer cancel()

	return c.relay.Stop(shutdownCtx)
}
