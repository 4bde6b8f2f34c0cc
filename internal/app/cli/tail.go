package cli

import (
	"context"

	"inspectd/internal/app/tap"
)

// handleTail streams packets from the tap of a running listen command
func (c *cli) handleTail(ctx context.Context, opts *Options) error {
	path, err := tap.FindSocket(c.cfg.Tap.Dir, opts.Name)
	if err != nil {
		return err
	}

	if err := c.tapClient.Connect(path); err != nil {
		return err
	}
	defer c.tapClient.Close()

	if err := c.tapClient.Subscribe(opts.Apps); err != nil {
		return err
	}

	return c.tapClient.Stream(ctx, c.out)
}
