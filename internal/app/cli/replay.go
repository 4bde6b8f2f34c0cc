package cli

import (
	"context"
	"io"

	"inspectd/internal/app/console"
	"inspectd/internal/app/container"
	"inspectd/internal/app/packet"
)

// handleReplay prints a stored packet stream, optionally following it as it grows
func (c *cli) handleReplay(ctx context.Context, opts *Options) error {
	filter, err := console.NewFilter(opts.Apps, opts.Sessions)
	if err != nil {
		return err
	}

	printer := console.NewPrinter(c.out, c.formatter, filter)

	if opts.Follow {
		c.log.Debug().Msgf("Following %s", opts.File)

		return container.Follow(ctx, opts.File, func(p packet.Packet) error {
			printer.Print(p)
			return nil
		})
	}

	var copts []container.Option
	if opts.Strict {
		copts = append(copts, container.WithStrict())
	}

	r, err := container.Open(opts.File, copts...)
	if err != nil {
		return err
	}
	defer r.Close()

	for {
		if ctx.Err() != nil {
			return nil
		}

		p, err := r.Next()
		if err == io.EOF {
			break
		}

		if err != nil {
			return err
		}

		printer.Print(p)
	}

	if skipped := r.Skipped(); skipped > 0 {
		c.log.Warn().Msgf("Skipped %d undecodable frame(s) in %s", skipped, opts.File)
	}

	c.log.Debug().Msgf("Replayed %d packet(s) from %s", printer.Printed(), opts.File)

	return nil
}
