//go:generate mockgen -source=cli.go -destination=cli_mock.go -package=cli
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/fx"

	"inspectd/internal/app/bus"
	"inspectd/internal/app/console"
	"inspectd/internal/app/errors"
	"inspectd/internal/app/generator"
	"inspectd/internal/app/listener"
	"inspectd/internal/app/metrics"
	"inspectd/internal/app/relay"
	"inspectd/internal/app/report"
	"inspectd/internal/app/tap"
	"inspectd/internal/config"
	"inspectd/internal/config/logger"
)

// CLI defines the interface for cli operations
type CLI interface {
	Execute() (int, error)
}

// Params are the dependencies of the command handlers
type Params struct {
	fx.In

	Config    *config.Config
	Listeners *listener.Set
	Bus       bus.Bus
	Formatter *console.Formatter
	Tap       tap.Server
	TapClient tap.Client
	Forwarder relay.Forwarder
	Relay     *relay.Server
	Generator generator.Generator
	Reporter  report.Reporter
	Metrics   metrics.Recorder
	Logger    logger.Logger
}

// cli represents the command-line interface for the application
type cli struct {
	args      []string
	out       io.Writer
	errOut    io.Writer
	cfg       *config.Config
	listeners *listener.Set
	bus       bus.Bus
	formatter *console.Formatter
	tap       tap.Server
	tapClient tap.Client
	forwarder relay.Forwarder
	relay     *relay.Server
	generator generator.Generator
	reporter  report.Reporter
	metrics   metrics.Recorder
	log       logger.Logger
}

// NewCLI creates a new cli instance reading the process arguments
func NewCLI(p Params) CLI {
	return &cli{
		args:      os.Args[1:],
		out:       os.Stdout,
		errOut:    os.Stderr,
		cfg:       p.Config,
		listeners: p.Listeners,
		bus:       p.Bus,
		formatter: p.Formatter,
		tap:       p.Tap,
		tapClient: p.TapClient,
		forwarder: p.Forwarder,
		relay:     p.Relay,
		generator: p.Generator,
		reporter:  p.Reporter,
		metrics:   p.Metrics,
		log:       p.Logger,
	}
}

// Execute parses the arguments, runs the selected command until it finishes
// or the process is interrupted and returns the exit code
func (c *cli) Execute() (int, error) {
	opts, err := Parse(c.args)
	if err != nil {
		c.printError(err)
		fmt.Fprintf(c.errOut, "Use '%s' for more information.\n", console.BoldStyle.Render(config.AppName+" help"))

		return 1, fmt.Errorf("%w: %w", errors.ErrUnknownCommand, err)
	}

	if opts.Format != "" {
		c.formatter.SetFormat(opts.Format)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = c.run(ctx, opts)

	c.reporter.Flush(config.ReportFlushTimeout)

	if err != nil {
		c.log.Error().Err(err).Msg("Command failed")
		c.printError(err)

		return 1, err
	}

	return 0, nil
}

// run dispatches to the handler of opts.Type
func (c *cli) run(ctx context.Context, opts *Options) error {
	switch opts.Type {
	case CommandListen:
		return c.handleListen(ctx, opts)
	case CommandReplay:
		return c.handleReplay(ctx, opts)
	case CommandTail:
		return c.handleTail(ctx, opts)
	case CommandRelay:
		return c.handleRelay(ctx)
	case CommandInit:
		return c.handleInit(opts)
	case CommandVersion:
		return c.handleVersion()
	case CommandHelp:
		return c.handleHelp()
	default:
		return errors.ErrUnknownCommand
	}
}

// handleInit writes the default configuration file
func (c *cli) handleInit(opts *Options) error {
	c.log.Debug().Msgf("Generating %s", opts.Output)

	return c.generator.Generate(generator.Options{
		Path:   opts.Output,
		Force:  opts.Force,
		DryRun: opts.DryRun,
	})
}

// handleVersion displays version information
func (c *cli) handleVersion() error {
	c.log.Debug().Msg("Displaying version information")
	fmt.Fprintln(c.out, RenderTitle())

	return nil
}

// handleHelp displays help information
func (c *cli) handleHelp() error {
	c.log.Debug().Msg("Displaying help information")
	fmt.Fprint(c.out, RenderHelp())

	return nil
}

func (c *cli) printError(err error) {
	fmt.Fprintf(c.errOut, "%s %v\n", console.ErrorStyle.Render("Error:"), err)
}
