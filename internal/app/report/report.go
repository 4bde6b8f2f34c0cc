package report

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"inspectd/internal/app/errors"
	"inspectd/internal/config"
	"inspectd/internal/config/logger"
)

// Reporter sends errors to an external error tracker
type Reporter interface {
	Capture(err error, tags map[string]string)
	Flush(timeout time.Duration) bool
}

type reporter struct {
	hub *sentry.Hub
	log logger.Logger
}

// New creates a Sentry backed reporter. Without a DSN nothing is reported.
func New(cfg *config.Config, log logger.Logger) (Reporter, error) {
	if cfg.Sentry.DSN == "" {
		return NoOp(), nil
	}

	return newReporter(sentry.ClientOptions{
		Dsn:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
		Release:     config.AppName + "@" + config.Version,
	}, log)
}

func newReporter(opts sentry.ClientOptions, log logger.Logger) (*reporter, error) {
	client, err := sentry.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrFailedToInitReporter, err)
	}

	r := &reporter{
		hub: sentry.NewHub(client, sentry.NewScope()),
		log: log.WithComponent("REPORT"),
	}

	r.log.Info().Msgf("Reporting errors to Sentry (%s)", opts.Environment)

	return r, nil
}

// Capture reports err with the given tags
func (r *reporter) Capture(err error, tags map[string]string) {
	if err == nil {
		return
	}

	r.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)

		if id := r.hub.CaptureException(err); id != nil {
			r.log.Debug().Msgf("Reported error %s", *id)
		}
	})
}

// Flush waits for queued reports to be delivered
func (r *reporter) Flush(timeout time.Duration) bool {
	return r.hub.Flush(timeout)
}

type noop struct{}

// NoOp returns a Reporter that drops everything
func NoOp() Reporter {
	return noop{}
}

func (noop) Capture(error, map[string]string) {}

func (noop) Flush(time.Duration) bool { return true }
