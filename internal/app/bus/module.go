package bus

import (
	"go.uber.org/fx"

	"inspectd/internal/app/metrics"
	"inspectd/internal/config"
	"inspectd/internal/config/logger"
)

// Module provides bus for dependency injection
var Module = fx.Module("bus",
	fx.Provide(func(cfg *config.Config, rec metrics.Recorder, log logger.Logger) Bus {
		return New(cfg, rec, log.WithComponent("BUS"))
	}),
)
