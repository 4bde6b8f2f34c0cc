package throttle

import (
	"go.uber.org/fx"

	"inspectd/internal/config"
)

// Module provides the error limiter shared by the listeners
var Module = fx.Options(
	fx.Provide(func() Limiter {
		return NewLimiter(config.ErrorReportCooldown)
	}),
)
