package report

import "go.uber.org/fx"

// Module provides the error reporter
var Module = fx.Options(
	fx.Provide(New),
)
