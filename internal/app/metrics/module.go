package metrics

import "go.uber.org/fx"

// Module provides the fx dependency injection options for the metrics package
var Module = fx.Options(
	fx.Provide(New),
)
