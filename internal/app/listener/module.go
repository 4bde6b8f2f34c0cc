package listener

import "go.uber.org/fx"

// Module provides the fx dependency injection options for the listener package
var Module = fx.Options(
	fx.Provide(NewSet),
)
