package console

import "go.uber.org/fx"

// Module provides the console formatter
var Module = fx.Options(
	fx.Provide(NewFormatter),
)
