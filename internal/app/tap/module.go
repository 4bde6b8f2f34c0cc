package tap

import "go.uber.org/fx"

// Module provides the tap server and client
var Module = fx.Options(
	fx.Provide(
		NewServer,
		NewClient,
	),
)
