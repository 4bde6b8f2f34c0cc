package relay

import "go.uber.org/fx"

// Module provides the relay forwarder and its HTTP ingress
var Module = fx.Options(
	fx.Provide(
		NewSender,
		NewForwarder,
		NewServer,
	),
)
