package worker

import "go.uber.org/fx"

// Module provides the relay ingest worker pool
var Module = fx.Options(
	fx.Provide(NewWorkerPool),
)
