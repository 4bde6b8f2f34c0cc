package app

import (
	"go.uber.org/fx"

	"inspectd/internal/app/bus"
	"inspectd/internal/app/cli"
	"inspectd/internal/app/console"
	"inspectd/internal/app/generator"
	"inspectd/internal/app/listener"
	"inspectd/internal/app/metrics"
	"inspectd/internal/app/monitor"
	"inspectd/internal/app/relay"
	"inspectd/internal/app/report"
	"inspectd/internal/app/tap"
	"inspectd/internal/app/throttle"
	"inspectd/internal/app/worker"
	"inspectd/internal/config/logger"
)

var Module = fx.Options(
	logger.Module,
	bus.Module,
	throttle.Module,
	metrics.Module,
	listener.Module,
	console.Module,
	tap.Module,
	monitor.Module,
	report.Module,
	worker.Module,
	relay.Module,
	generator.Module,
	cli.Module,
	fx.Provide(NewApp),
	fx.Invoke(Register),
)
