package app

import (
	"context"
	"os"

	"go.uber.org/fx"

	"inspectd/internal/app/cli"
)

// App represents the main application container
type App struct {
	cli  cli.CLI
	done chan struct{}
	exit func(int)
}

// NewApp creates a new application instance with its dependencies
func NewApp(cli cli.CLI) *App {
	return &App{
		cli:  cli,
		done: make(chan struct{}),
		exit: os.Exit,
	}
}

// Run executes the application
func (a *App) Run() {
	exitCode := a.execute()
	close(a.done)

	a.exit(exitCode)
}

// execute runs the CLI and returns exit code - extracted for testing
func (a *App) execute() int {
	exitCode, _ := a.cli.Execute()

	return exitCode
}

// Register registers the application's lifecycle hooks with fx
func Register(lifecycle fx.Lifecycle, app *App) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go app.Run()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			select {
			case <-app.done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}
