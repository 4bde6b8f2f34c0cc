package worker

import (
	"context"

	"inspectd/internal/config"
)

// Pool bounds how many relay ingest requests are processed at once
type Pool interface {
	Acquire(ctx context.Context) error
	Release()
}

// pool implements the Pool interface
type pool struct {
	sem chan struct{}
}

// NewWorkerPool creates a pool with cfg.Relay.Workers slots
func NewWorkerPool(cfg *config.Config) Pool {
	return &pool{
		sem: make(chan struct{}, cfg.Relay.Workers),
	}
}

// Acquire takes a slot, blocking while all are busy. It returns ctx's error
// if ctx ends first.
func (w *pool) Acquire(ctx context.Context) error {
	select {
	case w.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release gives a slot back
func (w *pool) Release() {
	<-w.sem
}
