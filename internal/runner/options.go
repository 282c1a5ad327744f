package runner

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Alexdat2000/scooterload/internal/scenario"
)

// Executor abstracts executing a single scenario. Implementations classify
// every outcome into the returned result; they never panic past it.
type Executor interface {
	Execute(ctx context.Context, sc scenario.Scenario) scenario.Result
}

// Options configure the Runner.
type Options struct {
	Concurrency  int // number of worker goroutines, the hard parallelism bound
	TotalOrders  int // total scenarios across all workers
	GetsPerOrder int // status polls per scenario

	// NewExecutor builds the executor for one worker. Each worker owns its
	// executor (and through it, its HTTP session) exclusively. Executors that
	// implement Close() are closed when their worker drains.
	NewExecutor func(worker int) Executor

	Logger zerolog.Logger
}

func (o *Options) normalize() {
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	if o.TotalOrders < 0 {
		o.TotalOrders = 0
	}
	if o.GetsPerOrder < 0 {
		o.GetsPerOrder = 0
	}
}
