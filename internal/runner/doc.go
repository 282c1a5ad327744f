// Package runner provides the load execution engine: it partitions the
// requested scenario count across a fixed pool of workers, runs the workers
// in parallel, and aggregates their tallies.
//
// # Work Distribution
//
// [Distribute] splits total scenarios over workers with the base/remainder
// rule: every worker gets total/workers scenarios and the first
// total%workers workers take one extra. The shares always sum to the total,
// and workers with a zero share are never started.
//
// # Basic Usage
//
// Create a runner with options and an executor factory:
//
//	opts := runner.Options{
//		Concurrency:  200,
//		TotalOrders:  1000,
//		GetsPerOrder: 100,
//		NewExecutor:  func(worker int) runner.Executor { ... },
//	}
//	r := runner.New(opts)
//	result := r.Run(ctx)
//
// # Executor Interface
//
// The [Executor] interface defines what one worker runs, one scenario at a
// time:
//
//	type Executor interface {
//		Execute(ctx context.Context, sc scenario.Scenario) scenario.Result
//	}
//
// Each worker owns its executor exclusively, so executors can hold
// per-worker state such as a persistent HTTP session. Executors implementing
// Close() are closed when their worker drains.
//
// # Failure Model
//
// A failed scenario only increments the worker's failure tally; the worker
// moves on to its next scenario and other workers are unaffected. All
// started workers are joined before [Runner.Run] returns, interrupted or
// not.
package runner
