package runner

import (
	"context"
	"sync"
	"time"

	"github.com/Alexdat2000/scooterload/internal/scenario"
)

// WorkerResult is one worker's tally after its full sequential run.
type WorkerResult struct {
	Worker    int `json:"worker"`
	Successes int `json:"successes"`
	Failures  int `json:"failures"`
}

// Result captures the aggregate run summary.
type Result struct {
	Requested int            `json:"total_orders"`
	Successes int            `json:"successes"`
	Failures  int            `json:"failures"`
	Duration  time.Duration  `json:"-"`
	Workers   []WorkerResult `json:"workers,omitempty"`
}

// Completed reports how many scenarios actually ran. Equal to Requested
// unless the run was interrupted.
func (r Result) Completed() int { return r.Successes + r.Failures }

// Throughput reports completed scenarios per second of wall-clock time.
func (r Result) Throughput() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.Completed()) / r.Duration.Seconds()
}

// SuccessRate reports the percentage of completed scenarios that succeeded.
func (r Result) SuccessRate() float64 {
	completed := r.Completed()
	if completed == 0 {
		return 0
	}
	return float64(r.Successes) / float64(completed) * 100
}

// Runner partitions the total scenario count across a fixed worker pool and
// runs the workers in parallel. Within a worker, scenarios run strictly
// sequentially; between workers there is no ordering.
type Runner struct {
	opt Options
}

func New(opt Options) *Runner {
	opt.normalize()
	return &Runner{opt: opt}
}

// Run launches one goroutine per worker with a nonzero share, joins them
// all, and folds the per-worker tallies into the aggregate. A scenario
// failure never stops the run; only context cancellation does, and even then
// every started worker is drained before Run returns.
func (r *Runner) Run(ctx context.Context) Result {
	start := time.Now()
	res := Result{Requested: r.opt.TotalOrders}
	if r.opt.NewExecutor == nil {
		return res
	}

	shares := Distribute(r.opt.TotalOrders, r.opt.Concurrency)

	// Workers with nothing assigned are never started.
	started := make([]int, 0, len(shares))
	for worker, share := range shares {
		if share > 0 {
			started = append(started, worker)
		}
	}

	r.opt.Logger.Info().
		Int("concurrency", r.opt.Concurrency).
		Int("workers_started", len(started)).
		Int("total_orders", r.opt.TotalOrders).
		Int("gets_per_order", r.opt.GetsPerOrder).
		Msg("starting load run")

	// Each worker writes only its own slot; tallies are combined after the
	// join, so the result path takes no locks.
	results := make([]WorkerResult, len(started))
	var wg sync.WaitGroup
	wg.Add(len(started))
	for slot, worker := range started {
		go func(slot, worker, share int) {
			defer wg.Done()
			results[slot] = r.runWorker(ctx, worker, share)
		}(slot, worker, shares[worker])
	}
	wg.Wait()

	for _, wr := range results {
		res.Successes += wr.Successes
		res.Failures += wr.Failures
	}
	res.Workers = results
	res.Duration = time.Since(start)
	return res
}

// runWorker executes the worker's share strictly sequentially. A failed
// scenario never stops the ones after it; a canceled context does.
func (r *Runner) runWorker(ctx context.Context, worker, share int) WorkerResult {
	wr := WorkerResult{Worker: worker}
	exec := r.opt.NewExecutor(worker)
	if closer, ok := exec.(interface{ Close() }); ok {
		defer closer.Close()
	}
	log := r.opt.Logger.With().Int("worker", worker).Logger()
	log.Debug().Int("share", share).Msg("worker started")

	for order := 0; order < share; order++ {
		if ctx.Err() != nil {
			log.Debug().Int("completed", order).Int("share", share).Msg("worker interrupted")
			break
		}
		sc := scenario.New(worker, order, r.opt.GetsPerOrder)
		res := exec.Execute(ctx, sc)
		if res.OK() {
			wr.Successes++
		} else {
			wr.Failures++
			log.Warn().Str("scenario_id", sc.ID).Err(res.Err).Msg("scenario failed")
		}
	}
	return wr
}
