package runner_test

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Alexdat2000/scooterload/internal/runner"
	"github.com/Alexdat2000/scooterload/internal/scenario"
)

// recordingExecutor tracks every scenario it runs and can fail a chosen set.
type recordingExecutor struct {
	worker int
	rec    *recorder
}

type recorder struct {
	mu        sync.Mutex
	ids       []string
	byWorker  map[int][]string
	active    int32
	maxActive int32
	fail      func(sc scenario.Scenario) bool
	factories int32
	closes    int32
}

func newRecorder() *recorder {
	return &recorder{byWorker: make(map[int][]string)}
}

func (r *recorder) executorFor(worker int) runner.Executor {
	atomic.AddInt32(&r.factories, 1)
	return &recordingExecutor{worker: worker, rec: r}
}

func (e *recordingExecutor) Execute(ctx context.Context, sc scenario.Scenario) scenario.Result {
	active := atomic.AddInt32(&e.rec.active, 1)
	for {
		prev := atomic.LoadInt32(&e.rec.maxActive)
		if active <= prev || atomic.CompareAndSwapInt32(&e.rec.maxActive, prev, active) {
			break
		}
	}
	defer atomic.AddInt32(&e.rec.active, -1)

	e.rec.mu.Lock()
	e.rec.ids = append(e.rec.ids, sc.ID)
	e.rec.byWorker[e.worker] = append(e.rec.byWorker[e.worker], sc.ID)
	e.rec.mu.Unlock()

	if e.rec.fail != nil && e.rec.fail(sc) {
		return scenario.Result{ScenarioID: sc.ID, Err: fmt.Errorf("injected failure")}
	}
	return scenario.Result{ScenarioID: sc.ID}
}

func (e *recordingExecutor) Close() {
	atomic.AddInt32(&e.rec.closes, 1)
}

// TestDistributeExactness verifies the base/remainder split sums to the total
// with shares differing by at most one.
func TestDistributeExactness(t *testing.T) {
	tests := []struct {
		name    string
		total   int
		workers int
		want    []int
	}{
		{"remainder spread over first workers", 103, 20, nil}, // checked structurally below
		{"even split", 50, 5, []int{10, 10, 10, 10, 10}},
		{"fewer orders than workers", 3, 10, []int{1, 1, 1, 0, 0, 0, 0, 0, 0, 0}},
		{"single worker", 5, 1, []int{5}},
		{"zero orders", 0, 4, []int{0, 0, 0, 0}},
		{"zero workers", 10, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := runner.Distribute(tt.total, tt.workers)
			if tt.want != nil {
				if len(got) != len(tt.want) {
					t.Fatalf("got %d shares, want %d", len(got), len(tt.want))
				}
				for i := range tt.want {
					if got[i] != tt.want[i] {
						t.Fatalf("share[%d] = %d, want %d (%v)", i, got[i], tt.want[i], got)
					}
				}
				return
			}
			if tt.workers <= 0 {
				if got != nil {
					t.Fatalf("expected nil shares for %d workers, got %v", tt.workers, got)
				}
				return
			}
			sum := 0
			base := tt.total / tt.workers
			for i, share := range got {
				sum += share
				if share != base && share != base+1 {
					t.Fatalf("share[%d] = %d, want %d or %d", i, share, base, base+1)
				}
			}
			if sum != tt.total {
				t.Fatalf("shares sum to %d, want %d", sum, tt.total)
			}
		})
	}

	// 103 orders over 20 workers: exactly 3 workers get 6, 17 get 5.
	shares := runner.Distribute(103, 20)
	sixes, fives := 0, 0
	for _, s := range shares {
		switch s {
		case 6:
			sixes++
		case 5:
			fives++
		default:
			t.Fatalf("unexpected share %d", s)
		}
	}
	if sixes != 3 || fives != 17 {
		t.Fatalf("got %d sixes and %d fives, want 3 and 17", sixes, fives)
	}
}

// TestRunScenarioIDUniqueness ensures no scenario id repeats across workers
// and each worker sticks to its own index.
func TestRunScenarioIDUniqueness(t *testing.T) {
	rec := newRecorder()
	r := runner.New(runner.Options{
		Concurrency: 5,
		TotalOrders: 50,
		NewExecutor: rec.executorFor,
	})
	res := r.Run(context.Background())

	if res.Successes != 50 || res.Failures != 0 {
		t.Fatalf("successes/failures = %d/%d, want 50/0", res.Successes, res.Failures)
	}

	seen := make(map[string]bool, len(rec.ids))
	pattern := regexp.MustCompile(`^user-[0-4]-order-[0-9]$`)
	for _, id := range rec.ids {
		if seen[id] {
			t.Fatalf("duplicate scenario id %q", id)
		}
		seen[id] = true
		if !pattern.MatchString(id) {
			t.Fatalf("scenario id %q does not match user-{0..4}-order-{0..9}", id)
		}
	}
	if len(seen) != 50 {
		t.Fatalf("got %d distinct ids, want 50", len(seen))
	}
}

// TestRunSequentialWithinWorker ensures a worker never starts scenario k+1
// before scenario k finished, in ascending order.
func TestRunSequentialWithinWorker(t *testing.T) {
	rec := newRecorder()
	r := runner.New(runner.Options{
		Concurrency: 3,
		TotalOrders: 30,
		NewExecutor: rec.executorFor,
	})
	r.Run(context.Background())

	for worker, ids := range rec.byWorker {
		for i, id := range ids {
			want := fmt.Sprintf("user-%d-order-%d", worker, i)
			if id != want {
				t.Fatalf("worker %d position %d ran %q, want %q", worker, i, id, want)
			}
		}
	}
}

// TestRunAggregatesPartialFailures ensures k injected failures surface as
// exactly k failures without stopping the run.
func TestRunAggregatesPartialFailures(t *testing.T) {
	rec := newRecorder()
	rec.fail = func(sc scenario.Scenario) bool {
		// First scenario of every worker fails: k = 4.
		return len(sc.ID) > 0 && sc.ID[len(sc.ID)-1] == '0' && sc.ID[len(sc.ID)-2] == '-'
	}
	r := runner.New(runner.Options{
		Concurrency: 4,
		TotalOrders: 20,
		NewExecutor: rec.executorFor,
	})
	res := r.Run(context.Background())

	if res.Failures != 4 {
		t.Fatalf("failures = %d, want 4", res.Failures)
	}
	if res.Successes != 16 {
		t.Fatalf("successes = %d, want 16", res.Successes)
	}
	if res.Completed() != res.Requested {
		t.Fatalf("completed %d of %d, want full drain despite failures", res.Completed(), res.Requested)
	}
	if res.Throughput() <= 0 {
		t.Fatalf("throughput = %f, want > 0", res.Throughput())
	}
	if rate := res.SuccessRate(); rate != 80 {
		t.Fatalf("success rate = %f, want 80", rate)
	}

	var workerFailures int
	for _, wr := range res.Workers {
		workerFailures += wr.Failures
	}
	if workerFailures != res.Failures {
		t.Fatalf("per-worker failures sum to %d, want %d", workerFailures, res.Failures)
	}
}

// TestRunSkipsZeroShareWorkers ensures workers without scenarios never start.
func TestRunSkipsZeroShareWorkers(t *testing.T) {
	rec := newRecorder()
	r := runner.New(runner.Options{
		Concurrency: 10,
		TotalOrders: 3,
		NewExecutor: rec.executorFor,
	})
	res := r.Run(context.Background())

	if got := atomic.LoadInt32(&rec.factories); got != 3 {
		t.Fatalf("executors built = %d, want 3 (one per nonzero share)", got)
	}
	if len(res.Workers) != 3 {
		t.Fatalf("worker results = %d, want 3", len(res.Workers))
	}
	for i, wr := range res.Workers {
		if wr.Worker != i {
			t.Fatalf("worker result %d has index %d, want %d", i, wr.Worker, i)
		}
		if wr.Successes != 1 {
			t.Fatalf("worker %d successes = %d, want 1", wr.Worker, wr.Successes)
		}
	}
	if got := atomic.LoadInt32(&rec.closes); got != 3 {
		t.Fatalf("executor closes = %d, want 3", got)
	}
}

// TestRunBoundsParallelism ensures no more than Concurrency scenarios run at
// once.
func TestRunBoundsParallelism(t *testing.T) {
	rec := newRecorder()
	r := runner.New(runner.Options{
		Concurrency: 4,
		TotalOrders: 40,
		NewExecutor: rec.executorFor,
	})
	r.Run(context.Background())

	if peak := atomic.LoadInt32(&rec.maxActive); peak > 4 {
		t.Fatalf("max concurrent scenarios = %d, want <= 4", peak)
	}
}

// TestRunStopsOnCanceledContext ensures workers skip their remaining
// scenarios once the context is done.
func TestRunStopsOnCanceledContext(t *testing.T) {
	rec := newRecorder()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := runner.New(runner.Options{
		Concurrency: 2,
		TotalOrders: 10,
		NewExecutor: rec.executorFor,
	})
	res := r.Run(ctx)

	if res.Completed() != 0 {
		t.Fatalf("completed = %d, want 0 with a pre-canceled context", res.Completed())
	}
	if res.Requested != 10 {
		t.Fatalf("requested = %d, want 10", res.Requested)
	}
}
