// Package scenario executes one simulated ride cycle against the rental
// service: create an offer, convert it into an order, poll the order status a
// fixed number of times, then finish the order. Steps run strictly
// sequentially with no retries; the first failing step aborts the scenario
// and is reported as a result value, never as a panic.
package scenario

import (
	"fmt"

	"github.com/google/uuid"
)

// Step names as they appear in metrics, traces, and error messages.
const (
	StepCreateOffer = "create_offer"
	StepCreateOrder = "create_order"
	StepGetOrder    = "get_order"
	StepFinishOrder = "finish_order"
)

// Scenario is the immutable description of one ride cycle. The scooter id is
// unique per scenario so no two rides ever compete for the same vehicle.
type Scenario struct {
	ID        string
	UserID    string
	ScooterID string
	Polls     int
}

// New builds the scenario for one worker's order index. Scenario ids embed
// both indexes, so ids stay unique across the whole run.
func New(worker, order, polls int) Scenario {
	userID := fmt.Sprintf("load-user-%d", worker)
	return Scenario{
		ID:        fmt.Sprintf("user-%d-order-%d", worker, order),
		UserID:    userID,
		ScooterID: fmt.Sprintf("scooter-%s-%s", userID, uuid.NewString()),
		Polls:     polls,
	}
}

// Result is the outcome of one scenario. A nil Err means every step
// completed under the acceptance rules.
type Result struct {
	ScenarioID string
	Err        error
}

// OK reports whether the scenario succeeded.
func (r Result) OK() bool { return r.Err == nil }

// StepError describes a response with an unacceptable status code. Iter is
// the 0-based poll index for get_order failures and -1 for every other step.
type StepError struct {
	Step   string
	Iter   int
	Status int
	Body   string
}

func (e *StepError) Error() string {
	if e.Iter >= 0 {
		return fmt.Sprintf("%s failed on iter %d: %d, body=%s", e.Step, e.Iter, e.Status, e.Body)
	}
	return fmt.Sprintf("%s failed: %d, body=%s", e.Step, e.Status, e.Body)
}
