package scenario

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alexdat2000/scooterload/internal/client"
	"github.com/Alexdat2000/scooterload/internal/metrics"
	"github.com/Alexdat2000/scooterload/internal/ratelimit"
	"github.com/Alexdat2000/scooterload/internal/tracing"
)

// maxErrorBodyBytes bounds how much response body ends up in error messages.
const maxErrorBodyBytes = 1024

// Runner executes scenarios against the rental service through one worker's
// client. The limiter and collector are shared across all workers; the client
// is not.
type Runner struct {
	client    *client.Client
	limiter   *ratelimit.Limiter
	collector *metrics.Collector
	tracer    trace.Tracer
	log       zerolog.Logger
}

// NewRunner wires a worker's client to the shared limiter, collector, and
// tracer. A nil limiter disables pacing.
func NewRunner(c *client.Client, limiter *ratelimit.Limiter, collector *metrics.Collector, tracer trace.Tracer, log zerolog.Logger) *Runner {
	return &Runner{
		client:    c,
		limiter:   limiter,
		collector: collector,
		tracer:    tracer,
		log:       log,
	}
}

// Close releases the worker client's kept-alive connections once the worker
// has drained its share of scenarios.
func (r *Runner) Close() {
	r.client.CloseIdleConnections()
}

// Execute runs the four scenario steps in order and classifies the outcome.
// Pacing applies to every outbound request, including each status poll. The
// first failure aborts the scenario; no request is retried.
func (r *Runner) Execute(ctx context.Context, sc Scenario) Result {
	res := Result{ScenarioID: sc.ID}

	offerID, err := r.createOffer(ctx, sc)
	if err != nil {
		res.Err = err
		return res
	}

	orderID := "order-" + uuid.NewString()
	if err := r.createOrder(ctx, sc, orderID, offerID); err != nil {
		res.Err = err
		return res
	}

	for i := 0; i < sc.Polls; i++ {
		if err := r.pollOrder(ctx, sc, orderID, i); err != nil {
			res.Err = err
			return res
		}
	}

	res.Err = r.finishOrder(ctx, sc, orderID)
	return res
}

func (r *Runner) createOffer(ctx context.Context, sc Scenario) (string, error) {
	resp, err := r.step(ctx, sc, StepCreateOffer, -1, []int{http.StatusCreated}, func(ctx context.Context) (client.Response, error) {
		return r.client.CreateOffer(ctx, sc.UserID, sc.ScooterID)
	})
	if err != nil {
		return "", err
	}

	offerID := gjson.GetBytes(resp.Body, "id").String()
	if offerID == "" {
		return "", fmt.Errorf("%s: no offer id in response, body=%s", StepCreateOffer, bodySnippet(resp.Body))
	}
	return offerID, nil
}

func (r *Runner) createOrder(ctx context.Context, sc Scenario, orderID, offerID string) error {
	_, err := r.step(ctx, sc, StepCreateOrder, -1, []int{http.StatusCreated}, func(ctx context.Context) (client.Response, error) {
		return r.client.CreateOrder(ctx, orderID, offerID, sc.UserID)
	})
	return err
}

func (r *Runner) pollOrder(ctx context.Context, sc Scenario, orderID string, iter int) error {
	_, err := r.step(ctx, sc, StepGetOrder, iter, []int{http.StatusOK}, func(ctx context.Context) (client.Response, error) {
		return r.client.GetOrder(ctx, orderID)
	})
	return err
}

// finishOrder accepts 409 alongside 200: a duplicate finish means the order
// already reached its terminal state, which is not a failure.
func (r *Runner) finishOrder(ctx context.Context, sc Scenario, orderID string) error {
	_, err := r.step(ctx, sc, StepFinishOrder, -1, []int{http.StatusOK, http.StatusConflict}, func(ctx context.Context) (client.Response, error) {
		return r.client.FinishOrder(ctx, orderID)
	})
	return err
}

type stepFunc func(context.Context) (client.Response, error)

// step paces one request through the shared limiter, traces and times it,
// records it in the collector, and enforces the accepted status set.
func (r *Runner) step(ctx context.Context, sc Scenario, name string, iter int, accept []int, call stepFunc) (client.Response, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return client.Response{}, fmt.Errorf("%s: %w", name, err)
	}

	ctx, span := tracing.StartStepSpan(ctx, r.tracer, name, sc.ID)
	start := time.Now()
	resp, err := call(ctx)
	latency := time.Since(start)

	meta := &metrics.RequestMetadata{Operation: name}
	if err != nil {
		wrapped := fmt.Errorf("%s: %w", name, err)
		r.collector.RecordRequest(latency, wrapped, meta)
		tracing.EndSpan(span, wrapped)
		return client.Response{}, wrapped
	}

	meta.StatusCode = strconv.Itoa(resp.Status)
	if !statusAccepted(resp.Status, accept) {
		stepErr := &StepError{Step: name, Iter: iter, Status: resp.Status, Body: bodySnippet(resp.Body)}
		r.collector.RecordRequest(latency, stepErr, meta)
		tracing.EndSpan(span, stepErr, tracing.StatusAttr(resp.Status))
		return resp, stepErr
	}

	r.collector.RecordRequest(latency, nil, meta)
	tracing.EndSpan(span, nil, tracing.StatusAttr(resp.Status))
	r.log.Debug().
		Str("scenario_id", sc.ID).
		Str("step", name).
		Int("status", resp.Status).
		Dur("latency", latency).
		Msg("step completed")
	return resp, nil
}

func statusAccepted(status int, accept []int) bool {
	for _, s := range accept {
		if status == s {
			return true
		}
	}
	return false
}

func bodySnippet(body []byte) string {
	if len(body) > maxErrorBodyBytes {
		body = body[:maxErrorBodyBytes]
	}
	return strings.TrimSpace(string(body))
}
