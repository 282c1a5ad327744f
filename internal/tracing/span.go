package tracing

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// StartStepSpan starts a client span for one scenario step (create_offer,
// create_order, get_order, finish_order).
func StartStepSpan(ctx context.Context, tracer trace.Tracer, step, scenarioID string) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, "http "+step,
		trace.WithSpanKind(trace.SpanKindClient),
	)
	span.SetAttributes(
		attribute.String("scooterload.step", step),
		attribute.String("scooterload.scenario_id", scenarioID),
	)
	return ctx, span
}

// EndSpan finishes a span, recording error status if applicable.
func EndSpan(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// StatusAttr builds the HTTP status attribute attached to finished steps.
func StatusAttr(status int) attribute.KeyValue {
	return attribute.Int("http.response.status_code", status)
}

// InjectHTTPHeaders injects W3C trace context into HTTP headers. With tracing
// disabled the global propagator is a no-op and the headers stay untouched.
func InjectHTTPHeaders(ctx context.Context, headers http.Header) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(headers))
}
