package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nglaser3/stochvol/internal/domain"
	"github.com/nglaser3/stochvol/internal/ports"
)

var _ ports.ConvergenceObserver = (*OTelConvergenceObserver)(nil)

// OTelConvergenceObserver implements observability for convergence
// checks using OpenTelemetry tracing. It creates a span per trigger
// evaluation and records the estimates the controller saw and the
// outcome of the check.
type OTelConvergenceObserver struct {
	tracer trace.Tracer
	span   trace.Span
}

// NewOTelConvergenceObserver creates a new OpenTelemetry convergence
// observer.
func NewOTelConvergenceObserver() *OTelConvergenceObserver {
	return &OTelConvergenceObserver{
		tracer: otel.Tracer("volume-session"),
	}
}

// PreCheck implements the ConvergenceObserver interface. It starts a
// span and records the pre-check estimate state.
func (o *OTelConvergenceObserver) PreCheck(
	ctx context.Context,
	sessionID string,
	estimates []domain.VolumeEstimate,
) {
	_, span := o.tracer.Start(ctx, "Session.CheckTriggers")
	o.span = span

	span.SetAttributes(
		attribute.String("session.id", sessionID),
		attribute.Int("session.domains", len(estimates)),
	)
	if len(estimates) > 0 {
		span.SetAttributes(
			attribute.Int64("session.total_samples", int64(estimates[0].TotalSamples)),
		)
	}
}

// PostCheck implements the ConvergenceObserver interface. It records
// the per-domain estimate attributes and finalizes the span.
func (o *OTelConvergenceObserver) PostCheck(
	ctx context.Context,
	sessionID string,
	estimates []domain.VolumeEstimate,
	satisfied bool,
	elapsed time.Duration,
) {
	if o.span == nil {
		return
	}
	defer o.span.End()

	o.span.SetAttributes(
		attribute.Bool("check.satisfied", satisfied),
		attribute.Int64("check.elapsed_us", elapsed.Microseconds()),
	)
	for _, e := range estimates {
		o.span.AddEvent("estimate", trace.WithAttributes(
			attribute.Int("domain", int(e.Domain)),
			attribute.Float64("volume", e.Volume()),
			attribute.Float64("std_dev", e.StdDev()),
		))
	}
}
