package ai

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/asistente-hogar/backend/internal/model/chat"
)

type instrumentedModel struct {
	next      Model
	provider  string
	tracer    trace.Tracer
	calls     metric.Int64Counter
	failures  metric.Int64Counter
	latencyMs metric.Float64Histogram
}

// Instrument wraps next with a span per upstream call plus call, failure and
// latency metrics tagged with the provider name.
func Instrument(next Model, provider string, tracer trace.Tracer, meter metric.Meter) (Model, error) {
	calls, err := meter.Int64Counter("ai.generate.calls",
		metric.WithDescription("Upstream model calls"))
	if err != nil {
		return nil, err
	}
	failures, err := meter.Int64Counter("ai.generate.failures",
		metric.WithDescription("Upstream model failures by kind"))
	if err != nil {
		return nil, err
	}
	latency, err := meter.Float64Histogram("ai.generate.latency",
		metric.WithDescription("Upstream model latency"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}

	return &instrumentedModel{
		next:      next,
		provider:  provider,
		tracer:    tracer,
		calls:     calls,
		failures:  failures,
		latencyMs: latency,
	}, nil
}

func (m *instrumentedModel) Generate(ctx context.Context, history []chat.Turn, turn chat.Turn) (string, error) {
	providerAttr := attribute.String("ai.provider", m.provider)

	ctx, span := m.tracer.Start(ctx, "ai.Generate", trace.WithAttributes(
		providerAttr,
		attribute.Int("ai.history.turns", len(history)),
		attribute.Int("ai.turn.parts", len(turn.Parts)),
	))
	defer span.End()

	m.calls.Add(ctx, 1, metric.WithAttributes(providerAttr))

	start := time.Now()
	reply, err := m.next.Generate(ctx, history, turn)
	m.latencyMs.Record(ctx, float64(time.Since(start).Microseconds())/1000, metric.WithAttributes(providerAttr))

	if err != nil {
		upstream := Classify(err)
		m.failures.Add(ctx, 1, metric.WithAttributes(providerAttr, attribute.String("ai.failure.kind", string(upstream.Kind))))
		span.RecordError(err)
		span.SetStatus(codes.Error, string(upstream.Kind))
		return "", upstream
	}

	span.SetAttributes(attribute.Int("ai.response.length", len(reply)))
	span.SetStatus(codes.Ok, "")
	return reply, nil
}
