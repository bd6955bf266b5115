// Package tracing wraps framelink.Engine Send/Receive calls in OpenTelemetry
// spans. It lives outside the core engine package because a span needs a
// context.Context and a call site — the engine itself is synchronous and
// context-free.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sparques/framelink"
)

const defaultTracerName = "framelink"

// Tracer wraps a framelink.Engine's Send/Receive calls in spans, following
// the global-tracer-provider convention the pack's OpenTelemetry middleware
// uses (the provider is configured once in main via otel.SetTracerProvider;
// this package only resolves a named Tracer from it).
type Tracer struct {
	engine *framelink.Engine
	tracer trace.Tracer
}

// New resolves a tracer named name (default "framelink") from the global
// OpenTelemetry provider and binds it to engine.
func New(engine *framelink.Engine, name string) *Tracer {
	if name == "" {
		name = defaultTracerName
	}
	return &Tracer{engine: engine, tracer: otel.Tracer(name)}
}

// Send wraps Engine.Send in a span named "framelink.send", recording the
// outgoing payload size and the resulting status.
func (t *Tracer) Send(ctx context.Context) error {
	ctx, span := t.tracer.Start(ctx, "framelink.send")
	defer span.End()

	span.SetAttributes(attribute.Int("framelink.payload_size", t.engine.TXPayloadSize()))
	err := t.engine.Send()
	recordOutcome(span, t.engine.Status(), err)
	return err
}

// Receive wraps Engine.Receive in a span named "framelink.receive",
// recording the decoded payload size on success and the resulting status.
func (t *Tracer) Receive(ctx context.Context) error {
	_, span := t.tracer.Start(ctx, "framelink.receive")
	defer span.End()

	err := t.engine.Receive()
	if err == nil {
		span.SetAttributes(attribute.Int("framelink.payload_size", t.engine.RXPayloadSize()))
	}
	recordOutcome(span, t.engine.Status(), err)
	return err
}

func recordOutcome(span trace.Span, status framelink.Status, err error) {
	span.SetAttributes(attribute.String("framelink.status", status.String()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, fmt.Sprintf("framelink: %s", status))
		return
	}
	span.SetStatus(codes.Ok, "")
}
