// Package tracing provides scoped operation spans for researchd.
//
// A Span brackets one operation: it emits a start signal when opened and a
// success or failure signal with the elapsed duration when ended. The span
// only observes; the caller keeps the error and propagates it unchanged.
//
// Usage:
//
//	ctx, span := tracer.Span(ctx, "run query_planner")
//	defer func() { span.End(err) }()
package tracing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/researchd/internal/logging"
)

// Tracer creates scoped spans backed by an OpenTelemetry tracer and a
// structured logger.
type Tracer struct {
	tracer oteltrace.Tracer
	log    *logging.Logger
}

// New creates a Tracer. Either argument may come from a no-op provider.
func New(tracer oteltrace.Tracer, log *logging.Logger) *Tracer {
	if log == nil {
		log = logging.NewNop()
	}
	return &Tracer{tracer: tracer, log: log}
}

// NewNop returns a Tracer that emits nothing. Spans remain fully usable.
func NewNop() *Tracer {
	return New(noop.NewTracerProvider().Tracer("noop"), logging.NewNop())
}

// Span opens a scoped span for the named operation and emits the start
// signal. Spans nest: each call gets an independent timer, and the returned
// context carries the new span for children.
func (t *Tracer) Span(ctx context.Context, operation string) (context.Context, *Span) {
	ctx, otelSpan := t.tracer.Start(ctx, operation)
	s := &Span{
		operation: operation,
		start:     time.Now(),
		span:      otelSpan,
		log:       t.log,
		ctx:       ctx,
	}
	t.log.Debug(ctx, "operation started", zap.String("operation", operation))
	return ctx, s
}

// Span represents one traced operation.
type Span struct {
	operation string
	start     time.Time
	span      oteltrace.Span
	log       *logging.Logger
	ctx       context.Context
	ended     bool
}

// End closes the span. A nil err emits the success signal; otherwise the
// failure signal carries the error message. End never swallows err — the
// caller still owns it. Calling End twice is a no-op.
func (s *Span) End(err error) {
	if s.ended {
		return
	}
	s.ended = true

	elapsed := time.Since(s.start)
	s.span.SetAttributes(attribute.Int64("duration_ms", elapsed.Milliseconds()))

	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
		s.log.Error(s.ctx, "operation failed",
			zap.String("operation", s.operation),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
	} else {
		s.span.SetStatus(codes.Ok, "")
		s.log.Debug(s.ctx, "operation completed",
			zap.String("operation", s.operation),
			zap.Duration("duration", elapsed),
		)
	}
	s.span.End()
}

// Elapsed returns the time since the span was opened.
func (s *Span) Elapsed() time.Duration {
	return time.Since(s.start)
}

// NewTraceID produces a process-unique identifier with a fixed prefix and a
// 128-bit random hex suffix. No global counter state is required and the
// collision probability is negligible.
func NewTraceID() string {
	return fmt.Sprintf("trace_%x", [16]byte(uuid.New()))
}
