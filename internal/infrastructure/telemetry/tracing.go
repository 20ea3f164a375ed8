package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name of spans started by this service
const TracerName = "asset-lending"

// Span attribute keys shared by the lending spans
const (
	SpanAttrEventType = "event.type"
	SpanAttrEventID   = "event.id"
	SpanAttrHandler   = "event.handler"
)

// StartSpan starts an internal span. The caller must end it.
//
//	ctx, span := telemetry.StartSpan(ctx, "event.dispatch", attribute.String(telemetry.SpanAttrEventType, t))
//	defer span.End()
func StartSpan(ctx context.Context, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	opts := []trace.SpanStartOption{trace.WithSpanKind(trace.SpanKindInternal)}
	if len(attrs) > 0 {
		opts = append(opts, trace.WithAttributes(attrs...))
	}
	return tracer.Start(ctx, spanName, opts...)
}

// RecordError records err on the span and marks it failed. A nil err is ignored.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// RecordPanic marks the span failed with the recovered value
func RecordPanic(span trace.Span, recovered any) {
	RecordError(span, fmt.Errorf("panic: %v", recovered))
}

// GetTraceID returns the trace ID of the span in ctx, or "" when there is none.
func GetTraceID(ctx context.Context) string {
	traceID := trace.SpanFromContext(ctx).SpanContext().TraceID()
	if !traceID.IsValid() {
		return ""
	}
	return traceID.String()
}
