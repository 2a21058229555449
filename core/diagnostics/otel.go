package diagnostics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTelSink bridges the sink contract onto an OpenTelemetry tracer. Session
// traces become root spans; sink spans become children of their trace's
// root span.
type OTelSink struct {
	tracer trace.Tracer

	mu     sync.Mutex
	traces map[string]otelTraceHandle
	spans  map[string]trace.Span
}

type otelTraceHandle struct {
	ctx  context.Context
	span trace.Span
}

func NewOTelSink(tracer trace.Tracer) *OTelSink {
	return &OTelSink{
		tracer: tracer,
		traces: map[string]otelTraceHandle{},
		spans:  map[string]trace.Span{},
	}
}

func (s *OTelSink) StartTrace(name string, metadata map[string]string) string {
	ctx, span := s.tracer.Start(context.Background(), name,
		trace.WithAttributes(mapToAttributes(metadata)...))

	id := span.SpanContext().TraceID().String()
	s.mu.Lock()
	s.traces[id] = otelTraceHandle{ctx: ctx, span: span}
	s.mu.Unlock()
	return id
}

func (s *OTelSink) EndTrace(traceID string) {
	s.mu.Lock()
	handle, ok := s.traces[traceID]
	delete(s.traces, traceID)
	s.mu.Unlock()

	if ok {
		handle.span.End()
	}
}

func (s *OTelSink) AddSpan(traceID, name string, spanType SpanType, data map[string]string) string {
	s.mu.Lock()
	handle, ok := s.traces[traceID]
	s.mu.Unlock()
	if !ok {
		return ""
	}

	attrs := append(mapToAttributes(data), attribute.String("span.type", string(spanType)))
	_, span := s.tracer.Start(handle.ctx, name, trace.WithAttributes(attrs...))

	id := span.SpanContext().SpanID().String()
	s.mu.Lock()
	s.spans[id] = span
	s.mu.Unlock()
	return id
}

func (s *OTelSink) CompleteSpan(spanID string, err error) {
	s.mu.Lock()
	span, ok := s.spans[spanID]
	delete(s.spans, spanID)
	s.mu.Unlock()
	if !ok {
		return
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func mapToAttributes(m map[string]string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(m))
	for k, v := range m {
		attrs = append(attrs, attribute.String(k, v))
	}
	return attrs
}
