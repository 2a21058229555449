// Package diagnostics records one trace per session connection and the
// discrete operations inside it as spans.
package diagnostics

import "time"

// SpanType classifies what a span recorded.
type SpanType string

const (
	SpanTypeToolCall    SpanType = "tool_call"
	SpanTypeHandoff     SpanType = "handoff"
	SpanTypeError       SpanType = "error"
	SpanTypeUserMessage SpanType = "user_message"
)

// Trace is one connection lifetime. A trace that has ended accepts no new
// spans.
type Trace struct {
	ID        string
	Name      string
	StartedAt time.Time
	EndedAt   *time.Time
	Metadata  map[string]string
	Spans     []Span
}

// Ended reports whether the trace has been closed.
func (t Trace) Ended() bool { return t.EndedAt != nil }

// Span is one discrete operation within a trace.
type Span struct {
	ID        string
	TraceID   string
	Name      string
	Type      SpanType
	StartedAt time.Time
	EndedAt   *time.Time
	Error     string
	Data      map[string]string
}

// Open reports whether the span is still running.
func (s Span) Open() bool { return s.EndedAt == nil }

// Sink receives trace lifecycle calls. Implementations must tolerate calls
// for unknown IDs (late tool results, double ends) by ignoring them.
type Sink interface {
	StartTrace(name string, metadata map[string]string) string
	EndTrace(traceID string)
	AddSpan(traceID, name string, spanType SpanType, data map[string]string) string
	CompleteSpan(spanID string, err error)
}
