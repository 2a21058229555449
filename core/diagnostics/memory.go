package diagnostics

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemorySink keeps traces in memory and exposes them as read-only
// snapshots. Ending a trace closes any spans still open under it, so the
// no-dangling-spans invariant holds even when a paired end call never came.
type MemorySink struct {
	mu     sync.RWMutex
	traces map[string]*Trace
	// spanIndex maps span ID to its trace ID and position in Trace.Spans.
	spanIndex map[string]spanRef
	order     []string
}

type spanRef struct {
	traceID string
	index   int
}

func NewMemorySink() *MemorySink {
	return &MemorySink{
		traces:    map[string]*Trace{},
		spanIndex: map[string]spanRef{},
	}
}

func (s *MemorySink) StartTrace(name string, metadata map[string]string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	trace := &Trace{
		ID:        uuid.NewString(),
		Name:      name,
		StartedAt: time.Now(),
		Metadata:  cloneStringMap(metadata),
	}
	s.traces[trace.ID] = trace
	s.order = append(s.order, trace.ID)
	return trace.ID
}

func (s *MemorySink) EndTrace(traceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trace, ok := s.traces[traceID]
	if !ok || trace.Ended() {
		return
	}

	now := time.Now()
	for i := range trace.Spans {
		if trace.Spans[i].Open() {
			endedAt := now
			trace.Spans[i].EndedAt = &endedAt
		}
	}
	trace.EndedAt = &now
}

func (s *MemorySink) AddSpan(traceID, name string, spanType SpanType, data map[string]string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	trace, ok := s.traces[traceID]
	if !ok || trace.Ended() {
		return ""
	}

	span := Span{
		ID:        uuid.NewString(),
		TraceID:   traceID,
		Name:      name,
		Type:      spanType,
		StartedAt: time.Now(),
		Data:      cloneStringMap(data),
	}
	trace.Spans = append(trace.Spans, span)
	s.spanIndex[span.ID] = spanRef{traceID: traceID, index: len(trace.Spans) - 1}
	return span.ID
}

func (s *MemorySink) CompleteSpan(spanID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref, ok := s.spanIndex[spanID]
	if !ok {
		return
	}
	span := &s.traces[ref.traceID].Spans[ref.index]
	if !span.Open() {
		return
	}

	now := time.Now()
	span.EndedAt = &now
	if err != nil {
		span.Error = err.Error()
	}
}

// Trace returns a deep copy of one trace.
func (s *MemorySink) Trace(traceID string) (Trace, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trace, ok := s.traces[traceID]
	if !ok {
		return Trace{}, false
	}
	return copyTrace(trace), true
}

// Traces returns deep copies of all traces in start order.
func (s *MemorySink) Traces() []Trace {
	s.mu.RLock()
	defer s.mu.RUnlock()

	traces := make([]Trace, 0, len(s.order))
	for _, id := range s.order {
		traces = append(traces, copyTrace(s.traces[id]))
	}
	return traces
}

func copyTrace(trace *Trace) Trace {
	copied := *trace
	copied.Metadata = cloneStringMap(trace.Metadata)
	copied.Spans = make([]Span, len(trace.Spans))
	for i, span := range trace.Spans {
		copied.Spans[i] = span
		copied.Spans[i].Data = cloneStringMap(span.Data)
	}
	return copied
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	cloned := make(map[string]string, len(m))
	for k, v := range m {
		cloned[k] = v
	}
	return cloned
}
