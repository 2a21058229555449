package session

import (
	"sync"

	"github.com/parley-ai/parley-core/core/diagnostics"
)

// traceCorrelator owns the one trace per connection and keeps every span it
// opens accounted for, so ending the trace can never leave a span dangling.
type traceCorrelator struct {
	sink diagnostics.Sink

	mu      sync.Mutex
	traceID string
	// toolSpans maps a transport call ID to the span opened for it.
	toolSpans map[string]string
	openSpans map[string]struct{}
}

func newTraceCorrelator(sink diagnostics.Sink) *traceCorrelator {
	return &traceCorrelator{
		sink:      sink,
		toolSpans: map[string]string{},
		openSpans: map[string]struct{}{},
	}
}

func (c *traceCorrelator) start(name string, metadata map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.traceID != "" {
		return
	}
	c.traceID = c.sink.StartTrace(name, metadata)
}

// end completes every span still open, then ends the trace. Calling end
// without an open trace is a no-op.
func (c *traceCorrelator) end() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.traceID == "" {
		return
	}

	for spanID := range c.openSpans {
		c.sink.CompleteSpan(spanID, nil)
	}
	c.sink.EndTrace(c.traceID)

	c.traceID = ""
	c.toolSpans = map[string]string{}
	c.openSpans = map[string]struct{}{}
}

// toolStarted opens a span for one tool call, tagged with the agent that
// was active when the call started.
func (c *traceCorrelator) toolStarted(callID, toolName, agentName string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.traceID == "" {
		return
	}

	spanID := c.sink.AddSpan(c.traceID, toolName, diagnostics.SpanTypeToolCall, map[string]string{
		"tool.name":  toolName,
		"tool.call":  callID,
		"agent.name": agentName,
	})
	if spanID == "" {
		return
	}
	c.toolSpans[callID] = spanID
	c.openSpans[spanID] = struct{}{}
}

func (c *traceCorrelator) toolEnded(callID string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	spanID, ok := c.toolSpans[callID]
	if !ok {
		return
	}
	delete(c.toolSpans, callID)
	delete(c.openSpans, spanID)
	c.sink.CompleteSpan(spanID, err)
}

// recordHandoff records an agent switch as a single-shot span.
func (c *traceCorrelator) recordHandoff(from, to string, returned bool) {
	c.singleShot("handoff", diagnostics.SpanTypeHandoff, map[string]string{
		"handoff.from":     from,
		"handoff.to":       to,
		"handoff.returned": boolString(returned),
	}, nil)
}

// recordError records a fatal condition as a single-shot span, so no paired
// end event is required.
func (c *traceCorrelator) recordError(err error) {
	c.singleShot("error", diagnostics.SpanTypeError, nil, err)
}

// recordUserMessage records one transcribed user utterance.
func (c *traceCorrelator) recordUserMessage(transcript string) {
	c.singleShot("user message", diagnostics.SpanTypeUserMessage, map[string]string{
		"message.transcript": transcript,
	}, nil)
}

func (c *traceCorrelator) singleShot(name string, spanType diagnostics.SpanType, data map[string]string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.traceID == "" {
		return
	}
	spanID := c.sink.AddSpan(c.traceID, name, spanType, data)
	if spanID == "" {
		return
	}
	c.sink.CompleteSpan(spanID, err)
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
