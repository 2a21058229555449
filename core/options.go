package session

import (
	"github.com/parley-ai/parley-core/core/agents"
	"github.com/parley-ai/parley-core/core/credentials"
	"github.com/parley-ai/parley-core/core/diagnostics"
	"github.com/parley-ai/parley-core/core/documents"
	"github.com/parley-ai/parley-core/core/transport"
)

type SessionOption func(*Session)

// WithTransport sets the realtime transport the session connects over.
func WithTransport(t transport.Transport) SessionOption {
	return func(s *Session) { s.transport = t }
}

// WithCredentialProvider sets the source of ephemeral connection
// credentials. Without one the session connects with an empty credential.
func WithCredentialProvider(provider credentials.Provider) SessionOption {
	return func(s *Session) { s.credentials = provider }
}

// WithDocumentStore sets the store backing checklist documents. It also
// enables recovery of malformed assistant output into that store.
func WithDocumentStore(store documents.Store) SessionOption {
	return func(s *Session) { s.store = store }
}

// WithDiagnosticsSink sets where traces and spans are recorded. Defaults
// to an in-memory sink.
func WithDiagnosticsSink(sink diagnostics.Sink) SessionOption {
	return func(s *Session) { s.sink = sink }
}

// WithAgents registers additional agents alongside the main one. Handoff
// edges between them still need to be declared on the agents themselves.
func WithAgents(extra ...*agents.Agent) SessionOption {
	return func(s *Session) {
		for _, agent := range extra {
			if agent != nil {
				s.registry.Add(agent)
			}
		}
	}
}

type connectConfig struct {
	initialContext string
	traceMetadata  map[string]string
}

type ConnectOption func(*connectConfig)

// WithInitialContext sends background text to the peer right after the
// transport connects, before the first user turn.
func WithInitialContext(text string) ConnectOption {
	return func(c *connectConfig) { c.initialContext = text }
}

// WithTraceMetadata attaches extra metadata to the connection's trace.
func WithTraceMetadata(metadata map[string]string) ConnectOption {
	return func(c *connectConfig) {
		if c.traceMetadata == nil {
			c.traceMetadata = map[string]string{}
		}
		for key, value := range metadata {
			c.traceMetadata[key] = value
		}
	}
}
