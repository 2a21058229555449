// Package session drives one long-lived, bidirectional conversation between
// a human and one or more cooperating agents over a realtime transport,
// mediating tool execution, inter-agent handoff, and diagnostic tracing.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jinzhu/copier"
	"go.opentelemetry.io/otel/codes"

	"github.com/parley-ai/parley-core/core/agents"
	"github.com/parley-ai/parley-core/core/credentials"
	"github.com/parley-ai/parley-core/core/diagnostics"
	"github.com/parley-ai/parley-core/core/documents"
	"github.com/parley-ai/parley-core/core/events"
	"github.com/parley-ai/parley-core/core/recovery"
	"github.com/parley-ai/parley-core/core/transport"
)

// Session is one end-to-end connection lifetime. Transport events are
// applied as discrete, serialized steps on a single dispatch goroutine;
// long-running work (tool execution, transcript recovery) runs off that
// path so interrupts and aborts stay promptly observable.
type Session struct {
	registry    *agents.Registry
	transport   transport.Transport
	credentials credentials.Provider
	store       documents.Store
	sink        diagnostics.Sink

	emitter    *eventEmitter
	correlator *traceCorrelator
	recovery   *recovery.Engine

	baseContext context.Context

	mu               sync.RWMutex
	state            State
	activeAgent      *agents.Agent
	history          []HistoryItem
	approvedTools    map[string]struct{}
	pendingApprovals map[string]events.ToolApprovalRequest

	connectMetadata map[string]string
	connCancel      context.CancelFunc

	approvalCounter atomic.Int64
	// epoch increments on every connect and disconnect; results of work
	// started under an older epoch are discarded instead of applied.
	epoch atomic.Int64
}

// NewSession creates a session around the main agent. Registration of
// additional agents and handoff edges is meant to happen before Connect.
func NewSession(main *agents.Agent, opts ...SessionOption) *Session {
	s := &Session{
		registry:         agents.NewRegistry(main),
		state:            StateIdle,
		activeAgent:      main,
		baseContext:      context.Background(),
		emitter:          newEventEmitter(),
		approvedTools:    map[string]struct{}{},
		pendingApprovals: map[string]events.ToolApprovalRequest{},
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.sink == nil {
		s.sink = diagnostics.NewMemorySink()
	}
	s.correlator = newTraceCorrelator(s.sink)
	s.recovery = recovery.NewEngine(s.store)

	return s
}

// State returns the current conversational state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// ActiveAgent returns the name of the agent currently attributed with
// conversation output.
func (s *Session) ActiveAgent() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeAgent.Name()
}

// On subscribes to one event kind and returns the unsubscribe function.
func (s *Session) On(kind events.Kind, handler func(events.Event)) func() {
	return s.emitter.on(kind, handler)
}

// RegisterHandoff registers target as a permitted delegation of the
// currently active agent. The handoff graph is a safety boundary: handoff
// events naming agents outside it are ignored.
func (s *Session) RegisterHandoff(target *agents.Agent) {
	if target == nil {
		return
	}

	s.registry.Add(target)

	s.mu.RLock()
	current := s.activeAgent
	s.mu.RUnlock()
	current.RegisterHandoff(target)
}

// Connect acquires a credential, opens the transport, and starts the
// serialized event dispatch loop. It is only legal from idle.
func (s *Session) Connect(ctx context.Context, opts ...ConnectOption) error {
	ctx, span := tracer.Start(ctx, "connect session")
	defer span.End()

	if s.transport == nil {
		return ErrNoTransport
	}

	config := connectConfig{}
	for _, opt := range opts {
		opt(&config)
	}

	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrAlreadyConnected
	}
	s.state = StateConnecting
	s.mu.Unlock()
	s.emitter.emit(events.NewSessionStateChanged(string(StateIdle), string(StateConnecting)))

	credential := transport.Credential{}
	if s.credentials != nil {
		var err error
		credential, err = s.credentials.EphemeralCredential(ctx)
		if err != nil {
			err = fmt.Errorf("failed to acquire connection credential: %w", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.failConnect(err)
			return err
		}
	}

	if err := s.transport.Connect(ctx, credential); err != nil {
		err = fmt.Errorf("failed to connect transport: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.failConnect(err)
		return err
	}

	// Off-loop work for this connection outlives the Connect call's
	// context but must not outlive the connection itself.
	connCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	s.mu.Lock()
	s.baseContext = connCtx
	s.connCancel = cancel
	s.connectMetadata = config.traceMetadata
	s.mu.Unlock()

	if config.initialContext != "" {
		if err := s.transport.SendSilentContext(config.initialContext); err != nil {
			logger.Warn("Failed to send initial context", "error", err.Error())
		}
	}

	epoch := s.epoch.Add(1)
	go s.dispatchEvents(s.transport.Events(), epoch)
	return nil
}

// failConnect moves the session to its terminal error state after a fatal
// connection error.
func (s *Session) failConnect(err error) {
	s.mu.Lock()
	from := s.state
	s.state = StateError
	s.mu.Unlock()

	s.emitter.emit(events.NewSessionStateChanged(string(from), string(StateError)))
	s.emitter.emit(events.NewSessionError(err))
}

// Disconnect tears the connection down and returns the session to idle. It
// is valid from any state and tolerates being called when already idle.
func (s *Session) Disconnect() error {
	s.epoch.Add(1)

	s.mu.Lock()
	from := s.state
	alreadyIdle := from == StateIdle
	s.state = StateIdle
	s.approvedTools = map[string]struct{}{}
	s.pendingApprovals = map[string]events.ToolApprovalRequest{}
	cancel := s.connCancel
	s.connCancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	var closeErr error
	if s.transport != nil {
		closeErr = s.transport.Close()
	}
	s.correlator.end()

	if !alreadyIdle {
		s.emitter.emit(events.NewSessionStateChanged(string(from), string(StateIdle)))
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close transport: %w", closeErr)
	}
	return nil
}

// Close is an alias for Disconnect.
func (s *Session) Close() error { return s.Disconnect() }

// SendMessage sends user text to the peer and records it in history.
func (s *Session) SendMessage(text string) error {
	if !s.connected() {
		return ErrNotConnected
	}

	if err := s.transport.SendMessage(text); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	s.appendHistory(HistoryItemTypeMessage, RoleUser, text)
	return nil
}

// SendContext sends background text the peer should consider without
// treating it as a user turn. Silent context is not recorded in history.
func (s *Session) SendContext(text string) error {
	if !s.connected() {
		return ErrNotConnected
	}

	if err := s.transport.SendSilentContext(text); err != nil {
		return fmt.Errorf("failed to send context: %w", err)
	}
	return nil
}

// Interrupt asks the peer to stop playback. It is only meaningful while
// speaking; in any other state it is a no-op.
func (s *Session) Interrupt() error {
	if s.State() != StateSpeaking {
		return nil
	}

	if err := s.transport.Interrupt(); err != nil {
		return fmt.Errorf("failed to interrupt playback: %w", err)
	}
	s.emitter.emit(events.NewSessionInterrupted())
	return nil
}

// backgroundContext is the context off-loop work runs under. It survives
// the Connect call's context but carries its trace linkage.
func (s *Session) backgroundContext() context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.baseContext
}

func (s *Session) connected() bool {
	switch s.State() {
	case StateIdle, StateConnecting, StateError:
		return false
	default:
		return true
	}
}

// History returns a copy of the conversation history.
func (s *Session) History() []HistoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := make([]HistoryItem, len(s.history))
	copy(history, s.history)
	return history
}

// Snapshot is a point-in-time view of session state.
type Snapshot struct {
	State         State
	ActiveAgent   string
	History       []HistoryItem
	ApprovedTools []string
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var history []HistoryItem
	copier.Copy(&history, s.history)

	approved := make([]string, 0, len(s.approvedTools))
	for name := range s.approvedTools {
		approved = append(approved, name)
	}

	return Snapshot{
		State:         s.state,
		ActiveAgent:   s.activeAgent.Name(),
		History:       history,
		ApprovedTools: approved,
	}
}

// dispatchEvents is the serialized event path: one goroutine per
// connection, one event at a time.
func (s *Session) dispatchEvents(eventCh <-chan transport.Event, epoch int64) {
	for raw := range eventCh {
		if s.epoch.Load() != epoch {
			return
		}
		s.processEvent(raw)
	}
}

func (s *Session) processEvent(raw transport.Event) {
	// Transient peer errors are suppressed before classification; the
	// session keeps its current state.
	if errEvent, ok := raw.(transport.ErrorEvent); ok && isTransientTransportError(errEvent) {
		logger.Debug("Suppressed transient transport error",
			"code", string(errEvent.Code), "message", errEvent.Message)
		return
	}

	event, ok := classifyEvent(raw)
	if !ok {
		return
	}
	logger.Debug("Dispatching session event",
		"namespace", event.Kind().Namespace(), "kind", string(event.Kind()))

	s.mu.Lock()
	from := s.state
	to, changed := nextState(from, event.Kind())
	if changed {
		s.state = to
	}
	activeAgent := s.activeAgent
	connectMetadata := s.connectMetadata
	s.mu.Unlock()

	switch typed := event.(type) {
	case events.SessionStarted:
		metadata := map[string]string{
			"session.id": typed.SessionID,
			"agent.name": activeAgent.Name(),
		}
		for key, value := range connectMetadata {
			metadata[key] = value
		}
		s.correlator.start("session", metadata)

	case events.UserTranscriptCompleted:
		s.correlator.recordUserMessage(typed.Transcript)
		s.appendHistory(HistoryItemTypeMessage, RoleUser, typed.Transcript)

	case events.AssistantTranscriptCompleted:
		event = events.NewAssistantTranscriptCompleted(typed.ItemID, typed.Transcript, activeAgent.Name())
		s.appendHistory(HistoryItemTypeMessage, RoleAssistant, typed.Transcript)
		if recovery.ShouldAttempt(typed.Transcript) {
			go s.recoverTranscript(typed.Transcript)
		}

	case events.ToolCallStarted:
		event = events.NewToolCallStarted(typed.ID, typed.Name, typed.Arguments, activeAgent.Name())
		s.correlator.toolStarted(typed.ID, typed.Name, activeAgent.Name())
		s.appendHistory(HistoryItemTypeFunctionCall, RoleAssistant, typed.Name)
		if tool, found := activeAgent.Tool(typed.Name); found {
			epoch := s.epoch.Load()
			if tool.NeedsApproval {
				// Gated tools wait at the approval gate; execution
				// starts only once the call is approved. Deferred so
				// the started event goes out first.
				defer s.gateApproval(typed.Name, typed.Arguments, localExecution{
					epoch:     epoch,
					callID:    typed.ID,
					tool:      tool,
					arguments: typed.Arguments,
				})
			} else {
				go s.executeTool(epoch, typed.ID, tool, typed.Arguments)
			}
		}

	case events.ToolCallCompleted:
		s.correlator.toolEnded(typed.ID, nil)
		s.appendHistory(HistoryItemTypeFunctionCallOutput, RoleAssistant, typed.Response)

	case events.ToolCallFailed:
		s.correlator.toolEnded(typed.ID, errors.New(typed.Error))

	case events.ToolApprovalRequested:
		// The request coming off the classifier has no ID yet; the
		// gatekeeper either auto-approves it or mints the real request.
		s.gateApproval(typed.Request.ToolName, typed.Request.Arguments, typed.Request.Item())
		return

	case events.HandoffRequested:
		s.routeHandoff(typed.Target)
		return

	case events.SessionError:
		s.correlator.recordError(typed.Err)
		s.correlator.end()

	case events.SessionAborted:
		s.correlator.end()
		s.mu.Lock()
		s.approvedTools = map[string]struct{}{}
		s.pendingApprovals = map[string]events.ToolApprovalRequest{}
		cancel := s.connCancel
		s.connCancel = nil
		s.mu.Unlock()
		if cancel != nil {
			cancel()
		}
	}

	if changed {
		s.emitter.emit(events.NewSessionStateChanged(string(from), string(to)))
	}

	switch event.Kind() {
	case events.KindSessionStarted, events.KindUserSpeechStarted, events.KindUserSpeechStopped:
		// State change (if any) is the whole story for these.
	default:
		s.emitter.emit(event)
	}
}

// executeTool runs a local tool off the event path. Results arriving after
// a disconnect are discarded.
func (s *Session) executeTool(epoch int64, callID string, tool agents.Tool, arguments string) {
	ctx, span := tracer.Start(s.backgroundContext(), "execute tool")
	defer span.End()

	response, err := tool.Execute(ctx, arguments)
	if s.epoch.Load() != epoch {
		return
	}

	if err != nil {
		err = fmt.Errorf("failed to execute tool %q: %w", tool.Name, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.correlator.toolEnded(callID, err)
		s.emitter.emit(events.NewToolCallFailed(callID, tool.Name, err.Error()))
		return
	}

	s.correlator.toolEnded(callID, nil)
	s.appendHistory(HistoryItemTypeFunctionCallOutput, RoleAssistant, response)
	s.emitter.emit(events.NewToolCallCompleted(callID, tool.Name, response))
}

// recoverTranscript runs the malformed-output engine off the event path.
// The connection context gates the engine's writes, so a disconnect while
// recovery is in flight leaves every document untouched. Whatever happens,
// a failed guess produces no user-visible effect.
func (s *Session) recoverTranscript(transcript string) {
	if s.recovery.Recover(s.backgroundContext(), transcript) {
		logger.Debug("Recovered malformed assistant output", "length", len(transcript))
	}
}

func (s *Session) appendHistory(itemType HistoryItemType, role Role, content string) {
	s.mu.Lock()
	item := newHistoryItem(itemType, role, content, s.activeAgent.Name())
	s.history = append(s.history, item)
	length := len(s.history)
	s.mu.Unlock()

	s.emitter.emit(events.NewHistoryUpdated(length))
}
