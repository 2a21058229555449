package events

const (
	// KindSessionStarted identifies the transport's session-start confirmation.
	KindSessionStarted Kind = "session.started"
	// KindSessionStateChanged identifies a session state transition.
	KindSessionStateChanged Kind = "session.state_changed"
	// KindSessionError identifies a fatal session error.
	KindSessionError Kind = "session.error"
	// KindSessionInterrupted identifies a caller-initiated playback interrupt.
	KindSessionInterrupted Kind = "session.interrupted"
	// KindSessionAborted identifies a peer-initiated session abort.
	KindSessionAborted Kind = "session.aborted"
)

// SessionStarted marks the remote peer's session-start confirmation.
type SessionStarted struct {
	Base
	SessionID string
}

// NewSessionStarted creates a session started event.
func NewSessionStarted(sessionID string) SessionStarted {
	return SessionStarted{Base: NewBase(KindSessionStarted), SessionID: sessionID}
}

// SessionStateChanged marks an actual state transition. No-op transitions
// never produce this event.
type SessionStateChanged struct {
	Base
	From string
	To   string
}

// NewSessionStateChanged creates a state transition event.
func NewSessionStateChanged(from, to string) SessionStateChanged {
	return SessionStateChanged{Base: NewBase(KindSessionStateChanged), From: from, To: to}
}

// SessionError marks a fatal session error.
type SessionError struct {
	Base
	Err error
}

// NewSessionError creates a fatal session error event.
func NewSessionError(err error) SessionError {
	return SessionError{Base: NewBase(KindSessionError), Err: err}
}

// SessionInterrupted marks an interrupted assistant playback.
type SessionInterrupted struct {
	Base
}

// NewSessionInterrupted creates an interrupted event.
func NewSessionInterrupted() SessionInterrupted {
	return SessionInterrupted{Base: NewBase(KindSessionInterrupted)}
}

// SessionAborted marks a session abort delivered by the remote peer.
type SessionAborted struct {
	Base
}

// NewSessionAborted creates an aborted event.
func NewSessionAborted() SessionAborted {
	return SessionAborted{Base: NewBase(KindSessionAborted)}
}
