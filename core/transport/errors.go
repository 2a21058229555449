package transport

// ErrorCode is the typed error classification reported by a transport.
// Transports that cannot classify their errors leave it empty and the
// session falls back to a message heuristic.
type ErrorCode string

const (
	ErrorCodeUnspecified ErrorCode = ""
	ErrorCodeConnection  ErrorCode = "connection"
	ErrorCodeSession     ErrorCode = "session"
	ErrorCodeTimeout     ErrorCode = "timeout"
	ErrorCodeAudioBuffer ErrorCode = "audio_buffer"
	ErrorCodeReconnect   ErrorCode = "reconnect"
	ErrorCodeInterrupted ErrorCode = "interrupted"
)

// Transient reports whether the code denotes a recoverable condition the
// session should survive without a state change.
func (c ErrorCode) Transient() bool {
	switch c {
	case ErrorCodeTimeout, ErrorCodeAudioBuffer, ErrorCodeReconnect, ErrorCodeInterrupted:
		return true
	default:
		return false
	}
}

// ErrorEvent reports a peer or link error.
type ErrorEvent struct {
	Code    ErrorCode
	Message string
}

func (ErrorEvent) Type() EventType { return EventTypeError }
