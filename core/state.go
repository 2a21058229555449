package session

import "github.com/parley-ai/parley-core/core/events"

// State is the session's conversational state.
type State string

const (
	// StateIdle is the initial state, and the terminal state after a clean
	// disconnect.
	StateIdle State = "idle"
	// StateConnecting covers the window between Connect and the peer's
	// session-start confirmation.
	StateConnecting State = "connecting"
	StateConnected  State = "connected"
	// StateListening means the user is speaking.
	StateListening State = "listening"
	// StateSpeaking means response audio is playing.
	StateSpeaking State = "speaking"
	// StateProcessing means a user utterance was transcribed and the peer is
	// working on a response.
	StateProcessing State = "processing"
	// StateError is terminal for the connection; recovering requires a full
	// reconnect.
	StateError State = "error"
)

// States lists every session state.
func States() []State {
	return []State{
		StateIdle,
		StateConnecting,
		StateConnected,
		StateListening,
		StateSpeaking,
		StateProcessing,
		StateError,
	}
}

// nextState is the transition table. It returns the state an event moves the
// session to and whether that is an actual change; events outside the table
// leave the state untouched.
//
// Transcription completion is a whitelist: it only moves the state out of
// connected or listening. Response audio may legitimately start before the
// transcription event is delivered, so a transcription arriving while
// speaking must be ignored rather than corrupt the visible state. Speech
// stopping likewise changes nothing; the session waits for the
// transcription event, whose timing is more reliable.
func nextState(current State, kind events.Kind) (State, bool) {
	switch kind {
	case events.KindSessionStarted:
		if current == StateConnecting {
			return StateConnected, true
		}

	case events.KindUserSpeechStarted:
		if current == StateConnected || current == StateProcessing {
			return StateListening, true
		}

	case events.KindUserTranscriptCompleted:
		if current == StateConnected || current == StateListening {
			return StateProcessing, true
		}

	case events.KindAssistantAudioStarted:
		if current == StateConnected || current == StateProcessing || current == StateListening {
			return StateSpeaking, true
		}

	case events.KindAssistantAudioStopped:
		if current == StateSpeaking {
			return StateConnected, true
		}

	case events.KindSessionError:
		if current != StateError {
			return StateError, true
		}

	case events.KindSessionAborted:
		if current != StateIdle {
			return StateIdle, true
		}
	}

	return current, false
}
