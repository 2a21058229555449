package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/parley-ai/parley-core/core/transport"
)

var (
	// ErrAlreadyConnected is returned when Connect is called anywhere but
	// idle.
	ErrAlreadyConnected = errors.New("session is already connecting or connected")
	// ErrNotConnected is returned when a send is attempted without a live
	// connection.
	ErrNotConnected = errors.New("session is not connected")
	// ErrNoTransport is returned when the session was built without a
	// transport.
	ErrNoTransport = errors.New("no transport configured")
)

// transportError wraps a peer-reported error, keeping its typed code.
type transportError struct {
	code    transport.ErrorCode
	message string
}

func newTransportError(event transport.ErrorEvent) *transportError {
	return &transportError{code: event.Code, message: event.Message}
}

func (e *transportError) Error() string {
	if e.code != transport.ErrorCodeUnspecified {
		return fmt.Sprintf("transport error (%s): %s", e.code, e.message)
	}
	return fmt.Sprintf("transport error: %s", e.message)
}

// transientErrorFragments backs the message heuristic used when a transport
// reports no typed code. Substring classification is fragile; transports
// that can classify their own errors should, and the typed code always
// wins.
var transientErrorFragments = []string{
	"timeout",
	"timed out",
	"buffer",
	"audio",
	"reconnect",
	"interrupt",
}

// isTransientTransportError decides whether a peer error should be
// suppressed rather than fail the session.
func isTransientTransportError(event transport.ErrorEvent) bool {
	if event.Code != transport.ErrorCodeUnspecified {
		return event.Code.Transient()
	}

	message := strings.ToLower(event.Message)
	for _, fragment := range transientErrorFragments {
		if strings.Contains(message, fragment) {
			return true
		}
	}
	return false
}
