package events

import (
	"strings"
	"time"
)

// Kind identifies an event type. Kinds follow the "<namespace>.<occurrence>"
// convention documented in the package overview, e.g. "tool_approval.requested".
type Kind string

// Namespace reports the concern the kind belongs to: "tool_approval" for
// "tool_approval.requested". A kind without a dot is its own namespace.
func (k Kind) Namespace() string {
	namespace, _, _ := strings.Cut(string(k), ".")
	return namespace
}

// Event is the common surface of everything the session emits.
type Event interface {
	Kind() Kind
	Timestamp() time.Time
}

// Base carries the kind and emission time shared by every event. Concrete
// events embed it and construct it through NewBase.
type Base struct {
	kind      Kind
	timestamp time.Time
}

// NewBase stamps an event base with the current time.
func NewBase(kind Kind) Base {
	return Base{kind: kind, timestamp: time.Now()}
}

func (b Base) Kind() Kind {
	return b.kind
}

func (b Base) Timestamp() time.Time {
	return b.timestamp
}
