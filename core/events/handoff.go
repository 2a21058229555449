package events

const (
	// KindHandoffRequested identifies a peer-requested delegation that has
	// not been routed yet.
	KindHandoffRequested Kind = "handoff.requested"
	// KindHandoffAccepted identifies a delegation to a registered agent.
	KindHandoffAccepted Kind = "handoff.accepted"
	// KindHandoffReturned identifies control returning to the original agent.
	KindHandoffReturned Kind = "handoff.returned"
)

// HandoffRequested carries the target name of a peer-requested delegation.
// The router decides whether the request is honored.
type HandoffRequested struct {
	Base
	Target string
}

// NewHandoffRequested creates a handoff requested event.
func NewHandoffRequested(target string) HandoffRequested {
	return HandoffRequested{Base: NewBase(KindHandoffRequested), Target: target}
}

// Handoff records an active-agent change. From and To are agent names.
type Handoff struct {
	Base
	From string
	To   string
}

// NewHandoffAccepted creates a handoff event for a delegation.
func NewHandoffAccepted(from, to string) Handoff {
	return Handoff{Base: NewBase(KindHandoffAccepted), From: from, To: to}
}

// NewHandoffReturned creates a handoff event for a returned delegation.
func NewHandoffReturned(from, to string) Handoff {
	return Handoff{Base: NewBase(KindHandoffReturned), From: from, To: to}
}
