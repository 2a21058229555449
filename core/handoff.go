package session

import "github.com/parley-ai/parley-core/core/events"

// routeHandoff switches the active agent in response to a peer handoff
// event. The main agent is always a valid return target; any other target
// must be registered and reachable from the currently active agent.
func (s *Session) routeHandoff(targetName string) {
	s.mu.Lock()
	current := s.activeAgent
	main := s.registry.Main()

	var handoff events.Handoff
	routed := false
	switch {
	case targetName == main.Name() && current.Name() != main.Name():
		s.activeAgent = main
		handoff = events.NewHandoffReturned(current.Name(), main.Name())
		routed = true
	default:
		target, registered := s.registry.Get(targetName)
		if registered && current.CanHandOffTo(targetName) {
			s.activeAgent = target
			handoff = events.NewHandoffAccepted(current.Name(), targetName)
			routed = true
		}
	}
	s.mu.Unlock()

	if !routed {
		logger.Debug("Ignoring handoff to unregistered agent",
			"from", current.Name(), "target", targetName)
		return
	}

	s.correlator.recordHandoff(handoff.From, handoff.To, handoff.Kind() == events.KindHandoffReturned)
	s.emitter.emit(handoff)
}
