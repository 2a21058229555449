package session

import (
	"github.com/parley-ai/parley-core/core/events"
	"github.com/parley-ai/parley-core/core/transport"
)

// classifyEvent maps a decoded transport event onto the internal vocabulary.
// Delta events carry no transition or auditing value and are dropped here so
// they never reach the state machine or flood the trace. Unknown event
// types are logged at debug level and otherwise ignored; they must never
// crash the pipeline.
func classifyEvent(raw transport.Event) (events.Event, bool) {
	switch typed := raw.(type) {
	case transport.SessionStarted:
		return events.NewSessionStarted(typed.SessionID), true
	case transport.SpeechStarted:
		return events.NewUserSpeechStarted(), true
	case transport.SpeechStopped:
		return events.NewUserSpeechStopped(), true
	case transport.TranscriptDone:
		if typed.Role == transport.RoleAssistant {
			// Agent attribution happens at dispatch, where the active agent
			// is known.
			return events.NewAssistantTranscriptCompleted(typed.ItemID, typed.Transcript, ""), true
		}
		return events.NewUserTranscriptCompleted(typed.ItemID, typed.Transcript), true
	case transport.AudioStarted:
		return events.NewAssistantAudioStarted(typed.ItemID), true
	case transport.AudioStopped:
		return events.NewAssistantAudioStopped(typed.ItemID), true
	case transport.ToolCallStarted:
		return events.NewToolCallStarted(typed.CallID, typed.Name, typed.Arguments, ""), true
	case transport.ToolCallEnded:
		if typed.Error != "" {
			return events.NewToolCallFailed(typed.CallID, typed.Name, typed.Error), true
		}
		return events.NewToolCallCompleted(typed.CallID, typed.Name, typed.Output), true
	case transport.ApprovalRequested:
		return events.NewToolApprovalRequested(
			events.NewToolApprovalRequest("", typed.Name, typed.Arguments, typed.Item),
		), true
	case transport.Handoff:
		return events.NewHandoffRequested(typed.Target), true
	case transport.ErrorEvent:
		return events.NewSessionError(newTransportError(typed)), true
	case transport.Aborted:
		return events.NewSessionAborted(), true

	case transport.TranscriptDelta, transport.MessageDelta, transport.ReasoningDelta:
		return nil, false
	case transport.Unknown:
		logger.Debug("Ignoring unrecognized transport event", "type", typed.RawType)
		return nil, false
	default:
		logger.Debug("Ignoring unmapped transport event", "type", string(raw.Type()))
		return nil, false
	}
}
