package realtime

import (
	"encoding/json"
	"fmt"

	"github.com/parley-ai/parley-core/core/transport"
)

// wireEvent is the envelope every server frame is decoded into once. Only
// the fields relevant to the given type are populated.
type wireEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
	ItemID    string `json:"item_id,omitempty"`
	Role      string `json:"role,omitempty"`
	Delta     string `json:"delta,omitempty"`
	Text      string `json:"text,omitempty"`
	CallID    string `json:"call_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
	Output    string `json:"output,omitempty"`
	Target    string `json:"target,omitempty"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message,omitempty"`
}

// approvalItem is the opaque handle handed out with approval requests. It
// must round-trip through Approve or Reject unmodified.
type approvalItem struct {
	CallID string
	Name   string
}

func decodeWireEvent(data []byte) (transport.Event, error) {
	var raw wireEvent
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal server frame: %w", err)
	}

	switch raw.Type {
	case "session.created":
		return transport.SessionStarted{SessionID: raw.SessionID}, nil
	case "input_audio.speech_started":
		return transport.SpeechStarted{}, nil
	case "input_audio.speech_stopped":
		return transport.SpeechStopped{}, nil
	case "transcript.delta":
		return transport.TranscriptDelta{ItemID: raw.ItemID, Role: transport.Role(raw.Role), Delta: raw.Delta}, nil
	case "transcript.done":
		return transport.TranscriptDone{ItemID: raw.ItemID, Role: transport.Role(raw.Role), Transcript: raw.Text}, nil
	case "response.message_delta":
		return transport.MessageDelta{ItemID: raw.ItemID, Delta: raw.Delta}, nil
	case "response.reasoning_delta":
		return transport.ReasoningDelta{ItemID: raw.ItemID, Delta: raw.Delta}, nil
	case "response.audio_started":
		return transport.AudioStarted{ItemID: raw.ItemID}, nil
	case "response.audio_stopped":
		return transport.AudioStopped{ItemID: raw.ItemID}, nil
	case "tool.call_started":
		return transport.ToolCallStarted{CallID: raw.CallID, Name: raw.Name, Arguments: raw.Arguments}, nil
	case "tool.call_ended":
		return transport.ToolCallEnded{CallID: raw.CallID, Name: raw.Name, Output: raw.Output, Error: raw.Message}, nil
	case "tool.approval_requested":
		return transport.ApprovalRequested{
			Name:      raw.Name,
			Arguments: raw.Arguments,
			Item:      approvalItem{CallID: raw.CallID, Name: raw.Name},
		}, nil
	case "handoff":
		return transport.Handoff{Target: raw.Target}, nil
	case "error":
		return transport.ErrorEvent{Code: transport.ErrorCode(raw.Code), Message: raw.Message}, nil
	case "aborted":
		return transport.Aborted{}, nil
	default:
		return transport.Unknown{RawType: raw.Type}, nil
	}
}
