package session

import (
	"testing"

	"github.com/parley-ai/parley-core/core/events"
	"github.com/parley-ai/parley-core/core/transport"
)

func TestClassifyEventDropsDeltas(t *testing.T) {
	deltas := []transport.Event{
		transport.TranscriptDelta{ItemID: "t-1", Role: transport.RoleUser, Delta: "he"},
		transport.MessageDelta{ItemID: "m-1", Delta: "llo"},
		transport.ReasoningDelta{ItemID: "r-1", Delta: "thinking"},
		transport.Unknown{RawType: "response.esoteric_extension"},
	}

	for _, raw := range deltas {
		if event, ok := classifyEvent(raw); ok {
			t.Fatalf("expected %T to be dropped, got %v", raw, event)
		}
	}
}

func TestClassifyEventMapping(t *testing.T) {
	cases := []struct {
		name string
		raw  transport.Event
		want events.Kind
	}{
		{"session started", transport.SessionStarted{SessionID: "s"}, events.KindSessionStarted},
		{"speech started", transport.SpeechStarted{}, events.KindUserSpeechStarted},
		{"speech stopped", transport.SpeechStopped{}, events.KindUserSpeechStopped},
		{"user transcript", transport.TranscriptDone{Role: transport.RoleUser, Transcript: "hi"}, events.KindUserTranscriptCompleted},
		{"assistant transcript", transport.TranscriptDone{Role: transport.RoleAssistant, Transcript: "hello"}, events.KindAssistantTranscriptCompleted},
		{"audio started", transport.AudioStarted{ItemID: "a"}, events.KindAssistantAudioStarted},
		{"audio stopped", transport.AudioStopped{ItemID: "a"}, events.KindAssistantAudioStopped},
		{"tool call started", transport.ToolCallStarted{CallID: "c", Name: "echo"}, events.KindToolCallStarted},
		{"tool call completed", transport.ToolCallEnded{CallID: "c", Name: "echo", Output: "ok"}, events.KindToolCallCompleted},
		{"tool call failed", transport.ToolCallEnded{CallID: "c", Name: "echo", Error: "boom"}, events.KindToolCallFailed},
		{"approval requested", transport.ApprovalRequested{Name: "send_email"}, events.KindToolApprovalRequested},
		{"handoff", transport.Handoff{Target: "billing"}, events.KindHandoffRequested},
		{"error", transport.ErrorEvent{Message: "broken"}, events.KindSessionError},
		{"aborted", transport.Aborted{}, events.KindSessionAborted},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			event, ok := classifyEvent(tc.raw)
			if !ok {
				t.Fatalf("expected %T to classify", tc.raw)
			}
			if event.Kind() != tc.want {
				t.Fatalf("expected kind %q, got %q", tc.want, event.Kind())
			}
		})
	}
}

func TestTransientErrorClassification(t *testing.T) {
	cases := []struct {
		name      string
		event     transport.ErrorEvent
		transient bool
	}{
		{"typed timeout", transport.ErrorEvent{Code: transport.ErrorCodeTimeout}, true},
		{"typed audio buffer", transport.ErrorEvent{Code: transport.ErrorCodeAudioBuffer}, true},
		{"typed reconnect", transport.ErrorEvent{Code: transport.ErrorCodeReconnect}, true},
		{"typed connection", transport.ErrorEvent{Code: transport.ErrorCodeConnection, Message: "timed out"}, false},
		{"untyped timeout message", transport.ErrorEvent{Message: "request timed out"}, true},
		{"untyped buffer message", transport.ErrorEvent{Message: "input audio buffer too small"}, true},
		{"untyped fatal message", transport.ErrorEvent{Message: "invalid session token"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isTransientTransportError(tc.event); got != tc.transient {
				t.Fatalf("expected transient=%v for %+v", tc.transient, tc.event)
			}
		})
	}
}
