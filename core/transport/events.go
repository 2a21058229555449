package transport

// EventType discriminates decoded wire events.
type EventType string

const (
	EventTypeSessionStarted    EventType = "session.started"
	EventTypeSpeechStarted     EventType = "input_audio.speech_started"
	EventTypeSpeechStopped     EventType = "input_audio.speech_stopped"
	EventTypeTranscriptDelta   EventType = "transcript.delta"
	EventTypeTranscriptDone    EventType = "transcript.done"
	EventTypeMessageDelta      EventType = "response.message_delta"
	EventTypeReasoningDelta    EventType = "response.reasoning_delta"
	EventTypeAudioStarted      EventType = "response.audio_started"
	EventTypeAudioStopped      EventType = "response.audio_stopped"
	EventTypeToolCallStarted   EventType = "tool.call_started"
	EventTypeToolCallEnded     EventType = "tool.call_ended"
	EventTypeApprovalRequested EventType = "tool.approval_requested"
	EventTypeHandoff           EventType = "handoff"
	EventTypeError             EventType = "error"
	EventTypeAborted           EventType = "aborted"
	EventTypeUnknown           EventType = "unknown"
)

// Event is one decoded peer event.
type Event interface {
	Type() EventType
}

// Role identifies the author of a transcript item.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// SessionStarted confirms that the peer accepted the connection.
type SessionStarted struct {
	SessionID string
}

func (SessionStarted) Type() EventType { return EventTypeSessionStarted }

// SpeechStarted marks detected voice activity in the user's audio.
type SpeechStarted struct{}

func (SpeechStarted) Type() EventType { return EventTypeSpeechStarted }

// SpeechStopped marks the end of detected voice activity.
type SpeechStopped struct{}

func (SpeechStopped) Type() EventType { return EventTypeSpeechStopped }

// TranscriptDelta is a streamed partial transcript. It carries no state
// transition meaning and is dropped by the classifier.
type TranscriptDelta struct {
	ItemID string
	Role   Role
	Delta  string
}

func (TranscriptDelta) Type() EventType { return EventTypeTranscriptDelta }

// TranscriptDone is the terminal transcript for one item.
type TranscriptDone struct {
	ItemID     string
	Role       Role
	Transcript string
}

func (TranscriptDone) Type() EventType { return EventTypeTranscriptDone }

// MessageDelta is a streamed partial of the assistant's text response.
type MessageDelta struct {
	ItemID string
	Delta  string
}

func (MessageDelta) Type() EventType { return EventTypeMessageDelta }

// ReasoningDelta is a streamed partial of the assistant's reasoning text.
type ReasoningDelta struct {
	ItemID string
	Delta  string
}

func (ReasoningDelta) Type() EventType { return EventTypeReasoningDelta }

// AudioStarted marks the first audio frame of a response.
type AudioStarted struct {
	ItemID string
}

func (AudioStarted) Type() EventType { return EventTypeAudioStarted }

// AudioStopped marks the end of response audio.
type AudioStopped struct {
	ItemID string
}

func (AudioStopped) Type() EventType { return EventTypeAudioStopped }

// ToolCallStarted marks the peer starting (or requesting) a tool execution.
type ToolCallStarted struct {
	CallID    string
	Name      string
	Arguments string
}

func (ToolCallStarted) Type() EventType { return EventTypeToolCallStarted }

// ToolCallEnded marks a finished tool execution on the peer side.
type ToolCallEnded struct {
	CallID string
	Name   string
	Output string
	Error  string
}

func (ToolCallEnded) Type() EventType { return EventTypeToolCallEnded }

// ApprovalRequested asks for a human decision before a tool may run. Item is
// the opaque handle that must be passed back to Approve or Reject unmodified.
type ApprovalRequested struct {
	Name      string
	Arguments string
	Item      any
}

func (ApprovalRequested) Type() EventType { return EventTypeApprovalRequested }

// Handoff asks to delegate the conversation to another agent.
type Handoff struct {
	Target string
}

func (Handoff) Type() EventType { return EventTypeHandoff }

// Aborted marks a peer-initiated session abort.
type Aborted struct{}

func (Aborted) Type() EventType { return EventTypeAborted }

// Unknown is produced for wire event types this client does not recognize.
// Unknown events are logged and dropped; they never crash the pipeline.
type Unknown struct {
	RawType string
}

func (Unknown) Type() EventType { return EventTypeUnknown }
