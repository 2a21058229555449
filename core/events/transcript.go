package events

const (
	KindUserTranscriptCompleted      Kind = "transcript.user_completed"
	KindAssistantTranscriptCompleted Kind = "transcript.assistant_completed"
)

// UserTranscriptCompleted carries the terminal transcript of one user
// utterance.
type UserTranscriptCompleted struct {
	Base
	ItemID     string
	Transcript string
}

func NewUserTranscriptCompleted(itemID, transcript string) UserTranscriptCompleted {
	return UserTranscriptCompleted{Base: NewBase(KindUserTranscriptCompleted), ItemID: itemID, Transcript: transcript}
}

// AssistantTranscriptCompleted carries the terminal transcript of one
// assistant response. AgentName records the agent that was active when the
// transcript was emitted.
type AssistantTranscriptCompleted struct {
	Base
	ItemID     string
	Transcript string
	AgentName  string
}

func NewAssistantTranscriptCompleted(itemID, transcript, agentName string) AssistantTranscriptCompleted {
	return AssistantTranscriptCompleted{
		Base:       NewBase(KindAssistantTranscriptCompleted),
		ItemID:     itemID,
		Transcript: transcript,
		AgentName:  agentName,
	}
}
