package events

const (
	KindAssistantAudioStarted Kind = "assistant_audio.started"
	KindAssistantAudioStopped Kind = "assistant_audio.stopped"
)

type AssistantAudioStarted struct {
	Base
	ItemID string
}

func NewAssistantAudioStarted(itemID string) AssistantAudioStarted {
	return AssistantAudioStarted{Base: NewBase(KindAssistantAudioStarted), ItemID: itemID}
}

type AssistantAudioStopped struct {
	Base
	ItemID string
}

func NewAssistantAudioStopped(itemID string) AssistantAudioStopped {
	return AssistantAudioStopped{Base: NewBase(KindAssistantAudioStopped), ItemID: itemID}
}
