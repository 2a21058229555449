package events

const (
	KindUserSpeechStarted Kind = "user_speech.started"
	KindUserSpeechStopped Kind = "user_speech.stopped"
)

type UserSpeechStarted struct{ Base }

func NewUserSpeechStarted() UserSpeechStarted {
	return UserSpeechStarted{Base: NewBase(KindUserSpeechStarted)}
}

type UserSpeechStopped struct{ Base }

func NewUserSpeechStopped() UserSpeechStopped {
	return UserSpeechStopped{Base: NewBase(KindUserSpeechStopped)}
}
