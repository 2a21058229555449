package events

// KindHistoryUpdated identifies a conversation history change.
const KindHistoryUpdated Kind = "history.updated"

// HistoryUpdated marks that the conversation history gained an item.
type HistoryUpdated struct {
	Base
	Length int
}

// NewHistoryUpdated creates a history updated event.
func NewHistoryUpdated(length int) HistoryUpdated {
	return HistoryUpdated{Base: NewBase(KindHistoryUpdated), Length: length}
}
