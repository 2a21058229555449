package session

import (
	"time"

	"github.com/google/uuid"
)

// HistoryItemType classifies a conversational history item.
type HistoryItemType string

const (
	HistoryItemTypeMessage            HistoryItemType = "message"
	HistoryItemTypeFunctionCall       HistoryItemType = "function_call"
	HistoryItemTypeFunctionCallOutput HistoryItemType = "function_call_output"
)

// Role identifies the author of a history item.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// HistoryItem is one conversational turn or event. AgentName records which
// agent was active when the item was produced, not when it is read.
type HistoryItem struct {
	ID        string
	Type      HistoryItemType
	Role      Role
	Content   string
	AgentName string
	At        time.Time
}

func newHistoryItem(itemType HistoryItemType, role Role, content, agentName string) HistoryItem {
	return HistoryItem{
		ID:        uuid.NewString(),
		Type:      itemType,
		Role:      role,
		Content:   content,
		AgentName: agentName,
		At:        time.Now(),
	}
}
