package models

import "time"

// Role identifies the author of a chat message. Only the constants below
// are valid.
type Role uint8

const (
	RoleUser Role = iota + 1
	RoleAssistant
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAssistant:
		return "assistant"
	default:
		return "unknown"
	}
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

type ChatMessage struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func NewUserMessage(content string, at time.Time) ChatMessage {
	return ChatMessage{Role: RoleUser, Content: content, CreatedAt: at}
}

func NewAssistantMessage(content string, at time.Time) ChatMessage {
	return ChatMessage{Role: RoleAssistant, Content: content, CreatedAt: at}
}
