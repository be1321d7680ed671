package domain

import "time"

// MessageRole identifies the author of a transcript message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is one transcript line.
type Message struct {
	Timestamp time.Time   `json:"timestamp"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
}

// SessionRecord summarises a recorded conversation.
type SessionRecord struct {
	SessionID   string     `json:"session_id"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	Status      string     `json:"status"`
	FullName    *string    `json:"full_name"`
	Email       *string    `json:"email"`
	ZipCode     *string    `json:"zip_code"`
}

// SessionDetails is a recorded conversation with its transcript and final document.
type SessionDetails struct {
	Session   SessionRecord `json:"session"`
	Messages  []Message     `json:"messages"`
	FinalData *Document     `json:"final_data"`
}
