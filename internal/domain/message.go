package domain

import "time"

// Message is one turn in a session. Messages are never updated.
type Message struct {
	MessageID string    `json:"message_id"`
	SessionID string    `json:"session_id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	// ContextRefs are the fragments that were in the prompt for this turn.
	ContextRefs []string `json:"context_refs,omitempty"`
}
