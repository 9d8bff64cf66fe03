package domain

import "time"

// Session is a bounded-lifetime conversation owned by one user.
type Session struct {
	SessionID    string      `json:"session_id"`
	UserID       string      `json:"user_id"`
	Kind         SessionKind `json:"context_type"`
	CreatedAt    time.Time   `json:"created_at"`
	LastActivity time.Time   `json:"last_activity"`
	ExpiresAt    time.Time   `json:"expires_at"`
	// ContextIDs lists attached context fragments in attach order.
	ContextIDs []string `json:"context_ids"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionStats summarises a user's live conversational state.
type SessionStats struct {
	UserID         string `json:"user_id"`
	ActiveSessions int    `json:"active_sessions"`
	TotalMessages  int    `json:"total_messages"`
	ActiveContexts int    `json:"active_contexts"`
}

// SweepResult counts rows purged by one sweep.
type SweepResult struct {
	Sessions int `json:"sessions"`
	Contexts int `json:"contexts"`
}
