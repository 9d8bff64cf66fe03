package domain

import "encoding/json"

// Identity is the caller as asserted by upstream middleware.
type Identity struct {
	UserID     string
	OrgID      string
	Privileged bool
}

// ChatRequest is the body of POST /v1/chat.
type ChatRequest struct {
	Message   string   `json:"message" validate:"required,max=32000"`
	Mode      ChatMode `json:"mode" validate:"omitempty,oneof=general developer"`
	SessionID string   `json:"session_id,omitempty"`
}

// ChatResult is returned by a chat turn.
type ChatResult struct {
	Response  string       `json:"response"`
	SessionID string       `json:"session_id"`
	Usage     *UsageRecord `json:"usage,omitempty"`
	// Fallback is true when Response is the throttled fallback text.
	Fallback bool `json:"fallback,omitempty"`
}

// AttachContextRequest is the body of POST /v1/sessions/:session_id/contexts.
type AttachContextRequest struct {
	Type      ContextType            `json:"type" validate:"required,max=64"`
	Payload   json.RawMessage        `json:"payload" validate:"required"`
	Tags      []string               `json:"tags,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Relevance *float64               `json:"relevance,omitempty" validate:"omitempty,gt=0"`
}

// AttachCodeRequest is the body of POST /v1/sessions/:session_id/contexts/code.
type AttachCodeRequest struct {
	Code     string                 `json:"code" validate:"required"`
	Language string                 `json:"language,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// AttachProjectRequest is the body of POST /v1/sessions/:session_id/contexts/project.
type AttachProjectRequest struct {
	Project ProjectPayload `json:"project"`
}

// AttachContextResponse reports where the fragment landed. SessionID differs
// from the requested id when that session had expired.
type AttachContextResponse struct {
	ContextID string `json:"context_id"`
	SessionID string `json:"session_id"`
}

// ErrorResponse is the JSON error body of every handler.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	// SessionID is set when the failed turn was recorded in a session.
	SessionID string `json:"session_id,omitempty"`
}
