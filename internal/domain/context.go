package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ContextType tags a context fragment. Types outside the known set are kept
// verbatim and carried as OtherPayload.
type ContextType string

const (
	ContextTypeCode         ContextType = "code"
	ContextTypeProject      ContextType = "project"
	ContextTypeConversation ContextType = "conversation"
	ContextTypeFreeform     ContextType = "freeform"
)

// ContextPayload is the typed body of a fragment.
type ContextPayload interface {
	// Summary renders the payload for the prompt's context block.
	Summary() string
}

// CodePayload holds a code snippet.
type CodePayload struct {
	Code     string `json:"code"`
	Language string `json:"language,omitempty"`
}

func (p CodePayload) Summary() string {
	if p.Language == "" {
		return p.Code
	}
	return fmt.Sprintf("(%s) %s", p.Language, p.Code)
}

// ProjectPayload holds project data supplied by the caller.
type ProjectPayload struct {
	Name        string                 `json:"name,omitempty"`
	Description string                 `json:"description,omitempty"`
	Details     map[string]interface{} `json:"details,omitempty"`
}

func (p ProjectPayload) Summary() string {
	parts := make([]string, 0, 3)
	if p.Name != "" {
		parts = append(parts, p.Name)
	}
	if p.Description != "" {
		parts = append(parts, p.Description)
	}
	if len(p.Details) > 0 {
		// encoding/json sorts map keys, so this is deterministic.
		b, _ := json.Marshal(p.Details)
		parts = append(parts, string(b))
	}
	return strings.Join(parts, " - ")
}

// ConversationPayload is text derived from earlier conversation.
type ConversationPayload struct {
	Text string `json:"text"`
}

func (p ConversationPayload) Summary() string { return p.Text }

// FreeformPayload is arbitrary caller text.
type FreeformPayload struct {
	Text string `json:"text"`
}

func (p FreeformPayload) Summary() string { return p.Text }

// OtherPayload carries an unrecognised type as an opaque JSON blob.
type OtherPayload struct {
	Raw json.RawMessage
}

func (p OtherPayload) Summary() string { return string(p.Raw) }

func (p OtherPayload) MarshalJSON() ([]byte, error) {
	if len(p.Raw) == 0 {
		return []byte("null"), nil
	}
	return p.Raw, nil
}

// DecodePayload builds the typed payload for t from raw JSON.
// Free-form and conversation payloads also accept a bare JSON string.
func DecodePayload(t ContextType, raw json.RawMessage) (ContextPayload, error) {
	switch t {
	case ContextTypeCode:
		var p CodePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("%w: code payload: %v", ErrInvalidInput, err)
		}
		return p, nil
	case ContextTypeProject:
		var p ProjectPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("%w: project payload: %v", ErrInvalidInput, err)
		}
		return p, nil
	case ContextTypeConversation:
		text, err := decodeText(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: conversation payload: %v", ErrInvalidInput, err)
		}
		return ConversationPayload{Text: text}, nil
	case ContextTypeFreeform:
		text, err := decodeText(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: freeform payload: %v", ErrInvalidInput, err)
		}
		return FreeformPayload{Text: text}, nil
	default:
		if len(raw) > 0 && !json.Valid(raw) {
			return nil, fmt.Errorf("%w: payload is not valid JSON", ErrInvalidInput)
		}
		return OtherPayload{Raw: append(json.RawMessage(nil), raw...)}, nil
	}
}

func decodeText(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var obj struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", err
	}
	return obj.Text, nil
}

// ContextMetadata is stored alongside a fragment.
type ContextMetadata struct {
	Tags      []string               `json:"tags,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
	Extra     map[string]interface{} `json:"extra,omitempty"`
}

// DefaultRelevance is assigned when the caller gives none.
const DefaultRelevance = 1.0

// ContextFragment is a typed, independently expiring piece of background
// information attached to a session.
type ContextFragment struct {
	ContextID string          `json:"context_id"`
	SessionID string          `json:"session_id"`
	UserID    string          `json:"user_id"`
	Type      ContextType     `json:"type"`
	Payload   ContextPayload  `json:"payload"`
	Metadata  ContextMetadata `json:"metadata"`
	Relevance float64         `json:"relevance"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Expired reports whether the fragment is past its expiry at now.
func (c *ContextFragment) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// ContextInput is what a caller supplies to attach a fragment.
type ContextInput struct {
	Type     ContextType
	Payload  ContextPayload
	Metadata ContextMetadata
	// Relevance <= 0 means DefaultRelevance.
	Relevance float64
}
