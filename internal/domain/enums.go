// Package domain defines the core domain models for governor.
package domain

// Role is the speaker of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// ChatMode selects the prompt, model and accounting tag for a chat turn.
type ChatMode string

const (
	ChatModeGeneral   ChatMode = "general"
	ChatModeDeveloper ChatMode = "developer"
)

// Valid reports whether m is a supported chat mode.
func (m ChatMode) Valid() bool {
	return m == ChatModeGeneral || m == ChatModeDeveloper
}

// SessionKind tags what a session is used for.
type SessionKind string

const (
	SessionKindConversation SessionKind = "conversation"
	SessionKindDeveloper    SessionKind = "developer"
)

// SessionKindFor maps a chat mode to the kind of session it creates.
func SessionKindFor(mode ChatMode) SessionKind {
	if mode == ChatModeDeveloper {
		return SessionKindDeveloper
	}
	return SessionKindConversation
}

// RequestType tags a usage record with the kind of upstream call.
type RequestType string

const (
	RequestTypeChat          RequestType = "chat"
	RequestTypeDeveloperChat RequestType = "developer_chat"
)

// RequestTypeFor maps a chat mode to its accounting tag.
func RequestTypeFor(mode ChatMode) RequestType {
	if mode == ChatModeDeveloper {
		return RequestTypeDeveloperChat
	}
	return RequestTypeChat
}

// Tier is the plan a caller is on; it feeds the model policy.
type Tier string

const (
	TierFree       Tier = "free"
	TierStarter    Tier = "starter"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)
