package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayloadKnownTypes(t *testing.T) {
	p, err := DecodePayload(ContextTypeCode, json.RawMessage(`{"code":"fmt.Println(1)","language":"go"}`))
	require.NoError(t, err)
	assert.Equal(t, CodePayload{Code: "fmt.Println(1)", Language: "go"}, p)
	assert.Equal(t, "(go) fmt.Println(1)", p.Summary())

	p, err = DecodePayload(ContextTypeFreeform, json.RawMessage(`"remember the deadline"`))
	require.NoError(t, err)
	assert.Equal(t, "remember the deadline", p.Summary())

	p, err = DecodePayload(ContextTypeConversation, json.RawMessage(`{"text":"we agreed on steel"}`))
	require.NoError(t, err)
	assert.Equal(t, ConversationPayload{Text: "we agreed on steel"}, p)
}

func TestDecodePayloadUnknownTypeIsOpaque(t *testing.T) {
	raw := json.RawMessage(`{"bridge":"codex","files":3}`)
	p, err := DecodePayload(ContextType("codex"), raw)
	require.NoError(t, err)

	other, ok := p.(OtherPayload)
	require.True(t, ok)
	assert.JSONEq(t, string(raw), other.Summary())

	out, err := json.Marshal(other)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(out))
}

func TestDecodePayloadRejectsMalformed(t *testing.T) {
	_, err := DecodePayload(ContextTypeCode, json.RawMessage(`"just a string"`))
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = DecodePayload(ContextType("blob"), json.RawMessage(`{broken`))
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestProjectSummaryIsDeterministic(t *testing.T) {
	p := ProjectPayload{
		Name:        "Harbour Tower",
		Description: "12 storey residential",
		Details:     map[string]interface{}{"phase": "frame", "budget": 4.2, "crew": 18},
	}
	first := p.Summary()
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, p.Summary())
	}
	assert.Equal(t, `Harbour Tower - 12 storey residential - {"budget":4.2,"crew":18,"phase":"frame"}`, first)
}

func TestExpiry(t *testing.T) {
	now := time.Now()
	s := &Session{ExpiresAt: now}
	assert.True(t, s.Expired(now))
	assert.False(t, s.Expired(now.Add(-time.Nanosecond)))

	c := &ContextFragment{ExpiresAt: now.Add(time.Minute)}
	assert.False(t, c.Expired(now))
	assert.True(t, c.Expired(now.Add(time.Minute)))
}

func TestModeMappings(t *testing.T) {
	assert.Equal(t, SessionKindDeveloper, SessionKindFor(ChatModeDeveloper))
	assert.Equal(t, SessionKindConversation, SessionKindFor(ChatModeGeneral))
	assert.Equal(t, RequestTypeDeveloperChat, RequestTypeFor(ChatModeDeveloper))
	assert.Equal(t, RequestTypeChat, RequestTypeFor(ChatModeGeneral))
	assert.False(t, ChatMode("poetry").Valid())
	assert.True(t, RoleAssistant.Valid())
}
