// Package prompt builds the instruction sequence sent upstream for a chat turn.
package prompt

import (
	"strings"

	"github.com/xiaot623/gogo/governor/internal/adapter/llm"
	"github.com/xiaot623/gogo/governor/internal/domain"
)

// DefaultHistorySize is how many recent messages are carried into a prompt.
const DefaultHistorySize = 10

// Options tunes assembly. The zero value uses DefaultHistorySize and no budget.
type Options struct {
	HistorySize int
	// TokenBudget caps the estimated tokens of the whole prompt. History is
	// dropped oldest first until it fits; the system and final user entries
	// are always kept.
	TokenBudget int
}

// Assemble returns the system entry, up to the last HistorySize messages in
// chronological order, then the new user message. recent must already be in
// chronological order. The result depends only on the inputs.
func Assemble(systemPrompt string, contexts []domain.ContextFragment, recent []domain.Message, newUserMessage string, opts Options) []llm.ChatMessage {
	size := opts.HistorySize
	if size <= 0 {
		size = DefaultHistorySize
	}
	if len(recent) > size {
		recent = recent[len(recent)-size:]
	}

	system := llm.ChatMessage{Role: domain.RoleSystem, Content: systemPrompt + Summarize(contexts)}
	user := llm.ChatMessage{Role: domain.RoleUser, Content: newUserMessage}

	if opts.TokenBudget > 0 {
		used := EstimateTokens(system.Content) + EstimateTokens(user.Content)
		for _, m := range recent {
			used += EstimateTokens(m.Content)
		}
		for len(recent) > 0 && used > opts.TokenBudget {
			used -= EstimateTokens(recent[0].Content)
			recent = recent[1:]
		}
	}

	out := make([]llm.ChatMessage, 0, len(recent)+2)
	out = append(out, system)
	for _, m := range recent {
		out = append(out, llm.ChatMessage{Role: m.Role, Content: m.Content})
	}
	return append(out, user)
}

// Summarize renders contexts in the given order, one "[type]: payload" line
// each. It returns "" for no contexts.
func Summarize(contexts []domain.ContextFragment) string {
	if len(contexts) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\nContext:")
	for _, c := range contexts {
		b.WriteString("\n[")
		b.WriteString(string(c.Type))
		b.WriteString("]: ")
		if c.Payload != nil {
			b.WriteString(c.Payload.Summary())
		}
	}
	return b.String()
}

// EstimateTokens approximates the token count of s as ceil(len/4).
func EstimateTokens(s string) int {
	return (len(s) + 3) / 4
}

// ContextIDs lists the ids of contexts in order, for a message's ContextRefs.
func ContextIDs(contexts []domain.ContextFragment) []string {
	if len(contexts) == 0 {
		return nil
	}
	ids := make([]string, len(contexts))
	for i, c := range contexts {
		ids[i] = c.ContextID
	}
	return ids
}
