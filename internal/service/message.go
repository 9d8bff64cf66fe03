package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/xiaot623/gogo/governor/internal/domain"
	"github.com/xiaot623/gogo/governor/internal/logger"
)

// maxMessageLimit caps GET /messages.
const maxMessageLimit = 200

// GetMessages returns the most recent limit messages of a live session owned
// by userID, oldest first.
func (s *Service) GetMessages(ctx context.Context, userID, sessionID string, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = s.config.Session.HistorySize
	}
	if limit > maxMessageLimit {
		limit = maxMessageLimit
	}
	session, err := s.liveSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return []domain.Message{}, nil
	}
	messages, err := s.store.GetRecentMessages(ctx, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, nil
}

// appendMessage writes one turn stamped at. Failures are logged, never returned.
func (s *Service) appendMessage(ctx context.Context, sessionID string, role domain.Role, content string, refs []string, at time.Time) {
	msg := &domain.Message{
		MessageID:   uuid.NewString(),
		SessionID:   sessionID,
		Role:        role,
		Content:     content,
		CreatedAt:   at,
		ContextRefs: refs,
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		logger.Error("Failed to persist message", "session_id", sessionID, "role", role, "error", err)
		s.metrics.PersistenceFailure("message")
	}
}
