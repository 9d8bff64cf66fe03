package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/xiaot623/gogo/governor/internal/domain"
)

// ResolveOrCreate returns candidateID when it names a live session owned by
// userID, refreshing its activity and expiry. Otherwise it creates a new
// session of the given kind. Either way exactly one row is written.
func (s *Service) ResolveOrCreate(ctx context.Context, userID, candidateID string, kind domain.SessionKind) (string, error) {
	now := s.now().UTC()
	expiresAt := now.Add(s.config.Session.TTL)

	if candidateID != "" {
		ok, err := s.store.TouchSession(ctx, candidateID, userID, now, expiresAt)
		if err != nil {
			return "", fmt.Errorf("failed to refresh session: %w", err)
		}
		if ok {
			return candidateID, nil
		}
	}

	if kind == "" {
		kind = domain.SessionKindConversation
	}
	session := &domain.Session{
		SessionID:    uuid.NewString(),
		UserID:       userID,
		Kind:         kind,
		CreatedAt:    now,
		LastActivity: now,
		ExpiresAt:    expiresAt,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return session.SessionID, nil
}

// liveSession returns the session when it exists, is unexpired and belongs
// to userID. Anything else reads as not found.
func (s *Service) liveSession(ctx context.Context, userID, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return nil, nil
	}
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil || session.UserID != userID || session.Expired(s.now()) {
		return nil, nil
	}
	return session, nil
}

// SessionStats reports the caller's live sessions, their messages and live contexts.
func (s *Service) SessionStats(ctx context.Context, userID string) (*domain.SessionStats, error) {
	stats, err := s.store.GetSessionStats(ctx, userID, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to get session stats: %w", err)
	}
	return stats, nil
}
