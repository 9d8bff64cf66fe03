package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/xiaot623/gogo/governor/internal/domain"
	"github.com/xiaot623/gogo/governor/internal/logger"
)

// AttachContext stores a fragment against sessionID. An unknown, expired or
// foreign session id is replaced by a fresh session, whose id is returned.
func (s *Service) AttachContext(ctx context.Context, userID, sessionID string, in domain.ContextInput) (*domain.AttachContextResponse, error) {
	if in.Type == "" || in.Payload == nil {
		return nil, fmt.Errorf("%w: context type and payload are required", domain.ErrInvalidInput)
	}

	sessionID, err := s.ResolveOrCreate(ctx, userID, sessionID, domain.SessionKindConversation)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	relevance := in.Relevance
	if relevance <= 0 {
		relevance = domain.DefaultRelevance
	}
	metadata := in.Metadata
	metadata.CreatedAt = now
	metadata.UpdatedAt = now

	fragment := &domain.ContextFragment{
		ContextID: uuid.NewString(),
		SessionID: sessionID,
		UserID:    userID,
		Type:      in.Type,
		Payload:   in.Payload,
		Metadata:  metadata,
		Relevance: relevance,
		CreatedAt: now,
		ExpiresAt: now.Add(s.config.Session.ContextTTL),
	}
	if err := s.store.CreateContext(ctx, fragment); err != nil {
		return nil, fmt.Errorf("failed to create context: %w", err)
	}
	if err := s.store.AppendSessionContext(ctx, sessionID, fragment.ContextID); err != nil {
		logger.Error("Failed to link context to session", "session_id", sessionID, "context_id", fragment.ContextID, "error", err)
		s.metrics.PersistenceFailure("context_link")
	}

	return &domain.AttachContextResponse{ContextID: fragment.ContextID, SessionID: sessionID}, nil
}

// AddCodeContext attaches a code snippet tagged with its language.
func (s *Service) AddCodeContext(ctx context.Context, userID, sessionID string, req domain.AttachCodeRequest) (*domain.AttachContextResponse, error) {
	tags := []string{"code"}
	if req.Language != "" {
		tags = append(tags, req.Language)
	}
	return s.AttachContext(ctx, userID, sessionID, domain.ContextInput{
		Type:     domain.ContextTypeCode,
		Payload:  domain.CodePayload{Code: req.Code, Language: req.Language},
		Metadata: domain.ContextMetadata{Tags: tags, Extra: req.Metadata},
	})
}

// AddProjectContext attaches project data.
func (s *Service) AddProjectContext(ctx context.Context, userID, sessionID string, req domain.AttachProjectRequest) (*domain.AttachContextResponse, error) {
	return s.AttachContext(ctx, userID, sessionID, domain.ContextInput{
		Type:     domain.ContextTypeProject,
		Payload:  req.Project,
		Metadata: domain.ContextMetadata{Tags: []string{"project", "construction"}},
	})
}

// RetrieveContexts returns the live fragments of a session, highest relevance
// first and newest first within equal relevance. A session that is unknown,
// expired or not owned by userID yields an empty list.
func (s *Service) RetrieveContexts(ctx context.Context, userID, sessionID string, typeFilter domain.ContextType) ([]domain.ContextFragment, error) {
	session, err := s.liveSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return []domain.ContextFragment{}, nil
	}
	return s.retrieve(ctx, sessionID, typeFilter)
}

func (s *Service) retrieve(ctx context.Context, sessionID string, typeFilter domain.ContextType) ([]domain.ContextFragment, error) {
	fragments, err := s.store.ListContexts(ctx, sessionID, typeFilter, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list contexts: %w", err)
	}
	if fragments == nil {
		fragments = []domain.ContextFragment{}
	}
	return fragments, nil
}
