package service

import (
	"context"
	"fmt"

	"github.com/xiaot623/gogo/governor/internal/domain"
)

// GetUsage aggregates token and cost totals for a user or an organization.
func (s *Service) GetUsage(ctx context.Context, scope domain.UsageScope, id string) (*domain.UsageSummary, error) {
	if id == "" || (scope != domain.UsageScopeUser && scope != domain.UsageScopeOrg) {
		return nil, fmt.Errorf("%w: a user or organization id is required", domain.ErrInvalidInput)
	}
	summary, err := s.store.SummarizeUsage(ctx, scope, id)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize usage: %w", err)
	}
	return summary, nil
}

// GetRequestCounter returns the user's counter, or a zero counter on the
// default plan when the user has made no requests.
func (s *Service) GetRequestCounter(ctx context.Context, userID string) (*domain.RequestCounter, error) {
	counter, err := s.store.GetRequestCounter(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get request counter: %w", err)
	}
	if counter == nil {
		counter = &domain.RequestCounter{UserID: userID, Tier: domain.TierFree, RequestsLimit: domain.DefaultRequestsLimit}
	}
	return counter, nil
}

// SetRequestPlan changes a user's tier and request limit.
func (s *Service) SetRequestPlan(ctx context.Context, userID string, tier domain.Tier, limit int64) error {
	if userID == "" || limit < 0 {
		return fmt.Errorf("%w: user id and a non-negative limit are required", domain.ErrInvalidInput)
	}
	switch tier {
	case domain.TierFree, domain.TierStarter, domain.TierPro, domain.TierEnterprise:
	default:
		return fmt.Errorf("%w: unknown tier %q", domain.ErrInvalidInput, tier)
	}
	if err := s.store.SetRequestPlan(ctx, userID, tier, limit, s.now().UTC()); err != nil {
		return fmt.Errorf("failed to set request plan: %w", err)
	}
	return nil
}
