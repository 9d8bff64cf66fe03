package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xiaot623/gogo/governor/internal/domain"
)

// CreateUsageRecord persists one usage record.
func (s *SQLiteStore) CreateUsageRecord(ctx context.Context, record *domain.UsageRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO usage_records (usage_id, user_id, org_id, provider, model, request_type,
			prompt_tokens, completion_tokens, total_tokens, cost, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.UsageID, record.UserID, record.OrgID, record.Provider, record.Model, record.RequestType,
		record.PromptTokens, record.CompletionTokens, record.TotalTokens, record.Cost, toUnix(record.CreatedAt))
	return err
}

// IncrementRequestCounter bumps the user's request count, creating the row on first use.
func (s *SQLiteStore) IncrementRequestCounter(ctx context.Context, userID string, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO request_counters (user_id, requests_used, requests_limit, updated_at)
		VALUES (?, 1, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			requests_used = requests_used + 1,
			updated_at = excluded.updated_at
	`, userID, domain.DefaultRequestsLimit, toUnix(now))
	return err
}

// GetRequestCounter returns the user's counter, or nil if the user has none.
func (s *SQLiteStore) GetRequestCounter(ctx context.Context, userID string) (*domain.RequestCounter, error) {
	var c domain.RequestCounter
	var updatedAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, tier, requests_used, requests_limit, updated_at FROM request_counters WHERE user_id = ?`,
		userID).Scan(&c.UserID, &c.Tier, &c.RequestsUsed, &c.RequestsLimit, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.UpdatedAt = fromUnix(updatedAt)
	return &c, nil
}

// SetRequestPlan sets tier and limit for a user without touching the used count.
func (s *SQLiteStore) SetRequestPlan(ctx context.Context, userID string, tier domain.Tier, limit int64, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO request_counters (user_id, tier, requests_used, requests_limit, updated_at)
		VALUES (?, ?, 0, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			tier = excluded.tier,
			requests_limit = excluded.requests_limit,
			updated_at = excluded.updated_at
	`, userID, tier, limit, toUnix(now))
	return err
}

// SummarizeUsage aggregates usage for a user or an organization, broken down by provider and model.
func (s *SQLiteStore) SummarizeUsage(ctx context.Context, scope domain.UsageScope, id string) (*domain.UsageSummary, error) {
	var column string
	switch scope {
	case domain.UsageScopeUser:
		column = "user_id"
	case domain.UsageScopeOrg:
		column = "org_id"
	default:
		return nil, fmt.Errorf("unknown usage scope %q", scope)
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT provider, model, COUNT(*), SUM(prompt_tokens), SUM(completion_tokens), SUM(total_tokens), SUM(cost)
		FROM usage_records
		WHERE %s = ?
		GROUP BY provider, model
		ORDER BY provider, model
	`, column), id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summary := &domain.UsageSummary{Scope: scope, ID: id, ByModel: []domain.ModelUsage{}}
	for rows.Next() {
		var m domain.ModelUsage
		if err := rows.Scan(&m.Provider, &m.Model, &m.Requests, &m.PromptTokens, &m.CompletionTokens, &m.TotalTokens, &m.Cost); err != nil {
			return nil, err
		}
		summary.Requests += m.Requests
		summary.PromptTokens += m.PromptTokens
		summary.CompletionTokens += m.CompletionTokens
		summary.TotalTokens += m.TotalTokens
		summary.Cost += m.Cost
		summary.ByModel = append(summary.ByModel, m)
	}
	return summary, rows.Err()
}
