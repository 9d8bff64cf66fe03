package store

import (
	"context"
	"time"

	"github.com/xiaot623/gogo/governor/internal/domain"
)

// Store is the durable state behind sessions, contexts, messages and usage.
type Store interface {
	// Session operations
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
	TouchSession(ctx context.Context, sessionID, userID string, now, expiresAt time.Time) (bool, error)
	AppendSessionContext(ctx context.Context, sessionID, contextID string) error
	ListExpiredSessions(ctx context.Context, now time.Time, limit int) ([]string, error)
	DeleteSessionIfExpired(ctx context.Context, sessionID string, now time.Time) (bool, error)
	GetSessionStats(ctx context.Context, userID string, now time.Time) (*domain.SessionStats, error)

	// Context operations
	CreateContext(ctx context.Context, fragment *domain.ContextFragment) error
	ListContexts(ctx context.Context, sessionID string, typeFilter domain.ContextType, now time.Time) ([]domain.ContextFragment, error)
	ListExpiredContexts(ctx context.Context, now time.Time, limit int) ([]string, error)
	DeleteContextIfExpired(ctx context.Context, contextID string, now time.Time) (bool, error)

	// Message operations
	CreateMessage(ctx context.Context, message *domain.Message) error
	GetRecentMessages(ctx context.Context, sessionID string, limit int) ([]domain.Message, error)

	// Usage operations
	CreateUsageRecord(ctx context.Context, record *domain.UsageRecord) error
	IncrementRequestCounter(ctx context.Context, userID string, now time.Time) error
	GetRequestCounter(ctx context.Context, userID string) (*domain.RequestCounter, error)
	SetRequestPlan(ctx context.Context, userID string, tier domain.Tier, limit int64, now time.Time) error
	SummarizeUsage(ctx context.Context, scope domain.UsageScope, id string) (*domain.UsageSummary, error)

	Close() error
}

var _ Store = (*SQLiteStore)(nil)
