package usage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/xiaot623/gogo/governor/internal/domain"
	"github.com/xiaot623/gogo/governor/internal/logger"
	"github.com/xiaot623/gogo/governor/internal/metrics"
	store "github.com/xiaot623/gogo/governor/internal/repository"
)

// Call describes one completed upstream call.
type Call struct {
	UserID           string
	OrgID            string
	Provider         string
	Model            string
	RequestType      domain.RequestType
	PromptTokens     int64
	CompletionTokens int64
}

// Tracker prices calls and persists them on a best-effort basis.
type Tracker struct {
	store   store.Store
	pricing *Pricing
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewTracker creates a tracker. m may be nil.
func NewTracker(s store.Store, pricing *Pricing, m *metrics.Metrics) *Tracker {
	if pricing == nil {
		pricing = DefaultPricing()
	}
	return &Tracker{store: s, pricing: pricing, metrics: m, now: time.Now}
}

// Pricing returns the table in use.
func (t *Tracker) Pricing() *Pricing {
	return t.pricing
}

// Record computes the cost of call, writes the usage record and bumps the
// user's request counter. Write failures are logged and never returned; the
// computed record is always returned.
func (t *Tracker) Record(ctx context.Context, call Call) *domain.UsageRecord {
	record := &domain.UsageRecord{
		UsageID:          uuid.NewString(),
		UserID:           call.UserID,
		OrgID:            call.OrgID,
		Provider:         call.Provider,
		Model:            call.Model,
		RequestType:      call.RequestType,
		PromptTokens:     call.PromptTokens,
		CompletionTokens: call.CompletionTokens,
		TotalTokens:      call.PromptTokens + call.CompletionTokens,
		Cost:             t.pricing.Cost(call.Model, call.PromptTokens, call.CompletionTokens),
		CreatedAt:        t.now().UTC(),
	}
	if _, priced := t.pricing.Lookup(call.Model); !priced {
		logger.Debug("Unpriced model billed at fallback rate", "model", call.Model, "fallback", t.pricing.Fallback())
	}
	t.metrics.Usage(record.Provider, record.Model, record.PromptTokens, record.CompletionTokens, record.Cost)

	if err := t.store.CreateUsageRecord(ctx, record); err != nil {
		logger.Error("Failed to persist usage record", "user_id", call.UserID, "model", call.Model, "error", err)
		t.metrics.PersistenceFailure("usage")
	}
	if err := t.store.IncrementRequestCounter(ctx, call.UserID, record.CreatedAt); err != nil {
		logger.Error("Failed to increment request counter", "user_id", call.UserID, "error", err)
		t.metrics.PersistenceFailure("counter")
	}
	return record
}
