package usage

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/governor/internal/domain"
	"github.com/xiaot623/gogo/governor/internal/metrics"
	store "github.com/xiaot623/gogo/governor/internal/repository"
	"github.com/xiaot623/gogo/governor/tests/helpers"
)

type failingStore struct {
	store.Store
}

func (failingStore) CreateUsageRecord(context.Context, *domain.UsageRecord) error {
	return errors.New("disk full")
}

func TestTrackerRecord(t *testing.T) {
	ctx := context.Background()
	s := helpers.NewTestSQLiteStore(t)
	tracker := NewTracker(s, DefaultPricing(), nil)

	record := tracker.Record(ctx, Call{
		UserID:           "u1",
		OrgID:            "o1",
		Provider:         "openai",
		Model:            "gpt-4",
		RequestType:      domain.RequestTypeDeveloperChat,
		PromptTokens:     1000,
		CompletionTokens: 500,
	})
	require.NotNil(t, record)
	assert.NotEmpty(t, record.UsageID)
	assert.Equal(t, int64(1500), record.TotalTokens)
	assert.InDelta(t, 0.06, record.Cost, 1e-12)

	tracker.Record(ctx, Call{UserID: "u1", OrgID: "o1", Provider: "gemini", Model: "gemini-2.0-flash", RequestType: domain.RequestTypeChat, PromptTokens: 10, CompletionTokens: 5})

	summary, err := s.SummarizeUsage(ctx, domain.UsageScopeUser, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.Requests)
	assert.Equal(t, int64(1515), summary.TotalTokens)

	counter, err := s.GetRequestCounter(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, counter)
	assert.Equal(t, int64(2), counter.RequestsUsed)
}

func TestTrackerSwallowsPersistFailure(t *testing.T) {
	ctx := context.Background()
	s := helpers.NewTestSQLiteStore(t)
	m := metrics.New(prometheus.NewRegistry())
	tracker := NewTracker(failingStore{Store: s}, nil, m)

	record := tracker.Record(ctx, Call{UserID: "u2", Provider: "openai", Model: "gpt-4", PromptTokens: 1, CompletionTokens: 1})
	require.NotNil(t, record)
	assert.Greater(t, record.Cost, 0.0)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PersistenceFailuresTotal.WithLabelValues("usage")))

	// The counter write is independent of the record write.
	counter, err := s.GetRequestCounter(ctx, "u2")
	require.NoError(t, err)
	require.NotNil(t, counter)
	assert.Equal(t, int64(1), counter.RequestsUsed)
}
