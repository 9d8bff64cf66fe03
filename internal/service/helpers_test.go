package service

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/xiaot623/gogo/governor/internal/adapter/llm"
	"github.com/xiaot623/gogo/governor/internal/config"
	"github.com/xiaot623/gogo/governor/internal/credential"
	"github.com/xiaot623/gogo/governor/internal/metrics"
	"github.com/xiaot623/gogo/governor/internal/policy"
	"github.com/xiaot623/gogo/governor/internal/ratelimit"
	"github.com/xiaot623/gogo/governor/internal/repository"
	"github.com/xiaot623/gogo/governor/internal/usage"
	"github.com/xiaot623/gogo/governor/tests/helpers"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	svc     *Service
	store   *store.SQLiteStore
	clock   *fakeClock
	cfg     *config.Config
	metrics *metrics.Metrics
	openai  *llm.MockClient
	openai2 *llm.MockClient
	gemini  *llm.MockClient
}

func newTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()

	cfg := config.Default()
	for _, m := range mutate {
		m(cfg)
	}
	clock := newFakeClock()
	db := helpers.NewTestSQLiteStore(t)
	m := metrics.New(prometheus.NewRegistry())

	env := &testEnv{
		store:   db,
		clock:   clock,
		cfg:     cfg,
		metrics: m,
		openai:  llm.NewMockClient(config.ProviderOpenAI),
		openai2: llm.NewMockClient(config.ProviderOpenAI),
		gemini:  llm.NewMockClient(config.ProviderGemini),
	}

	routers := map[string]*credential.Router{
		config.ProviderOpenAI: credential.NewRouter(
			credential.Handle{Name: credential.SlotPrimary, Client: env.openai},
			credential.Handle{Name: credential.SlotSecondary, Client: env.openai2},
		),
		config.ProviderGemini: credential.NewRouter(
			credential.Handle{Name: credential.SlotPrimary, Client: env.gemini},
			credential.Handle{},
		),
	}

	engine, err := policy.NewEngine(t.Context(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	limiter := ratelimit.New(ratelimit.ConfigFrom(cfg.RateLimit)).WithClock(clock.Now)

	tracker := usage.NewTracker(db, usage.DefaultPricing(), m)
	env.svc = New(Deps{
		Store:   db,
		Config:  cfg,
		Limiter: limiter,
		Routers: routers,
		Tracker: tracker,
		Policy:  engine,
		Metrics: m,
	}).WithClock(clock.Now)
	return env
}
