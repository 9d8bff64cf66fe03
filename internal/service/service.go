package service

import (
	"time"

	"github.com/xiaot623/gogo/governor/internal/config"
	"github.com/xiaot623/gogo/governor/internal/credential"
	"github.com/xiaot623/gogo/governor/internal/metrics"
	"github.com/xiaot623/gogo/governor/internal/policy"
	"github.com/xiaot623/gogo/governor/internal/ratelimit"
	"github.com/xiaot623/gogo/governor/internal/repository"
	"github.com/xiaot623/gogo/governor/internal/usage"
)

// Deps are the collaborators of a Service. Policy and Metrics may be nil.
type Deps struct {
	Store   store.Store
	Config  *config.Config
	Limiter *ratelimit.Limiter
	// Routers holds one credential router per provider name.
	Routers map[string]*credential.Router
	Tracker *usage.Tracker
	Policy  *policy.Engine
	Metrics *metrics.Metrics
}

type Service struct {
	store        store.Store
	config       *config.Config
	limiter      *ratelimit.Limiter
	routers      map[string]*credential.Router
	tracker      *usage.Tracker
	policyEngine *policy.Engine
	metrics      *metrics.Metrics
	now          func() time.Time
}

func New(deps Deps) *Service {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.Default()
	}
	limiter := deps.Limiter
	if limiter == nil {
		limiter = ratelimit.New(ratelimit.DefaultConfig())
	}
	tracker := deps.Tracker
	if tracker == nil {
		tracker = usage.NewTracker(deps.Store, nil, deps.Metrics)
	}
	return &Service{
		store:        deps.Store,
		config:       cfg,
		limiter:      limiter,
		routers:      deps.Routers,
		tracker:      tracker,
		policyEngine: deps.Policy,
		metrics:      deps.Metrics,
		now:          time.Now,
	}
}

// WithClock replaces the wall clock used for expiry decisions.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// RateLimit returns the limiter's current state.
func (s *Service) RateLimit() ratelimit.Snapshot {
	return s.limiter.Snapshot()
}
