// Package metrics exposes the governor's Prometheus instruments.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "governor"

// Chat outcomes used as the "outcome" label.
const (
	OutcomeOK          = "ok"
	OutcomeRateLimited = "rate_limited"
	OutcomeFallback    = "fallback"
	OutcomeUpstream    = "upstream_error"
	OutcomeInvalid     = "invalid"
)

// Metrics holds every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// ChatRequestsTotal counts chat calls.
	// Labels: mode (general, developer), outcome
	ChatRequestsTotal *prometheus.CounterVec

	RateLimitRejectionsTotal prometheus.Counter

	// UpstreamLatencySeconds measures provider round trips, failures included.
	// Labels: provider
	UpstreamLatencySeconds *prometheus.HistogramVec

	// TokensTotal counts billed tokens.
	// Labels: provider, model, kind (prompt, completion)
	TokensTotal *prometheus.CounterVec

	// CostTotal accumulates computed cost.
	// Labels: provider, model
	CostTotal *prometheus.CounterVec

	// SweepDeletedTotal counts rows purged by the sweep.
	// Labels: kind (session, context)
	SweepDeletedTotal *prometheus.CounterVec

	// PersistenceFailuresTotal counts swallowed write failures.
	// Labels: op (message, usage, counter, context_link)
	PersistenceFailuresTotal *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ChatRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "chat_requests_total",
			Help:      "Chat requests by mode and outcome",
		}, []string{"mode", "outcome"}),
		RateLimitRejectionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "ratelimit_rejections_total",
			Help:      "Calls rejected by the rate limiter",
		}),
		UpstreamLatencySeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "upstream_latency_seconds",
			Help:      "Upstream provider call latency in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"provider"}),
		TokensTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "tokens_total",
			Help:      "Tokens billed by provider, model and kind",
		}, []string{"provider", "model", "kind"}),
		CostTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "cost_total",
			Help:      "Computed upstream cost by provider and model",
		}, []string{"provider", "model"}),
		SweepDeletedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "sweep_deleted_total",
			Help:      "Expired rows removed by the sweep",
		}, []string{"kind"}),
		PersistenceFailuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "persistence_failures_total",
			Help:      "Best-effort writes that failed and were logged",
		}, []string{"op"}),
	}
}

func (m *Metrics) ChatRequest(mode, outcome string) {
	if m == nil {
		return
	}
	m.ChatRequestsTotal.WithLabelValues(mode, outcome).Inc()
}

func (m *Metrics) RateLimitRejected() {
	if m == nil {
		return
	}
	m.RateLimitRejectionsTotal.Inc()
}

func (m *Metrics) UpstreamLatency(provider string, d time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamLatencySeconds.WithLabelValues(provider).Observe(d.Seconds())
}

// Usage records tokens and cost for one completed upstream call.
func (m *Metrics) Usage(provider, model string, promptTokens, completionTokens int64, cost float64) {
	if m == nil {
		return
	}
	m.TokensTotal.WithLabelValues(provider, model, "prompt").Add(float64(promptTokens))
	m.TokensTotal.WithLabelValues(provider, model, "completion").Add(float64(completionTokens))
	m.CostTotal.WithLabelValues(provider, model).Add(cost)
}

func (m *Metrics) SweepDeleted(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SweepDeletedTotal.WithLabelValues(kind).Add(float64(n))
}

func (m *Metrics) PersistenceFailure(op string) {
	if m == nil {
		return
	}
	m.PersistenceFailuresTotal.WithLabelValues(op).Inc()
}
