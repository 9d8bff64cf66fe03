package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/xiaot623/gogo/governor/internal/config"
	"github.com/xiaot623/gogo/governor/internal/credential"
	"github.com/xiaot623/gogo/governor/internal/metrics"
	"github.com/xiaot623/gogo/governor/internal/policy"
	"github.com/xiaot623/gogo/governor/internal/ratelimit"
	"github.com/xiaot623/gogo/governor/internal/repository"
	"github.com/xiaot623/gogo/governor/internal/service"
	"github.com/xiaot623/gogo/governor/internal/usage"
)

// app bundles what the commands need. Close releases the store.
type app struct {
	svc      *service.Service
	store    *store.SQLiteStore
	registry *prometheus.Registry
}

func (a *app) Close() error {
	return a.store.Close()
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	db, err := store.NewSQLiteStore(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	pricing := usage.DefaultPricing()
	if cfg.Pricing.File != "" {
		if pricing, err = usage.LoadPricing(cfg.Pricing.File); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if cfg.Policy.File != "" {
		policyEngine, err = policy.LoadEngine(ctx, cfg.Policy.File)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize policy engine: %w", err)
	}

	routers, err := credential.BuildRouters(cfg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	svc := service.New(service.Deps{
		Store:   db,
		Config:  cfg,
		Limiter: ratelimit.New(ratelimit.ConfigFrom(cfg.RateLimit)),
		Routers: routers,
		Tracker: usage.NewTracker(db, pricing, m),
		Policy:  policyEngine,
		Metrics: m,
	})

	return &app{svc: svc, store: db, registry: registry}, nil
}
