package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xiaot623/gogo/governor/internal/domain"
	"github.com/xiaot623/gogo/governor/internal/logger"
)

// RunSweepMonitor purges expired sessions and contexts every sweep.interval
// until ctx is done.
func (s *Service) RunSweepMonitor(ctx context.Context) {
	ticker := time.NewTicker(s.config.Sweep.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(ctx, s.config.Sweep.Timeout)
			if _, err := s.Sweep(sweepCtx); err != nil {
				logger.Warn("Expiry sweep failed", "error", err)
			}
			cancel()
		}
	}
}

// Sweep deletes every session and context whose expiry has passed. Rows are
// re-checked at delete time, so a session refreshed after it was listed
// survives.
func (s *Service) Sweep(ctx context.Context) (domain.SweepResult, error) {
	var result domain.SweepResult
	now := s.now().UTC()

	n, err := s.sweepBatches(ctx, now, s.store.ListExpiredSessions, s.store.DeleteSessionIfExpired, "session")
	result.Sessions = n
	if err != nil {
		return result, err
	}

	n, err = s.sweepBatches(ctx, now, s.store.ListExpiredContexts, s.store.DeleteContextIfExpired, "context")
	result.Contexts = n
	if err != nil {
		return result, err
	}

	if result.Sessions > 0 || result.Contexts > 0 {
		logger.Info("Expiry sweep completed", "sessions", result.Sessions, "contexts", result.Contexts)
	}
	return result, nil
}

type (
	listExpiredFunc   func(ctx context.Context, now time.Time, limit int) ([]string, error)
	deleteExpiredFunc func(ctx context.Context, id string, now time.Time) (bool, error)
)

func (s *Service) sweepBatches(ctx context.Context, now time.Time, list listExpiredFunc, del deleteExpiredFunc, kind string) (int, error) {
	batch := s.config.Sweep.BatchSize
	total := 0
	for {
		ids, err := list(ctx, now, batch)
		if err != nil {
			return total, fmt.Errorf("failed to list expired %ss: %w", kind, err)
		}

		deleted := 0
		for _, id := range ids {
			ok, err := del(ctx, id, now)
			if err != nil {
				logger.Warn("Failed to delete expired row", "kind", kind, "id", id, "error", err)
				continue
			}
			if ok {
				deleted++
			}
		}
		total += deleted
		s.metrics.SweepDeleted(kind, deleted)

		if len(ids) < batch || deleted == 0 {
			return total, nil
		}
	}
}
