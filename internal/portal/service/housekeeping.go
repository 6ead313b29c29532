package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/openreport/portal/internal/portal/store"
	"github.com/openreport/portal/pkg/slogx"
)

// finishedJobRetention is how long sent and failed jobs are kept for
// inspection before the sweeper drops them.
const finishedJobRetention = 30 * 24 * time.Hour

// HousekeepingService periodically sweeps dead state: expired and consumed
// one-time keys, outbox claims orphaned by a crashed worker, and finished
// jobs past retention.
type HousekeepingService struct {
	Store store.Store

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Sweep runs one housekeeping pass. Each sweep is independent; a failure in
// one does not stop the others.
func (s *HousekeepingService) Sweep(ctx context.Context) {
	log := slogx.FromContext(ctx)
	now := time.Now().UTC()

	if n, err := s.Store.Keys().DeleteExpiredKeys(ctx, now); err != nil {
		log.Error("failed to sweep expired keys", slog.Any("error", err))
	} else if n > 0 {
		log.Info("expired keys swept", slog.Int64("count", n))
	}

	if n, err := s.Store.Outbox().ReleaseStuckJobs(ctx, now.Add(-staleClaimAge), now); err != nil {
		log.Error("failed to release stuck jobs", slog.Any("error", err))
	} else if n > 0 {
		log.Warn("stuck outbox jobs released", slog.Int64("count", n))
	}

	if n, err := s.Store.Outbox().DeleteFinishedJobs(ctx, now.Add(-finishedJobRetention)); err != nil {
		log.Error("failed to sweep finished jobs", slog.Any("error", err))
	} else if n > 0 {
		log.Info("finished outbox jobs swept", slog.Int64("count", n))
	}
}

// Start launches the sweep loop at the given interval until Stop or context
// cancellation. One pass runs immediately on start.
func (s *HousekeepingService) Start(ctx context.Context, interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		log := slogx.FromContext(ctx)
		log.Info("housekeeping started", slog.Duration("interval", interval))

		s.Sweep(ctx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Info("housekeeping stopped")
				return
			case <-ticker.C:
				if errors.Is(ctx.Err(), context.Canceled) {
					return
				}
				s.Sweep(ctx)
			}
		}
	}()
}

// Stop halts the sweep loop and waits for an in-flight pass to finish.
func (s *HousekeepingService) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}
