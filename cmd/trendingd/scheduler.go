package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/trim21/bangumi-server-private/trending"
)

type triggerer interface {
	TriggerAll(ctx context.Context, periods []trending.Period, flush bool) error
}

// scheduler triggers every trending list once at start and then on every
// tick. A failed round is logged and retried on the next tick.
type scheduler struct {
	trending triggerer
	periods  []trending.Period
	interval time.Duration
	logger   *zap.Logger
}

func (s *scheduler) run(ctx context.Context, flushOnStart bool) error {
	s.round(ctx, flushOnStart)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return nil
		case <-ticker.C:
			// a tick may be ready together with the cancellation
			if ctx.Err() == nil {
				s.round(ctx, false)
			}
		}
	}
}

func (s *scheduler) round(ctx context.Context, flush bool) {
	start := time.Now()
	if err := s.trending.TriggerAll(ctx, s.periods, flush); err != nil {
		s.logger.Error("trending round failed", zap.Error(err))
		return
	}
	s.logger.Debug("trending round done", zap.Duration("took", time.Since(start)))
}
