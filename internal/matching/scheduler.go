package matching

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Scheduler drives the periodic jobs of the matching subsystem.
type Scheduler struct {
	service Service
	log     *zap.Logger
}

func NewScheduler(service Service, log *zap.Logger) *Scheduler {
	return &Scheduler{service: service, log: log}
}

func (s *Scheduler) Start(ctx context.Context) {
	// Daily picks generation at 9 AM
	go s.runDaily(ctx, 9, 0, "generate_daily_picks", s.service.GenerateDailyPicks)

	// Cleanup expired picks daily at 2 AM
	go s.runDaily(ctx, 2, 0, "cleanup_expired_picks", s.service.CleanupExpiredPicks)
}

func (s *Scheduler) runDaily(ctx context.Context, hour, minute int, name string, task func(context.Context) error) {
	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
		if now.After(next) {
			next = next.Add(24 * time.Hour)
		}

		timer := time.NewTimer(next.Sub(now))

		select {
		case <-timer.C:
			if err := task(ctx); err != nil {
				s.log.Error("scheduled task failed", zap.String("task", name), zap.Error(err))
			}
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}
