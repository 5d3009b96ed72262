package cache

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultSweepSchedule runs the expiry purge once an hour.
const DefaultSweepSchedule = "@hourly"

// Purger is implemented by backends able to drop expired entries in bulk.
type Purger interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Sweeper periodically removes expired translations.
type Sweeper struct {
	cron   *cron.Cron
	purger Purger
	logger *zap.Logger
	now    func() time.Time
}

// NewSweeper schedules purger on spec, a standard cron expression or
// descriptor such as "@hourly". An empty spec uses DefaultSweepSchedule.
func NewSweeper(purger Purger, spec string, logger *zap.Logger) (*Sweeper, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if spec == "" {
		spec = DefaultSweepSchedule
	}
	s := &Sweeper{
		cron:   cron.New(),
		purger: purger,
		logger: logger,
		now:    time.Now,
	}
	if _, err := s.cron.AddFunc(spec, func() { s.Sweep(context.Background()) }); err != nil {
		return nil, err
	}
	return s, nil
}

// Sweep deletes expired entries once and returns how many were removed.
func (s *Sweeper) Sweep(ctx context.Context) int64 {
	n, err := s.purger.DeleteExpired(ctx, s.now())
	if err != nil {
		s.logger.Error("cache sweep failed", zap.Error(err))
		return 0
	}
	if n > 0 {
		s.logger.Info("expired translations removed", zap.Int64("count", n))
	}
	return n
}

// Start runs the schedule in the background.
func (s *Sweeper) Start() { s.cron.Start() }

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}
