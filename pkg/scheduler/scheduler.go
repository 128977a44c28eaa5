package scheduler

import (
	"context"
	"lingua_backend/pkg/logger"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

const sweepTimeout = 2 * time.Minute

// StreakSweeper 将已断签用户的连胜清零
type StreakSweeper interface {
	ResetLapsedStreaks(ctx context.Context, now time.Time) (int64, error)
}

type Scheduler struct {
	scheduler *gocron.Scheduler
	sweeper   StreakSweeper
	loc       *time.Location
}

func New(sweeper StreakSweeper, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		sweeper:   sweeper,
		loc:       loc,
	}
}

// Start 每天 00:05 执行连胜清理，非阻塞
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(1).Day().At("00:05").Do(s.SweepStreaks); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) SweepStreaks() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	n, err := s.sweeper.ResetLapsedStreaks(ctx, time.Now().In(s.loc))
	if err != nil {
		logger.Log.Error("streak sweep failed", zap.Error(err))
		return
	}
	logger.Log.Info("streak sweep finished", zap.Int64("reset", n))
}
