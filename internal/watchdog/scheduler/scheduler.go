// Package scheduler registers the engine's run-once entry points with a
// cron runner, gating calendar-sensitive jobs on trading days.
package scheduler

import (
	"context"
	"time"

	"watchdog/internal/watchdog/calendar"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler owns the cron instance. Jobs are chained with
// SkipIfStillRunning, so overlapping runs of the same job are dropped
// rather than executed concurrently; the trackers' in-memory state depends
// on that.
type Scheduler struct {
	cron *cron.Cron
	cal  *calendar.Service
	log  *zap.Logger
}

func New(cal *calendar.Service, log *zap.Logger) *Scheduler {
	cronLog := cron.PrintfLogger(zap.NewStdLog(log.Named("cron")))
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cronLog),
			cron.Recover(cronLog),
		)),
		cal: cal,
		log: log,
	}
}

// Register adds a job under the given cron spec. When tradingDayOnly is set
// the job is silently skipped on days the market is closed.
func (s *Scheduler) Register(jobID, spec string, market calendar.Market, tradingDayOnly bool, fn func(context.Context)) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx := context.Background()
		if tradingDayOnly && !s.cal.IsTradingDay(ctx, market, time.Now()) {
			s.log.Debug("job skipped, market closed", zap.String("job", jobID))
			return
		}
		fn(ctx)
	})
	if err != nil {
		return err
	}

	s.log.Info("job registered", zap.String("job", jobID), zap.String("spec", spec))
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for any running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
