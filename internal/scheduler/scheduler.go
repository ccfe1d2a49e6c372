package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"ora2mongo/internal/etl"
)

// scheduleLayout renders scheduled activation times in log lines.
const scheduleLayout = "02/01/2006 15:04:05"

// Job is one migration pass.
type Job func(ctx context.Context)

// Scheduler triggers a Job immediately, daily or at a fixed interval. Passes
// never overlap: the next wait starts only after the previous pass returns.
type Scheduler struct {
	clock clock.Clock
	log   *zap.Logger
}

// New creates a Scheduler. A nil clock uses the wall clock.
func New(clk clock.Clock, log *zap.Logger) *Scheduler {
	if clk == nil {
		clk = clock.New()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{clock: clk, log: log.Named("scheduler")}
}

// Manual runs job once and returns.
func (s *Scheduler) Manual(ctx context.Context, job Job) {
	s.runPass(ctx, ModeManual, job)
}

// Daily waits for the next occurrence of at, runs job, and then repeats every
// 24 hours until ctx is cancelled. It returns ctx.Err().
func (s *Scheduler) Daily(ctx context.Context, at TimeOfDay, job Job) error {
	sched := NewDailySchedule(at)
	now := s.clock.Now()
	first := sched.Next(now)
	s.log.Info(fmt.Sprintf("processing scheduled for %s (in %s)",
		first.Format(scheduleLayout), etl.FormatElapsed(first.Sub(now))),
		zap.String("mode", string(ModeDaily)),
		zap.Stringer("at", at),
		zap.Duration("delay", first.Sub(now)),
	)
	return s.loop(ctx, ModeDaily, sched, first, job)
}

// Interval runs job immediately and then again every interval, measured from
// the end of the previous pass, until ctx is cancelled. It returns ctx.Err().
func (s *Scheduler) Interval(ctx context.Context, every time.Duration, job Job) error {
	s.log.Info(fmt.Sprintf("processing scheduled every %s", FormatInterval(every)),
		zap.String("mode", string(ModeInterval)),
		zap.Duration("interval", every),
	)
	return s.loop(ctx, ModeInterval, NewIntervalSchedule(every), s.clock.Now(), job)
}

func (s *Scheduler) loop(ctx context.Context, mode Mode, sched cron.Schedule, next time.Time, job Job) error {
	for {
		if err := s.sleepUntil(ctx, next); err != nil {
			s.log.Info("scheduler stopped", zap.String("mode", string(mode)))
			return err
		}
		s.runPass(ctx, mode, job)

		now := s.clock.Now()
		next = sched.Next(now)
		delay := next.Sub(now)
		s.log.Info(fmt.Sprintf("next processing in %s", etl.FormatElapsed(delay)),
			zap.String("mode", string(mode)),
			zap.Time("next", next),
			zap.Duration("delay", delay),
		)
	}
}

func (s *Scheduler) runPass(ctx context.Context, mode Mode, job Job) {
	s.log.Info("--- processing started ---", zap.String("mode", string(mode)))
	job(ctx)
	s.log.Info("--- processing finished ---", zap.String("mode", string(mode)))
}

// sleepUntil blocks until the clock reaches t or ctx is done.
func (s *Scheduler) sleepUntil(ctx context.Context, t time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d := t.Sub(s.clock.Now())
	if d <= 0 {
		return nil
	}
	timer := s.clock.Timer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
