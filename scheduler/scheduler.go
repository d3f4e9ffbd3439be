package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"cradi/config"
	"cradi/services"
)

const (
	JobEscalation = "escalation"
	JobStatistics = "statistics"
)

type Scheduler struct {
	cron   *cron.Cron
	locker Locker
	ttl    time.Duration
	log    *logrus.Logger
}

func New(cfg config.SchedulerConfig, locker Locker, log *logrus.Logger) *Scheduler {
	cronLog := cron.PrintfLogger(log.WithField("component", "scheduler"))
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		locker: locker,
		ttl:    cfg.LockTTL,
		log:    log,
	}
}

// AddJob schedules job under spec (six fields, seconds first).
func (s *Scheduler) AddJob(name, spec string, job func(ctx context.Context) error) error {
	if _, err := s.cron.AddFunc(spec, func() { s.run(name, job) }); err != nil {
		return fmt.Errorf("failed to add cron job %s: %w", name, err)
	}
	s.log.WithFields(logrus.Fields{"job": name, "schedule": spec}).Info("Scheduled job")
	return nil
}

func (s *Scheduler) run(name string, job func(ctx context.Context) error) {
	ctx := context.Background()
	if s.ttl > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.ttl)
		defer cancel()
	}
	log := s.log.WithField("job", name)

	release, acquired, err := s.locker.TryLock(ctx, name, s.ttl)
	if err != nil {
		log.WithError(err).Error("Failed to acquire job lock, skipping run")
		return
	}
	if !acquired {
		log.Debug("Job is running on another replica, skipping run")
		return
	}
	defer release()

	log.Info("Running scheduled job")
	start := time.Now()
	if err := job(ctx); err != nil {
		log.WithError(err).Error("Scheduled job failed")
		return
	}
	log.WithField("duration", time.Since(start).String()).Info("Scheduled job finished")
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("Scheduler started")
}

// Stop prevents new runs and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("Scheduler stop timed out with jobs still running")
	}
}

// StartScheduler registers the escalation sweep and statistics snapshot and
// starts the cron loop.
func StartScheduler(cfg config.SchedulerConfig, locker Locker, sweeper *services.EscalationSweeper, aggregator *services.StatisticsAggregator, log *logrus.Logger) (*Scheduler, error) {
	s := New(cfg, locker, log)

	if err := s.AddJob(JobEscalation, cfg.EscalationSchedule, func(ctx context.Context) error {
		_, err := sweeper.Sweep(ctx)
		return err
	}); err != nil {
		return nil, err
	}
	if err := s.AddJob(JobStatistics, cfg.StatisticsSchedule, func(ctx context.Context) error {
		_, err := aggregator.Aggregate(ctx)
		return err
	}); err != nil {
		return nil, err
	}

	s.Start()
	return s, nil
}
