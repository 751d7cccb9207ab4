// Package cron runs periodic maintenance for the POS backend under a
// cluster-wide redis lease.
package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/logger"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/metrics"
)

const defaultInterval = time.Hour

type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ServiceParams struct {
	Logger   *logger.Logger
	Jobs     []Job
	Lock     Lock
	Metrics  *metrics.CronJobMetrics
	Interval time.Duration
	// JobTimeout bounds a single job. Zero means the interval.
	JobTimeout time.Duration
}

type Service struct {
	logg       *logger.Logger
	jobs       []Job
	lock       Lock
	metrics    *metrics.CronJobMetrics
	interval   time.Duration
	jobTimeout time.Duration
}

func NewService(p ServiceParams) (*Service, error) {
	switch {
	case p.Logger == nil:
		return nil, errors.New("cron: logger is required")
	case p.Lock == nil:
		return nil, errors.New("cron: lock is required")
	}
	s := &Service{
		logg:       p.Logger,
		lock:       p.Lock,
		metrics:    p.Metrics,
		interval:   p.Interval,
		jobTimeout: p.JobTimeout,
	}
	if s.interval <= 0 {
		s.interval = defaultInterval
	}
	if s.jobTimeout <= 0 {
		s.jobTimeout = s.interval
	}
	for _, job := range p.Jobs {
		if job != nil {
			s.jobs = append(s.jobs, job)
		}
	}
	return s, nil
}

// Run starts a cycle right away and then once per interval until ctx ends.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		if err := s.runCycle(ctx); err != nil {
			s.logg.Error(ctx, "cron.cycle_failed", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// runCycle runs every job once when it wins the lease. A failing job does
// not stop the ones after it; all failures come back combined.
func (s *Service) runCycle(ctx context.Context) (err error) {
	won, err := s.lock.Acquire(ctx)
	if err != nil {
		return err
	}
	if !won {
		s.logg.Info(ctx, "cron.cycle_skipped_locked")
		return nil
	}
	defer func() {
		if relErr := s.lock.Release(context.WithoutCancel(ctx)); relErr != nil {
			s.logg.Error(ctx, "cron.lock_release_failed", relErr)
		}
	}()

	started := time.Now()
	var failures error
	for _, job := range s.jobs {
		if jobErr := s.runJob(ctx, job); jobErr != nil {
			failures = multierr.Append(failures, fmt.Errorf("%s: %w", job.Name(), jobErr))
		}
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"jobs":        len(s.jobs),
		"failed":      len(multierr.Errors(failures)),
		"duration_ms": time.Since(started).Milliseconds(),
	}), "cron.cycle_completed")
	return failures
}

func (s *Service) runJob(ctx context.Context, job Job) error {
	ctx = s.logg.WithField(ctx, "job", job.Name())
	jobCtx, cancel := context.WithTimeout(ctx, s.jobTimeout)
	defer cancel()

	started := time.Now()
	err := job.Run(jobCtx)
	elapsed := time.Since(started)
	s.metrics.ObserveRun(job.Name(), elapsed, err)

	ctx = s.logg.WithField(ctx, "duration_ms", elapsed.Milliseconds())
	if err != nil {
		s.logg.Error(ctx, "cron.job_failed", err)
		return err
	}
	s.logg.Info(ctx, "cron.job_completed")
	return nil
}
