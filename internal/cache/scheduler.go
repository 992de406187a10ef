package cache

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler keeps the cache fresh in the background by triggering both
// family refreshes on a cron schedule. Refresh failures are logged and
// published on the cache's error channel; the scheduler keeps running.
type Scheduler struct {
	cache *Cache
	log   logrus.FieldLogger
	cron  *cron.Cron
}

// NewScheduler creates a scheduler for the given cache.
func NewScheduler(c *Cache, log logrus.FieldLogger) *Scheduler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Scheduler{cache: c, log: log}
}

// Start begins refreshing on the given cron expression (standard 5-field
// syntax, e.g. "*/30 * * * *" for every half hour). It returns an error
// for an invalid expression and is a no-op when already started.
func (s *Scheduler) Start(spec string) error {
	if s.cron != nil {
		return nil
	}

	runner := cron.New()
	_, err := runner.AddFunc(spec, s.refreshAll)
	if err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}

	s.cron = runner
	runner.Start()
	s.log.WithField("schedule", spec).Info("background refresh started")
	return nil
}

// Stop halts scheduling. A refresh already in flight runs to completion.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	s.cron.Stop()
	s.cron = nil
	s.log.Info("background refresh stopped")
}

// refreshAll refreshes both families; errors are already published by the
// cache, so they are only logged here.
func (s *Scheduler) refreshAll() {
	ctx := context.Background()
	if err := s.cache.RefreshBillingMonths(ctx); err != nil {
		s.log.WithError(err).Warn("scheduled billing refresh failed")
	}
	if err := s.cache.RefreshOrderDays(ctx); err != nil {
		s.log.WithError(err).Warn("scheduled order refresh failed")
	}
}
