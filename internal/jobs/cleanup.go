// Package jobs runs scheduled maintenance against the database.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"workshophub/internal/middleware"
	"workshophub/internal/observability"

	"github.com/robfig/cron/v3"
)

// ResetRetention is how long used or expired password-reset rows are kept.
const ResetRetention = 7 * 24 * time.Hour

const jobTimeout = 2 * time.Minute

// ResetPurger deletes password-reset rows that stopped being valid before cutoff.
type ResetPurger interface {
	DeleteStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// RevocationPurger deletes revocation entries for tokens that have expired.
type RevocationPurger interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Cleanup purges stale password-reset and token-revocation rows on a cron schedule.
type Cleanup struct {
	resets      ResetPurger
	revocations RevocationPurger
	now         func() time.Time

	cron *cron.Cron
}

// NewCleanup wires the purgers. Call Start to schedule.
func NewCleanup(resets ResetPurger, revocations RevocationPurger) *Cleanup {
	return &Cleanup{
		resets:      resets,
		revocations: revocations,
		now:         time.Now,
	}
}

// Start schedules RunOnce using a standard cron spec or descriptor such as "@every 1h".
func (c *Cleanup) Start(schedule string) error {
	if c.cron != nil {
		return errors.New("cleanup already started")
	}
	logger := cronLogger{}
	cr := cron.New(cron.WithLogger(logger), cron.WithChain(
		cron.Recover(logger),
		cron.SkipIfStillRunning(logger),
	))
	if _, err := cr.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if err := c.RunOnce(ctx); err != nil {
			middleware.Logger.Error("scheduled cleanup failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid cleanup schedule %q: %w", schedule, err)
	}
	cr.Start()
	c.cron = cr
	middleware.Logger.Info("cleanup scheduler started", "schedule", schedule)
	return nil
}

// Stop halts scheduling and waits for a running job until ctx is done.
func (c *Cleanup) Stop(ctx context.Context) {
	if c.cron == nil {
		return
	}
	select {
	case <-c.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// RunOnce executes one cleanup pass. Both purges run even if the first fails.
func (c *Cleanup) RunOnce(ctx context.Context) error {
	now := c.now()
	var errs []error

	if c.resets != nil {
		n, err := c.resets.DeleteStale(ctx, now.Add(-ResetRetention))
		if err != nil {
			errs = append(errs, fmt.Errorf("purge password resets: %w", err))
		} else {
			observability.CleanupDeletedRows.WithLabelValues("password_resets").Add(float64(n))
			middleware.Logger.InfoContext(ctx, "purged password resets", "deleted", n)
		}
	}

	if c.revocations != nil {
		n, err := c.revocations.DeleteExpired(ctx, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("purge revoked tokens: %w", err))
		} else {
			observability.CleanupDeletedRows.WithLabelValues("revoked_tokens").Add(float64(n))
			middleware.Logger.InfoContext(ctx, "purged revoked tokens", "deleted", n)
		}
	}

	return errors.Join(errs...)
}

// cronLogger routes cron's internal logging into the application logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	middleware.Logger.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	middleware.Logger.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
