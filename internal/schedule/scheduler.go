package schedule

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"bookrag-ai/internal/contextutil"
)

// Job is a unit of scheduled work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler runs jobs on cron schedules.
type Scheduler interface {
	AddJob(job Job, spec string) error
	Start(ctx context.Context)
	Stop()
}

// CronScheduler runs jobs with robfig/cron. A run that is still in progress
// when its next tick fires causes that tick to be skipped.
type CronScheduler struct {
	cron    *cron.Cron
	entries map[string]cron.EntryID
	ctx     context.Context
}

// NewCronScheduler creates a scheduler that accepts five-field specs
// ("*/30 * * * *") and descriptors ("@hourly", "@every 15m").
func NewCronScheduler() *CronScheduler {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &CronScheduler{
		cron:    cron.New(cron.WithParser(parser)),
		entries: make(map[string]cron.EntryID),
		ctx:     context.Background(),
	}
}

// AddJob schedules job. Must be called before Start.
func (c *CronScheduler) AddJob(job Job, spec string) error {
	logger := contextutil.LoggerFromContext(c.ctx).With("job", job.Name(), "spec", spec)

	entryID, err := c.cron.AddFunc(spec, c.wrap(job, spec))
	if err != nil {
		logger.Error("failed to schedule job", "error", err)
		return fmt.Errorf("failed to schedule job %s: %w", job.Name(), err)
	}
	c.entries[job.Name()] = entryID
	logger.Info("job scheduled")
	return nil
}

// Start begins running scheduled jobs with ctx.
func (c *CronScheduler) Start(ctx context.Context) {
	if ctx != nil {
		c.ctx = ctx
	}
	c.cron.Start()
}

// Stop stops the scheduler and waits for running jobs to finish.
func (c *CronScheduler) Stop() {
	<-c.cron.Stop().Done()
}

// Next returns the next run time of the named job, or the zero time if it is unknown.
func (c *CronScheduler) Next(name string) time.Time {
	id, ok := c.entries[name]
	if !ok {
		return time.Time{}
	}
	return c.cron.Entry(id).Next
}

func (c *CronScheduler) wrap(job Job, spec string) func() {
	var running atomic.Bool
	return func() {
		ctx := c.ctx
		logger := contextutil.LoggerFromContext(ctx).With("job", job.Name(), "spec", spec)

		if !running.CompareAndSwap(false, true) {
			logger.InfoContext(ctx, "job skipped: still running")
			return
		}
		defer running.Store(false)

		start := time.Now()
		logger.InfoContext(ctx, "job started")
		err := job.Run(contextutil.WithLogger(ctx, logger))
		elapsed := time.Since(start)
		if err != nil {
			logger.ErrorContext(ctx, "job finished", "error", err, "duration", elapsed)
			return
		}
		logger.InfoContext(ctx, "job finished", "duration", elapsed)
	}
}
