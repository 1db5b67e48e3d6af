package tasks

import (
	"context"
	"time"

	"github.com/cinematch/cinematch/internal/scheduler"
)

const RateLimitCleanupTaskID = "ratelimit-cleanup"

// RateLimitCleaner drops expired rate limit buckets.
type RateLimitCleaner interface {
	CleanupRateLimits()
}

// RegisterRateLimitCleanupTask registers the periodic limiter cleanup.
func RegisterRateLimitCleanupTask(sched *scheduler.Scheduler, cleaner RateLimitCleaner, cron string) error {
	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          RateLimitCleanupTaskID,
		Name:        "Rate Limit Cleanup",
		Description: "Forgets clients whose rate limit window has expired",
		Cron:        cron,
		Timeout:     time.Minute,
		Func: func(context.Context) error {
			cleaner.CleanupRateLimits()
			return nil
		},
	})
}
