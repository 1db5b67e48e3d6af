package tasks

import (
	"context"
	"time"

	"github.com/cinematch/cinematch/internal/scheduler"
)

const SessionPurgeTaskID = "session-purge"

// SessionPurger deletes idle sessions.
type SessionPurger interface {
	Purge(ctx context.Context, maxAge time.Duration) error
}

// RegisterSessionPurgeTask registers the idle session cleanup.
func RegisterSessionPurgeTask(sched *scheduler.Scheduler, purger SessionPurger, cron string, maxAge time.Duration) error {
	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          SessionPurgeTaskID,
		Name:        "Session Purge",
		Description: "Deletes viewer sessions idle longer than the configured maximum age",
		Cron:        cron,
		RunOnStart:  false,
		Timeout:     time.Minute,
		Func: func(ctx context.Context) error {
			return purger.Purge(ctx, maxAge)
		},
	})
}
