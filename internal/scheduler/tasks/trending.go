package tasks

import (
	"context"
	"time"

	"github.com/cinematch/cinematch/internal/scheduler"
)

const TrendingRefreshTaskID = "trending-refresh"

// TrendingRefresher refreshes the cached trending list.
type TrendingRefresher interface {
	RefreshTrending(ctx context.Context) error
}

// RegisterTrendingRefreshTask registers the trending list refresh.
// It also runs on startup so the first page view is served from cache.
func RegisterTrendingRefreshTask(sched *scheduler.Scheduler, refresher TrendingRefresher, cron string) error {
	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          TrendingRefreshTaskID,
		Name:        "Trending Refresh",
		Description: "Fetches this week's trending movies from TMDB",
		Cron:        cron,
		RunOnStart:  true,
		Timeout:     5 * time.Minute,
		Func:        refresher.RefreshTrending,
	})
}
