package tasks

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinematch/cinematch/internal/scheduler"
)

type fakeRefresher struct{ calls atomic.Int32 }

func (f *fakeRefresher) RefreshTrending(context.Context) error {
	f.calls.Add(1)
	return nil
}

type fakePurger struct {
	calls  atomic.Int32
	maxAge atomic.Int64
}

func (f *fakePurger) Purge(_ context.Context, maxAge time.Duration) error {
	f.calls.Add(1)
	f.maxAge.Store(int64(maxAge))
	return nil
}

type fakeCleaner struct{ calls atomic.Int32 }

func (f *fakeCleaner) CleanupRateLimits() { f.calls.Add(1) }

func waitIdle(t *testing.T, sched *scheduler.Scheduler, id string) {
	t.Helper()
	require.Eventually(t, func() bool {
		info, err := sched.GetTask(id)
		return err == nil && info.LastRun != nil && !info.Running
	}, 5*time.Second, 10*time.Millisecond)
}

func TestRegisterTasks(t *testing.T) {
	sched, err := scheduler.New(zerolog.Nop())
	require.NoError(t, err)

	refresher := &fakeRefresher{}
	purger := &fakePurger{}
	cleaner := &fakeCleaner{}

	require.NoError(t, RegisterTrendingRefreshTask(sched, refresher, "0 * * * *"))
	require.NoError(t, RegisterSessionPurgeTask(sched, purger, "0 4 * * *", 48*time.Hour))
	require.NoError(t, RegisterRateLimitCleanupTask(sched, cleaner, "*/10 * * * *"))

	require.NoError(t, sched.Start())
	defer sched.Stop()

	// Trending refresh runs on start.
	waitIdle(t, sched, TrendingRefreshTaskID)
	assert.Equal(t, int32(1), refresher.calls.Load())

	require.NoError(t, sched.RunNow(SessionPurgeTaskID))
	waitIdle(t, sched, SessionPurgeTaskID)
	assert.Equal(t, int32(1), purger.calls.Load())
	assert.Equal(t, int64(48*time.Hour), purger.maxAge.Load())

	require.NoError(t, sched.RunNow(RateLimitCleanupTaskID))
	waitIdle(t, sched, RateLimitCleanupTaskID)
	assert.Equal(t, int32(1), cleaner.calls.Load())

	ids := make([]string, 0, 3)
	for _, info := range sched.ListTasks() {
		ids = append(ids, info.ID)
	}
	assert.Equal(t, []string{RateLimitCleanupTaskID, SessionPurgeTaskID, TrendingRefreshTaskID}, ids)
}
