package tasks

import (
	"context"
	"time"
)

// newSessionSweepTask evicts sessions idle for longer than the configured TTL.
// Sessions in the middle of a dispatch are skipped by the store.
func newSessionSweepTask(deps TaskDeps, now func() time.Time) ScheduledTaskFunc {
	log := deps.Logger.With("task", "session_sweep")

	return func(ctx context.Context) error {
		evicted := deps.Sessions.SweepExpired(now())
		if evicted > 0 {
			log.InfoContext(ctx, "Evicted idle sessions", "evicted", evicted, "remaining", deps.Sessions.Len())
		} else {
			log.DebugContext(ctx, "No idle sessions to evict", "remaining", deps.Sessions.Len())
		}
		return nil
	}
}
