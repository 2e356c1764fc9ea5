package tasks

import (
	"context"
	"fmt"
	"time"
)

// newSQLMaintenanceTask prunes audit rows older than the retention period
// and then vacuums the database.
func newSQLMaintenanceTask(deps TaskDeps, now func() time.Time) ScheduledTaskFunc {
	log := deps.Logger.With("task", "sql_maintenance")

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting scheduled SQL maintenance task...")
		startTime := time.Now()

		if retention := deps.Config.Database.Retention; retention > 0 {
			cutoff := now().Add(-retention)
			pruned, err := deps.Store.PruneDispatches(ctx, cutoff)
			if err != nil {
				log.ErrorContext(ctx, "Failed to prune dispatch records", "error", err, "cutoff", cutoff)
				return fmt.Errorf("prune dispatches: %w", err)
			}
			log.InfoContext(ctx, "Pruned dispatch records", "deleted", pruned, "cutoff", cutoff)
		}

		if err := deps.Store.RunSQLMaintenance(ctx); err != nil {
			log.ErrorContext(ctx, "SQL maintenance task failed", "error", err, "duration", time.Since(startTime))
			return fmt.Errorf("sql maintenance failed: %w", err)
		}

		log.InfoContext(ctx, "Scheduled SQL maintenance task completed successfully", "duration", time.Since(startTime))
		return nil
	}
}
