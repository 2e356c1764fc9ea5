package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the audit log operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// SaveDispatch inserts one audit row.
	SaveDispatch(ctx context.Context, rec *DispatchRecord) error

	// ProviderStats aggregates rows created at or after since.
	ProviderStats(ctx context.Context, since time.Time) ([]ProviderStat, error)

	// PruneDispatches deletes rows created before cutoff and returns how many
	// were removed.
	PruneDispatches(ctx context.Context, cutoff time.Time) (int64, error)

	// RunSQLMaintenance runs VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a Store backed by sqlx.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) SaveDispatch(ctx context.Context, rec *DispatchRecord) error {
	if rec == nil {
		return errors.New("cannot save nil dispatch record")
	}
	if rec.ID == "" {
		return errors.New("dispatch record must have an id")
	}
	if rec.Outcome == "" {
		return errors.New("dispatch record must have an outcome")
	}
	if rec.CreatedAt == 0 {
		rec.CreatedAt = time.Now().UnixMilli()
	}

	const query = `
        INSERT INTO dispatches (id, user_id, backend, provider, outcome, attempts, latency_ms, created_at)
        VALUES (:id, :user_id, :backend, :provider, :outcome, :attempts, :latency_ms, :created_at);
    `
	if _, err := s.db.NamedExecContext(ctx, query, rec); err != nil {
		s.logger.ErrorContext(ctx, "Error saving dispatch record", "id", rec.ID, "user_id", rec.UserID, "error", err)
		return fmt.Errorf("failed to save dispatch record: %w", err)
	}
	return nil
}

func (s *sqlxStore) ProviderStats(ctx context.Context, since time.Time) ([]ProviderStat, error) {
	const query = `
        SELECT provider, outcome, COUNT(*) AS count, COALESCE(AVG(latency_ms), 0) AS avg_latency_ms
        FROM dispatches
        WHERE created_at >= ?
        GROUP BY provider, outcome
        ORDER BY count DESC, provider ASC, outcome ASC;
    `
	var stats []ProviderStat
	if err := s.db.SelectContext(ctx, &stats, query, since.UnixMilli()); err != nil {
		s.logger.ErrorContext(ctx, "Error querying provider stats", "error", err)
		return nil, fmt.Errorf("failed to query provider stats: %w", err)
	}
	return stats, nil
}

func (s *sqlxStore) PruneDispatches(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM dispatches WHERE created_at < ?;`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to prune dispatch records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read pruned row count: %w", err)
	}
	s.logger.InfoContext(ctx, "Pruned dispatch records", "deleted", n, "cutoff", cutoff)
	return n, nil
}

// RunSQLMaintenance executes VACUUM, which sqlite refuses inside a
// transaction.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)")
	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		s.logger.WarnContext(ctx, "Failed to set busy timeout", "error", err)
	}

	_, err := s.db.ExecContext(ctx, "VACUUM;")
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}
	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed")
	return nil
}
