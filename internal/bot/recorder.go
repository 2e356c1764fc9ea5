package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/edgard/relaybot/internal/database"
	"github.com/edgard/relaybot/internal/dispatch"
)

const recordTimeout = 5 * time.Second

// AuditRecorder writes dispatch events to the audit log.
type AuditRecorder struct {
	store database.Store
}

var _ dispatch.Recorder = (*AuditRecorder)(nil)

// NewAuditRecorder creates a recorder backed by store.
func NewAuditRecorder(store database.Store) *AuditRecorder {
	return &AuditRecorder{store: store}
}

// Record saves ev. The write outlives cancellation of ctx so events of
// requests cut short by shutdown are still stored.
func (r *AuditRecorder) Record(ctx context.Context, ev dispatch.Event) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	rec := &database.DispatchRecord{
		ID:        ev.ID,
		UserID:    ev.UserID,
		Backend:   ev.Backend,
		Provider:  ev.Provider,
		Outcome:   ev.Outcome,
		Attempts:  ev.Attempts,
		LatencyMS: ev.Latency.Milliseconds(),
	}
	if !ev.At.IsZero() {
		rec.CreatedAt = ev.At.UnixMilli()
	}
	if err := r.store.SaveDispatch(ctx, rec); err != nil {
		return fmt.Errorf("failed to record dispatch: %w", err)
	}
	return nil
}
