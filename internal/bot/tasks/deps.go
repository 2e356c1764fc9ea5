// Package tasks implements the bot's scheduled maintenance tasks.
package tasks

import (
	"log/slog"

	"github.com/edgard/relaybot/internal/config"
	"github.com/edgard/relaybot/internal/database"
	"github.com/edgard/relaybot/internal/session"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger   *slog.Logger
	Config   *config.Config
	Sessions *session.Store
	// Store is the dispatch audit log; nil disables sql_maintenance.
	Store database.Store
}
