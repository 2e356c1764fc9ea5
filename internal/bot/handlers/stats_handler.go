package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const (
	statsWindow  = 24 * time.Hour
	statsTimeout = 10 * time.Second
)

// NewStatsHandler returns a handler for the admin /stats command, which
// summarizes the dispatch audit log.
func NewStatsHandler(deps HandlerDeps) bot.HandlerFunc {
	return statsHandler{deps: deps, now: time.Now}.Handle
}

type statsHandler struct {
	deps HandlerDeps
	now  func() time.Time
}

func (h statsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handle(ctx, b, update)
}

func (h statsHandler) handle(ctx context.Context, s Sender, update *models.Update) {
	log := h.deps.Logger.With("handler", "stats")
	if !validMessage(ctx, log, update) {
		return
	}

	chatID := update.Message.Chat.ID
	if h.deps.Store == nil {
		sendText(ctx, s, log, chatID, h.deps.Config.Messages.NotConfigured)
		return
	}

	queryCtx, cancel := context.WithTimeout(ctx, statsTimeout)
	defer cancel()

	stats, err := h.deps.Store.ProviderStats(queryCtx, h.now().Add(-statsWindow))
	if err != nil {
		log.ErrorContext(ctx, "Failed to load provider stats", "error", err)
		sendText(ctx, s, log, chatID, h.deps.Config.Messages.GeneralError)
		return
	}
	if len(stats) == 0 {
		sendText(ctx, s, log, chatID, h.deps.Config.Messages.NoStats)
		return
	}

	var sb strings.Builder
	sb.WriteString("📈 Dispatches in the last 24 hours\n")
	for _, st := range stats {
		provider := st.Provider
		if provider == "" {
			provider = "none"
		}
		fmt.Fprintf(&sb, "%s %s: %d (avg %.0f ms)\n", provider, st.Outcome, st.Count, st.AvgLatencyMS)
	}
	sendText(ctx, s, log, chatID, strings.TrimRight(sb.String(), "\n"))
}
